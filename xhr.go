package mockxhr

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"
)

// XHR is an in-process XMLHttpRequest double. Test code plays both sides:
// the request initiator drives Open, SetRequestHeader, Send, and Abort,
// while the mock driver delivers the response through the methods in
// mockcontrol.go. All events fire synchronously inside the call that causes
// them; only the on-send hand-off is deferred, through the factory's
// Scheduler.
//
// An XHR and everything attached to it must be driven from a single
// goroutine. Instances are created with New or Factory.NewXHR.
type XHR struct {
	// EventTarget is the main event channel (readystatechange plus the
	// progress family).
	EventTarget

	// OnSend is the per-instance send hook. It runs after the factory-level
	// hook, once per delivered send, after the sending call stack unwinds.
	OnSend func(*XHR)

	factory *Factory
	upload  EventTarget
	log     zerolog.Logger

	state          ReadyState
	method         string
	url            string
	requestHeaders *Headers
	body           any

	sendFlag           bool
	uploadListenerFlag bool
	uploadCompleteFlag bool
	timedOutFlag       bool

	response response
}

func newXHR(f *Factory) *XHR {
	return &XHR{
		factory:        f,
		log:            f.log,
		requestHeaders: NewHeaders(),
		response:       networkErrorResponse(),
	}
}

// ---------------------------------------------------------------------------
// Request initiator surface
// ---------------------------------------------------------------------------

// Open initializes a request with the given method and url, discarding any
// request in flight. The canonical verbs are upper-cased; CONNECT, TRACE,
// and TRACK are rejected with ErrSecurity in any casing. Open fires
// readystatechange only when the state was not already OPENED; re-opening an
// opened instance resets it silently.
func (x *XHR) Open(method, url string) error {
	if methodForbidden(method) {
		return fmt.Errorf("%w: method %q is forbidden", ErrSecurity, method)
	}
	x.discardRequest()
	x.sendFlag = false
	x.uploadCompleteFlag = false
	x.timedOutFlag = false
	x.requestHeaders.Reset()
	x.response = networkErrorResponse()
	x.method = normalizeMethod(method)
	x.url = url
	x.log.Debug().Str("method", x.method).Str("url", url).Msg("open")
	if x.state != Opened {
		x.setState(Opened)
		x.fireReadyStateChange()
	}
	return nil
}

// SetRequestHeader records a request header. The value is trimmed of
// leading and trailing HTTP whitespace; malformed names or values return
// ErrSyntax. Forbidden names are dropped without error. Setting a name twice
// merges the values with ", ".
func (x *XHR) SetRequestHeader(name, value string) error {
	if x.state != Opened || x.sendFlag {
		return fmt.Errorf("%w: headers can only be set on an opened, unsent request", ErrInvalidState)
	}
	value = strings.Trim(value, " \t")
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: invalid header name %q", ErrSyntax, name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: invalid value for header %q", ErrSyntax, name)
	}
	if headerForbidden(name) {
		x.log.Debug().Str("header", name).Msg("forbidden request header dropped")
		return nil
	}
	x.requestHeaders.Add(name, value)
	return nil
}

// Send marks the request in flight and fires loadstart. The body may be
// nil, a string, a []byte, or a Blob; GET and HEAD requests always send
// without a body. When the body implies a Content-Type and the request did
// not set one, it is derived (text/plain;charset=UTF-8 for strings, the
// Blob's own type for blobs).
//
// The upload-listener flag is latched here: upload progress events for this
// send fire only if the upload channel had listeners at this moment.
// Delivery to the send hooks is scheduled on the factory's Scheduler and
// happens after Send returns; the hook references are captured now, so
// replacing a hook between Send and delivery does not affect this send.
func (x *XHR) Send(body any) error {
	if x.state != Opened || x.sendFlag {
		return fmt.Errorf("%w: send() requires an opened, unsent request", ErrInvalidState)
	}
	if x.method == "GET" || x.method == "HEAD" {
		body = nil
	}
	if body != nil {
		if _, ok := x.requestHeaders.Get("Content-Type"); !ok {
			if ct := derivedContentType(body); ct != "" {
				x.requestHeaders.Add("Content-Type", ct)
			}
		}
	}
	x.body = body
	x.uploadListenerFlag = x.upload.HasListeners()
	x.uploadCompleteFlag = body == nil
	x.timedOutFlag = false
	x.sendFlag = true
	x.log.Debug().Str("method", x.method).Str("url", x.url).Int64("body_size", x.RequestBodySize()).Msg("send")

	x.fireEvent(EventLoadStart, 0, 0)
	if x.body != nil && x.uploadListenerFlag {
		x.fireUploadEvent(EventLoadStart, 0, x.RequestBodySize())
	}
	// A loadstart listener may have aborted or re-opened the request; those
	// paths schedule their own delivery.
	if x.state != Opened || !x.sendFlag {
		return nil
	}

	hooks := x.sendHooks()
	x.factory.scheduler().Schedule(func() {
		for _, hook := range hooks {
			hook(x)
		}
	})
	return nil
}

// sendHooks captures the hook references for a send at schedule time.
func (x *XHR) sendHooks() []func(*XHR) {
	var hooks []func(*XHR)
	if fn := x.factory.onSendHook(); fn != nil {
		hooks = append(hooks, fn)
	}
	if x.OnSend != nil {
		hooks = append(hooks, x.OnSend)
	}
	return hooks
}

// Abort cancels the request. An in-flight request runs the request-error
// sequence tagged abort; an opened-but-unsent request only has its context
// discarded, with no events. A completed request resets to UNSENT, and that
// reset fires no readystatechange.
func (x *XHR) Abort() {
	wasActive := (x.state == Opened && x.sendFlag) ||
		x.state == HeadersReceived || x.state == Loading
	x.discardRequest()
	if wasActive {
		x.requestError(EventAbort)
	}
	if x.state == Done {
		// The post-completion reset is silent: state returns to UNSENT
		// without a readystatechange.
		x.setState(Unsent)
		x.response = networkErrorResponse()
	}
}

// discardRequest drops the in-flight request context.
func (x *XHR) discardRequest() {
	x.method = ""
	x.url = ""
	x.body = nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// ReadyState returns the current readiness state.
func (x *XHR) ReadyState() ReadyState {
	return x.state
}

// Status returns the response status code, or 0 while the response is the
// network-error placeholder.
func (x *XHR) Status() int {
	if x.response.isNetworkError {
		return 0
	}
	return x.response.status
}

// StatusText returns the response status line text, or "" while the
// response is the network-error placeholder.
func (x *XHR) StatusText() string {
	if x.response.isNetworkError {
		return ""
	}
	return x.response.statusText
}

// GetResponseHeader returns a response header value, matching the name
// case-insensitively.
func (x *XHR) GetResponseHeader(name string) (string, bool) {
	if x.response.isNetworkError {
		return "", false
	}
	return x.response.headers.Get(name)
}

// GetAllResponseHeaders serializes the response headers as "name: value"
// lines separated by CRLF, in the order the mock driver supplied them.
func (x *XHR) GetAllResponseHeaders() string {
	if x.response.isNetworkError {
		return ""
	}
	return x.response.headers.Serialize()
}

// ResponseText returns the textual response body. It is "" until the state
// reaches LOADING, and stays "" for non-string bodies.
func (x *XHR) ResponseText() string {
	if x.state != Loading && x.state != Done {
		return ""
	}
	return bodyText(x.response.body)
}

// ResponseBody returns the response body as supplied by the mock driver,
// or nil before the state reaches LOADING.
func (x *XHR) ResponseBody() any {
	if x.state != Loading && x.state != Done {
		return nil
	}
	return x.response.body
}

// Upload returns the upload event channel. Listeners registered here before
// Send gate the upload progress events for that send.
func (x *XHR) Upload() *EventTarget {
	return &x.upload
}

// RequestMethod returns the method recorded by Open, after normalization.
func (x *XHR) RequestMethod() string {
	return x.method
}

// RequestURL returns the url recorded by Open.
func (x *XHR) RequestURL() string {
	return x.url
}

// RequestHeaders returns a copy of the recorded request headers.
func (x *XHR) RequestHeaders() *Headers {
	return x.requestHeaders.Clone()
}

// RequestBody returns the request body recorded by Send.
func (x *XHR) RequestBody() any {
	return x.body
}

// RequestBodySize returns the request body size in bytes.
func (x *XHR) RequestBodySize() int64 {
	return bodySize(x.body)
}

// Flush drains the owning factory's task queue, delivering any pending send
// hand-offs.
func (x *XHR) Flush() {
	x.factory.Flush()
}

// ---------------------------------------------------------------------------
// Dispatch helpers
// ---------------------------------------------------------------------------

func (x *XHR) setState(s ReadyState) {
	if x.state != s {
		x.log.Debug().Stringer("from", x.state).Stringer("to", s).Msg("state transition")
	}
	x.state = s
}

func (x *XHR) fireReadyStateChange() {
	x.log.Debug().Str("event", EventReadyStateChange).Stringer("state", x.state).Msg("dispatch")
	x.DispatchEvent(Event{Type: EventReadyStateChange})
}

func (x *XHR) fireEvent(eventType string, loaded, total int64) {
	x.log.Debug().Str("event", eventType).Int64("loaded", loaded).Int64("total", total).Msg("dispatch")
	x.DispatchEvent(newEvent(eventType, loaded, total))
}

func (x *XHR) fireUploadEvent(eventType string, loaded, total int64) {
	x.log.Debug().Str("event", eventType).Str("channel", "upload").Int64("loaded", loaded).Int64("total", total).Msg("dispatch")
	x.upload.DispatchEvent(newEvent(eventType, loaded, total))
}
