package mockxhr

import (
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ServerConfig controls construction of a Server.
type ServerConfig struct {
	// Logger receives request and routing traces. When nil, logging is
	// disabled.
	Logger *zerolog.Logger

	// Recorder, when set, is attached to every instance the server creates.
	Recorder *Recorder

	// Scheduler overrides the default per-server TaskQueue.
	Scheduler Scheduler
}

// Handler responds to a routed request with full mock control.
type Handler func(*XHR)

// URLMatcher reports whether a request URL belongs to a route.
type URLMatcher func(url string) bool

// RequestLog is one delivered request, captured before routing.
type RequestLog struct {
	ID       string // unique per delivery
	Method   string
	URL      string
	Headers  string // serialized request headers
	Body     any
	BodySize int64
}

// Server routes delivered requests to configured replies, in the way a test
// double of the remote endpoint would. It owns a Factory whose send hook
// performs the routing; create instances with NewXHR and drive delivery
// with Flush.
type Server struct {
	factory        *Factory
	log            zerolog.Logger
	routes         []*Route
	defaultHandler Handler
	requests       []RequestLog
}

// NewServer builds a Server from cfg.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{log: zerolog.Nop()}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	}
	s.factory = NewFactory(Config{
		Scheduler: cfg.Scheduler,
		Logger:    cfg.Logger,
		Recorder:  cfg.Recorder,
		OnSend:    s.dispatch,
	})
	return s
}

// NewXHR returns a fresh instance wired to this server.
func (s *Server) NewXHR() *XHR {
	return s.factory.NewXHR()
}

// Factory exposes the server's factory, for sharing its scheduler or
// adding construction hooks.
func (s *Server) Factory() *Factory {
	return s.factory
}

// Flush delivers pending requests to the router.
func (s *Server) Flush() {
	s.factory.Flush()
}

// HasPending reports whether any request awaits delivery.
func (s *Server) HasPending() bool {
	return s.factory.HasPending()
}

// Requests returns the log of delivered requests in delivery order.
func (s *Server) Requests() []RequestLog {
	return slices.Clone(s.requests)
}

// On registers a route matching the method (or "*" for any) and the exact
// URL string. Routes are evaluated in registration order; the first match
// wins.
func (s *Server) On(method, url string) *Route {
	return s.OnMatch(method, func(u string) bool { return u == url })
}

// OnMatch registers a route with a caller-supplied URL predicate.
func (s *Server) OnMatch(method string, match URLMatcher) *Route {
	r := &Route{server: s, method: normalizeMethod(method), match: match}
	s.routes = append(s.routes, r)
	return r
}

// SetDefaultHandler installs the handler used when no route matches.
func (s *Server) SetDefaultHandler(fn Handler) {
	s.defaultHandler = fn
}

// SetDefault404 installs a default handler replying 404 Not Found with an
// empty body.
func (s *Server) SetDefault404() {
	s.defaultHandler = func(x *XHR) {
		if err := x.Respond(http.StatusNotFound, nil, nil, ""); err != nil {
			s.log.Warn().Err(err).Msg("default 404 reply failed")
		}
	}
}

// dispatch is the factory send hook: it logs the request, then applies the
// first matching route or the default handler. With neither, the request
// stays pending for manual control.
func (s *Server) dispatch(x *XHR) {
	entry := RequestLog{
		ID:       uuid.NewString(),
		Method:   x.RequestMethod(),
		URL:      x.RequestURL(),
		Headers:  x.RequestHeaders().Serialize(),
		Body:     x.RequestBody(),
		BodySize: x.RequestBodySize(),
	}
	s.requests = append(s.requests, entry)
	s.log.Debug().Str("id", entry.ID).Str("method", entry.Method).Str("url", entry.URL).Msg("request delivered")

	for _, r := range s.routes {
		if r.matches(x) {
			r.apply(x)
			return
		}
	}
	if s.defaultHandler != nil {
		s.defaultHandler(x)
		return
	}
	s.log.Warn().Str("method", entry.Method).Str("url", entry.URL).Msg("no route matched; request left pending")
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

type replyKind int

const (
	replyNone replyKind = iota
	replyStatic
	replyError
	replyTimeout
	replyHandler
)

// Route is one registered method/URL pattern and its reply. Match* methods
// refine the pattern; Reply*, Handle configure the reply (the last call
// wins).
type Route struct {
	server *Server
	method string
	match  URLMatcher
	checks []func(*XHR) bool

	kind       replyKind
	status     int
	headers    *Headers
	body       any
	statusText string
	handler    Handler
}

// MatchHeader further requires a request header to equal value.
func (r *Route) MatchHeader(name, value string) *Route {
	r.checks = append(r.checks, func(x *XHR) bool {
		v, ok := x.RequestHeaders().Get(name)
		return ok && v == value
	})
	return r
}

// MatchBodyJSON further requires the textual request body, interpreted as
// JSON, to hold want at the given gjson path.
func (r *Route) MatchBodyJSON(path, want string) *Route {
	r.checks = append(r.checks, func(x *XHR) bool {
		return gjson.Get(bodyText(x.RequestBody()), path).String() == want
	})
	return r
}

// Reply configures a static response. Zero status, nil headers, and empty
// statusText take the SetResponseHeaders defaults.
func (r *Route) Reply(status int, headers *Headers, body any, statusText string) *Route {
	r.kind = replyStatic
	r.status = status
	r.headers = headers
	r.body = body
	r.statusText = statusText
	return r
}

// ReplyJSONFields configures a JSON response built by assigning each field
// path into an empty object, with a Content-Type: application/json header.
// Paths use sjson syntax, so "user.name" nests and "items.0" indexes.
func (r *Route) ReplyJSONFields(status int, fields map[string]any) *Route {
	body := "{}"
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		next, err := sjson.Set(body, path, fields[path])
		if err != nil {
			r.server.log.Warn().Err(err).Str("path", path).Msg("json reply field skipped")
			continue
		}
		body = next
	}
	headers := NewHeaders()
	headers.Add("Content-Type", "application/json")
	return r.Reply(status, headers, body, "")
}

// ReplyError configures a network-error reply.
func (r *Route) ReplyError() *Route {
	r.kind = replyError
	return r
}

// ReplyTimeout configures a request-timeout reply.
func (r *Route) ReplyTimeout() *Route {
	r.kind = replyTimeout
	return r
}

// Handle configures fn as the reply.
func (r *Route) Handle(fn Handler) *Route {
	r.kind = replyHandler
	r.handler = fn
	return r
}

func (r *Route) matches(x *XHR) bool {
	if r.method != "*" && !strings.EqualFold(r.method, x.RequestMethod()) {
		return false
	}
	if r.match != nil && !r.match(x.RequestURL()) {
		return false
	}
	for _, check := range r.checks {
		if !check(x) {
			return false
		}
	}
	return true
}

func (r *Route) apply(x *XHR) {
	var err error
	switch r.kind {
	case replyStatic:
		var headers *Headers
		if r.headers != nil {
			headers = r.headers.Clone()
		}
		err = x.Respond(r.status, headers, r.body, r.statusText)
	case replyError:
		err = x.SetNetworkError()
	case replyTimeout:
		err = x.SetRequestTimeout()
	case replyHandler:
		r.handler(x)
	case replyNone:
		r.server.log.Warn().Str("method", r.method).Msg("matched route has no reply configured")
	}
	if err != nil {
		r.server.log.Warn().Err(err).Msg("mock reply failed")
	}
}
