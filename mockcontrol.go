package mockxhr

import (
	"fmt"
	"net/http"
)

// response is the internal response record. It is either the network-error
// placeholder or a normal response; networkErrorResponse and normalResponse
// are the only constructors.
type response struct {
	isNetworkError bool
	status         int
	statusText     string
	headers        *Headers
	body           any
}

func networkErrorResponse() response {
	return response{isNetworkError: true, headers: NewHeaders()}
}

func normalResponse(status int, statusText string, headers *Headers) response {
	if headers == nil {
		headers = NewHeaders()
	}
	return response{status: status, statusText: statusText, headers: headers}
}

// ---------------------------------------------------------------------------
// Mock driver surface
// ---------------------------------------------------------------------------

// UploadProgress fires an upload progress event for an in-flight request
// body. It returns ErrUsage unless a send is in flight and the body has not
// been marked complete. The event fires only if the upload channel had
// listeners when Send latched the upload-listener flag.
func (x *XHR) UploadProgress(transmitted int64) error {
	if !x.sendFlag || x.uploadCompleteFlag {
		return fmt.Errorf("%w: UploadProgress needs an in-flight request body", ErrUsage)
	}
	if x.uploadListenerFlag {
		x.fireUploadEvent(EventProgress, transmitted, x.RequestBodySize())
	}
	return nil
}

// SetResponseHeaders delivers the response status line and headers. A zero
// status defaults to 200, an empty statusText to the standard reason phrase
// for the status, and nil headers to an empty set. If the request carried a
// body that is not yet complete, the request end-of-body events fire first.
// It returns ErrUsage unless the request is sent and still OPENED.
func (x *XHR) SetResponseHeaders(status int, headers *Headers, statusText string) error {
	if x.state != Opened || !x.sendFlag {
		return fmt.Errorf("%w: SetResponseHeaders needs a sent request awaiting headers", ErrUsage)
	}
	if x.body != nil && !x.uploadCompleteFlag {
		x.requestEndOfBody()
	}
	if status == 0 {
		status = http.StatusOK
	}
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	x.processResponse(normalResponse(status, statusText, headers))
	return nil
}

// DownloadProgress fires a response progress event with the given counts,
// moving the state to LOADING. It returns ErrUsage unless response headers
// have been delivered. The readystatechange fires even when the state is
// already LOADING.
func (x *XHR) DownloadProgress(transmitted, total int64) error {
	if x.state != HeadersReceived && x.state != Loading {
		return fmt.Errorf("%w: DownloadProgress needs received response headers", ErrUsage)
	}
	x.setState(Loading)
	x.fireReadyStateChange()
	x.fireEvent(EventProgress, transmitted, total)
	return nil
}

// SetResponseBody delivers the response body and completes the response. If
// headers were not delivered yet, default headers are delivered first. It
// returns ErrUsage unless a send is in flight and the response is not yet
// complete.
func (x *XHR) SetResponseBody(body any) error {
	if !x.sendFlag || (x.state != Opened && x.state != HeadersReceived && x.state != Loading) {
		return fmt.Errorf("%w: SetResponseBody needs an in-flight request", ErrUsage)
	}
	if x.state == Opened {
		if err := x.SetResponseHeaders(0, nil, ""); err != nil {
			return err
		}
	}
	x.setState(Loading)
	x.fireReadyStateChange()
	x.response.body = body
	x.responseEndOfBody()
	return nil
}

// SetNetworkError fails an in-flight request with the request-error
// sequence tagged error. It returns ErrUsage unless a send is in flight.
func (x *XHR) SetNetworkError() error {
	if !x.sendFlag {
		return fmt.Errorf("%w: SetNetworkError needs an in-flight request", ErrUsage)
	}
	x.processResponse(networkErrorResponse())
	return nil
}

// SetRequestTimeout fails an in-flight request with the request-error
// sequence tagged timeout. It returns ErrUsage unless a send is in flight.
func (x *XHR) SetRequestTimeout() error {
	if !x.sendFlag {
		return fmt.Errorf("%w: SetRequestTimeout needs an in-flight request", ErrUsage)
	}
	x.discardRequest()
	x.timedOutFlag = true
	x.processResponse(networkErrorResponse())
	return nil
}

// Respond is shorthand for SetResponseHeaders followed by SetResponseBody.
func (x *XHR) Respond(status int, headers *Headers, body any, statusText string) error {
	if err := x.SetResponseHeaders(status, headers, statusText); err != nil {
		return err
	}
	return x.SetResponseBody(body)
}

// ---------------------------------------------------------------------------
// Shared sequences
// ---------------------------------------------------------------------------

// processResponse stores the response record and routes it: stale responses
// (send flag already cleared) are kept without side effects, a set timed-out
// flag wins over the network-error tag, network errors run the error
// sequence, and normal responses advance to HEADERS_RECEIVED. A listener
// that moves the state during the HEADERS_RECEIVED readystatechange stops
// further processing.
func (x *XHR) processResponse(resp response) {
	x.response = resp
	if !x.sendFlag {
		return
	}
	if x.timedOutFlag {
		x.requestError(EventTimeout)
		return
	}
	if x.response.isNetworkError {
		x.requestError(EventError)
		return
	}
	x.setState(HeadersReceived)
	x.fireReadyStateChange()
	if x.state != HeadersReceived {
		return
	}
	if x.response.body != nil {
		x.responseEndOfBody()
	}
}

// responseEndOfBody completes a successful response: a final progress event,
// the DONE transition, then load and loadend.
func (x *XHR) responseEndOfBody() {
	size := bodySize(x.response.body)
	x.fireEvent(EventProgress, size, size)
	x.setState(Done)
	x.sendFlag = false
	x.fireReadyStateChange()
	x.fireEvent(EventLoad, size, size)
	x.fireEvent(EventLoadEnd, size, size)
}

// requestEndOfBody marks the request body fully transmitted, firing the
// upload progress, load, and loadend events when the upload-listener flag
// was latched.
func (x *XHR) requestEndOfBody() {
	size := x.RequestBodySize()
	if x.uploadListenerFlag {
		x.fireUploadEvent(EventProgress, size, size)
		x.fireUploadEvent(EventLoad, size, size)
		x.fireUploadEvent(EventLoadEnd, size, size)
	}
	x.uploadCompleteFlag = true
}

// requestError runs the shared request-error sequence, tagging the terminal
// events with name (EventAbort, EventError, or EventTimeout). An incomplete
// upload is marked complete and, when the upload-listener flag was latched,
// receives the tag and loadend on the upload channel before the main
// channel does.
func (x *XHR) requestError(name string) {
	x.setState(Done)
	x.sendFlag = false
	x.response = networkErrorResponse()
	x.fireReadyStateChange()
	if !x.uploadCompleteFlag {
		x.uploadCompleteFlag = true
		if x.uploadListenerFlag {
			x.fireUploadEvent(name, 0, 0)
			x.fireUploadEvent(EventLoadEnd, 0, 0)
		}
	}
	x.fireEvent(name, 0, 0)
	x.fireEvent(EventLoadEnd, 0, 0)
}
