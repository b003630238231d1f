package mockxhr

import "strconv"

// ReadyState is the readiness state of a request. The numeric values match
// the constants exposed by XMLHttpRequest.
type ReadyState int

const (
	Unsent          ReadyState = iota // before open()
	Opened                            // open() succeeded; request not yet sent
	HeadersReceived                   // response status and headers available
	Loading                           // response body arriving
	Done                              // complete, failed, or aborted
)

func (s ReadyState) String() string {
	switch s {
	case Unsent:
		return "UNSENT"
	case Opened:
		return "OPENED"
	case HeadersReceived:
		return "HEADERS_RECEIVED"
	case Loading:
		return "LOADING"
	case Done:
		return "DONE"
	}
	return "ReadyState(" + strconv.Itoa(int(s)) + ")"
}
