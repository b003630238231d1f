package mockxhr

// Event names dispatched on the main and upload channels. The upload channel
// never receives EventReadyStateChange.
const (
	EventReadyStateChange = "readystatechange"
	EventLoadStart        = "loadstart"
	EventProgress         = "progress"
	EventAbort            = "abort"
	EventError            = "error"
	EventLoad             = "load"
	EventTimeout          = "timeout"
	EventLoadEnd          = "loadend"
)

// Event is the immutable payload delivered to listeners. Progress-family
// events carry transferred and total byte counts. A readystatechange event
// carries no counts; observers read the new state from the instance that
// dispatched it.
type Event struct {
	Type             string
	Loaded           int64
	Total            int64
	LengthComputable bool
}

// newEvent builds an Event. LengthComputable is set only when the total is a
// known, meaningful byte count; a zero total means the length is unknown.
func newEvent(eventType string, loaded, total int64) Event {
	return Event{
		Type:             eventType,
		Loaded:           loaded,
		Total:            total,
		LengthComputable: total > 0,
	}
}
