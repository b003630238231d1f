package mockxhr

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Pure-Go SQLite driver for database/sql.
	_ "github.com/glebarez/sqlite"
)

// Recorder persists completed exchanges to a SQLite database, one row per
// request that reached loadend. It observes instances through public
// listener registration only, so attaching it never changes event
// sequencing.
type Recorder struct {
	db       *sql.DB
	writeErr error
}

const recorderSchema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id               TEXT PRIMARY KEY,
	method           TEXT NOT NULL,
	url              TEXT NOT NULL,
	status           INTEGER NOT NULL,
	outcome          TEXT NOT NULL,
	request_headers  TEXT NOT NULL,
	request_body     TEXT NOT NULL,
	response_headers TEXT NOT NULL,
	response_body    TEXT NOT NULL,
	loaded           INTEGER NOT NULL,
	total            INTEGER NOT NULL,
	recorded_at      INTEGER NOT NULL
)`

// OpenRecorder opens (or creates) the transcript database at path.
func OpenRecorder(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening recorder database: %w", err)
	}
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	if _, err := db.Exec(recorderSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating exchanges table: %w", err)
	}
	return &Recorder{db: db}, nil
}

// NewMemoryRecorder creates an in-memory recorder for testing.
func NewMemoryRecorder() (*Recorder, error) {
	return OpenRecorder(":memory:")
}

// Close closes the underlying database connection.
func (r *Recorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Err returns the first write error hit while recording, if any. Recording
// failures never disturb the instance being observed.
func (r *Recorder) Err() error {
	return r.writeErr
}

// Exchange is one recorded request/response pair.
type Exchange struct {
	ID              string
	Method          string
	URL             string
	Status          int
	Outcome         string // load, abort, error, or timeout
	RequestHeaders  string
	RequestBody     string
	ResponseHeaders string
	ResponseBody    string
	Loaded          int64
	Total           int64
	RecordedAt      time.Time
}

// exchangeState accumulates one exchange between loadstart and loadend.
type exchangeState struct {
	id             string
	method         string
	url            string
	requestHeaders string
	requestBody    string
	outcome        string
}

// Attach subscribes to x's lifecycle events. The request side is captured
// at loadstart, the outcome from the terminal event, and the row inserted
// at loadend. One instance can produce several rows when it is re-opened
// and sent again.
func (r *Recorder) Attach(x *XHR) {
	state := &exchangeState{}
	x.AddEventListener(EventLoadStart, func(Event) {
		state.id = uuid.NewString()
		state.method = x.RequestMethod()
		state.url = x.RequestURL()
		state.requestHeaders = x.RequestHeaders().Serialize()
		state.requestBody = bodyTranscript(x.RequestBody())
		state.outcome = ""
	})
	for _, name := range []string{EventLoad, EventAbort, EventError, EventTimeout} {
		x.AddEventListener(name, func(ev Event) {
			state.outcome = ev.Type
		})
	}
	x.AddEventListener(EventLoadEnd, func(ev Event) {
		r.record(x, state, ev)
	})
}

func (r *Recorder) record(x *XHR, state *exchangeState, final Event) {
	if state.id == "" {
		return
	}
	_, err := r.db.Exec(`INSERT INTO exchanges
		(id, method, url, status, outcome, request_headers, request_body,
		 response_headers, response_body, loaded, total, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		state.id, state.method, state.url, x.Status(), state.outcome,
		state.requestHeaders, state.requestBody,
		x.GetAllResponseHeaders(), x.ResponseText(),
		final.Loaded, final.Total, time.Now().Unix())
	if err != nil && r.writeErr == nil {
		r.writeErr = fmt.Errorf("recording exchange %s: %w", state.id, err)
	}
	state.id = ""
}

// Exchanges returns all recorded exchanges in insertion order.
func (r *Recorder) Exchanges() ([]Exchange, error) {
	rows, err := r.db.Query(`SELECT id, method, url, status, outcome,
		request_headers, request_body, response_headers, response_body,
		loaded, total, recorded_at FROM exchanges ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Exchange
	for rows.Next() {
		var e Exchange
		var recordedAt int64
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.Status, &e.Outcome,
			&e.RequestHeaders, &e.RequestBody, &e.ResponseHeaders,
			&e.ResponseBody, &e.Loaded, &e.Total, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		e.RecordedAt = time.Unix(recordedAt, 0)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exchanges: %w", err)
	}
	return result, nil
}

// bodyTranscript renders any supported body kind as text for the
// transcript. Binary payloads are stored as raw bytes in string form.
func bodyTranscript(body any) string {
	switch b := body.(type) {
	case string:
		return b
	case []byte:
		return string(b)
	case Blob:
		return string(b.Data)
	case *Blob:
		if b != nil {
			return string(b.Data)
		}
	}
	return ""
}
