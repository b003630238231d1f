package mockxhr

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. UploadProgress
// ---------------------------------------------------------------------------

func TestUploadProgress_RequiresActiveUpload(t *testing.T) {
	x := openedXHR(t, "POST", "/api")
	if err := x.UploadProgress(1); !errors.Is(err, ErrUsage) {
		t.Errorf("before send: error = %v, want ErrUsage", err)
	}

	x = sentXHR(t, "GET", nil)
	if err := x.UploadProgress(1); !errors.Is(err, ErrUsage) {
		t.Errorf("nil body: error = %v, want ErrUsage", err)
	}

	x = sentXHR(t, "POST", "data")
	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))
	if err := x.UploadProgress(1); !errors.Is(err, ErrUsage) {
		t.Errorf("after upload completed: error = %v, want ErrUsage", err)
	}
}

func TestUploadProgress_FiresOnlyWhenLatched(t *testing.T) {
	x := New()
	tr := traceAll(x)
	assertNoErr(t, x.Open("POST", "/api"))
	assertNoErr(t, x.Send("data"))
	assertNoErr(t, x.UploadProgress(2))

	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"upload.loadstart(0,4,true)",
		"upload.progress(2,4,true)",
	)

	// Without latched listeners the call succeeds but stays silent.
	x = sentXHR(t, "POST", "data")
	fired := false
	x.Upload().AddEventListener(EventProgress, func(Event) { fired = true })
	assertNoErr(t, x.UploadProgress(2))
	if fired {
		t.Error("upload progress fired without the listener flag")
	}
}

// ---------------------------------------------------------------------------
// 2. SetResponseHeaders
// ---------------------------------------------------------------------------

func TestSetResponseHeaders_RequiresOpenedSent(t *testing.T) {
	x := openedXHR(t, "GET", "/api")
	if err := x.SetResponseHeaders(200, nil, ""); !errors.Is(err, ErrUsage) {
		t.Errorf("before send: error = %v, want ErrUsage", err)
	}

	x = sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))
	if err := x.SetResponseHeaders(200, nil, ""); !errors.Is(err, ErrUsage) {
		t.Errorf("second call: error = %v, want ErrUsage", err)
	}
}

func TestSetResponseHeaders_DefaultsStatusAndText(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetResponseHeaders(0, nil, ""))

	if got := x.Status(); got != 200 {
		t.Errorf("status = %d, want 200", got)
	}
	if got := x.StatusText(); got != "OK" {
		t.Errorf("status text = %q, want %q", got, "OK")
	}
	if got := x.GetAllResponseHeaders(); got != "" {
		t.Errorf("headers = %q, want empty", got)
	}
}

func TestSetResponseHeaders_StatusTextFromStandardTable(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetResponseHeaders(404, nil, ""))
	if got := x.StatusText(); got != "Not Found" {
		t.Errorf("status text = %q, want %q", got, "Not Found")
	}

	x = sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetResponseHeaders(404, nil, "Nope"))
	if got := x.StatusText(); got != "Nope" {
		t.Errorf("explicit status text = %q, want %q", got, "Nope")
	}
}

func TestSetResponseHeaders_CompletesUploadFirst(t *testing.T) {
	x := New()
	tr := traceAll(x)
	assertNoErr(t, x.Open("POST", "/api"))
	assertNoErr(t, x.Send("data"))

	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))

	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"upload.loadstart(0,4,true)",
		"upload.progress(4,4,true)",
		"upload.load(4,4,true)",
		"upload.loadend(4,4,true)",
		"readystatechange(HEADERS_RECEIVED)",
	)
}

func TestSetResponseHeaders_NoUploadEventsWithoutListeners(t *testing.T) {
	x := New()
	tr := traceMain(x)
	assertNoErr(t, x.Open("POST", "/api"))
	assertNoErr(t, x.Send("data"))

	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))

	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"readystatechange(HEADERS_RECEIVED)",
	)
}

// ---------------------------------------------------------------------------
// 3. DownloadProgress
// ---------------------------------------------------------------------------

func TestDownloadProgress_RequiresHeaders(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	if err := x.DownloadProgress(1, 10); !errors.Is(err, ErrUsage) {
		t.Errorf("before headers: error = %v, want ErrUsage", err)
	}
}

func TestDownloadProgress_TransitionsAndRepeats(t *testing.T) {
	x := New()
	tr := traceMain(x)
	assertNoErr(t, x.Open("GET", "/api"))
	assertNoErr(t, x.Send(nil))
	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))

	assertNoErr(t, x.DownloadProgress(2, 8))
	assertNoErr(t, x.DownloadProgress(5, 8))

	// Each tick re-announces LOADING even when the state did not change.
	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"readystatechange(HEADERS_RECEIVED)",
		"readystatechange(LOADING)",
		"progress(2,8,true)",
		"readystatechange(LOADING)",
		"progress(5,8,true)",
	)
}

func TestDownloadProgress_UnknownTotalIsNotComputable(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))
	tr := traceMain(x)

	assertNoErr(t, x.DownloadProgress(3, 0))

	assertTrace(t, tr,
		"readystatechange(LOADING)",
		"progress(3,0,false)",
	)
}

// ---------------------------------------------------------------------------
// 4. SetResponseBody
// ---------------------------------------------------------------------------

func TestSetResponseBody_SuppliesDefaultHeaders(t *testing.T) {
	x := New()
	tr := traceMain(x)
	assertNoErr(t, x.Open("GET", "/api"))
	assertNoErr(t, x.Send(nil))

	assertNoErr(t, x.SetResponseBody("abc"))

	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"readystatechange(HEADERS_RECEIVED)",
		"readystatechange(LOADING)",
		"progress(3,3,true)",
		"readystatechange(DONE)",
		"load(3,3,true)",
		"loadend(3,3,true)",
	)
	if got := x.Status(); got != 200 {
		t.Errorf("status = %d, want 200", got)
	}
	if got := x.ResponseText(); got != "abc" {
		t.Errorf("text = %q, want %q", got, "abc")
	}
}

func TestSetResponseBody_AfterProgressTicks(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))
	assertNoErr(t, x.DownloadProgress(2, 9))
	tr := traceMain(x)

	assertNoErr(t, x.SetResponseBody("full body"))

	assertTrace(t, tr,
		"readystatechange(LOADING)",
		"progress(9,9,true)",
		"readystatechange(DONE)",
		"load(9,9,true)",
		"loadend(9,9,true)",
	)
}

func TestSetResponseBody_RequiresActiveRequest(t *testing.T) {
	x := openedXHR(t, "GET", "/api")
	if err := x.SetResponseBody("x"); !errors.Is(err, ErrUsage) {
		t.Errorf("before send: error = %v, want ErrUsage", err)
	}

	x = sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetResponseBody("x"))
	if err := x.SetResponseBody("y"); !errors.Is(err, ErrUsage) {
		t.Errorf("after done: error = %v, want ErrUsage", err)
	}
}

func TestSetResponseBody_NilBodyCompletesWithZeroCounts(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	tr := traceMain(x)

	assertNoErr(t, x.SetResponseBody(nil))

	assertTrace(t, tr,
		"readystatechange(HEADERS_RECEIVED)",
		"readystatechange(LOADING)",
		"progress(0,0,false)",
		"readystatechange(DONE)",
		"load(0,0,false)",
		"loadend(0,0,false)",
	)
}

// ---------------------------------------------------------------------------
// 5. SetNetworkError and SetRequestTimeout
// ---------------------------------------------------------------------------

func TestSetNetworkError_RunsErrorSequence(t *testing.T) {
	x := New()
	tr := traceAll(x)
	assertNoErr(t, x.Open("POST", "/api"))
	assertNoErr(t, x.Send("data"))

	assertNoErr(t, x.SetNetworkError())

	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"upload.loadstart(0,4,true)",
		"readystatechange(DONE)",
		"upload.error(0,0,false)",
		"upload.loadend(0,0,false)",
		"error(0,0,false)",
		"loadend(0,0,false)",
	)
	if got := x.ReadyState(); got != Done {
		t.Errorf("state = %s, want DONE", got)
	}
	if got := x.Status(); got != 0 {
		t.Errorf("status = %d, want 0", got)
	}
}

func TestSetNetworkError_AfterHeadersSkipsUploadPhase(t *testing.T) {
	x := New()
	tr := traceAll(x)
	assertNoErr(t, x.Open("POST", "/api"))
	assertNoErr(t, x.Send("data"))
	assertNoErr(t, x.SetResponseHeaders(200, nil, ""))
	tr.entries = nil

	assertNoErr(t, x.SetNetworkError())

	// The upload already completed with the headers, so only the main
	// channel reports the failure.
	assertTrace(t, tr,
		"readystatechange(DONE)",
		"error(0,0,false)",
		"loadend(0,0,false)",
	)
}

func TestSetNetworkError_RequiresInFlightRequest(t *testing.T) {
	x := openedXHR(t, "GET", "/api")
	if err := x.SetNetworkError(); !errors.Is(err, ErrUsage) {
		t.Errorf("before send: error = %v, want ErrUsage", err)
	}

	x = sentXHR(t, "GET", nil)
	assertNoErr(t, x.SetNetworkError())
	if err := x.SetNetworkError(); !errors.Is(err, ErrUsage) {
		t.Errorf("after done: error = %v, want ErrUsage", err)
	}
}

func TestSetRequestTimeout_RunsTimeoutSequence(t *testing.T) {
	x := New()
	tr := traceMain(x)
	assertNoErr(t, x.Open("GET", "/api"))
	assertNoErr(t, x.Send(nil))

	assertNoErr(t, x.SetRequestTimeout())

	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"readystatechange(DONE)",
		"timeout(0,0,false)",
		"loadend(0,0,false)",
	)
	if got := x.RequestURL(); got != "" {
		t.Errorf("url = %q, want the request context discarded", got)
	}
}

func TestMockMethods_RejectIdleInstance(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	x.Abort()

	if err := x.SetResponseHeaders(200, nil, ""); !errors.Is(err, ErrUsage) {
		t.Errorf("SetResponseHeaders error = %v, want ErrUsage", err)
	}
	if err := x.SetResponseBody("x"); !errors.Is(err, ErrUsage) {
		t.Errorf("SetResponseBody error = %v, want ErrUsage", err)
	}
	if err := x.SetNetworkError(); !errors.Is(err, ErrUsage) {
		t.Errorf("SetNetworkError error = %v, want ErrUsage", err)
	}
	if err := x.SetRequestTimeout(); !errors.Is(err, ErrUsage) {
		t.Errorf("SetRequestTimeout error = %v, want ErrUsage", err)
	}
	if err := x.DownloadProgress(1, 2); !errors.Is(err, ErrUsage) {
		t.Errorf("DownloadProgress error = %v, want ErrUsage", err)
	}
	if err := x.UploadProgress(1); !errors.Is(err, ErrUsage) {
		t.Errorf("UploadProgress error = %v, want ErrUsage", err)
	}
}

// ---------------------------------------------------------------------------
// 6. Respond
// ---------------------------------------------------------------------------

// The canonical full exchange: a POST with a 4-byte body, upload listeners
// registered before send, answered by Respond with default arguments.
func TestRespond_FullDefaultSequence(t *testing.T) {
	x := New()
	tr := traceAll(x)
	assertNoErr(t, x.Open("POST", "/upload"))
	assertNoErr(t, x.Send("body"))

	assertNoErr(t, x.Respond(0, nil, nil, ""))

	assertTrace(t, tr,
		"readystatechange(OPENED)",
		"loadstart(0,0,false)",
		"upload.loadstart(0,4,true)",
		"upload.progress(4,4,true)",
		"upload.load(4,4,true)",
		"upload.loadend(4,4,true)",
		"readystatechange(HEADERS_RECEIVED)",
		"readystatechange(LOADING)",
		"progress(0,0,false)",
		"readystatechange(DONE)",
		"load(0,0,false)",
		"loadend(0,0,false)",
	)
	if got := x.Status(); got != 200 {
		t.Errorf("status = %d, want 200", got)
	}
	if got := x.StatusText(); got != "OK" {
		t.Errorf("status text = %q, want %q", got, "OK")
	}
}

func TestRespond_DeliversStatusHeadersAndBody(t *testing.T) {
	x := sentXHR(t, "GET", nil)
	headers := NewHeaders()
	headers.Add("Content-Type", "text/html")

	assertNoErr(t, x.Respond(418, headers, "<body/>", ""))

	if got := x.Status(); got != 418 {
		t.Errorf("status = %d, want 418", got)
	}
	if got := x.StatusText(); got != "I'm a teapot" {
		t.Errorf("status text = %q, want the standard reason phrase", got)
	}
	if v, _ := x.GetResponseHeader("Content-Type"); v != "text/html" {
		t.Errorf("content-type = %q, want %q", v, "text/html")
	}
	if got := x.ResponseText(); got != "<body/>" {
		t.Errorf("text = %q, want %q", got, "<body/>")
	}
	if got := x.ReadyState(); got != Done {
		t.Errorf("state = %s, want DONE", got)
	}
}
