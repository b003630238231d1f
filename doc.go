// Package mockxhr is an in-process, synchronously controllable test double
// for the XMLHttpRequest object. It reproduces the readiness-state machine,
// the event sequences on the main and upload channels, and the request and
// response data surfaces, without sockets, goroutines, or timers: every
// event fires inside the call that causes it, so tests observe exact
// orderings.
//
// Test code plays both roles. The request initiator drives Open,
// SetRequestHeader, Send, and Abort, exactly like browser code would. The
// mock driver plays the network with SetResponseHeaders, DownloadProgress,
// SetResponseBody, UploadProgress, SetNetworkError, and SetRequestTimeout,
// or the Respond shorthand:
//
//	x := mockxhr.New()
//	x.AddEventListener(mockxhr.EventLoad, func(ev mockxhr.Event) { ... })
//	_ = x.Open("GET", "/api/user")
//	_ = x.Send(nil)
//	_ = x.Respond(200, nil, `{"name":"bob"}`, "")
//
// The one deferred step is the hand-off of a sent request to its send
// hooks. Send schedules it on the factory's Scheduler and returns; with the
// default TaskQueue nothing runs until Flush:
//
//	f := mockxhr.NewFactory(mockxhr.Config{
//		OnSend: func(x *mockxhr.XHR) { _ = x.Respond(200, nil, "ok", "") },
//	})
//	x := f.NewXHR()
//	_ = x.Open("GET", "/ping")
//	_ = x.Send(nil)
//	f.Flush() // delivers the request to OnSend
//
// Server builds on the factory with method/URL routing, canned replies, and
// a request log, and Recorder persists completed exchanges to SQLite for
// transcript assertions.
//
// Instances are not safe for concurrent use; drive each one from a single
// goroutine.
package mockxhr
