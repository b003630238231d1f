package mockxhr

import "strings"

// Blob is a request or response body with an explicit media type, standing
// in for the browser Blob. Send derives the Content-Type request header from
// Type when the request did not set one.
type Blob struct {
	Data []byte
	Type string
}

// canonicalVerbs are the methods open() normalizes to upper case. Other
// methods keep their casing.
var canonicalVerbs = map[string]bool{
	"DELETE":  true,
	"GET":     true,
	"HEAD":    true,
	"OPTIONS": true,
	"POST":    true,
	"PUT":     true,
}

// forbiddenMethods fail open() regardless of casing.
var forbiddenMethods = map[string]bool{
	"CONNECT": true,
	"TRACE":   true,
	"TRACK":   true,
}

// forbiddenHeaders are request header names SetRequestHeader drops silently,
// along with any name prefixed "proxy-" or "sec-".
var forbiddenHeaders = map[string]bool{
	"accept-charset":                 true,
	"accept-encoding":                true,
	"access-control-request-headers": true,
	"access-control-request-method":  true,
	"connection":                     true,
	"content-length":                 true,
	"cookie":                         true,
	"cookie2":                        true,
	"date":                           true,
	"dnt":                            true,
	"expect":                         true,
	"host":                           true,
	"keep-alive":                     true,
	"origin":                         true,
	"referer":                        true,
	"te":                             true,
	"trailer":                        true,
	"transfer-encoding":              true,
	"upgrade":                        true,
	"via":                            true,
}

func normalizeMethod(method string) string {
	if upper := strings.ToUpper(method); canonicalVerbs[upper] {
		return upper
	}
	return method
}

func methodForbidden(method string) bool {
	return forbiddenMethods[strings.ToUpper(method)]
}

func headerForbidden(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "proxy-") || strings.HasPrefix(lower, "sec-") {
		return true
	}
	return forbiddenHeaders[lower]
}

// bodySize returns the payload size in bytes for the supported body kinds.
// Unsupported kinds count as zero bytes.
func bodySize(body any) int64 {
	switch b := body.(type) {
	case string:
		return int64(len(b))
	case []byte:
		return int64(len(b))
	case Blob:
		return int64(len(b.Data))
	case *Blob:
		if b == nil {
			return 0
		}
		return int64(len(b.Data))
	}
	return 0
}

// derivedContentType returns the Content-Type implied by the body kind, or
// "" when none applies.
func derivedContentType(body any) string {
	switch b := body.(type) {
	case string:
		return "text/plain;charset=UTF-8"
	case Blob:
		return b.Type
	case *Blob:
		if b == nil {
			return ""
		}
		return b.Type
	}
	return ""
}

// bodyText returns the textual form of a body: the string itself for string
// bodies, "" for every other kind.
func bodyText(body any) string {
	if s, ok := body.(string); ok {
		return s
	}
	return ""
}
