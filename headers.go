package mockxhr

import (
	"slices"
	"strings"
)

// headerEntry is one stored header line. Adding an existing name merges into
// its entry, so entries stays one-per-name in first-insertion order.
type headerEntry struct {
	name  string
	value string
}

// Headers is an ordered, case-insensitive header container. Lookups match
// any casing; serialization preserves the casing with which a name was
// first added.
type Headers struct {
	entries []headerEntry
}

// NewHeaders returns an empty container.
func NewHeaders() *Headers {
	return &Headers{}
}

// HeadersFrom builds a container from a map. Names are inserted in sorted
// order so serialization is deterministic.
func HeadersFrom(values map[string]string) *Headers {
	h := NewHeaders()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		h.Add(name, values[name])
	}
	return h
}

// Add records a header value. If the name is already present in any casing,
// the value is merged into the stored entry, joined with ", ".
func (h *Headers) Add(name, value string) {
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].name, name) {
			h.entries[i].value += ", " + value
			return
		}
	}
	h.entries = append(h.entries, headerEntry{name: name, value: value})
}

// Get returns the stored value for name, matching case-insensitively. The
// second return value reports whether the name is present.
func (h *Headers) Get(name string) (string, bool) {
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].name, name) {
			return h.entries[i].value, true
		}
	}
	return "", false
}

// Serialize renders "name: value\r\n" lines in insertion order.
func (h *Headers) Serialize() string {
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e.name)
		b.WriteString(": ")
		b.WriteString(e.value)
		b.WriteString("\r\n")
	}
	return b.String()
}

// Reset removes all entries.
func (h *Headers) Reset() {
	h.entries = h.entries[:0]
}

// Len returns the number of distinct header names.
func (h *Headers) Len() int {
	return len(h.entries)
}

// Clone returns an independent copy.
func (h *Headers) Clone() *Headers {
	return &Headers{entries: slices.Clone(h.entries)}
}
