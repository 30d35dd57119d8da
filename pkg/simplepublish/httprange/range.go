// Package httprange parses HTTP Range headers and resolves them against an
// object size.
//
// Only the single ascending form "bytes=<start>-[<end>]" is honored. Anything
// else (suffix ranges, multiple ranges, junk) is treated as if no Range
// header were sent, since a full 200 response is always a correct answer.
package httprange

import (
	"strconv"
	"strings"
)

// Spec is a parsed but unresolved range: Start is known, End may await the
// object size.
type Spec struct {
	Start  int64
	End    int64
	HasEnd bool
}

// Range is a resolved byte window with inclusive bounds.
type Range struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the window covers.
func (r Range) Length() int64 {
	return r.End - r.Start + 1
}

// Parse parses a Range header value. It returns nil for an absent or
// malformed header (permissive fallback to a full response).
func Parse(header string) *Spec {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil
	}
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil
	}

	if endStr == "" {
		return &Spec{Start: start}
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < 0 {
		return nil
	}
	return &Spec{Start: start, End: end, HasEnd: true}
}

// Resolve validates the spec against the object size and returns the byte
// window to serve. An open end defaults to size-1 and an end past the object
// is clamped to it. The second return is false when the range cannot be
// satisfied (start beyond the object, or an inverted window).
func (s *Spec) Resolve(size int64) (Range, bool) {
	end := size - 1
	if s.HasEnd && s.End < end {
		end = s.End
	}
	if s.Start >= size || end < s.Start {
		return Range{}, false
	}
	return Range{Start: s.Start, End: end}, true
}
