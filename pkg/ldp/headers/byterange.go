package headers

import (
	"strconv"
	"strings"
)

// ByteRange is a single-range request (`bytes=start-end`), the only form
// the core supports. Multi-range requests are rejected rather than
// silently reduced to the first range, so the client learns its request
// wasn't fully honored.
type ByteRange struct {
	Start  int64
	End    int64
	HasEnd bool
	Suffix bool // true for a `bytes=-N` suffix-length range; Start holds N
}

// ParseRange parses a Range header for the single `bytes` unit form.
func ParseRange(raw string) (ByteRange, error) {
	raw = strings.TrimSpace(raw)
	unit, spec, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(unit) != "bytes" {
		return ByteRange{}, errBadRequestFor("Range", "only the bytes unit is supported: "+raw)
	}
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, ",") {
		return ByteRange{}, errBadRequestFor("Range", "multi-range requests are not supported: "+raw)
	}

	startStr, endStr, hasDash := strings.Cut(spec, "-")
	if !hasDash {
		return ByteRange{}, errBadRequestFor("Range", "malformed byte-range-spec: "+raw)
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		if endStr == "" {
			return ByteRange{}, errBadRequestFor("Range", "empty byte-range-spec: "+raw)
		}
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n < 0 {
			return ByteRange{}, errBadRequestFor("Range", "invalid suffix-length: "+endStr)
		}
		return ByteRange{Start: n, Suffix: true}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, errBadRequestFor("Range", "invalid first-byte-pos: "+startStr)
	}
	if endStr == "" {
		return ByteRange{Start: start}, nil
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return ByteRange{}, errBadRequestFor("Range", "invalid last-byte-pos: "+endStr)
	}
	return ByteRange{Start: start, End: end, HasEnd: true}, nil
}

// RangeNotSatisfiable reports that a 416 response is required: the decided
// behavior (over the spec's open question) is to return 416 only when the
// range's first-byte-pos is beyond the resource, and to otherwise clamp an
// overlong last-byte-pos down to the resource's final byte rather than
// rejecting it, matching RFC 7233 §2.1's "satisfiable despite... overlaps"
// guidance.
func (r ByteRange) RangeNotSatisfiable(size int64) bool {
	if size <= 0 {
		return true
	}
	if r.Suffix {
		return false
	}
	return r.Start >= size
}

// Resolve clamps the range against the resource's total size, returning the
// concrete [start, end] byte offsets (inclusive) to serve.
func (r ByteRange) Resolve(size int64) (start, end int64) {
	if r.Suffix {
		start = size - r.Start
		if start < 0 {
			start = 0
		}
		return start, size - 1
	}
	start = r.Start
	end = size - 1
	if r.HasEnd && r.End < end {
		end = r.End
	}
	return start, end
}
