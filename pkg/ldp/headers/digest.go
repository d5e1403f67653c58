package headers

import (
	"sort"
	"strconv"
	"strings"
)

// DigestAlgorithm is one weighted entry of a Want-Digest header (RFC 3230).
type DigestAlgorithm struct {
	Name string
	Q    float64
}

// ParseWantDigest parses a Want-Digest header into algorithms ordered from
// most to least preferred. Algorithms with q=0 are excluded — the client
// has explicitly refused them. Ties keep their original left-to-right
// order (stable sort), since RFC 3230 does not define a tiebreak and the
// request's own ordering is the closest thing to author intent.
func ParseWantDigest(raw string) ([]DigestAlgorithm, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var out []DigestAlgorithm
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, qPart, hasQ := strings.Cut(part, ";")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errBadRequestFor("Want-Digest", "empty algorithm token")
		}
		q := 1.0
		if hasQ {
			qPart = strings.TrimSpace(qPart)
			key, val, ok := strings.Cut(qPart, "=")
			if !ok || strings.TrimSpace(key) != "q" {
				return nil, errBadRequestFor("Want-Digest", "malformed q-parameter: "+qPart)
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil || parsed < 0 || parsed > 1 {
				return nil, errBadRequestFor("Want-Digest", "invalid q value: "+val)
			}
			q = parsed
		}
		if q == 0 {
			continue
		}
		out = append(out, DigestAlgorithm{Name: name, Q: q})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Q > out[j].Q })
	return out, nil
}

// Digest is the parsed form of a request Digest header (RFC 3230), keyed by
// uppercase algorithm name to its base64-encoded value.
type Digest struct {
	Values map[string]string
}

// ParseDigest parses a request Digest header. Malformed entries (missing
// `=` separator) are skipped individually rather than failing the whole
// header, so one well-formed digest sent alongside noise still parses.
func ParseDigest(raw string) (Digest, error) {
	d := Digest{Values: make(map[string]string)}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return d, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		d.Values[name] = value
	}
	if len(d.Values) == 0 {
		return Digest{}, errBadRequestFor("Digest", "no well-formed digest-algorithm pairs in: "+raw)
	}
	return d, nil
}
