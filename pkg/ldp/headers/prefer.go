// Package headers implements the HTTP header grammars of §4.1: pure,
// side-effect-free parsers from a raw header value to a strongly-typed Go
// value. Every parser fails with a *ParseError that callers report as 400
// Bad Request, except ParseVersion, whose ParseError is marked NotFound so
// callers report it as 404.
package headers

import "strings"

// Prefer is the parsed form of an RFC 7240 Prefer header (§3, §4.1).
type Prefer struct {
	Preference string // "minimal", "representation", or "" (absent)
	Handling   string // "lenient", "strict", or "" (absent)
	Wait       int
	HasWait    bool
	Include    []string
	Omit       []string
	Flags      map[string]bool // "respond-async", "depth-noroot"
	Params     map[string]string
}

// WantsMinimal reports whether the client asked for return=minimal.
func (p Prefer) WantsMinimal() bool { return p.Preference == "minimal" }

// WantsRepresentation reports whether the client asked for return=representation.
func (p Prefer) WantsRepresentation() bool { return p.Preference == "representation" }

// ParsePrefer parses a Prefer header value (RFC 7240, §4.1). Tokens are
// split on `;`; tokens with `=` are key/value pairs, tokens without `=` are
// boolean flags. Quoted values have their surrounding quotes stripped.
// Unknown fields are preserved verbatim in Params rather than rejected,
// matching the spec's "opaque params" handling.
func ParsePrefer(raw string) (Prefer, error) {
	p := Prefer{
		Flags:  make(map[string]bool),
		Params: make(map[string]string),
	}
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}

	for _, tok := range strings.Split(raw, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, value, hasValue := strings.Cut(tok, "=")
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		if !hasValue {
			switch strings.ToLower(key) {
			case "respond-async", "depth-noroot":
				p.Flags[strings.ToLower(key)] = true
			default:
				p.Flags[key] = true
			}
			continue
		}

		switch strings.ToLower(key) {
		case "return":
			p.Preference = value
		case "handling":
			p.Handling = value
		case "wait":
			n, err := parseNonNegativeInt(value)
			if err != nil {
				return Prefer{}, errBadRequest("invalid Prefer wait value: " + value)
			}
			p.Wait = n
			p.HasWait = true
		case "include":
			p.Include = splitIRIList(value)
		case "omit":
			p.Omit = splitIRIList(value)
		default:
			p.Params[key] = value
		}
	}

	return p, nil
}

func splitIRIList(value string) []string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
