package headers

import "strings"

// Link is one parsed entry of an RFC 8288 Link header.
type Link struct {
	Target string
	Rel    string
	Type   string
	Params map[string]string
}

// ParseLinks parses a full Link header value, which may contain multiple
// comma-separated link-values. Used on request (e.g. a `type` link on POST
// announcing the desired interaction model) and built on response.
func ParseLinks(raw string) ([]Link, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var links []Link
	for _, segment := range splitUnquoted(raw, ',') {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		open := strings.IndexByte(segment, '<')
		close := strings.IndexByte(segment, '>')
		if open != 0 || close < 0 {
			return nil, errBadRequestFor("Link", "malformed link-value: "+segment)
		}
		link := Link{Target: segment[1:close], Params: make(map[string]string)}

		rest := strings.TrimSpace(segment[close+1:])
		rest = strings.TrimPrefix(rest, ";")
		for _, param := range splitUnquoted(rest, ';') {
			param = strings.TrimSpace(param)
			if param == "" {
				continue
			}
			key, value, ok := strings.Cut(param, "=")
			if !ok {
				return nil, errBadRequestFor("Link", "malformed link-param: "+param)
			}
			key = strings.ToLower(strings.TrimSpace(key))
			value = unquote(strings.TrimSpace(value))
			switch key {
			case "rel":
				link.Rel = value
			case "type":
				link.Type = value
			default:
				link.Params[key] = value
			}
		}
		links = append(links, link)
	}
	return links, nil
}

// splitUnquoted splits s on sep, ignoring any sep byte that falls inside a
// double-quoted string — the one piece of RFC 8288 grammar a plain
// strings.Split gets wrong, since link-params like title="a, b" may embed
// the separator.
func splitUnquoted(s string, sep byte) []string {
	var parts []string
	var buf strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			buf.WriteByte(c)
		case c == sep && !inQuotes:
			parts = append(parts, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	if buf.Len() > 0 {
		parts = append(parts, buf.String())
	}
	return parts
}
