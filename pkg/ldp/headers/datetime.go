package headers

import (
	"strconv"
	"time"
)

// httpDateLayout is RFC 7231's IMF-fixdate, the only form Accept-Datetime
// and Memento-Datetime are required to produce or accept.
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// ParseAcceptDatetime parses a Memento (RFC 7089) Accept-Datetime header.
func ParseAcceptDatetime(raw string) (time.Time, error) {
	t, err := time.Parse(httpDateLayout, raw)
	if err != nil {
		return time.Time{}, errBadRequestFor("Accept-Datetime", "expected an IMF-fixdate: "+raw)
	}
	return t.UTC(), nil
}

// FormatHTTPDate renders t in IMF-fixdate form for Memento-Datetime and
// Last-Modified response headers.
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(httpDateLayout)
}

// ParseVersion parses the `version` query parameter used to request a
// specific memento directly, an epoch-millisecond integer (§4.6, §6).
// Unlike every other grammar in this package, a malformed version string
// is classified 404 rather than 400: the spec treats an ill-formed or
// unresolvable version as "no such memento" rather than a malformed
// request, since the version string is functioning as part of the
// resource's address, not a request modifier.
func ParseVersion(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, errNotFoundFor("version", "no such memento datetime: "+raw)
	}
	return time.UnixMilli(ms).UTC(), nil
}
