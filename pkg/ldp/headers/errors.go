package headers

import "fmt"

// ParseError marks a header grammar failure. Handlers and the pre-matching
// filter chain (§4.5) translate it to a 400 Bad Request, except for
// ParseVersion which carries its own 404 classification.
type ParseError struct {
	Header  string
	Message string
	NotFound bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Header, e.Message)
}

// IsNotFound reports whether this parse error should surface as 404 rather
// than 400 — used only by the Version header grammar (§4.1, §4.7).
func (e *ParseError) IsNotFound() bool { return e != nil && e.NotFound }

func errBadRequest(msg string) error {
	return &ParseError{Header: "", Message: msg}
}

func errBadRequestFor(header, msg string) error {
	return &ParseError{Header: header, Message: msg}
}

func errNotFoundFor(header, msg string) error {
	return &ParseError{Header: header, Message: msg, NotFound: true}
}
