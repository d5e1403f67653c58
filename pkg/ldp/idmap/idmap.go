// Package idmap implements the bijection between external request URLs and
// the internal `trellis:<partition>/<path>` identifiers the core reasons
// about (§4.3), plus blank-node skolemization for RDF payloads that must
// round-trip through storage without losing node identity.
package idmap

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const internalScheme = "trellis:"

// Mapper converts between a server's external base URL and the internal
// identifier space. It holds no mutable state, so a single instance is
// shared across requests (the teacher's `config.ServerConfig` is the same
// shape: loaded once, read many times).
type Mapper struct {
	BaseURL string // normalized: no trailing slash
}

// New builds a Mapper, trimming any trailing slash from baseURL so callers
// never have to special-case double slashes (see DESIGN.md "baseUrl
// trailing slash").
func New(baseURL string) *Mapper {
	return &Mapper{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ToInternal maps an external request path (e.g. "/repository/path/to/res")
// to its internal identifier ("trellis:repository/path/to/res").
func (m *Mapper) ToInternal(requestPath string) string {
	trimmed := strings.Trim(requestPath, "/")
	return internalScheme + trimmed
}

// ToExternal maps an internal identifier back to a fully-qualified external
// URL under the mapper's base URL.
func (m *Mapper) ToExternal(internalID string) string {
	rel := strings.TrimPrefix(internalID, internalScheme)
	if rel == "" {
		return m.BaseURL + "/"
	}
	return m.BaseURL + "/" + rel
}

// Partition extracts the leading path segment (the storage partition) from
// an internal identifier.
func Partition(internalID string) string {
	rel := strings.TrimPrefix(internalID, internalScheme)
	if idx := strings.IndexByte(rel, '/'); idx >= 0 {
		return rel[:idx]
	}
	return rel
}

// SkolemPrefix is the well-known namespace under which anonymous blank
// nodes are minted a stable IRI so they survive a write/read round trip
// through a collaborator's storage layer (§4.3).
const SkolemPrefix = "trellis:bnode/"

// Skolemize replaces a blank node label with a fresh, stable IRI. The label
// itself isn't reused as part of the IRI since blank node labels are only
// unique within a single serialized document, not globally.
func Skolemize() string {
	return fmt.Sprintf("%s%s", SkolemPrefix, uuid.NewString())
}

// IsSkolemIRI reports whether iri was minted by Skolemize, so a response
// serializer can turn it back into a blank node before sending it to a
// client that never asked for server-assigned identifiers.
func IsSkolemIRI(iri string) bool {
	return strings.HasPrefix(iri, SkolemPrefix)
}

// Unskolemize recovers a presentation-friendly blank node label from a
// skolem IRI, for response serialization paths that prefer `_:b0`-style
// output over leaking the internal skolem namespace.
func Unskolemize(iri string) string {
	return strings.TrimPrefix(iri, SkolemPrefix)
}
