// Package services declares the collaborator interfaces the protocol core
// depends on but does not implement (§6): resource persistence, binary
// storage, RDF I/O, SHACL/shape constraints, agent resolution, and
// access-control evaluation. Reference implementations live under
// internal/store, internal/agent, and internal/accesscontrol; this package
// only defines the contracts the handlers in pkg/ldp/handlers call through.
package services

import (
	"context"
	"io"
	"time"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/negotiation"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
)

// ResourceService is the durable store of record for resource metadata and
// user-managed/server-managed/audit/ACL quads. Every method that can block
// on I/O takes a context so the Echo request's deadline/cancellation
// propagates (mirrors the teacher's `storage.S3Client` DI seam).
type ResourceService interface {
	// Get fetches the current (or, if datetime is non-zero, the memento as
	// of that instant) state of the resource at internalID.
	Get(ctx context.Context, internalID string, datetime time.Time) (*model.Resource, error)

	// Quads streams the resource's quads restricted to the given graph
	// names. An empty graphs list means "user-managed only" (§3).
	Quads(ctx context.Context, internalID string, graphs []string) ([]rdf.Quad, error)

	// Create persists a brand-new resource under internalID as a child of
	// parentID, returning a conflict error if one already exists.
	Create(ctx context.Context, internalID, parentID string, res *model.Resource, quads []rdf.Quad) error

	// Replace overwrites an existing resource's metadata and its full quad
	// set. It does not check invariant I4's sub-class retyping rule; the PUT
	// handler does that before calling it.
	Replace(ctx context.Context, internalID string, res *model.Resource, quads []rdf.Quad) error

	// Delete tombstones a resource (§3 invariant I3). recursive controls
	// whether a non-empty container may be removed along with its members.
	Delete(ctx context.Context, internalID string, recursive bool) error

	// Children lists the direct containment children of a container
	// resource. No handler in pkg/ldp/handlers calls it.
	Children(ctx context.Context, internalID string) ([]string, error)

	// Mementos returns the full version history of a resource (§4.6).
	Mementos(ctx context.Context, internalID string) ([]model.VersionRange, error)
}

// BinaryService stores and serves the bytes of a NonRDFSource, independent
// of the metadata ResourceService tracks about it (§3, §6).
type BinaryService interface {
	// Resolver returns an opaque identifier BinaryService will recognize on
	// a later Get/Delete call; it does not itself write any bytes.
	Resolver(ctx context.Context, internalID string) (string, error)

	Put(ctx context.Context, binaryID string, content io.Reader, size int64, mimeType string) error

	// Get opens the binary for reading, honoring an optional byte range.
	Get(ctx context.Context, binaryID string, rangeStart, rangeEnd int64, hasRange bool) (io.ReadCloser, error)

	Delete(ctx context.Context, binaryID string) error

	// Digest computes a base64-encoded digest of binaryID's content using
	// algorithm, for the Want-Digest response header (§4.7.1 step 4, §6).
	Digest(ctx context.Context, binaryID, algorithm string) (string, error)

	// SupportedAlgorithms lists the digest algorithm names Digest accepts,
	// in preference order.
	SupportedAlgorithms() []string
}

// IOService serializes and parses RDF payloads in the syntaxes the
// negotiation package selects (§4.2, §6). It is the only place in the
// system that understands concrete RDF syntax grammar.
type IOService interface {
	Serialize(w io.Writer, quads []rdf.Quad, syntax negotiation.Syntax, baseURL string) error
	Parse(r io.Reader, syntax negotiation.Syntax, baseURL string) ([]rdf.Quad, error)
}

// ConstraintService validates a proposed set of quads against the shape
// rules attached to a resource's LDP interaction model (§4.7.4), returning
// a non-nil constrainedBy IRI when the payload is rejected.
type ConstraintService interface {
	Validate(ctx context.Context, interactionModel string, quads []rdf.Quad) (constrainedBy string, err error)
}

// AgentService resolves the bearer credential a pre-matching filter
// extracts from a request into a WebID-shaped agent IRI (§4.4, §4.5).
type AgentService interface {
	Resolve(ctx context.Context, credential string) (agentIRI string, err error)
}

// AccessMode is one of the WebAC access modes a request is checked against.
type AccessMode string

const (
	ModeRead    AccessMode = "Read"
	ModeWrite   AccessMode = "Write"
	ModeAppend  AccessMode = "Append"
	ModeControl AccessMode = "Control"
)

// AccessControlService walks the ACL graph inherited by internalID and
// decides whether agentIRI holds mode on it (§4.4).
type AccessControlService interface {
	Authorize(ctx context.Context, internalID, agentIRI string, mode AccessMode) (bool, error)
}
