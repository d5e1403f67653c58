package model

import "time"

// VersionRange is a half-open memento interval (§3): `from` is the instant
// the memento was captured, `until` is the instant it stopped being current
// (the `from` of the next memento, or "now" for the most recent one).
type VersionRange struct {
	From  time.Time
	Until time.Time
}

// Binary describes the non-RDF payload of a NonRDFSource (§3).
type Binary struct {
	Identifier string // internal binary identifier understood by BinaryService
	MimeType   string
	Size       int64
	Modified   time.Time
}

// Resource is the logical LDP resource identified by an internal IRI of the
// form `trellis:<partition>/<path>` (§3, invariant I1). The core never holds
// a resource's quads in memory beyond what a single request needs; quad
// access goes through the ResourceService/IOService collaborators.
type Resource struct {
	Identifier        string
	InteractionModel  string
	Modified          time.Time
	Types             []string
	Inbox             string
	AnnotationService string
	Mementos          []VersionRange
	Binary            *Binary
	HasACL            bool // set by the ResourceService when the PreferAccessControl graph is non-empty
}

// IsDeleted reports whether the resource is a tombstone (invariant I3).
func (r *Resource) IsDeleted() bool {
	if r == nil {
		return false
	}
	for _, t := range r.Types {
		if t == DeletedResourceType {
			return true
		}
	}
	return false
}

// VersionedResource pairs a Resource with IsMemento, which reports whether
// the view represents a historical memento rather than the current
// representation of its identifier, and the memento's datetime. Nothing in
// this repository constructs one; the handlers infer memento-ness from
// whether the request carried a version parameter.
type VersionedResource struct {
	Resource
	IsMemento    bool
	MementoDatetime time.Time
}

// Session is the per-request authenticated/anonymous principal (§3).
type Session struct {
	Agent     string
	CreatedAt time.Time
}

const (
	AnonymousAgent = "http://www.trellisldp.org/ns/trellis#AnonymousUser"
	AdminAgent     = "http://www.trellisldp.org/ns/trellis#RepositoryAdministrator"
)

// IsAnonymous reports whether the session belongs to the anonymous agent.
func (s Session) IsAnonymous() bool { return s.Agent == "" || s.Agent == AnonymousAgent }

// IsAdmin reports whether the session is the repository administrator.
func (s Session) IsAdmin() bool { return s.Agent == AdminAgent }

// NewAnonymousSession builds the default unauthenticated session.
func NewAnonymousSession(now time.Time) Session {
	return Session{Agent: AnonymousAgent, CreatedAt: now}
}
