package model

// Well-known named-graph IRIs a Resource exposes streams over (§3).
const (
	PreferUserManaged    = "http://www.trellisldp.org/ns/trellis#PreferUserManaged"
	PreferServerManaged  = "http://www.trellisldp.org/ns/trellis#PreferServerManaged"
	PreferAudit          = "http://www.trellisldp.org/ns/trellis#PreferAudit"
	PreferAccessControl  = "http://www.w3.org/ns/ldp#PreferAccessControl"
	PreferContainment    = "http://www.w3.org/ns/ldp#PreferContainment"
	PreferMembership     = "http://www.w3.org/ns/ldp#PreferMembership"
)

// LDP type IRIs.
const (
	LDPResource         = "http://www.w3.org/ns/ldp#Resource"
	LDPRDFSource        = "http://www.w3.org/ns/ldp#RDFSource"
	LDPNonRDFSource     = "http://www.w3.org/ns/ldp#NonRDFSource"
	LDPContainer        = "http://www.w3.org/ns/ldp#Container"
	LDPBasicContainer   = "http://www.w3.org/ns/ldp#BasicContainer"
	LDPDirectContainer  = "http://www.w3.org/ns/ldp#DirectContainer"
	LDPIndirectContainer = "http://www.w3.org/ns/ldp#IndirectContainer"
)

// DeletedResourceType marks a tombstone (§3 invariant I3).
const DeletedResourceType = "http://www.trellisldp.org/ns/trellis#DeletedResource"

// UnsupportedRecursiveDelete is the constrainedBy target for a non-empty
// container DELETE rejection (§4.7.6).
const UnsupportedRecursiveDelete = "http://www.trellisldp.org/ns/trellis#UnsupportedRecursiveDelete"

// ldpSubClassChain lists, from most general to most specific, the LDP
// interaction-model sub-class relationships used by I4/P9: a resource may
// only be retyped to a model reachable by walking this chain from its
// current type.
var ldpSubClassChain = map[string][]string{
	LDPResource:          {LDPResource},
	LDPRDFSource:         {LDPResource, LDPRDFSource},
	LDPNonRDFSource:      {LDPResource, LDPNonRDFSource},
	LDPContainer:         {LDPResource, LDPRDFSource, LDPContainer},
	LDPBasicContainer:    {LDPResource, LDPRDFSource, LDPContainer, LDPBasicContainer},
	LDPDirectContainer:   {LDPResource, LDPRDFSource, LDPContainer, LDPDirectContainer},
	LDPIndirectContainer: {LDPResource, LDPRDFSource, LDPContainer, LDPIndirectContainer},
}

// LdpResourceTypes returns the sub-class chain (most general first) for a
// given LDP interaction model, used both to build `Link; rel="type"`
// response headers (§4.7.1) and to validate retyping on PUT (§4.7.4, I4).
func LdpResourceTypes(interactionModel string) []string {
	if chain, ok := ldpSubClassChain[interactionModel]; ok {
		out := make([]string, len(chain))
		copy(out, chain)
		return out
	}
	return []string{LDPResource}
}

// IsSubClassCompatible reports whether retyping a resource from oldModel to
// newModel is permitted by invariant I4: the two interaction models must
// sit on the same branch of the sub-class chain, one a prefix of the other
// (RDFSource -> BasicContainer is fine, and so is the narrowing
// BasicContainer -> RDFSource, but NonRDFSource -> BasicContainer is not,
// since they diverge immediately below Resource).
func IsSubClassCompatible(oldModel, newModel string) bool {
	if oldModel == "" || oldModel == newModel {
		return true
	}
	oldChain := LdpResourceTypes(oldModel)
	newChain := LdpResourceTypes(newModel)
	n := len(oldChain)
	if len(newChain) < n {
		n = len(newChain)
	}
	for i := 0; i < n; i++ {
		if oldChain[i] != newChain[i] {
			return false
		}
	}
	return true
}

// IsContainer reports whether the interaction model is one of the LDP
// container types.
func IsContainer(interactionModel string) bool {
	switch interactionModel {
	case LDPContainer, LDPBasicContainer, LDPDirectContainer, LDPIndirectContainer:
		return true
	default:
		return false
	}
}
