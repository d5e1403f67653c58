// Package accesscontrol is the reference services.AccessControlService,
// walking the WebAC `acl:` graph stored in a resource's PreferAccessControl
// named graph, with inheritance up the containment hierarchy the way
// auth/auth.go's role-resolution walks a user's group memberships to find
// an applicable permission.
package accesscontrol

import (
	"context"
	"strings"
	"time"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/services"
)

// WebAC predicate and class IRIs (http://www.w3.org/ns/auth/acl#).
const (
	aclAccessTo   = "http://www.w3.org/ns/auth/acl#accessTo"
	aclDefault    = "http://www.w3.org/ns/auth/acl#default"
	aclAgent      = "http://www.w3.org/ns/auth/acl#agent"
	aclAgentClass = "http://www.w3.org/ns/auth/acl#agentClass"
	aclMode       = "http://www.w3.org/ns/auth/acl#mode"

	aclRead    = "http://www.w3.org/ns/auth/acl#Read"
	aclWrite   = "http://www.w3.org/ns/auth/acl#Write"
	aclAppend  = "http://www.w3.org/ns/auth/acl#Append"
	aclControl = "http://www.w3.org/ns/auth/acl#Control"

	foafAgent = "http://xmlns.com/foaf/0.1/Agent" // agentClass matching any agent, including anonymous
)

var modeIRIs = map[services.AccessMode]string{
	services.ModeRead:    aclRead,
	services.ModeWrite:   aclWrite,
	services.ModeAppend:  aclAppend,
	services.ModeControl: aclControl,
}

// Service is the WebAC services.AccessControlService implementation.
type Service struct {
	Resources services.ResourceService
}

// New builds a Service over the ResourceService whose PreferAccessControl
// graph holds authorization rules.
func New(resources services.ResourceService) *Service {
	return &Service{Resources: resources}
}

// Authorize walks internalID and its ancestors, nearest first, for the
// first resource carrying an ACL, and reports whether agentIRI holds mode
// there — either directly via `acl:accessTo`, or by inheritance via
// `acl:default` on an ancestor (§4.4).
func (s *Service) Authorize(ctx context.Context, internalID, agentIRI string, mode services.AccessMode) (bool, error) {
	modeIRI, ok := modeIRIs[mode]
	if !ok {
		return false, nil
	}

	target := internalID
	for depth := 0; ; depth++ {
		res, err := s.Resources.Get(ctx, target, time.Time{})
		if err == nil && res.HasACL {
			quads, err := s.Resources.Quads(ctx, target, []string{model.PreferAccessControl})
			if err != nil {
				return false, err
			}
			return authorizationsGrant(quads, agentIRI, modeIRI, target == internalID), nil
		}
		parent := parentOf(target)
		if parent == "" || parent == target {
			return false, nil
		}
		target = parent
	}
}

// authorizationsGrant reports whether any acl:Authorization in quads grants
// modeIRI to agentIRI. When isSubject is false (the ACL belongs to an
// ancestor, not internalID itself), only authorizations marked acl:default
// apply, mirroring WebAC's inheritance rule.
func authorizationsGrant(quads []rdf.Quad, agentIRI, modeIRI string, isSubject bool) bool {
	auths := groupBySubject(quads)
	for _, auth := range auths {
		if !isSubject && !auth.isDefault {
			continue
		}
		if !auth.modes[modeIRI] {
			continue
		}
		if auth.agents[agentIRI] {
			return true
		}
		if auth.agentClasses[foafAgent] {
			return true
		}
	}
	return false
}

type authorization struct {
	isDefault    bool
	modes        map[string]bool
	agents       map[string]bool
	agentClasses map[string]bool
}

// groupBySubject collects every acl:Authorization blank node's predicates
// into one authorization struct, keyed by the node's term value.
func groupBySubject(quads []rdf.Quad) map[string]*authorization {
	out := make(map[string]*authorization)
	get := func(subj rdf.Term) *authorization {
		key := subj.Value
		a, ok := out[key]
		if !ok {
			a = &authorization{modes: map[string]bool{}, agents: map[string]bool{}, agentClasses: map[string]bool{}}
			out[key] = a
		}
		return a
	}
	for _, q := range quads {
		a := get(q.Subject)
		switch q.Predicate.Value {
		case aclMode:
			a.modes[q.Object.Value] = true
		case aclAgent:
			a.agents[q.Object.Value] = true
		case aclAgentClass:
			a.agentClasses[q.Object.Value] = true
		case aclDefault:
			a.isDefault = true
		}
	}
	return out
}

func parentOf(internalID string) string {
	idx := strings.LastIndexByte(internalID, '/')
	if idx < 0 {
		return ""
	}
	return internalID[:idx]
}
