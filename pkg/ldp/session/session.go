// Package session implements §4.4: resolving the authenticated agent for a
// request and mapping its HTTP method to the WebAC access mode that method
// requires, then checking that mode against the AccessControlService.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/services"
)

// MethodAccessMode maps an HTTP method to the WebAC access mode it
// requires (§4.4). OPTIONS and HEAD require only Read, matching GET.
func MethodAccessMode(method string) services.AccessMode {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return services.ModeRead
	case http.MethodPost:
		return services.ModeAppend
	case http.MethodPut, http.MethodDelete:
		return services.ModeWrite
	case http.MethodPatch:
		return services.ModeWrite
	default:
		return services.ModeWrite
	}
}

// Authorizer ties an AgentService and AccessControlService together into
// the single check a pre-matching filter needs to run per request.
type Authorizer struct {
	Agents services.AgentService
	ACL    services.AccessControlService
}

// Resolve extracts the session for a request, falling back to the
// anonymous agent when credential is empty (§3, §4.4).
func (a *Authorizer) Resolve(ctx context.Context, credential string, now time.Time) (model.Session, error) {
	if credential == "" {
		return model.NewAnonymousSession(now), nil
	}
	agentIRI, err := a.Agents.Resolve(ctx, credential)
	if err != nil {
		return model.Session{}, apierror.Unauthorized("could not resolve credential: %v", err)
	}
	return model.Session{Agent: agentIRI, CreatedAt: now}, nil
}

// Authorize checks sess against internalID for the access mode required by
// method, returning a classified apierror on denial: Unauthorized for an
// anonymous session, Forbidden for an identified-but-disallowed one,
// matching the distinction most WebAC implementations make so a client can
// tell "log in" apart from "you're logged in as the wrong person" (§4.4).
func (a *Authorizer) Authorize(ctx context.Context, internalID string, sess model.Session, method string) error {
	if sess.IsAdmin() {
		return nil
	}
	mode := MethodAccessMode(method)
	allowed, err := a.ACL.Authorize(ctx, internalID, sess.Agent, mode)
	if err != nil {
		return apierror.Internal(err, "access control evaluation failed")
	}
	if allowed {
		return nil
	}
	if sess.IsAnonymous() {
		return apierror.Unauthorized("anonymous access denied for %s on %s", mode, internalID)
	}
	return apierror.Forbidden("%s denied for %s on %s", sess.Agent, mode, internalID)
}
