package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/services"
)

type fakeAgents struct {
	resolved map[string]string
	err      error
}

func (f *fakeAgents) Resolve(ctx context.Context, credential string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.resolved[credential], nil
}

type fakeACL struct {
	allowed map[string]bool
	err     error
}

func (f *fakeACL) Authorize(ctx context.Context, internalID, agentIRI string, mode services.AccessMode) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[agentIRI+"|"+string(mode)], nil
}

func TestMethodAccessModeMapping(t *testing.T) {
	assert.Equal(t, services.ModeRead, MethodAccessMode(http.MethodGet))
	assert.Equal(t, services.ModeRead, MethodAccessMode(http.MethodHead))
	assert.Equal(t, services.ModeRead, MethodAccessMode(http.MethodOptions))
	assert.Equal(t, services.ModeAppend, MethodAccessMode(http.MethodPost))
	assert.Equal(t, services.ModeWrite, MethodAccessMode(http.MethodPut))
	assert.Equal(t, services.ModeWrite, MethodAccessMode(http.MethodDelete))
	assert.Equal(t, services.ModeWrite, MethodAccessMode(http.MethodPatch))
}

func TestResolveEmptyCredentialIsAnonymous(t *testing.T) {
	a := &Authorizer{Agents: &fakeAgents{}, ACL: &fakeACL{}}
	sess, err := a.Resolve(context.Background(), "", time.Unix(1000, 0))
	require.NoError(t, err)
	assert.True(t, sess.IsAnonymous())
}

func TestResolveCredentialMapsToAgent(t *testing.T) {
	a := &Authorizer{Agents: &fakeAgents{resolved: map[string]string{"tok": "https://example.org/alice"}}}
	sess, err := a.Resolve(context.Background(), "tok", time.Unix(1000, 0))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/alice", sess.Agent)
}

func TestAuthorizeAdminAlwaysAllowed(t *testing.T) {
	a := &Authorizer{ACL: &fakeACL{}}
	sess := model.Session{Agent: model.AdminAgent}
	assert.NoError(t, a.Authorize(context.Background(), "trellis:repo/a", sess, http.MethodDelete))
}

func TestAuthorizeGrantedAllowsRequest(t *testing.T) {
	acl := &fakeACL{allowed: map[string]bool{"https://example.org/alice|Write": true}}
	a := &Authorizer{ACL: acl}
	sess := model.Session{Agent: "https://example.org/alice"}
	assert.NoError(t, a.Authorize(context.Background(), "trellis:repo/a", sess, http.MethodPut))
}

func TestAuthorizeAnonymousDeniedIsUnauthorized(t *testing.T) {
	a := &Authorizer{ACL: &fakeACL{}}
	sess := model.NewAnonymousSession(time.Unix(1000, 0))
	err := a.Authorize(context.Background(), "trellis:repo/a", sess, http.MethodGet)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierror.As(err).Status)
}

func TestAuthorizeIdentifiedDeniedIsForbidden(t *testing.T) {
	a := &Authorizer{ACL: &fakeACL{}}
	sess := model.Session{Agent: "https://example.org/bob"}
	err := a.Authorize(context.Background(), "trellis:repo/a", sess, http.MethodGet)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apierror.As(err).Status)
}
