package agent

import (
	"context"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
)

func TestResolveAnonymousOnEmptyCredential(t *testing.T) {
	r := &Resolver{localSecret: []byte("secret")}
	agentIRI, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, model.AnonymousAgent, agentIRI)
}

func TestResolveLocalToken(t *testing.T) {
	secret := []byte("top-secret")
	token, err := jwt.NewBuilder().
		Subject("https://example.org/people/alice").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Issuer("ldpcore").
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
	require.NoError(t, err)

	r := &Resolver{localSecret: secret, localIssuer: "ldpcore"}
	agentIRI, err := r.Resolve(context.Background(), string(signed))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/people/alice", agentIRI)
}

func TestResolveBareSubjectGetsWrapped(t *testing.T) {
	secret := []byte("top-secret")
	token, err := jwt.NewBuilder().Subject("alice").Issuer("ldpcore").Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
	require.NoError(t, err)

	r := &Resolver{localSecret: secret, localIssuer: "ldpcore"}
	agentIRI, err := r.Resolve(context.Background(), string(signed))
	require.NoError(t, err)
	assert.Equal(t, "urn:trellis:agent:alice", agentIRI)
}

func TestResolveInvalidTokenFallsBackToAnonymous(t *testing.T) {
	r := &Resolver{localSecret: []byte("top-secret")}
	agentIRI, err := r.Resolve(context.Background(), "not-a-jwt")
	require.NoError(t, err)
	assert.Equal(t, model.AnonymousAgent, agentIRI)
}
