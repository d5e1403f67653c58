package accesscontrol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/internal/store/memstore"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/services"
)

func authQuads(authSubject, agent string, defaultForChildren bool, modes ...string) []rdf.Quad {
	subj := rdf.NewBlankNode(authSubject)
	var quads []rdf.Quad
	for _, m := range modes {
		quads = append(quads, rdf.Quad{Subject: subj, Predicate: rdf.NewIRI(aclMode), Object: rdf.NewIRI(m), Graph: rdf.NewIRI(model.PreferAccessControl)})
	}
	quads = append(quads, rdf.Quad{Subject: subj, Predicate: rdf.NewIRI(aclAgent), Object: rdf.NewIRI(agent), Graph: rdf.NewIRI(model.PreferAccessControl)})
	if defaultForChildren {
		quads = append(quads, rdf.Quad{Subject: subj, Predicate: rdf.NewIRI(aclDefault), Object: rdf.NewLiteral("true", ""), Graph: rdf.NewIRI(model.PreferAccessControl)})
	}
	return quads
}

func agentClassQuads(authSubject, class string, modes ...string) []rdf.Quad {
	subj := rdf.NewBlankNode(authSubject)
	var quads []rdf.Quad
	for _, m := range modes {
		quads = append(quads, rdf.Quad{Subject: subj, Predicate: rdf.NewIRI(aclMode), Object: rdf.NewIRI(m), Graph: rdf.NewIRI(model.PreferAccessControl)})
	}
	quads = append(quads, rdf.Quad{Subject: subj, Predicate: rdf.NewIRI(aclAgentClass), Object: rdf.NewIRI(class), Graph: rdf.NewIRI(model.PreferAccessControl)})
	return quads
}

func TestAuthorizeDirectGrant(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	quads := authQuads("auth1", "https://example.org/alice", false, aclRead, aclWrite)
	require.NoError(t, store.Create(ctx, "trellis:repo/a", "", &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(1000, 0)}, quads))

	svc := New(store)
	ok, err := svc.Authorize(ctx, "trellis:repo/a", "https://example.org/alice", services.ModeRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Authorize(ctx, "trellis:repo/a", "https://example.org/bob", services.ModeRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizeModeNotGranted(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	quads := authQuads("auth1", "https://example.org/alice", false, aclRead)
	require.NoError(t, store.Create(ctx, "trellis:repo/a", "", &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(1000, 0)}, quads))

	svc := New(store)
	ok, err := svc.Authorize(ctx, "trellis:repo/a", "https://example.org/alice", services.ModeWrite)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizeInheritsDefaultFromAncestor(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	parentQuads := authQuads("auth1", "https://example.org/alice", true, aclWrite)
	require.NoError(t, store.Create(ctx, "trellis:repo/p", "", &model.Resource{Identifier: "trellis:repo/p", Modified: time.Unix(1000, 0)}, parentQuads))
	require.NoError(t, store.Create(ctx, "trellis:repo/p/child", "trellis:repo/p", &model.Resource{Identifier: "trellis:repo/p/child", Modified: time.Unix(1000, 0)}, nil))

	svc := New(store)
	ok, err := svc.Authorize(ctx, "trellis:repo/p/child", "https://example.org/alice", services.ModeWrite)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizeNonDefaultAncestorGrantDoesNotInherit(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	parentQuads := authQuads("auth1", "https://example.org/alice", false, aclWrite)
	require.NoError(t, store.Create(ctx, "trellis:repo/p", "", &model.Resource{Identifier: "trellis:repo/p", Modified: time.Unix(1000, 0)}, parentQuads))
	require.NoError(t, store.Create(ctx, "trellis:repo/p/child", "trellis:repo/p", &model.Resource{Identifier: "trellis:repo/p/child", Modified: time.Unix(1000, 0)}, nil))

	svc := New(store)
	ok, err := svc.Authorize(ctx, "trellis:repo/p/child", "https://example.org/alice", services.ModeWrite)
	require.NoError(t, err)
	assert.False(t, ok, "an authorization without acl:default should not apply to children")
}

func TestAuthorizeAgentClassFoafAgentMatchesAnyone(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	quads := agentClassQuads("auth1", foafAgent, aclRead)
	require.NoError(t, store.Create(ctx, "trellis:repo/a", "", &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(1000, 0)}, quads))

	svc := New(store)
	ok, err := svc.Authorize(ctx, "trellis:repo/a", model.AnonymousAgent, services.ModeRead)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizeNoACLAnywhereDenies(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "trellis:repo/a", "", &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(1000, 0)}, nil))

	svc := New(store)
	ok, err := svc.Authorize(ctx, "trellis:repo/a", "https://example.org/alice", services.ModeRead)
	require.NoError(t, err)
	assert.False(t, ok)
}
