package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
)

func TestCreateThenGetRoundTrips(t *testing.T) {
	s := New()
	ctx := context.Background()
	res := &model.Resource{Identifier: "trellis:repo/a", InteractionModel: model.LDPRDFSource, Modified: time.Unix(1000, 0)}

	require.NoError(t, s.Create(ctx, "trellis:repo/a", "trellis:repo", res, nil))

	got, err := s.Get(ctx, "trellis:repo/a", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "trellis:repo/a", got.Identifier)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	res := &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(1000, 0)}
	require.NoError(t, s.Create(ctx, "trellis:repo/a", "", res, nil))

	err := s.Create(ctx, "trellis:repo/a", "", res, nil)
	require.Error(t, err)
	assert.Equal(t, 409, apierror.As(err).Status)
}

func TestGetMissingIsNotFound(t *testing.T) {
	_, err := New().Get(context.Background(), "trellis:repo/missing", time.Time{})
	require.Error(t, err)
	assert.Equal(t, 404, apierror.As(err).Status)
}

func TestGetAtDatetimeReturnsMementoBeforeOrAt(t *testing.T) {
	s := New()
	ctx := context.Background()
	t0 := time.Unix(1000, 0)
	t1 := time.Unix(2000, 0)

	res := &model.Resource{Identifier: "trellis:repo/a", Modified: t0}
	require.NoError(t, s.Create(ctx, "trellis:repo/a", "", res, nil))

	res2 := &model.Resource{Identifier: "trellis:repo/a", Modified: t1, Types: []string{"updated"}}
	require.NoError(t, s.Replace(ctx, "trellis:repo/a", res2, nil))

	got, err := s.Get(ctx, "trellis:repo/a", t0.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.Empty(t, got.Types, "should return the memento as of t0, before the replace at t1")

	got2, err := s.Get(ctx, "trellis:repo/a", t1.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, []string{"updated"}, got2.Types)
}

func TestGetAtDatetimeBeforeFirstVersionIsNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	res := &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(2000, 0)}
	require.NoError(t, s.Create(ctx, "trellis:repo/a", "", res, nil))

	_, err := s.Get(ctx, "trellis:repo/a", time.Unix(1000, 0))
	require.Error(t, err)
	assert.Equal(t, 404, apierror.As(err).Status)
}

func TestQuadsGroupedByGraph(t *testing.T) {
	s := New()
	ctx := context.Background()
	res := &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(1000, 0)}
	quads := []rdf.Quad{
		{Subject: rdf.NewIRI("trellis:repo/a"), Predicate: rdf.NewIRI("p"), Object: rdf.NewLiteral("v", ""), Graph: rdf.NewIRI(model.PreferUserManaged)},
		{Subject: rdf.NewIRI("trellis:repo/a"), Predicate: rdf.NewIRI("q"), Object: rdf.NewLiteral("w", ""), Graph: rdf.NewIRI(model.PreferAccessControl)},
	}
	require.NoError(t, s.Create(ctx, "trellis:repo/a", "", res, quads))

	got, err := s.Quads(ctx, "trellis:repo/a", []string{model.PreferUserManaged})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v", got[0].Object.Value)

	res2, err := s.Get(ctx, "trellis:repo/a", time.Time{})
	require.NoError(t, err)
	assert.True(t, res2.HasACL, "creating with an access-control quad should set HasACL")
}

func TestDeleteMarksTombstone(t *testing.T) {
	s := New()
	ctx := context.Background()
	res := &model.Resource{Identifier: "trellis:repo/a", Modified: time.Unix(1000, 0)}
	require.NoError(t, s.Create(ctx, "trellis:repo/a", "", res, nil))

	require.NoError(t, s.Delete(ctx, "trellis:repo/a", false))

	got, err := s.Get(ctx, "trellis:repo/a", time.Time{})
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
}

func TestDeleteRecursiveRemovesChildren(t *testing.T) {
	s := New()
	ctx := context.Background()
	parent := &model.Resource{Identifier: "trellis:repo/p", Modified: time.Unix(1000, 0)}
	child := &model.Resource{Identifier: "trellis:repo/p/c", Modified: time.Unix(1000, 0)}
	require.NoError(t, s.Create(ctx, "trellis:repo/p", "", parent, nil))
	require.NoError(t, s.Create(ctx, "trellis:repo/p/c", "trellis:repo/p", child, nil))

	require.NoError(t, s.Delete(ctx, "trellis:repo/p", true))

	_, err := s.Get(ctx, "trellis:repo/p/c", time.Time{})
	require.Error(t, err)
}

func TestChildrenSortedOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	parent := &model.Resource{Identifier: "trellis:repo/p", Modified: time.Unix(1000, 0)}
	require.NoError(t, s.Create(ctx, "trellis:repo/p", "", parent, nil))

	for _, id := range []string{"trellis:repo/p/z", "trellis:repo/p/a", "trellis:repo/p/m"} {
		require.NoError(t, s.Create(ctx, id, "trellis:repo/p", &model.Resource{Identifier: id, Modified: time.Unix(1000, 0)}, nil))
	}

	children, err := s.Children(ctx, "trellis:repo/p")
	require.NoError(t, err)
	assert.Equal(t, []string{"trellis:repo/p/a", "trellis:repo/p/m", "trellis:repo/p/z"}, children)
}

func TestMementosBuildsHalfOpenIntervals(t *testing.T) {
	s := New()
	ctx := context.Background()
	t0 := time.Unix(1000, 0)
	t1 := time.Unix(2000, 0)
	res := &model.Resource{Identifier: "trellis:repo/a", Modified: t0}
	require.NoError(t, s.Create(ctx, "trellis:repo/a", "", res, nil))
	require.NoError(t, s.Replace(ctx, "trellis:repo/a", &model.Resource{Identifier: "trellis:repo/a", Modified: t1}, nil))

	versions, err := s.Mementos(ctx, "trellis:repo/a")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, t0, versions[0].From)
	assert.Equal(t, t1, versions[0].Until)
	assert.Equal(t, t1, versions[1].From)
}
