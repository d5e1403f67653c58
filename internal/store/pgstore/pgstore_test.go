package pgstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
)

func TestResourceRowRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	res := &model.Resource{
		Identifier:       "trellis:repo/a",
		InteractionModel: model.LDPBasicContainer,
		Modified:         now,
		Types:            []string{model.LDPResource, model.LDPRDFSource, model.LDPContainer, model.LDPBasicContainer},
		HasACL:           true,
	}

	row, err := resourceToRow("trellis:repo/a", "trellis:repo", res)
	require.NoError(t, err)
	assert.Equal(t, "trellis:repo/a", row.InternalID)
	assert.Equal(t, "trellis:repo", row.ParentID)
	assert.True(t, row.HasACL)

	back := rowToResource(row)
	assert.Equal(t, res.InteractionModel, back.InteractionModel)
	assert.Equal(t, res.Types, back.Types)
	assert.True(t, back.HasACL)
	assert.Nil(t, back.Binary)
}

func TestResourceRowWithBinary(t *testing.T) {
	res := &model.Resource{
		Identifier:       "trellis:repo/bin",
		InteractionModel: model.LDPNonRDFSource,
		Modified:         time.Now(),
		Binary:           &model.Binary{Identifier: "s3key", MimeType: "image/png", Size: 42},
	}
	row, err := resourceToRow("trellis:repo/bin", "", res)
	require.NoError(t, err)
	assert.Equal(t, "s3key", row.BinaryID)

	back := rowToResource(row)
	require.NotNil(t, back.Binary)
	assert.Equal(t, int64(42), back.Binary.Size)
	assert.Equal(t, "image/png", back.Binary.MimeType)
}

func TestAppendType(t *testing.T) {
	out, err := appendType(`["a","b"]`, "c")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, out)

	out, err = appendType("", model.DeletedResourceType)
	require.NoError(t, err)
	assert.JSONEq(t, `["`+model.DeletedResourceType+`"]`, out)
}

func TestQuadRowRoundTrip(t *testing.T) {
	q := rdf.Quad{
		Subject:   rdf.NewIRI("trellis:repo/a"),
		Predicate: rdf.NewIRI("http://purl.org/dc/terms/title"),
		Object:    rdf.NewLiteral("hello", ""),
		Graph:     rdf.NewIRI(model.PreferUserManaged),
	}
	row := quadToQuadRow("trellis:repo/a", q, time.Time{})
	assert.Equal(t, "trellis:repo/a", row.InternalID)
	assert.Equal(t, model.PreferUserManaged, row.GraphIRI)

	back := quadRowToQuad(row)
	assert.Equal(t, q.Subject.Value, back.Subject.Value)
	assert.Equal(t, q.Object.Value, back.Object.Value)
	assert.Equal(t, q.Graph.Value, back.Graph.Value)
}
