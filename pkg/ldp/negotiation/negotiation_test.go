package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiateEmptyAcceptReturnsDefault(t *testing.T) {
	syntax, profile, err := Negotiate("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSyntax, syntax)
	assert.Empty(t, profile)
}

func TestNegotiateWildcardReturnsDefault(t *testing.T) {
	syntax, _, err := Negotiate("*/*")
	require.NoError(t, err)
	assert.Equal(t, DefaultSyntax, syntax)
}

func TestNegotiateExactMatch(t *testing.T) {
	syntax, _, err := Negotiate("application/ld+json")
	require.NoError(t, err)
	assert.Equal(t, SyntaxJSONLD, syntax)
}

func TestNegotiatePicksHighestQValue(t *testing.T) {
	syntax, _, err := Negotiate("application/n-triples;q=0.3, application/ld+json;q=0.9, text/turtle;q=0.5")
	require.NoError(t, err)
	assert.Equal(t, SyntaxJSONLD, syntax)
}

func TestNegotiateTieBreaksOnHeaderOrder(t *testing.T) {
	syntax, _, err := Negotiate("application/n-triples;q=0.8, application/ld+json;q=0.8")
	require.NoError(t, err)
	assert.Equal(t, SyntaxNTriples, syntax, "equal q-values keep header order, not alphabetical or declaration order")
}

func TestNegotiateSkipsZeroQValue(t *testing.T) {
	syntax, _, err := Negotiate("text/turtle;q=0, application/ld+json;q=1.0")
	require.NoError(t, err)
	assert.Equal(t, SyntaxJSONLD, syntax)
}

func TestNegotiateExtractsProfile(t *testing.T) {
	_, profile, err := Negotiate(`text/turtle;profile="http://example.org/shape"`)
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/shape", profile)
}

func TestNegotiateUnsupportedSyntaxReturnsNotAcceptable(t *testing.T) {
	_, _, err := Negotiate("application/xml")
	require.Error(t, err)
}

func TestNegotiateInvalidQValueIsBadRequest(t *testing.T) {
	_, _, err := Negotiate("text/turtle;q=2.5")
	require.Error(t, err)
}

func TestNegotiateTypeWildcardFallsBackToDefault(t *testing.T) {
	syntax, _, err := Negotiate("application/pdf;q=0.9, */*;q=0.1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSyntax, syntax)
}
