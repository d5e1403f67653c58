package idmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInternalTrimsSlashesAndAddsScheme(t *testing.T) {
	m := New("http://example.org/repo")
	assert.Equal(t, "trellis:repo/path/to/res", m.ToInternal("/repo/path/to/res"))
	assert.Equal(t, "trellis:repo/path/to/res", m.ToInternal("repo/path/to/res/"))
}

func TestToExternalRebuildsFullURL(t *testing.T) {
	m := New("http://example.org/repo/")
	assert.Equal(t, "http://example.org/repo/path/to/res", m.ToExternal("trellis:path/to/res"))
}

func TestToExternalOfRootIdentifier(t *testing.T) {
	m := New("http://example.org/repo")
	assert.Equal(t, "http://example.org/repo/", m.ToExternal("trellis:"))
}

func TestPartitionExtractsLeadingSegment(t *testing.T) {
	assert.Equal(t, "repo", Partition("trellis:repo/path/to/res"))
	assert.Equal(t, "repo", Partition("trellis:repo"))
}

func TestSkolemizeProducesRecognizableIRI(t *testing.T) {
	iri := Skolemize()
	assert.True(t, strings.HasPrefix(iri, SkolemPrefix))
	assert.True(t, IsSkolemIRI(iri))
}

func TestUnskolemizeStripsPrefix(t *testing.T) {
	iri := Skolemize()
	label := Unskolemize(iri)
	assert.False(t, strings.HasPrefix(label, SkolemPrefix))
	assert.True(t, IsSkolemIRI(iri))
}

func TestIsSkolemIRIFalseForOrdinaryIRI(t *testing.T) {
	assert.False(t, IsSkolemIRI("http://example.org/foo"))
}
