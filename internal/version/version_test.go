package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentNeverReturnsEmptyVersion(t *testing.T) {
	build := Current()
	assert.NotEmpty(t, build.Version)
	assert.NotEmpty(t, build.GoVersion)
}

func TestDependencyVersionMissing(t *testing.T) {
	assert.Empty(t, dependencyVersion(nil, modulePath))
}
