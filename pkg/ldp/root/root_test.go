package root

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/internal/version"
)

func TestHandlerServesInfo(t *testing.T) {
	e := echo.New()
	h := Handler([]string{"repository"}, version.BuildInfo{Version: "1.2.3", GoVersion: "go1.24"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
	assert.Contains(t, rec.Body.String(), `"repository"`)
}

func TestHandlerOptionsIsNoContent(t *testing.T) {
	e := echo.New()
	h := Handler([]string{"repository"}, version.BuildInfo{})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get(echo.HeaderAllow))
}
