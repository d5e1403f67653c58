// Package root implements the server's root/discovery resource (§4.9): a
// GET against the base URL describes the server itself rather than any
// partition's content, listing the configured partitions and the
// protocols it supports.
package root

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/internal/version"
)

// Info is the payload served at the root resource.
type Info struct {
	Title      string   `json:"title"`
	Partitions []string `json:"partitions"`
	Protocols  []string `json:"protocols"`
	Version    string   `json:"version"`
	GoVersion  string   `json:"goVersion"`
}

// Handler builds the root-resource GET handler for a fixed set of
// partitions, mirroring the teacher's HealthCheckHandler closure pattern
// in http/server.go (a constructor returning an echo.HandlerFunc bound
// over config captured at startup).
func Handler(partitions []string, build version.BuildInfo) echo.HandlerFunc {
	info := Info{
		Title:      "LDP repository root",
		Partitions: partitions,
		Protocols:  []string{"LDP", "Memento", "WebAC"},
		Version:    build.Version,
		GoVersion:  build.GoVersion,
	}
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderAllow, "GET, HEAD, OPTIONS")
		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, info)
	}
}
