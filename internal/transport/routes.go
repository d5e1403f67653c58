package transport

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/internal/version"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/handlers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/idmap"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/multipart"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/root"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/session"
)

// RegisterRoutes wires the root resource, every partition's resource
// routes, and the multipart upload sub-tree onto e (§4.5, §4.8, §4.9).
func RegisterRoutes(e *echo.Echo, h *handlers.Handlers, upload *multipart.Engine, auth *session.Authorizer, mapper *idmap.Mapper, partitions []string, build version.BuildInfo) {
	e.Use(TrailingSlashRedirect())
	e.Use(Authorization(auth, mapper, timeNowFunc))

	rootHandler := root.Handler(partitions, build)
	e.GET("/", rootHandler)
	e.HEAD("/", rootHandler)
	e.OPTIONS("/", rootHandler)

	for _, partition := range partitions {
		prefix := "/" + partition
		e.GET(prefix, h.Get)
		e.GET(prefix+"/*", h.Get)
		e.HEAD(prefix, h.Head)
		e.HEAD(prefix+"/*", h.Head)
		e.OPTIONS(prefix, h.Options)
		e.OPTIONS(prefix+"/*", h.Options)
		e.POST(prefix, h.Post)
		e.POST(prefix+"/*", h.Post)
		e.PUT(prefix, h.Put)
		e.PUT(prefix+"/*", h.Put)
		e.PATCH(prefix, h.Patch)
		e.PATCH(prefix+"/*", h.Patch)
		e.DELETE(prefix, h.Delete)
		e.DELETE(prefix+"/*", h.Delete)
	}

	registerUploadRoutes(e, upload)
}

// registerUploadRoutes wires the §4.8 multipart upload sub-tree:
// POST to initiate, PUT a part, POST .../complete, DELETE to abort.
func registerUploadRoutes(e *echo.Echo, upload *multipart.Engine) {
	group := e.Group("/upload/:partition")

	group.POST("", func(c echo.Context) error {
		binaryID := c.QueryParam("binary")
		mimeType := c.Request().Header.Get(echo.HeaderContentType)
		s, err := upload.Initiate(c.Request().Context(), c.Param("partition"), binaryID, mimeType, timeNowFunc())
		if err != nil {
			return err
		}
		if ensurer, ok := upload.Backend.(interface {
			EnsureUpload(ctx context.Context, uploadID, destBinaryID string) error
		}); ok {
			if err := ensurer.EnsureUpload(c.Request().Context(), s.UploadID, s.BinaryID); err != nil {
				return err
			}
		}
		return c.JSON(201, s)
	})

	group.PUT("/:uploadId/:partNumber", func(c echo.Context) error {
		var partNumber int
		if _, err := fmtSscan(c.Param("partNumber"), &partNumber); err != nil {
			return echo.NewHTTPError(400, "partNumber must be an integer")
		}
		body, err := readAll(c)
		if err != nil {
			return err
		}
		part, err := upload.UploadPart(c.Request().Context(), c.Param("uploadId"), partNumber, body)
		if err != nil {
			return err
		}
		return c.JSON(200, part)
	})

	group.POST("/:uploadId/complete", func(c echo.Context) error {
		if err := upload.Complete(c.Request().Context(), c.Param("uploadId")); err != nil {
			return err
		}
		return c.NoContent(204)
	})

	group.DELETE("/:uploadId", func(c echo.Context) error {
		if err := upload.Abort(c.Request().Context(), c.Param("uploadId")); err != nil {
			return err
		}
		return c.NoContent(204)
	})
}
