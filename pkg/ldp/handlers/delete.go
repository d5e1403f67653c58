package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/headers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
)

// Delete implements §4.7.6: tombstone a resource, refusing to remove a
// non-empty container unless the client explicitly opted into a recursive
// delete via `Prefer; handling=lenient` — the core's stricter-by-default
// reading of the spec's non-empty-container rule.
func (h *Handlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	internalID := h.internalID(c)

	res, err := h.Resources.Get(ctx, internalID, time.Time{})
	if err != nil {
		return apierror.NotFound("no such resource: %s", internalID)
	}
	if res.IsDeleted() {
		return apierror.Gone("resource was already deleted: %s", internalID)
	}

	if err := h.checkPreconditions(c, res); err != nil {
		return err
	}

	recursive := false
	if prefer := c.Request().Header.Get("Prefer"); prefer != "" {
		p, perr := headers.ParsePrefer(prefer)
		if perr == nil {
			recursive = p.Handling == "lenient"
		}
	}

	if model.IsContainer(res.InteractionModel) {
		children, err := h.Resources.Children(ctx, internalID)
		if err != nil {
			return apierror.Internal(err, "failed to list children of %s", internalID)
		}
		if len(children) > 0 && !recursive {
			return apierror.Conflict("constrainedBy=%s: container %s is not empty", model.UnsupportedRecursiveDelete, internalID)
		}
	}

	if res.Binary != nil {
		if err := h.Binaries.Delete(ctx, res.Binary.Identifier); err != nil {
			return apierror.Internal(err, "failed to delete binary for %s", internalID)
		}
	}

	if err := h.Resources.Delete(ctx, internalID, recursive); err != nil {
		return apierror.Internal(err, "failed to delete %s", internalID)
	}
	return c.NoContent(http.StatusNoContent)
}
