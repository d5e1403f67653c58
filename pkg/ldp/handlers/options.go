package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/response"
)

// Options implements §4.7.2: advertise the methods and negotiation
// capabilities available on a resource without transferring a
// representation.
func (h *Handlers) Options(c echo.Context) error {
	ctx := c.Request().Context()
	internalID := h.internalID(c)

	res, err := h.Resources.Get(ctx, internalID, time.Time{})
	if err != nil {
		c.Response().Header().Set(echo.HeaderAllow, response.Allow(nil))
		return c.NoContent(http.StatusNoContent)
	}
	if res.IsDeleted() {
		return apierror.Gone("resource was deleted: %s", internalID)
	}

	switch c.QueryParam("ext") {
	case "timemap":
		c.Response().Header().Set(echo.HeaderAllow, "GET, HEAD, OPTIONS")
		return c.NoContent(http.StatusNoContent)
	case "uploads":
		c.Response().Header().Set(echo.HeaderAllow, "POST, OPTIONS")
		return c.NoContent(http.StatusNoContent)
	case "acl":
		c.Response().Header().Set(echo.HeaderAllow, "GET, HEAD, OPTIONS, PATCH")
		c.Response().Header().Set("Accept-Patch", response.AcceptPatch())
		return c.NoContent(http.StatusNoContent)
	}

	c.Response().Header().Set(echo.HeaderAllow, response.Allow(res))
	if model.IsContainer(res.InteractionModel) {
		c.Response().Header().Set("Accept-Post", response.AcceptPost())
	}
	if res.InteractionModel != model.LDPNonRDFSource {
		c.Response().Header().Set("Accept-Patch", response.AcceptPatch())
	}
	for _, link := range response.TypeLinks(res) {
		c.Response().Header().Add(echo.HeaderLink, link)
	}
	return c.NoContent(http.StatusNoContent)
}
