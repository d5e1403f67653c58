package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/headers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/negotiation"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/response"
)

// Put implements §4.7.4: create-or-replace a resource at the request's own
// URL, enforcing invariant I4's sub-class retyping rule and conditional
// request preconditions.
func (h *Handlers) Put(c echo.Context) error {
	ctx := c.Request().Context()
	internalID := h.internalID(c)

	existing, getErr := h.Resources.Get(ctx, internalID, time.Time{})
	var existingOK bool
	if getErr == nil && !existing.IsDeleted() {
		existingOK = true
		if err := h.checkPreconditions(c, existing); err != nil {
			return err
		}
	}

	interactionModel, err := interactionModelFromLinks(c.Request().Header.Get(echo.HeaderLink))
	if err != nil {
		return err
	}
	if existingOK {
		if !model.IsSubClassCompatible(existing.InteractionModel, interactionModel) {
			return apierror.Conflict("cannot retype %s from %s to %s outside its sub-class chain",
				internalID, existing.InteractionModel, interactionModel)
		}
		if model.IsContainer(existing.InteractionModel) {
			children, err := h.Resources.Children(ctx, internalID)
			if err == nil && len(children) > 0 && interactionModel != existing.InteractionModel {
				return apierror.Conflict("cannot retype non-empty container %s", internalID)
			}
		}
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	modified := h.Now()
	res := &model.Resource{Identifier: internalID, InteractionModel: interactionModel, Modified: modified}
	res.Types = model.LdpResourceTypes(interactionModel)

	if interactionModel == model.LDPNonRDFSource {
		binaryID, err := h.Binaries.Resolver(ctx, internalID)
		if err != nil {
			return apierror.Internal(err, "failed to allocate binary for %s", internalID)
		}
		size := c.Request().ContentLength
		if err := h.Binaries.Put(ctx, binaryID, c.Request().Body, size, contentType); err != nil {
			return apierror.Internal(err, "failed to store binary for %s", internalID)
		}
		res.Binary = &model.Binary{Identifier: binaryID, MimeType: contentType, Size: size, Modified: modified}
	} else {
		syntax, _, err := negotiation.Negotiate(contentType)
		if err != nil {
			return apierror.UnsupportedMediaType("unrecognized RDF syntax: %s", contentType)
		}
		quads, err := h.IO.Parse(c.Request().Body, syntax, h.Mapper.BaseURL)
		if err != nil {
			return apierror.BadRequest(err, "failed to parse request body as %s", syntax)
		}
		if h.Constraints != nil {
			if constrainedBy, err := h.Constraints.Validate(ctx, interactionModel, quads); err != nil || constrainedBy != "" {
				return apierror.Conflict("payload violates constraint %s", constrainedBy)
			}
		}
		if existingOK {
			err = h.Resources.Replace(ctx, internalID, res, quads)
		} else {
			parentID := parentOf(internalID)
			err = h.Resources.Create(ctx, internalID, parentID, res, quads)
		}
		if err != nil {
			return apierror.Internal(err, "failed to persist %s", internalID)
		}
		return h.putResponse(c, existingOK)
	}

	var rerr error
	if existingOK {
		rerr = h.Resources.Replace(ctx, internalID, res, nil)
	} else {
		rerr = h.Resources.Create(ctx, internalID, parentOf(internalID), res, nil)
	}
	if rerr != nil {
		return apierror.Internal(rerr, "failed to persist %s", internalID)
	}
	return h.putResponse(c, existingOK)
}

func (h *Handlers) putResponse(c echo.Context, replaced bool) error {
	if replaced {
		return c.NoContent(http.StatusNoContent)
	}
	c.Response().Header().Set(echo.HeaderLocation, h.externalURI(c))
	return c.NoContent(http.StatusCreated)
}

func (h *Handlers) checkPreconditions(c echo.Context, res *model.Resource) error {
	if im := c.Request().Header.Get(echo.HeaderIfMatch); im != "" {
		etag := response.ETag(res)
		if res.InteractionModel == model.LDPNonRDFSource && res.Binary != nil {
			etag = response.BinaryETag(res)
		}
		if !etagMatches(im, etag) {
			return apierror.PreconditionFailed("If-Match precondition failed for %s", res.Identifier)
		}
	}
	if ius := c.Request().Header.Get(echo.HeaderIfUnmodifiedSince); ius != "" {
		t, err := headers.ParseAcceptDatetime(ius)
		if err != nil {
			return apierror.BadRequest(err, "%s", err.Error())
		}
		if res.Modified.After(t) {
			return apierror.PreconditionFailed("If-Unmodified-Since precondition failed for %s", res.Identifier)
		}
	}
	return nil
}

func etagMatches(headerValue, etag string) bool {
	for _, candidate := range strings.Split(headerValue, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func parentOf(internalID string) string {
	idx := strings.LastIndexByte(internalID, '/')
	if idx < 0 {
		return ""
	}
	return internalID[:idx]
}
