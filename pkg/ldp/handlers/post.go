package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/headers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/negotiation"
)

// Post implements §4.7.3: create a new child resource under a container,
// honoring a client-supplied slug and a `Link; rel="type"` interaction-model
// announcement. A request Digest header is only checked for well-formed
// syntax (400 when none of its entries parses); its value is not compared
// against the request body.
func (h *Handlers) Post(c echo.Context) error {
	ctx := c.Request().Context()
	parentID := h.internalID(c)

	parent, err := h.Resources.Get(ctx, parentID, time.Time{})
	if err != nil {
		return apierror.NotFound("no such container: %s", parentID)
	}
	if parent.IsDeleted() {
		return apierror.Gone("container was deleted: %s", parentID)
	}
	if !model.IsContainer(parent.InteractionModel) {
		return apierror.MethodNotAllowed("POST is only valid on a container, %s is %s", parentID, parent.InteractionModel)
	}

	interactionModel, err := interactionModelFromLinks(c.Request().Header.Get(echo.HeaderLink))
	if err != nil {
		return err
	}

	slug := c.Request().Header.Get("Slug")
	if slug == "" {
		slug = uuid.NewString()
	}
	childID := strings.TrimSuffix(parentID, "/") + "/" + slug

	if err := checkDigest(c); err != nil {
		return err
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	res := &model.Resource{Identifier: childID, InteractionModel: interactionModel, Modified: h.Now()}
	res.Types = model.LdpResourceTypes(interactionModel)

	if interactionModel == model.LDPNonRDFSource {
		binaryID, err := h.Binaries.Resolver(ctx, childID)
		if err != nil {
			return apierror.Internal(err, "failed to allocate binary for %s", childID)
		}
		size := c.Request().ContentLength
		if err := h.Binaries.Put(ctx, binaryID, c.Request().Body, size, contentType); err != nil {
			return apierror.Internal(err, "failed to store binary for %s", childID)
		}
		res.Binary = &model.Binary{Identifier: binaryID, MimeType: contentType, Size: size, Modified: res.Modified}
		if err := h.Resources.Create(ctx, childID, parentID, res, nil); err != nil {
			return apierror.Conflict("resource already exists: %s", childID)
		}
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
		if err := h.Resources.Create(ctx, childID, parentID, res, quads); err != nil {
			return apierror.Conflict("resource already exists: %s", childID)
		}
	}

	externalChild := h.Mapper.ToExternal(childID)
	c.Response().Header().Set(echo.HeaderLocation, externalChild)
	prefer, _ := headers.ParsePrefer(c.Request().Header.Get("Prefer"))
	if prefer.WantsMinimal() {
		return c.NoContent(http.StatusCreated)
	}
	return c.String(http.StatusCreated, externalChild)
}

// interactionModelFromLinks reads a POST/PUT request's `Link; rel="type"`
// headers to determine the requested LDP interaction model, defaulting to
// RDFSource when no LDP type link is present (§4.7.3, §4.7.4).
func interactionModelFromLinks(raw string) (string, error) {
	if raw == "" {
		return model.LDPRDFSource, nil
	}
	links, err := headers.ParseLinks(raw)
	if err != nil {
		return "", apierror.BadRequest(err, "%s", err.Error())
	}
	for _, l := range links {
		if l.Rel != "type" {
			continue
		}
		switch l.Target {
		case model.LDPBasicContainer, model.LDPDirectContainer, model.LDPIndirectContainer,
			model.LDPContainer, model.LDPRDFSource, model.LDPNonRDFSource:
			return l.Target, nil
		}
	}
	return model.LDPRDFSource, nil
}

func checkDigest(c echo.Context) error {
	raw := c.Request().Header.Get("Digest")
	if raw == "" {
		return nil
	}
	if _, err := headers.ParseDigest(raw); err != nil {
		return apierror.BadRequest(err, "%s", err.Error())
	}
	return nil
}
