package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/headers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
)

// Patch implements §4.7.5: apply a SPARQL-Update document to a resource's
// user-managed graph. The core does not itself evaluate SPARQL — it hands
// the update string and the current quads to the IOService collaborator
// and persists whatever quad set comes back, since SPARQL-Update
// evaluation is inherently an RDF-engine concern (§6).
func (h *Handlers) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	internalID := h.internalID(c)

	res, err := h.Resources.Get(ctx, internalID, time.Time{})
	if err != nil {
		return apierror.NotFound("no such resource: %s", internalID)
	}
	if res.IsDeleted() {
		return apierror.Gone("resource was deleted: %s", internalID)
	}
	if res.InteractionModel == model.LDPNonRDFSource {
		return apierror.MethodNotAllowed("PATCH is not valid on a NonRDFSource: %s", internalID)
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if contentType != "application/sparql-update" {
		return apierror.UnsupportedMediaType("PATCH requires application/sparql-update, got %s", contentType)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apierror.BadRequest(err, "failed to read PATCH body")
	}
	if len(body) == 0 {
		return apierror.BadRequest(nil, "PATCH body must not be empty")
	}

	patcher, ok := h.IO.(SparqlPatcher)
	if !ok {
		return apierror.Internal(nil, "configured IOService does not support SPARQL-Update patching")
	}

	current, err := h.Resources.Quads(ctx, internalID, []string{model.PreferUserManaged})
	if err != nil {
		return apierror.Internal(err, "failed to load quads for %s", internalID)
	}
	updated, err := patcher.Patch(current, string(body), h.Mapper.BaseURL)
	if err != nil {
		return apierror.BadRequest(err, "malformed SPARQL-Update: %v", err)
	}

	if h.Constraints != nil {
		if constrainedBy, err := h.Constraints.Validate(ctx, res.InteractionModel, updated); err != nil || constrainedBy != "" {
			return apierror.Conflict("patched payload violates constraint %s", constrainedBy)
		}
	}

	res.Modified = h.Now()
	if err := h.Resources.Replace(ctx, internalID, res, updated); err != nil {
		return apierror.Internal(err, "failed to persist patched %s", internalID)
	}

	prefer, _ := headers.ParsePrefer(c.Request().Header.Get("Prefer"))
	if prefer.WantsRepresentation() {
		return h.serveRDF(c, internalID, res, true, false)
	}
	return c.NoContent(http.StatusNoContent)
}

// SparqlPatcher is the narrow extension of IOService a PATCH handler needs:
// applying a SPARQL-Update string to an in-memory quad set. Kept as a
// separate interface so an IOService implementation that only handles
// serialization (no update grammar) still satisfies services.IOService.
type SparqlPatcher interface {
	Patch(current []rdf.Quad, update, baseURL string) ([]rdf.Quad, error)
}
