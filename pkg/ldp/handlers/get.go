package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/headers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/memento"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/negotiation"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/response"
)

// Get implements §4.7.1: fetch a resource's current or historical
// representation, honoring conditional requests, Prefer graph selection,
// byte-range retrieval on binaries, and the `ext=acl`/`ext=timemap`/
// `ext=uploads` query extensions.
func (h *Handlers) Get(c echo.Context) error {
	return h.get(c, true)
}

// Head implements the HEAD half of §4.7.1: identical to GET but with the
// body suppressed, which Echo's response writer already does for us once
// we skip writing one.
func (h *Handlers) Head(c echo.Context) error {
	return h.get(c, false)
}

func (h *Handlers) get(c echo.Context, withBody bool) error {
	ctx := c.Request().Context()
	internalID := h.internalID(c)
	ext := c.QueryParam("ext")

	if ext == "timemap" {
		return h.serveTimeMap(c, internalID)
	}
	if ext == "uploads" {
		return apierror.MethodNotAllowed("ext=uploads is not valid on an LDP resource: %s", internalID)
	}

	datetime, isMemento, isTimeGate, err := h.resolveVersion(c)
	if err != nil {
		return err
	}
	if isTimeGate {
		return h.serveTimeGate(c, internalID, datetime)
	}

	res, err := h.Resources.Get(ctx, internalID, datetime)
	if err != nil {
		return apierror.NotFound("no such resource: %s", internalID)
	}
	if res.IsDeleted() {
		return apierror.Gone("resource was deleted: %s", internalID)
	}

	isACLView := ext == "acl"
	if isACLView && !res.HasACL {
		return apierror.NotFound("resource has no access control document: %s", internalID)
	}

	isBinary := res.InteractionModel == model.LDPNonRDFSource && res.Binary != nil
	var etag string
	if isBinary {
		etag = response.BinaryETag(res)
	} else {
		etag = response.ETag(res)
	}
	if h.checkConditional(c, etag) {
		c.Response().Header().Set(echo.HeaderETag, etag)
		return c.NoContent(http.StatusNotModified)
	}

	var mementoLinks []string
	if !isACLView {
		mementos, err := h.Resources.Mementos(ctx, internalID)
		if err != nil {
			return apierror.Internal(err, "failed to load version history for %s", internalID)
		}
		mementoLinks = memento.New(h.externalURI(c), mementos).TimeMapLinks()
	}
	h.setCommonHeaders(c, res, etag, isMemento, isACLView, mementoLinks)

	if isBinary {
		return h.serveBinary(c, res, withBody)
	}
	return h.serveRDF(c, internalID, res, withBody, isACLView)
}

// serveTimeMap implements §4.6's TimeMap: a 200 response enumerating every
// memento of a resource as `application/link-format` Link lines.
func (h *Handlers) serveTimeMap(c echo.Context, internalID string) error {
	ctx := c.Request().Context()
	res, err := h.Resources.Get(ctx, internalID, time.Time{})
	if err != nil {
		return apierror.NotFound("no such resource: %s", internalID)
	}
	if res.IsDeleted() {
		return apierror.Gone("resource was deleted: %s", internalID)
	}
	mementos, err := h.Resources.Mementos(ctx, internalID)
	if err != nil {
		return apierror.Internal(err, "failed to load version history for %s", internalID)
	}

	links := memento.New(h.externalURI(c), mementos).TimeMapLinks()
	c.Response().Header().Set(echo.HeaderAllow, "GET, HEAD, OPTIONS")
	for _, link := range links {
		c.Response().Header().Add(echo.HeaderLink, link)
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/link-format")
	return c.String(http.StatusOK, strings.Join(links, ",\n")+"\n")
}

// serveTimeGate implements §4.6's TimeGate: given an Accept-Datetime
// negotiation, redirect to the memento closest to (but not after) that
// instant rather than serving a representation directly.
func (h *Handlers) serveTimeGate(c echo.Context, internalID string, datetime time.Time) error {
	ctx := c.Request().Context()
	res, err := h.Resources.Get(ctx, internalID, time.Time{})
	if err != nil {
		return apierror.NotFound("no such resource: %s", internalID)
	}
	if res.IsDeleted() {
		return apierror.Gone("resource was deleted: %s", internalID)
	}
	mementos, err := h.Resources.Mementos(ctx, internalID)
	if err != nil {
		return apierror.Internal(err, "failed to load version history for %s", internalID)
	}
	engine := memento.New(h.externalURI(c), mementos)
	vr, err := engine.FindByDatetime(datetime)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, engine.Identifier+"?version="+strconv.FormatInt(vr.From.UnixMilli(), 10))
	c.Response().Header().Set("Vary", "Accept-Datetime")
	for _, link := range engine.TimeMapLinks() {
		c.Response().Header().Add(echo.HeaderLink, link)
	}
	return c.NoContent(http.StatusFound)
}

func (h *Handlers) serveBinary(c echo.Context, res *model.Resource, withBody bool) error {
	c.Response().Header().Set(echo.HeaderContentType, res.Binary.MimeType)
	c.Response().Header().Set("Accept-Ranges", "bytes")
	c.Response().Header().Set("Vary", c.Response().Header().Get("Vary")+", Range, Want-Digest")

	if wantDigest := c.Request().Header.Get("Want-Digest"); wantDigest != "" {
		if err := h.emitDigest(c, res, wantDigest); err != nil {
			return err
		}
	}

	rangeHeader := c.Request().Header.Get(echo.HeaderRange)
	if rangeHeader == "" {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(res.Binary.Size, 10))
		if !withBody {
			return c.NoContent(http.StatusOK)
		}
		body, err := h.Binaries.Get(c.Request().Context(), res.Binary.Identifier, 0, 0, false)
		if err != nil {
			return apierror.Internal(err, "failed to open binary %s", res.Binary.Identifier)
		}
		defer body.Close()
		return c.Stream(http.StatusOK, res.Binary.MimeType, body)
	}

	br, err := headers.ParseRange(rangeHeader)
	if err != nil {
		return apierror.BadRequest(err, "%s", err.Error())
	}
	if br.RangeNotSatisfiable(res.Binary.Size) {
		c.Response().Header().Set("Content-Range", "bytes */"+strconv.FormatInt(res.Binary.Size, 10))
		return apierror.RangeNotSatisfiable("range starts beyond resource size %d", res.Binary.Size)
	}
	start, end := br.Resolve(res.Binary.Size)
	c.Response().Header().Set("Content-Range", "bytes "+strconv.FormatInt(start, 10)+"-"+strconv.FormatInt(end, 10)+"/"+strconv.FormatInt(res.Binary.Size, 10))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(end-start+1, 10))
	if !withBody {
		return c.NoContent(http.StatusPartialContent)
	}
	body, err := h.Binaries.Get(c.Request().Context(), res.Binary.Identifier, start, end, true)
	if err != nil {
		return apierror.Internal(err, "failed to open binary range %s", res.Binary.Identifier)
	}
	defer body.Close()
	return c.Stream(http.StatusPartialContent, res.Binary.MimeType, body)
}

// emitDigest honors a Want-Digest request header by computing the first
// algorithm the binary service supports, in the client's preference order,
// and setting the response Digest header (§4.7.1 step 4).
func (h *Handlers) emitDigest(c echo.Context, res *model.Resource, wantDigest string) error {
	algs, err := headers.ParseWantDigest(wantDigest)
	if err != nil {
		return apierror.BadRequest(err, "%s", err.Error())
	}
	supported := make(map[string]bool)
	for _, alg := range h.Binaries.SupportedAlgorithms() {
		supported[strings.ToLower(alg)] = true
	}
	for _, alg := range algs {
		if !supported[strings.ToLower(alg.Name)] {
			continue
		}
		value, err := h.Binaries.Digest(c.Request().Context(), res.Binary.Identifier, alg.Name)
		if err != nil {
			return apierror.Internal(err, "failed to compute %s digest for %s", alg.Name, res.Binary.Identifier)
		}
		c.Response().Header().Set("Digest", response.WantDigestHeader(alg.Name, value))
		return nil
	}
	return nil
}

func (h *Handlers) serveRDF(c echo.Context, internalID string, res *model.Resource, withBody bool, isACLView bool) error {
	syntax, profile, err := negotiation.Negotiate(c.Request().Header.Get(echo.HeaderAccept))
	if err != nil {
		return err
	}
	_ = profile

	prefer, err := headers.ParsePrefer(c.Request().Header.Get("Prefer"))
	if err != nil {
		return apierror.BadRequest(err, "%s", err.Error())
	}
	if prefer.WantsMinimal() {
		return c.NoContent(http.StatusNoContent)
	}

	var graphs []string
	if isACLView {
		graphs = []string{model.PreferAccessControl}
	} else {
		graphs = selectGraphs(res, prefer)
	}

	quads, err := h.Resources.Quads(c.Request().Context(), internalID, graphs)
	if err != nil {
		return apierror.Internal(err, "failed to load quads for %s", internalID)
	}

	c.Response().Header().Set(echo.HeaderContentType, string(syntax))
	if !withBody {
		return c.NoContent(http.StatusOK)
	}
	c.Response().WriteHeader(http.StatusOK)
	return h.IO.Serialize(c.Response(), quads, syntax, h.Mapper.BaseURL)
}

// selectGraphs honors Prefer's include/omit list against the well-known
// graph names, defaulting to user-managed plus containment/membership for
// containers when no preference is given (§4.7.1, §4.7.7).
func selectGraphs(res *model.Resource, prefer headers.Prefer) []string {
	defaults := []string{model.PreferUserManaged}
	if model.IsContainer(res.InteractionModel) {
		defaults = append(defaults, model.PreferContainment, model.PreferMembership)
	}
	if len(prefer.Include) == 0 && len(prefer.Omit) == 0 {
		return defaults
	}

	set := make(map[string]bool)
	for _, g := range defaults {
		set[g] = true
	}
	for _, g := range prefer.Include {
		set[g] = true
	}
	for _, g := range prefer.Omit {
		delete(set, g)
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	return out
}

// resolveVersion determines which representation of a resource a GET/HEAD
// targets (§4.6): an explicit `version=<epochMillis>` query parameter
// addresses a memento directly, while an Accept-Datetime header puts the
// original resource in the TimeGate role, to be content-negotiated by
// redirect rather than served in place.
func (h *Handlers) resolveVersion(c echo.Context) (datetime time.Time, isMemento, isTimeGate bool, err error) {
	if v := c.QueryParam("version"); v != "" {
		t, perr := headers.ParseVersion(v)
		if perr != nil {
			return time.Time{}, false, false, apierror.NotFound("%s", perr.Error())
		}
		return t, true, false, nil
	}
	if ad := c.Request().Header.Get("Accept-Datetime"); ad != "" {
		t, perr := headers.ParseAcceptDatetime(ad)
		if perr != nil {
			return time.Time{}, false, false, apierror.BadRequest(perr, "%s", perr.Error())
		}
		return t, false, true, nil
	}
	return time.Time{}, false, false, nil
}

func (h *Handlers) checkConditional(c echo.Context, etag string) bool {
	inm := c.Request().Header.Get(echo.HeaderIfNoneMatch)
	if inm == "" {
		return false
	}
	for _, candidate := range strings.Split(inm, ",") {
		if strings.TrimSpace(candidate) == etag || strings.TrimSpace(candidate) == "*" {
			return true
		}
	}
	return false
}

func (h *Handlers) setCommonHeaders(c echo.Context, res *model.Resource, etag string, isMemento, isACLView bool, mementoLinks []string) {
	c.Response().Header().Set(echo.HeaderETag, etag)
	c.Response().Header().Set("Last-Modified", headers.FormatHTTPDate(res.Modified))
	c.Response().Header().Set(echo.HeaderAllow, response.AllowForGet(res, isMemento, isACLView))

	vary := response.Vary()
	if isMemento {
		c.Response().Header().Set("Memento-Datetime", headers.FormatHTTPDate(res.Modified))
	} else {
		vary += ", Accept-Datetime"
	}
	c.Response().Header().Set("Vary", vary)

	for _, link := range response.TypeLinks(res) {
		c.Response().Header().Add(echo.HeaderLink, link)
	}
	if model.IsContainer(res.InteractionModel) {
		c.Response().Header().Set("Accept-Post", response.AcceptPost())
	}
	if res.InteractionModel != model.LDPNonRDFSource {
		c.Response().Header().Set("Accept-Patch", response.AcceptPatch())
	}
	if res.HasACL && !isACLView {
		c.Response().Header().Add(echo.HeaderLink, response.ACLLink(h.externalURI(c)))
	}
	for _, link := range mementoLinks {
		c.Response().Header().Add(echo.HeaderLink, link)
	}
}
