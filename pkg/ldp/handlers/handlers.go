// Package handlers implements the per-method state machines of §4.7: GET,
// OPTIONS, POST, PUT, PATCH, and DELETE against an LDP resource. Each
// handler is an echo.HandlerFunc, mirroring the teacher's
// `func(c echo.Context) error` method shape (api/jwt.go's GenerateToken,
// http/server.go's HealthCheckHandler).
package handlers

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/idmap"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/services"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/session"
)

// Handlers bundles the collaborators every method handler needs. It holds
// no per-request state, so one instance is built at startup and shared
// across all requests (mirrors the teacher's `Handlers{RabbitMQ, CouchDB,
// JWT}` aggregate in api/jwt.go).
type Handlers struct {
	Resources   services.ResourceService
	Binaries    services.BinaryService
	IO          services.IOService
	Constraints services.ConstraintService
	Auth        *session.Authorizer
	Mapper      *idmap.Mapper
	Now         func() time.Time
}

// sessionKey is the echo.Context key the authorization pre-matching filter
// stores the resolved model.Session under (§4.5).
const sessionKey = "ldp.session"

// SessionFromContext retrieves the session a pre-matching filter attached
// to c, defaulting to anonymous if none was set (e.g. in unit tests that
// invoke a handler directly).
func SessionFromContext(c echo.Context) model.Session {
	if sess, ok := c.Get(sessionKey).(model.Session); ok {
		return sess
	}
	return model.Session{Agent: model.AnonymousAgent}
}

// SetSession stores sess on c for downstream handlers to read.
func SetSession(c echo.Context, sess model.Session) {
	c.Set(sessionKey, sess)
}

// internalID computes the internal identifier for the current request's
// path, stripping the partition-prefixed route pattern Echo matched.
func (h *Handlers) internalID(c echo.Context) string {
	return h.Mapper.ToInternal(c.Request().URL.Path)
}

// externalURI computes the fully-qualified external URL for the current
// request, used to build Link/describedby/acl headers without a second
// round trip through the mapper.
func (h *Handlers) externalURI(c echo.Context) string {
	return h.Mapper.ToExternal(h.internalID(c))
}
