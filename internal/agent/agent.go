// Package agent is the reference services.AgentService, resolving a bearer
// credential to a WebID-shaped agent IRI via OIDC ID-token verification,
// grounded on security/oidc.go's OIDCProvider and security/jwt.go's
// HS256 JWTService for the locally-issued-token fallback path.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
)

// Config configures both verification paths a deployment may enable.
type Config struct {
	// OIDCProviderURL, when set, enables ID-token verification against an
	// external identity provider (Keycloak, Auth0, etc).
	OIDCProviderURL string
	OIDCClientID    string

	// LocalSecret, when set, enables verification of HS256 tokens this
	// repository issued itself (service-to-service credentials).
	LocalSecret string
	LocalIssuer string
}

// Resolver is the services.AgentService implementation.
type Resolver struct {
	oidcVerifier *oidc.IDTokenVerifier
	localSecret  []byte
	localIssuer  string
}

// New builds a Resolver, discovering the OIDC provider's configuration up
// front the way security.NewOIDCProvider does, so a misconfigured issuer
// URL fails at startup rather than on the first request.
func New(ctx context.Context, cfg Config) (*Resolver, error) {
	r := &Resolver{localSecret: []byte(cfg.LocalSecret), localIssuer: cfg.LocalIssuer}
	if cfg.OIDCProviderURL != "" {
		provider, err := oidc.NewProvider(ctx, cfg.OIDCProviderURL)
		if err != nil {
			return nil, apierror.Internal(err, "failed to discover OIDC provider %s", cfg.OIDCProviderURL)
		}
		r.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})
	}
	return r, nil
}

// Resolve verifies credential as either an OIDC ID token or a locally
// issued HS256 token, in that order, and derives an agent IRI from the
// token's subject claim. An unverifiable credential resolves to the
// anonymous agent rather than erroring, leaving the access-mode decision
// to the WebAC layer (§4.4, §4.5).
func (r *Resolver) Resolve(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return model.AnonymousAgent, nil
	}

	if r.oidcVerifier != nil {
		if idToken, err := r.oidcVerifier.Verify(ctx, credential); err == nil {
			return subjectToAgentIRI(idToken.Subject), nil
		}
	}

	if len(r.localSecret) > 0 {
		opts := []jwt.ParseOption{jwt.WithKey(jwa.HS256, r.localSecret)}
		if r.localIssuer != "" {
			opts = append(opts, jwt.WithIssuer(r.localIssuer))
		}
		if token, err := jwt.Parse([]byte(credential), opts...); err == nil {
			return subjectToAgentIRI(token.Subject()), nil
		}
	}

	return model.AnonymousAgent, nil
}

// subjectToAgentIRI turns a bare token subject into a WebID-shaped IRI when
// it isn't already one, so the access-control layer always compares full
// IRIs (§4.4).
func subjectToAgentIRI(subject string) string {
	if subject == "" {
		return model.AnonymousAgent
	}
	if strings.HasPrefix(subject, "http://") || strings.HasPrefix(subject, "https://") {
		return subject
	}
	return fmt.Sprintf("urn:trellis:agent:%s", subject)
}
