// Package response builds the common response metadata every method
// handler in pkg/ldp/handlers attaches: ETag, Link (type + ACL + describedby),
// Allow, Vary, and Accept-Post/Accept-Patch (§4.7 preamble).
package response

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/headers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
)

// ETag computes the weak entity tag for an RDFSource representation,
// `md5(mod + identifier)` (§4.7.1 step 5, scenario 1). The modified
// instant already distinguishes a memento's historical representation
// from the current one, since retrieving a memento returns a Resource
// whose Modified field is the memento's own capture time.
func ETag(res *model.Resource) string {
	return fmt.Sprintf(`W/"%s"`, hashTag(res.Modified, res.Identifier, ""))
}

// BinaryETag computes the strong entity tag for a NonRDFSource's binary
// representation, `md5(mod + identifier + "BINARY")` (§4.7.1 step 4).
func BinaryETag(res *model.Resource) string {
	return fmt.Sprintf(`"%s"`, hashTag(res.Modified, res.Identifier, "BINARY"))
}

func hashTag(mod time.Time, identifier, suffix string) string {
	basis := strconv.FormatInt(mod.UnixMilli(), 10) + identifier + suffix
	sum := md5.Sum([]byte(basis))
	return hex.EncodeToString(sum[:])
}

// TypeLinks builds the `Link; rel="type"` header values for a resource's
// full LDP sub-class chain (§4.7.1).
func TypeLinks(res *model.Resource) []string {
	var out []string
	for _, t := range res.Types {
		out = append(out, fmt.Sprintf(`<%s>; rel="type"`, t))
	}
	return out
}

// DescribedByLink builds the `describedby` Link header a NonRDFSource's GET
// response carries, pointing at the URL that exposes its RDF metadata.
func DescribedByLink(externalURI string) string {
	return fmt.Sprintf(`<%s?ext=description>; rel="describedby"`, externalURI)
}

// ACLLink builds the `acl` Link header pointing at a resource's access
// control document, present whenever model.Resource.HasACL is true (§4.5).
func ACLLink(externalURI string) string {
	return fmt.Sprintf(`<%s?ext=acl>; rel="acl"`, externalURI)
}

// Allow computes the OPTIONS Allow header value for a resource, following
// §4.7.2's per-method applicability table: RDFSource and NonRDFSource alike
// allow PATCH, containers additionally allow POST, and a nonexistent
// identifier allows only the methods that can create one.
func Allow(res *model.Resource) string {
	if res == nil {
		return strings.Join([]string{"OPTIONS", "PUT", "POST"}, ", ")
	}
	methods := []string{"GET", "HEAD", "OPTIONS", "PATCH", "PUT", "DELETE"}
	if model.IsContainer(res.InteractionModel) {
		methods = append(methods, "POST")
	}
	return strings.Join(methods, ", ")
}

// AllowForGet computes the GET/HEAD Allow header value, which diverges from
// OPTIONS' rule (§4.7.1 steps 4-5): a memento is read-only, the ext=acl view
// excludes PUT/DELETE/POST, RDFSource excludes POST, and NonRDFSource never
// allows PATCH.
func AllowForGet(res *model.Resource, isMemento, isACLView bool) string {
	if isMemento {
		return "GET, HEAD, OPTIONS"
	}
	if res.InteractionModel == model.LDPNonRDFSource {
		return "GET, HEAD, OPTIONS, PUT, DELETE"
	}
	if isACLView {
		return "GET, HEAD, OPTIONS, PATCH"
	}
	methods := []string{"GET", "HEAD", "OPTIONS", "PATCH", "PUT", "DELETE"}
	if model.IsContainer(res.InteractionModel) {
		methods = append(methods, "POST")
	}
	return strings.Join(methods, ", ")
}

// AcceptPost is the Accept-Post header value advertised by containers,
// reflecting every RDF syntax and the binary upload content type (§4.7.3).
func AcceptPost() string {
	return "text/turtle, application/ld+json, application/n-triples, application/rdf+xml, */*"
}

// AcceptPatch is the Accept-Patch header value advertised by RDFSources,
// naming the one PATCH dialect the core understands (§4.7.5).
func AcceptPatch() string {
	return "application/sparql-update"
}

// Vary lists the request headers that can change a cacheable response's
// representation — content negotiation plus Prefer-driven graph selection.
func Vary() string {
	return "Accept, Prefer"
}

// WantDigestHeader renders resolved digest algorithms back into a response
// Digest header value, using the first (highest-preference) algorithm a
// collaborator actually computed — callers pass the already-computed
// base64 value since hashing the payload isn't this package's job.
func WantDigestHeader(algorithm, base64Value string) string {
	return fmt.Sprintf("%s=%s", strings.ToUpper(algorithm), base64Value)
}

// MementoDatetimeHeader renders the Memento-Datetime response header.
func MementoDatetimeHeader(t time.Time) string {
	return headers.FormatHTTPDate(t)
}
