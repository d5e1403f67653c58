// Package negotiation implements RDF syntax content negotiation (§4.2):
// mapping an Accept header to a concrete RDF serialization plus an optional
// profile IRI extracted from the media type's `profile` parameter.
package negotiation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
)

// Syntax identifies one of the RDF serializations the core can emit. The
// actual encode/decode work belongs to the external IOService collaborator
// (§6); this package only decides which one a request wants.
type Syntax string

const (
	SyntaxTurtle    Syntax = "text/turtle"
	SyntaxNTriples  Syntax = "application/n-triples"
	SyntaxJSONLD    Syntax = "application/ld+json"
	SyntaxRDFXML    Syntax = "application/rdf+xml"
	SyntaxSPARQLUpdate Syntax = "application/sparql-update"
)

// DefaultSyntax is served when a request has no Accept header at all.
const DefaultSyntax = SyntaxTurtle

// supportedSyntaxes enumerates every RDF media type the negotiator
// recognizes, most specific representation first for stable tie-breaking.
var supportedSyntaxes = []Syntax{SyntaxTurtle, SyntaxJSONLD, SyntaxNTriples, SyntaxRDFXML}

// mediaRange is one parsed entry of an Accept header.
type mediaRange struct {
	typ     string
	q       float64
	profile string
}

// Negotiate picks the best RDF syntax and optional profile IRI for an
// Accept header, following RFC 7231 §5.3.2 q-value precedence with a
// stable left-to-right tiebreak (mirroring the Want-Digest decision in
// DESIGN.md: ties keep header order, not alphabetical order).
func Negotiate(accept string) (Syntax, string, error) {
	accept = strings.TrimSpace(accept)
	if accept == "" || accept == "*/*" {
		return DefaultSyntax, "", nil
	}

	ranges, err := parseAccept(accept)
	if err != nil {
		return "", "", err
	}

	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].q > ranges[j].q })

	for _, r := range ranges {
		if r.q == 0 {
			continue
		}
		if r.typ == "*/*" {
			return DefaultSyntax, r.profile, nil
		}
		for _, s := range supportedSyntaxes {
			if matches(r.typ, string(s)) {
				return s, r.profile, nil
			}
		}
	}

	return "", "", apierror.NotAcceptable("no supported RDF syntax in Accept: %s", accept)
}

func matches(rangeType, syntax string) bool {
	if rangeType == syntax {
		return true
	}
	typeFamily, _, _ := strings.Cut(syntax, "/")
	rangeFamily, rangeSub, _ := strings.Cut(rangeType, "/")
	return rangeSub == "*" && rangeFamily == typeFamily
}

func parseAccept(raw string) ([]mediaRange, error) {
	var out []mediaRange
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ";")
		r := mediaRange{typ: strings.TrimSpace(fields[0]), q: 1.0}
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			key, value, ok := strings.Cut(param, "=")
			if !ok {
				continue
			}
			key = strings.ToLower(strings.TrimSpace(key))
			value = strings.Trim(strings.TrimSpace(value), `"`)
			switch key {
			case "q":
				q, err := strconv.ParseFloat(value, 64)
				if err != nil || q < 0 || q > 1 {
					return nil, apierror.BadRequest(nil, "invalid q value in Accept: %s", value)
				}
				r.q = q
			case "profile":
				r.profile = value
			}
		}
		out = append(out, r)
	}
	return out, nil
}
