// Package memento implements the RFC 7089 TimeMap/TimeGate engine (§4.6):
// given a resource's version history, it answers "which memento was
// current at time T" and builds the TimeMap/TimeGate link relation set.
package memento

import (
	"fmt"
	"sort"
	"time"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/headers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
)

// Engine answers Memento queries against a resource's VersionRange
// history, addressed by the `version=<epochMillis>` query convention every
// memento and TimeGate redirect uses (§4.6, §6).
type Engine struct {
	Identifier string // the original resource's external URL, without a query string
	Mementos   []model.VersionRange
}

// New builds an Engine from a resource's stored version history, sorted
// oldest-first so FindByDatetime can scan forward for the closest
// preceding memento.
func New(identifier string, mementos []model.VersionRange) *Engine {
	sorted := make([]model.VersionRange, len(mementos))
	copy(sorted, mementos)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From.Before(sorted[j].From) })
	return &Engine{Identifier: identifier, Mementos: sorted}
}

// FindByDatetime resolves the memento whose capture instant is the closest
// preceding datetime (RFC 7089 §4.1's negotiation when there is no exact
// interval match). An empty history, or a datetime before the earliest
// memento, is 404.
func (e *Engine) FindByDatetime(datetime time.Time) (model.VersionRange, error) {
	var best model.VersionRange
	found := false
	for _, vr := range e.Mementos {
		if vr.From.After(datetime) {
			break
		}
		best = vr
		found = true
	}
	if !found {
		return model.VersionRange{}, apierror.NotFound("no memento exists at or before %s", headers.FormatHTTPDate(datetime))
	}
	return best, nil
}

// TimeMapLinks builds the `Link` header entries shared by the TimeMap and
// TimeGate responses (§4.6): the original resource's timegate relation,
// one "memento" relation per version addressed by its epoch-millisecond
// version parameter, and a "timemap" relation summarizing the covered
// range. An empty history produces only the timegate relation.
func (e *Engine) TimeMapLinks() []string {
	links := []string{fmt.Sprintf(`<%s>; rel="original timegate"`, e.Identifier)}
	for _, vr := range e.Mementos {
		links = append(links, fmt.Sprintf(
			`<%s?version=%d>; rel="memento"; datetime="%s"`,
			e.Identifier, vr.From.UnixMilli(), headers.FormatHTTPDate(vr.From),
		))
	}
	if len(e.Mementos) > 0 {
		from := e.Mementos[0].From
		until := e.Mementos[len(e.Mementos)-1].Until
		links = append(links, fmt.Sprintf(
			`<%s?timemap=true>; rel="timemap"; type="application/link-format"; from="%s"; until="%s"`,
			e.Identifier, headers.FormatHTTPDate(from), headers.FormatHTTPDate(until),
		))
	}
	return links
}
