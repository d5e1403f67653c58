// Package memstore is an in-memory ResourceService, useful for tests and
// for running the server without a Postgres dependency. It is not a
// production store: everything is lost on restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
)

type entry struct {
	resource model.Resource
	quads    map[string][]rdf.Quad // keyed by graph IRI
	history  []versionedEntry
}

type versionedEntry struct {
	at       time.Time
	resource model.Resource
	quads    map[string][]rdf.Quad
}

// Store is a mutex-guarded map of internal identifier to resource state.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	roots   map[string][]string // parentID -> childIDs, in creation order
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		roots:   make(map[string][]string),
	}
}

func (s *Store) Get(ctx context.Context, internalID string, datetime time.Time) (*model.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[internalID]
	if !ok {
		return nil, apierror.NotFound("no such resource: %s", internalID)
	}
	if datetime.IsZero() {
		res := e.resource
		return &res, nil
	}

	var best *versionedEntry
	for i := range e.history {
		if e.history[i].at.After(datetime) {
			break
		}
		best = &e.history[i]
	}
	if best == nil {
		return nil, apierror.NotFound("no memento of %s at or before %s", internalID, datetime)
	}
	res := best.resource
	return &res, nil
}

func (s *Store) Quads(ctx context.Context, internalID string, graphs []string) ([]rdf.Quad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[internalID]
	if !ok {
		return nil, apierror.NotFound("no such resource: %s", internalID)
	}
	if len(graphs) == 0 {
		graphs = []string{model.PreferUserManaged}
	}
	var out []rdf.Quad
	for _, g := range graphs {
		out = append(out, e.quads[g]...)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, internalID, parentID string, res *model.Resource, quads []rdf.Quad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[internalID]; exists {
		return apierror.Conflict("resource already exists: %s", internalID)
	}
	e := &entry{resource: *res, quads: groupByGraph(quads)}
	e.resource.HasACL = len(e.quads[model.PreferAccessControl]) > 0
	e.history = append(e.history, versionedEntry{at: res.Modified, resource: e.resource, quads: e.quads})
	s.entries[internalID] = e

	if parentID != "" {
		s.roots[parentID] = append(s.roots[parentID], internalID)
	}
	return nil
}

func (s *Store) Replace(ctx context.Context, internalID string, res *model.Resource, quads []rdf.Quad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[internalID]
	if !ok {
		return apierror.NotFound("no such resource: %s", internalID)
	}
	e.resource = *res
	e.quads = groupByGraph(quads)
	e.resource.HasACL = len(e.quads[model.PreferAccessControl]) > 0
	e.history = append(e.history, versionedEntry{at: res.Modified, resource: e.resource, quads: e.quads})
	return nil
}

func (s *Store) Delete(ctx context.Context, internalID string, recursive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[internalID]
	if !ok {
		return apierror.NotFound("no such resource: %s", internalID)
	}
	if recursive {
		for _, child := range s.roots[internalID] {
			delete(s.entries, child)
		}
		delete(s.roots, internalID)
	}
	e.resource.Types = append(e.resource.Types, model.DeletedResourceType)
	return nil
}

func (s *Store) Children(ctx context.Context, internalID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := make([]string, len(s.roots[internalID]))
	copy(children, s.roots[internalID])
	sort.Strings(children)
	return children, nil
}

func (s *Store) Mementos(ctx context.Context, internalID string) ([]model.VersionRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[internalID]
	if !ok {
		return nil, apierror.NotFound("no such resource: %s", internalID)
	}
	var out []model.VersionRange
	for i, v := range e.history {
		until := time.Now()
		if i+1 < len(e.history) {
			until = e.history[i+1].at
		}
		out = append(out, model.VersionRange{From: v.at, Until: until})
	}
	return out, nil
}

func groupByGraph(quads []rdf.Quad) map[string][]rdf.Quad {
	out := make(map[string][]rdf.Quad)
	for _, q := range quads {
		key := q.Graph.Value
		if key == "" {
			key = model.PreferUserManaged
		}
		out[key] = append(out[key], q)
	}
	return out
}
