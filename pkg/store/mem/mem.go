// Package mem provides an in-memory NodeStore used by tests and
// single-process development runs.
package mem

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/store"
)

// Store is a mutex-guarded map-backed NodeStore. Node values are copied on
// the way in and out so callers never share slice or map memory with the
// stored records.
type Store struct {
	mu     sync.Mutex
	nextID int64
	nodes  map[string]common.Node
	byPair map[string]string
	edges  map[string]map[string]struct{}

	// FailWith, when set, is returned by every subsequent call. Tests use it
	// to exercise store-unavailable handling.
	FailWith error
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		nextID: 1,
		nodes:  make(map[string]common.Node),
		byPair: make(map[string]string),
		edges:  make(map[string]map[string]struct{}),
	}
}

func pairKey(name, value string) string {
	return name + "\x00" + value
}

func cloneNode(n common.Node) common.Node {
	c := n
	c.History = append([]string(nil), n.History...)
	c.Sources = append([]string(nil), n.Sources...)
	if n.Extra != nil {
		c.Extra = make(map[string]string, len(n.Extra))
		for k, v := range n.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

func (s *Store) CreateNode(_ context.Context, n common.Node) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return "", s.FailWith
	}

	pk := pairKey(n.Name, n.Value)
	if _, exists := s.byPair[pk]; exists {
		return "", fmt.Errorf("node (%s, %s) already exists: %w", n.Name, n.Value, common.ErrStoreUnavailable)
	}

	id := strconv.FormatInt(s.nextID, 10)
	s.nextID++

	n.ID = id
	s.nodes[id] = cloneNode(n)
	s.byPair[pk] = id
	s.edges[id] = make(map[string]struct{})
	return id, nil
}

func (s *Store) ReadNode(_ context.Context, name, value string) (common.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return common.Node{}, s.FailWith
	}

	id, ok := s.byPair[pairKey(name, value)]
	if !ok {
		return common.Node{}, common.ErrNotFound
	}
	return cloneNode(s.nodes[id]), nil
}

func (s *Store) ReadNodeByID(_ context.Context, id string) (common.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return common.Node{}, s.FailWith
	}

	n, ok := s.nodes[id]
	if !ok {
		return common.Node{}, common.ErrNotFound
	}
	return cloneNode(n), nil
}

func (s *Store) FindNodes(_ context.Context, f store.Filters, limit int) ([]common.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	var result []common.Node
	for _, n := range s.nodes {
		if !matchFilters(n, f) {
			continue
		}
		result = append(result, cloneNode(n))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func matchFilters(n common.Node, f store.Filters) bool {
	if f.Name != "" && n.Name != f.Name {
		return false
	}
	if f.Category != "" && n.Category != f.Category {
		return false
	}
	if f.Value != "" {
		if f.Exact {
			if n.Value != f.Value {
				return false
			}
		} else if !strings.Contains(strings.ToLower(n.Value), strings.ToLower(f.Value)) {
			return false
		}
	}
	return true
}

func (s *Store) UpdateNode(_ context.Context, n common.Node) (common.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return common.Node{}, s.FailWith
	}

	old, ok := s.nodes[n.ID]
	if !ok {
		return common.Node{}, common.ErrNotFound
	}

	if pairKey(old.Name, old.Value) != pairKey(n.Name, n.Value) {
		if _, taken := s.byPair[pairKey(n.Name, n.Value)]; taken {
			return common.Node{}, fmt.Errorf("node (%s, %s) already exists: %w", n.Name, n.Value, common.ErrStoreUnavailable)
		}
		delete(s.byPair, pairKey(old.Name, old.Value))
		s.byPair[pairKey(n.Name, n.Value)] = n.ID
	}

	s.nodes[n.ID] = cloneNode(n)
	return cloneNode(n), nil
}

func (s *Store) DeleteNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}

	n, ok := s.nodes[id]
	if !ok {
		return common.ErrNotFound
	}

	for neighbor := range s.edges[id] {
		delete(s.edges[neighbor], id)
	}
	delete(s.edges, id)
	delete(s.byPair, pairKey(n.Name, n.Value))
	delete(s.nodes, id)
	return nil
}

func (s *Store) CreateEdgeIfAbsent(_ context.Context, idA, idB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}

	if idA == idB {
		return fmt.Errorf("self-edge on node %s: %w", idA, common.ErrInvalidInput)
	}
	if _, ok := s.nodes[idA]; !ok {
		return common.ErrNotFound
	}
	if _, ok := s.nodes[idB]; !ok {
		return common.ErrNotFound
	}

	s.edges[idA][idB] = struct{}{}
	s.edges[idB][idA] = struct{}{}
	return nil
}

func (s *Store) CountEdges(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}

	if _, ok := s.nodes[id]; !ok {
		return 0, common.ErrNotFound
	}
	return len(s.edges[id]), nil
}

func (s *Store) Neighbors(_ context.Context, id string, f store.NeighborFilter, limit int) ([]common.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	if _, ok := s.nodes[id]; !ok {
		return nil, common.ErrNotFound
	}

	var result []common.Node
	for neighbor := range s.edges[id] {
		n := s.nodes[neighbor]
		if !store.MatchNeighbor(n, f) {
			continue
		}
		result = append(result, cloneNode(n))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
