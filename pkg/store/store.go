// Package store defines the narrow interface the identity engine uses to
// talk to the backing graph store. Everything above this layer is
// backend-agnostic; no component outside the implementations issues
// store-specific query syntax.
package store

import (
	"context"

	"github.com/OFFIS-RIT/atlas/pkg/common"
)

// Filters selects nodes in FindNodes. Empty fields match everything. With
// Exact false, Value matches as a case-insensitive substring; Name and
// Category always match exactly.
type Filters struct {
	Name     string
	Category string
	Value    string
	Exact    bool
}

// NeighborFilter restricts Neighbors. Want lists are OR within a field and
// AND across fields; exclude lists are AND-NOT. Empty lists impose nothing.
type NeighborFilter struct {
	Names             []string
	ExcludeNames      []string
	Categories        []string
	ExcludeCategories []string
}

// NodeStore is the backend store adapter.
//
// Lookup misses return common.ErrNotFound; any I/O or backend failure wraps
// common.ErrStoreUnavailable. Each call is a single atomic unit: it either
// fully applies or fully fails, and never leaves a node's property set
// partially written.
type NodeStore interface {
	// CreateNode persists a new node and returns its opaque backend ID.
	CreateNode(ctx context.Context, n common.Node) (string, error)

	// ReadNode looks a node up by its (name, value) identity.
	ReadNode(ctx context.Context, name, value string) (common.Node, error)

	// ReadNodeByID looks a node up by its opaque backend ID.
	ReadNodeByID(ctx context.Context, id string) (common.Node, error)

	// FindNodes returns up to limit nodes matching the filters. A limit <= 0
	// means no limit. An empty result is not an error.
	FindNodes(ctx context.Context, f Filters, limit int) ([]common.Node, error)

	// UpdateNode overwrites the mutable properties of the node identified by
	// n.ID with the values carried in n.
	UpdateNode(ctx context.Context, n common.Node) (common.Node, error)

	// DeleteNode removes a node and cascades to all incident edges.
	DeleteNode(ctx context.Context, id string) error

	// CreateEdgeIfAbsent creates the logical edge between two nodes as a pair
	// of opposite directed edges. Idempotent; self-edges are rejected.
	CreateEdgeIfAbsent(ctx context.Context, idA, idB string) error

	// CountEdges returns the number of logical edges incident to a node.
	CountEdges(ctx context.Context, id string) (int, error)

	// Neighbors returns up to limit neighbors of a node under the filter.
	Neighbors(ctx context.Context, id string, f NeighborFilter, limit int) ([]common.Node, error)
}

// MatchNeighbor applies a NeighborFilter to a single node. Shared by the
// in-memory store and by the facade's in-memory re-filter fallback.
func MatchNeighbor(n common.Node, f NeighborFilter) bool {
	if len(f.Names) > 0 && !contains(f.Names, n.Name) {
		return false
	}
	if contains(f.ExcludeNames, n.Name) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, n.Category) {
		return false
	}
	if contains(f.ExcludeCategories, n.Category) {
		return false
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
