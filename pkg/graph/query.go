package graph

import (
	"context"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/store"
)

// ReadByKey resolves a node by its (name, value) identity, going through
// the identity cache.
func (c *Client) ReadByKey(ctx context.Context, name, value string) (common.Node, error) {
	return c.readNode(ctx, name, value)
}

// FindByFilters searches nodes. Empty filter fields match everything; with
// exact false the value matches as a case-insensitive substring.
func (c *Client) FindByFilters(ctx context.Context, name, category, value string, exact bool, limit int) ([]common.Node, error) {
	return c.store.FindNodes(ctx, store.Filters{
		Name:     name,
		Category: category,
		Value:    value,
		Exact:    exact,
	}, limit)
}

// NeighborsOf enumerates a node's neighbors under want/exclude filters.
// Want lists are OR within a field and AND across fields; exclude lists are
// AND-NOT.
//
// A want list on one field combined with an exclude list on the other field
// is re-filtered in memory over the unfiltered neighbor set: composing that
// AND/OR shape in a single backend query has produced incorrect results, so
// the facade does not trust it.
func (c *Client) NeighborsOf(ctx context.Context, n common.Node, f store.NeighborFilter, limit int) ([]common.Node, error) {
	if n.IsZero() {
		return nil, common.ErrNotFound
	}

	if needsLinearRefilter(f) {
		all, err := c.store.Neighbors(ctx, n.ID, store.NeighborFilter{}, 0)
		if err != nil {
			return nil, err
		}
		var result []common.Node
		for _, neighbor := range all {
			if !store.MatchNeighbor(neighbor, f) {
				continue
			}
			result = append(result, neighbor)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
		return result, nil
	}

	return c.store.Neighbors(ctx, n.ID, f, limit)
}

func needsLinearRefilter(f store.NeighborFilter) bool {
	return (len(f.Names) > 0 && len(f.ExcludeCategories) > 0) ||
		(len(f.Categories) > 0 && len(f.ExcludeNames) > 0)
}
