package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/logger"
	"github.com/OFFIS-RIT/atlas/pkg/store"
)

// Merge physically consolidates two records of the same real-world entity:
// every edge of from is re-homed onto to (minus would-be self-edges), the
// source sets are unioned, from's history and former neighbor keys are
// preserved in to's history, and from is deleted.
//
// Nodes of differing name or category never merge (ErrIncompatibleMerge);
// merging a node with itself is a no-op.
func (c *Client) Merge(ctx context.Context, from, to common.Node) (common.Node, error) {
	if from.IsZero() || to.IsZero() {
		return common.Node{}, fmt.Errorf("both nodes are required: %w", common.ErrInvalidInput)
	}
	if from.Name != to.Name || from.Category != to.Category {
		return common.Node{}, fmt.Errorf(
			"cannot merge (%s, %s) into (%s, %s): %w",
			from.Name, from.Category, to.Name, to.Category, common.ErrIncompatibleMerge)
	}
	if from.Same(to) {
		return to, nil
	}

	// A zero-edge from node degrades to delete plus property update; the
	// shared path below produces that exact state with an empty neighbor set.
	var neighbors []common.Node
	count, err := c.store.CountEdges(ctx, from.ID)
	if err != nil {
		return common.Node{}, err
	}
	if count > 0 {
		neighbors, err = c.store.Neighbors(ctx, from.ID, store.NeighborFilter{}, 0)
		if err != nil {
			return common.Node{}, err
		}
	}

	for _, n := range neighbors {
		if n.Same(to) {
			continue
		}
		if err := c.store.CreateEdgeIfAbsent(ctx, to.ID, n.ID); err != nil {
			return common.Node{}, err
		}
	}

	to.Sources = unionSorted(to.Sources, from.Sources)
	to.History = append(to.History, c.mergeHistoryBlock(from, neighbors)...)

	updated, err := c.store.UpdateNode(ctx, to)
	if err != nil {
		return common.Node{}, err
	}

	if err := c.store.DeleteNode(ctx, from.ID); err != nil {
		return common.Node{}, err
	}
	c.cache.Invalidate(ctx, from.Key)
	c.cache.Put(ctx, updated.Key, updated.ID)

	if updated.IsPersonRoot() {
		if err := c.recomputeRootNames(ctx, updated); err != nil {
			return common.Node{}, err
		}
	}
	for _, n := range neighbors {
		if n.IsPersonRoot() {
			if err := c.recomputeRootNames(ctx, n); err != nil {
				return common.Node{}, err
			}
		}
	}

	final, err := c.store.ReadNodeByID(ctx, updated.ID)
	if err != nil {
		return common.Node{}, err
	}

	logger.Info("[Merge] Nodes merged",
		"from", from.Key, "to", final.Key, "rehomed_edges", len(neighbors))
	return final, nil
}

// mergeHistoryBlock builds the structured audit block recorded on the
// surviving node: a merge marker, the absorbed node's history capped at
// historyCarryCap lines, and the absorbed node's former neighbor keys.
func (c *Client) mergeHistoryBlock(from common.Node, neighbors []common.Node) []string {
	lines := []string{fmt.Sprintf("Merged node %s into this node and deleted it.", from.Key)}

	carry := from.History
	truncated := false
	if len(carry) > c.historyCarryCap {
		carry = carry[:c.historyCarryCap]
		truncated = true
	}
	lines = append(lines, carry...)
	if truncated {
		lines = append(lines, "History list truncated.")
	}

	if len(neighbors) > 0 {
		keys := make([]string, 0, len(neighbors))
		for _, n := range neighbors {
			keys = append(keys, n.Key)
		}
		sort.Strings(keys)
		lines = append(lines, "Former neighbors: "+strings.Join(keys, ", "))
	}
	return lines
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	sort.Strings(result)
	return result
}
