package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/identity"
	"github.com/OFFIS-RIT/atlas/pkg/logger"
)

// NodeInput describes one observed entity record from a harvester.
type NodeInput struct {
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Value    string            `json:"value"`
	Extra    map[string]string `json:"extra,omitempty"`

	// SourceEvent tags the observation with its source system; added to the
	// node's source set.
	SourceEvent string `json:"source_event,omitempty"`

	// Event is free text recorded in the creation history line.
	Event string `json:"event,omitempty"`
}

// CreateOrUpdateNode creates the node for (name, value) on first
// observation, or applies the observed changes to the existing node.
//
// Category changes always apply. Additional properties apply only where the
// new value differs, each change appending one history line. The source
// event joins the sorted source set if absent. When nothing changes, the
// node is returned without a write. In strict mode an existing FULL_NAME
// node is returned unmodified: bare names are not unique person identifiers
// and must not accumulate attachments.
func (c *Client) CreateOrUpdateNode(ctx context.Context, in NodeInput) (common.Node, error) {
	if in.Name == "" || in.Category == "" || in.Value == "" {
		return common.Node{}, fmt.Errorf("name, category and value must be non-empty: %w", common.ErrInvalidInput)
	}
	if err := c.schema.Validate(in.Extra); err != nil {
		return common.Node{}, err
	}

	existing, err := c.readNode(ctx, in.Name, in.Value)
	if errors.Is(err, common.ErrNotFound) {
		return c.createNode(ctx, in)
	}
	if err != nil {
		return common.Node{}, err
	}

	if c.mode == ModeStrict && existing.Name == common.NameFullName {
		return existing, nil
	}
	return c.updateNode(ctx, existing, in)
}

func (c *Client) createNode(ctx context.Context, in NodeInput) (common.Node, error) {
	extra := make(map[string]string, len(in.Extra)+1)
	for k, v := range in.Extra {
		if v != "" {
			extra[k] = v
		}
	}
	if extra[common.PropURLMain] == "" {
		if url := identity.WellKnownURL(in.Name, in.Value); url != "" {
			extra[common.PropURLMain] = url
		}
	}

	created := "Created."
	if in.Event != "" {
		created = "Created. " + in.Event
	}

	sources := []string{}
	if in.SourceEvent != "" {
		sources = []string{in.SourceEvent}
	}

	n := common.Node{
		Name:     in.Name,
		Category: in.Category,
		Value:    in.Value,
		Key:      identity.Key(in.Name, in.Value),
		History:  []string{created},
		Sources:  sources,
		Extra:    extra,
	}

	id, err := c.store.CreateNode(ctx, n)
	if err != nil {
		return common.Node{}, err
	}
	n.ID = id
	c.cache.Put(ctx, n.Key, id)

	logger.Debug("[Lifecycle] Node created", "name", n.Name, "value", n.Value, "id", id)
	return n, nil
}

func (c *Client) updateNode(ctx context.Context, n common.Node, in NodeInput) (common.Node, error) {
	changed := false

	if in.Category != "" && in.Category != n.Category {
		n.History = append(n.History, fmt.Sprintf("Updated property category from %q to %q.", n.Category, in.Category))
		n.Category = in.Category
		changed = true
	}

	keys := make([]string, 0, len(in.Extra))
	for k := range in.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := in.Extra[k]
		if v == "" || n.Extra[k] == v {
			continue
		}
		n.History = append(n.History, fmt.Sprintf("Updated property %s from %q to %q.", k, n.Extra[k], v))
		if n.Extra == nil {
			n.Extra = make(map[string]string)
		}
		n.Extra[k] = v
		changed = true
	}

	if in.SourceEvent != "" && !n.HasSource(in.SourceEvent) {
		n.Sources = append(n.Sources, in.SourceEvent)
		sort.Strings(n.Sources)
		changed = true
	}

	if !changed {
		return n, nil
	}

	updated, err := c.store.UpdateNode(ctx, n)
	if err != nil {
		return common.Node{}, err
	}
	logger.Debug("[Lifecycle] Node updated", "name", n.Name, "value", n.Value, "id", n.ID)
	return updated, nil
}

// UpdateNodeValue renames a node's value. When the new (name, value) pair
// already exists, the rename degrades to a merge into the existing node
// instead of a plain property update, so the two records consolidate rather
// than collide on the same key.
func (c *Client) UpdateNodeValue(ctx context.Context, n common.Node, newValue string) (common.Node, error) {
	if n.IsZero() || newValue == "" {
		return common.Node{}, fmt.Errorf("node and new value are required: %w", common.ErrInvalidInput)
	}
	if newValue == n.Value {
		return n, nil
	}

	existing, err := c.readNode(ctx, n.Name, newValue)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return common.Node{}, err
	}
	if err == nil && !existing.Same(n) {
		line := fmt.Sprintf("Rename of value from %q to %q collides with an existing node; merging.", n.Value, newValue)
		if err := c.appendHistory(ctx, n.ID, line); err != nil {
			return common.Node{}, err
		}
		renamed, err := c.store.ReadNodeByID(ctx, n.ID)
		if err != nil {
			return common.Node{}, err
		}
		return c.Merge(ctx, renamed, existing)
	}

	roots, err := c.rootsOf(ctx, n)
	if err != nil {
		return common.Node{}, err
	}

	oldKey := n.Key
	n.History = append(n.History, fmt.Sprintf("Updated value from %q to %q.", n.Value, newValue))
	n.Value = newValue
	n.Key = identity.Key(n.Name, newValue)

	updated, err := c.store.UpdateNode(ctx, n)
	if err != nil {
		return common.Node{}, err
	}

	// Old key out, new key in, strictly before returning to the caller.
	c.cache.Invalidate(ctx, oldKey)
	c.cache.Put(ctx, updated.Key, updated.ID)

	// A renamed FULL_NAME value changes the name lists cached on its roots.
	for _, root := range roots {
		if err := c.recomputeRootNames(ctx, root); err != nil {
			return common.Node{}, err
		}
	}

	logger.Info("[Lifecycle] Node value renamed", "name", n.Name, "value", newValue, "id", n.ID)
	return updated, nil
}

// DeleteNode removes a node on explicit operator request and refreshes the
// cached name lists of any person roots it was attached to.
func (c *Client) DeleteNode(ctx context.Context, n common.Node) error {
	if n.IsZero() {
		return fmt.Errorf("node is required: %w", common.ErrInvalidInput)
	}

	roots, err := c.rootsOf(ctx, n)
	if err != nil {
		return err
	}

	if err := c.store.DeleteNode(ctx, n.ID); err != nil {
		return err
	}
	c.cache.Invalidate(ctx, n.Key)

	for _, root := range roots {
		if err := c.recomputeRootNames(ctx, root); err != nil {
			return err
		}
	}

	logger.Info("[Lifecycle] Node deleted", "name", n.Name, "value", n.Value, "id", n.ID)
	return nil
}
