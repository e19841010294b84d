package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/identity"
	"github.com/OFFIS-RIT/atlas/pkg/logger"
	"github.com/OFFIS-RIT/atlas/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// nameListSeparator joins the display names cached on a person root's
// comment property.
const nameListSeparator = "; "

// rootsOf returns the person roots a node is attached to. In a consistent
// strict-mode graph a person node has exactly one; lenient-mode cross-links
// can produce several.
func (c *Client) rootsOf(ctx context.Context, n common.Node) ([]common.Node, error) {
	return c.store.Neighbors(ctx, n.ID, store.NeighborFilter{
		Names: []string{common.PersonRootName},
	}, 0)
}

// createRoot creates a fresh person root. The value is a unique token with
// no external meaning.
func (c *Client) createRoot(ctx context.Context) (common.Node, error) {
	token, err := gonanoid.New()
	if err != nil {
		return common.Node{}, err
	}

	root := common.Node{
		Name:     common.PersonRootName,
		Category: common.CategoryPerson,
		Value:    token,
		Key:      identity.Key(common.PersonRootName, token),
		History:  []string{"Created."},
		Sources:  []string{},
		Extra:    map[string]string{},
	}

	id, err := c.store.CreateNode(ctx, root)
	if err != nil {
		return common.Node{}, err
	}
	root.ID = id
	c.cache.Put(ctx, root.Key, id)

	logger.Debug("[Roots] Person root created", "id", id)
	return root, nil
}

// attachToRoot links a node to a person root and keeps the root's cached
// name list current when the node carries a display name.
func (c *Client) attachToRoot(ctx context.Context, n, root common.Node) error {
	if err := c.store.CreateEdgeIfAbsent(ctx, n.ID, root.ID); err != nil {
		return err
	}
	if n.Name == common.NameFullName {
		return c.addNameToRoot(ctx, root, n.Value)
	}
	return nil
}

// ensureRoot resolves the person root of a person node, creating and
// attaching a fresh one when none exists.
func (c *Client) ensureRoot(ctx context.Context, person common.Node) (common.Node, error) {
	roots, err := c.rootsOf(ctx, person)
	if err != nil {
		return common.Node{}, err
	}
	if len(roots) > 0 {
		return roots[0], nil
	}

	root, err := c.createRoot(ctx)
	if err != nil {
		return common.Node{}, err
	}
	if err := c.attachToRoot(ctx, person, root); err != nil {
		return common.Node{}, err
	}
	return root, nil
}

// addNameToRoot appends a display name to the root's cached name list if
// absent. The list lives in the root's comment property so UIs can show all
// known names of a person without a second traversal.
func (c *Client) addNameToRoot(ctx context.Context, root common.Node, name string) error {
	fresh, err := c.store.ReadNodeByID(ctx, root.ID)
	if err != nil {
		return err
	}

	names := splitNameList(fresh.Extra[common.PropComment])
	for _, existing := range names {
		if existing == name {
			return nil
		}
	}
	names = append(names, name)
	sort.Strings(names)

	if fresh.Extra == nil {
		fresh.Extra = make(map[string]string)
	}
	fresh.Extra[common.PropComment] = strings.Join(names, nameListSeparator)
	_, err = c.store.UpdateNode(ctx, fresh)
	return err
}

// recomputeRootNames rebuilds the root's cached name list from its
// FULL_NAME neighbors. Structural changes (merge, delete) always trigger a
// full re-scan; the bounded re-enumeration buys guaranteed consistency.
func (c *Client) recomputeRootNames(ctx context.Context, root common.Node) error {
	fresh, err := c.store.ReadNodeByID(ctx, root.ID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	neighbors, err := c.store.Neighbors(ctx, root.ID, store.NeighborFilter{
		Names: []string{common.NameFullName},
	}, 0)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		names = append(names, n.Value)
	}
	sort.Strings(names)
	joined := strings.Join(names, nameListSeparator)

	if fresh.Extra[common.PropComment] == joined {
		return nil
	}
	if fresh.Extra == nil {
		fresh.Extra = make(map[string]string)
	}
	fresh.Extra[common.PropComment] = joined
	_, err = c.store.UpdateNode(ctx, fresh)
	return err
}

func splitNameList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, nameListSeparator)
}
