// Package graph implements the identity-resolution and consolidation engine:
// node lifecycle, person-root consolidation, bulk identifier unification,
// merging of same-identity nodes and the read facade. It talks to the graph
// backend exclusively through the store.NodeStore interface.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/identity"
	"github.com/OFFIS-RIT/atlas/pkg/store"
)

// IdentityMode governs how ambiguous identifier mappings are handled.
type IdentityMode string

const (
	// ModeStrict rejects ambiguous mappings: one-to-many unification rows are
	// dropped and double-root conflicts create no crosswise edges.
	ModeStrict IdentityMode = "strict"

	// ModeLenient keeps ambiguous mappings reachable: conflicting nodes are
	// cross-linked to both roots and the ambiguity is recorded in history.
	ModeLenient IdentityMode = "lenient"
)

const (
	defaultParallelGroups  = 4
	defaultHistoryCarryCap = 50
)

// Client is the engine's context object: the backend store handle, the
// identity cache and the identity-mode policy. Construct one per graph;
// tests run several isolated clients side by side.
type Client struct {
	store           store.NodeStore
	cache           identity.Cache
	mode            IdentityMode
	schema          *PropertySchema
	parallelGroups  int
	historyCarryCap int
}

// Params configures a Client. Store is required; everything else has
// defaults (local cache, strict mode, built-in property schema).
type Params struct {
	Store          store.NodeStore
	Cache          identity.Cache
	Mode           IdentityMode
	Schema         *PropertySchema
	ParallelGroups int
}

// NewClient creates an engine client.
func NewClient(params Params) (*Client, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required: %w", common.ErrInvalidInput)
	}

	mode := params.Mode
	if mode == "" {
		mode = ModeStrict
	}
	if mode != ModeStrict && mode != ModeLenient {
		return nil, fmt.Errorf("unknown identity mode %q: %w", mode, common.ErrInvalidInput)
	}

	cache := params.Cache
	if cache == nil {
		cache = identity.NewLocalCache(0)
	}
	schema := params.Schema
	if schema == nil {
		schema = DefaultPropertySchema()
	}
	parallel := params.ParallelGroups
	if parallel <= 0 {
		parallel = defaultParallelGroups
	}

	return &Client{
		store:           params.Store,
		cache:           cache,
		mode:            mode,
		schema:          schema,
		parallelGroups:  parallel,
		historyCarryCap: defaultHistoryCarryCap,
	}, nil
}

// Mode returns the configured identity mode.
func (c *Client) Mode() IdentityMode {
	return c.mode
}

// Close releases engine-held state. The backend store handle belongs to the
// caller and is closed there.
func (c *Client) Close(ctx context.Context) {
	c.cache.Clear(ctx)
}

// readNode resolves a (name, value) pair through the identity cache. A stale
// cache entry is invalidated and the lookup retried against the store; a
// miss is never an error condition of its own.
func (c *Client) readNode(ctx context.Context, name, value string) (common.Node, error) {
	key := identity.Key(name, value)

	if id, ok := c.cache.Get(ctx, key); ok {
		n, err := c.store.ReadNodeByID(ctx, id)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return common.Node{}, err
		}
		c.cache.Invalidate(ctx, key)
	}

	n, err := c.store.ReadNode(ctx, name, value)
	if err != nil {
		return common.Node{}, err
	}
	c.cache.Put(ctx, key, n.ID)
	return n, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

// appendHistory re-reads a node and appends one audit line to its history.
func (c *Client) appendHistory(ctx context.Context, id, line string) error {
	n, err := c.store.ReadNodeByID(ctx, id)
	if err != nil {
		return err
	}
	n.History = append(n.History, line)
	_, err = c.store.UpdateNode(ctx, n)
	return err
}
