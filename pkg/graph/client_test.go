package graph

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/store"
	"github.com/OFFIS-RIT/atlas/pkg/store/mem"
)

func newTestClient(t *testing.T, mode IdentityMode) (*Client, *mem.Store) {
	t.Helper()
	s := mem.New()
	c, err := NewClient(Params{Store: s, Mode: mode})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, s
}

func mustNode(t *testing.T, c *Client, name, category, value string) common.Node {
	t.Helper()
	n, err := c.CreateOrUpdateNode(context.Background(), NodeInput{
		Name:     name,
		Category: category,
		Value:    value,
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateNode(%s, %s): %v", name, value, err)
	}
	return n
}

func personRoots(t *testing.T, s *mem.Store) []common.Node {
	t.Helper()
	roots, err := s.FindNodes(context.Background(), store.Filters{Name: common.PersonRootName}, 0)
	if err != nil {
		t.Fatalf("FindNodes(person-root): %v", err)
	}
	return roots
}

func neighborKeys(t *testing.T, s *mem.Store, id string) map[string]bool {
	t.Helper()
	neighbors, err := s.Neighbors(context.Background(), id, store.NeighborFilter{}, 0)
	if err != nil {
		t.Fatalf("Neighbors(%s): %v", id, err)
	}
	keys := make(map[string]bool, len(neighbors))
	for _, n := range neighbors {
		keys[n.Key] = true
	}
	return keys
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Params{}); err == nil {
		t.Error("NewClient without store succeeded")
	}
	if _, err := NewClient(Params{Store: mem.New(), Mode: "permissive"}); err == nil {
		t.Error("NewClient with unknown mode succeeded")
	}

	c, err := NewClient(Params{Store: mem.New()})
	if err != nil {
		t.Fatalf("NewClient with defaults: %v", err)
	}
	if c.Mode() != ModeStrict {
		t.Errorf("default mode = %q, want strict", c.Mode())
	}
}
