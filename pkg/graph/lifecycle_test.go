package graph

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/atlas/pkg/common"
)

func TestCreateOrUpdateNodeRejectsEmptyFields(t *testing.T) {
	c, _ := newTestClient(t, ModeStrict)

	tests := []struct {
		name string
		in   NodeInput
	}{
		{"empty name", NodeInput{Category: "person", Value: "v"}},
		{"empty category", NodeInput{Name: "ORCID", Value: "v"}},
		{"empty value", NodeInput{Name: "ORCID", Category: "person"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateOrUpdateNode(context.Background(), tt.in)
			if !errors.Is(err, common.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateOrUpdateNodeRejectsUnknownProperty(t *testing.T) {
	c, _ := newTestClient(t, ModeStrict)

	_, err := c.CreateOrUpdateNode(context.Background(), NodeInput{
		Name:     "ORCID",
		Category: "person",
		Value:    "0000-1",
		Extra:    map[string]string{"favorite_color": "green"},
	})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateNodeDefaults(t *testing.T) {
	c, _ := newTestClient(t, ModeStrict)

	n, err := c.CreateOrUpdateNode(context.Background(), NodeInput{
		Name:        "ORCID",
		Category:    "person",
		Value:       "0000-0002-1825-0097",
		SourceEvent: "openalex-2026-08",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateNode: %v", err)
	}

	if n.Key != "0000-0002-1825-0097|orcid" {
		t.Errorf("Key = %q", n.Key)
	}
	if got := n.Extra[common.PropURLMain]; got != "https://orcid.org/0000-0002-1825-0097" {
		t.Errorf("url_main = %q", got)
	}
	if !reflect.DeepEqual(n.History, []string{"Created."}) {
		t.Errorf("History = %v", n.History)
	}
	if !reflect.DeepEqual(n.Sources, []string{"openalex-2026-08"}) {
		t.Errorf("Sources = %v", n.Sources)
	}
}

func TestCreateNodeKeepsSuppliedURL(t *testing.T) {
	c, _ := newTestClient(t, ModeStrict)

	n, err := c.CreateOrUpdateNode(context.Background(), NodeInput{
		Name:     "ORCID",
		Category: "person",
		Value:    "0000-1",
		Extra:    map[string]string{common.PropURLMain: "https://example.org/profile"},
		Event:    "harvested from staff directory",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateNode: %v", err)
	}

	if n.Extra[common.PropURLMain] != "https://example.org/profile" {
		t.Errorf("url_main overridden: %q", n.Extra[common.PropURLMain])
	}
	if n.History[0] != "Created. harvested from staff directory" {
		t.Errorf("History[0] = %q", n.History[0])
	}
}

func TestUpdateNodeAppliesChanges(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)
	mustNode(t, c, "DOI", "article", "10.1/x")

	n, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name:        "DOI",
		Category:    "dataset",
		Value:       "10.1/x",
		Extra:       map[string]string{common.PropYear: "2024"},
		SourceEvent: "pure-2026-08",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateNode: %v", err)
	}

	if n.Category != "dataset" {
		t.Errorf("Category = %q, want dataset", n.Category)
	}
	if n.Extra[common.PropYear] != "2024" {
		t.Errorf("year = %q", n.Extra[common.PropYear])
	}
	want := []string{
		"Created.",
		`Updated property category from "article" to "dataset".`,
		`Updated property year from "" to "2024".`,
	}
	if !reflect.DeepEqual(n.History, want) {
		t.Errorf("History = %v, want %v", n.History, want)
	}
	if !reflect.DeepEqual(n.Sources, []string{"pure-2026-08"}) {
		t.Errorf("Sources = %v", n.Sources)
	}
}

func TestUpdateNodeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)

	in := NodeInput{
		Name:        "DOI",
		Category:    "article",
		Value:       "10.1/x",
		Extra:       map[string]string{common.PropYear: "2024"},
		SourceEvent: "pure-2026-08",
	}
	first, err := c.CreateOrUpdateNode(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := c.CreateOrUpdateNode(ctx, in)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}

	if !reflect.DeepEqual(first.History, second.History) {
		t.Errorf("repeat observation changed history: %v vs %v", first.History, second.History)
	}
	if !reflect.DeepEqual(first.Sources, second.Sources) {
		t.Errorf("repeat observation changed sources: %v vs %v", first.Sources, second.Sources)
	}
}

func TestSourceTagsAreSortedSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)

	for _, tag := range []string{"pure-2026", "openalex-2026", "pure-2026"} {
		_, err := c.CreateOrUpdateNode(ctx, NodeInput{
			Name: "DOI", Category: "article", Value: "10.1/x", SourceEvent: tag,
		})
		if err != nil {
			t.Fatalf("CreateOrUpdateNode(%s): %v", tag, err)
		}
	}

	n, err := c.ReadByKey(ctx, "DOI", "10.1/x")
	if err != nil {
		t.Fatalf("ReadByKey: %v", err)
	}
	want := []string{"openalex-2026", "pure-2026"}
	if !reflect.DeepEqual(n.Sources, want) {
		t.Errorf("Sources = %v, want %v", n.Sources, want)
	}
}

func TestStrictModeLeavesFullNameNodesUntouched(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)
	created := mustNode(t, c, common.NameFullName, "person", "A. Example")

	got, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name:     common.NameFullName,
		Category: "person",
		Value:    "A. Example",
		Extra:    map[string]string{common.PropComment: "should not stick"},
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateNode: %v", err)
	}

	if !got.Same(created) {
		t.Fatalf("expected the existing node back")
	}
	if got.Extra[common.PropComment] != "" {
		t.Errorf("strict mode modified a FULL_NAME node: %v", got.Extra)
	}
}

func TestLenientModeUpdatesFullNameNodes(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeLenient)
	mustNode(t, c, common.NameFullName, "person", "A. Example")

	got, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name:     common.NameFullName,
		Category: "person",
		Value:    "A. Example",
		Extra:    map[string]string{common.PropComment: "curated"},
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateNode: %v", err)
	}
	if got.Extra[common.PropComment] != "curated" {
		t.Errorf("lenient mode did not update the node: %v", got.Extra)
	}
}

func TestUpdateNodeValueRename(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)
	n := mustNode(t, c, "ORCID", "person", "0000-1")

	// Warm the cache with the old key first.
	if _, err := c.ReadByKey(ctx, "ORCID", "0000-1"); err != nil {
		t.Fatalf("ReadByKey: %v", err)
	}

	renamed, err := c.UpdateNodeValue(ctx, n, "0000-2")
	if err != nil {
		t.Fatalf("UpdateNodeValue: %v", err)
	}

	if renamed.Value != "0000-2" || renamed.Key != "0000-2|orcid" {
		t.Errorf("renamed node = %+v", renamed)
	}
	if _, err := c.ReadByKey(ctx, "ORCID", "0000-1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("old key still resolves, err = %v", err)
	}
	got, err := c.ReadByKey(ctx, "ORCID", "0000-2")
	if err != nil {
		t.Fatalf("ReadByKey new value: %v", err)
	}
	if !got.Same(renamed) {
		t.Errorf("new key resolves to a different node")
	}

	last := renamed.History[len(renamed.History)-1]
	if last != `Updated value from "0000-1" to "0000-2".` {
		t.Errorf("history line = %q", last)
	}
}

func TestUpdateNodeValueSameValueIsNoOp(t *testing.T) {
	c, _ := newTestClient(t, ModeStrict)
	n := mustNode(t, c, "ORCID", "person", "0000-1")

	got, err := c.UpdateNodeValue(context.Background(), n, "0000-1")
	if err != nil {
		t.Fatalf("UpdateNodeValue: %v", err)
	}
	if len(got.History) != len(n.History) {
		t.Errorf("no-op rename wrote history: %v", got.History)
	}
}

func TestUpdateNodeValueRecomputesRootNames(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	orcid := mustNode(t, c, common.NameORCID, "person", "0000-1")
	name := mustNode(t, c, common.NameFullName, "person", "A. Exmaple")
	if err := c.Connect(ctx, orcid, name); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	roots := personRoots(t, s)
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}

	// Fix the typo in the display name.
	if _, err := c.UpdateNodeValue(ctx, name, "A. Example"); err != nil {
		t.Fatalf("UpdateNodeValue: %v", err)
	}

	root, err := s.ReadNodeByID(ctx, roots[0].ID)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if root.Extra[common.PropComment] != "A. Example" {
		t.Errorf("root name cache = %q, want %q", root.Extra[common.PropComment], "A. Example")
	}
}

func TestDeleteNodeRecomputesRootNames(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	orcid := mustNode(t, c, common.NameORCID, "person", "0000-1")
	name := mustNode(t, c, common.NameFullName, "person", "A. Example")
	if err := c.Connect(ctx, orcid, name); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	roots := personRoots(t, s)
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	root, err := s.ReadNodeByID(ctx, roots[0].ID)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if root.Extra[common.PropComment] != "A. Example" {
		t.Fatalf("root name cache = %q", root.Extra[common.PropComment])
	}

	if err := c.DeleteNode(ctx, name); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	root, err = s.ReadNodeByID(ctx, roots[0].ID)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if root.Extra[common.PropComment] != "" {
		t.Errorf("root name cache not recomputed: %q", root.Extra[common.PropComment])
	}
}
