package graph

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/atlas/pkg/common"
)

func TestUnifyTableValidation(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)

	_, err := c.UnifyTable(ctx, Table{Columns: []string{common.NameORCID}})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("single column: err = %v, want ErrInvalidInput", err)
	}

	_, err = c.UnifyTable(ctx, Table{
		Columns: []string{common.NameORCID, common.NameISNI},
		Rows:    [][]string{{"0000-1"}},
	})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("ragged row: err = %v, want ErrInvalidInput", err)
	}
}

func TestUnifyTableLinksColumnPairs(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	stats, err := c.UnifyTable(ctx, Table{
		Columns: []string{common.NameORCID, common.NameISNI, common.NameFullName},
		Rows: [][]string{
			{"0000-1", "1111", "A. Example"},
		},
		Source: "openalex-2026-08",
	})
	if err != nil {
		t.Fatalf("UnifyTable: %v", err)
	}

	want := UnifyStats{Groups: 1, Pairs: 3, Linked: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	roots := personRoots(t, s)
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	keys := neighborKeys(t, s, roots[0].ID)
	for _, k := range []string{"0000-1|orcid", "1111|isni", "a. example|full_name"} {
		if !keys[k] {
			t.Errorf("root missing neighbor %s, got %v", k, keys)
		}
	}

	root, err := s.ReadNodeByID(ctx, roots[0].ID)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if root.Extra[common.PropComment] != "A. Example" {
		t.Errorf("root name cache = %q", root.Extra[common.PropComment])
	}

	orcid, err := c.ReadByKey(ctx, common.NameORCID, "0000-1")
	if err != nil {
		t.Fatalf("ReadByKey: %v", err)
	}
	if !reflect.DeepEqual(orcid.Sources, []string{"openalex-2026-08"}) {
		t.Errorf("Sources = %v", orcid.Sources)
	}
}

func TestUnifyTableSkipsEmptyCellsAndDuplicateRows(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	stats, err := c.UnifyTable(ctx, Table{
		Columns: []string{common.NameORCID, common.NameISNI},
		Rows: [][]string{
			{"0000-1", "1111"},
			{"0000-1", "1111"}, // exact duplicate
			{"0000-2", ""},     // missing counterpart
		},
	})
	if err != nil {
		t.Fatalf("UnifyTable: %v", err)
	}

	if stats.Pairs != 1 || stats.Linked != 1 || stats.Dropped != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(personRoots(t, s)) != 1 {
		t.Errorf("got %d roots, want 1", len(personRoots(t, s)))
	}
	// The lone value never met a counterpart, so no node was created for it.
	if _, err := c.ReadByKey(ctx, common.NameORCID, "0000-2"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("unpaired value materialized a node, err = %v", err)
	}
}

func TestUnifyTableDisjointRowsGetSeparateRoots(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	stats, err := c.UnifyTable(ctx, Table{
		Columns: []string{common.NameORCID, common.NameISNI},
		Rows: [][]string{
			{"0000-1", "1111"},
			{"0000-2", "2222"},
		},
	})
	if err != nil {
		t.Fatalf("UnifyTable: %v", err)
	}

	if stats.Groups != 2 || stats.Linked != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(personRoots(t, s)) != 2 {
		t.Errorf("got %d roots, want 2", len(personRoots(t, s)))
	}
}

func TestUnifyTableOneToManyStrict(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	stats, err := c.UnifyTable(ctx, Table{
		Columns: []string{common.NameORCID, common.NameISNI},
		Rows: [][]string{
			{"0000-1", "1111"},
			{"0000-1", "2222"},
		},
	})
	if err != nil {
		t.Fatalf("UnifyTable: %v", err)
	}

	want := UnifyStats{Groups: 1, Pairs: 2, Dropped: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if len(personRoots(t, s)) != 0 {
		t.Error("dropped pairs still created roots")
	}
}

func TestUnifyTableOneToManyLenient(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeLenient)

	stats, err := c.UnifyTable(ctx, Table{
		Columns: []string{common.NameORCID, common.NameISNI},
		Rows: [][]string{
			{"0000-1", "1111"},
			{"0000-1", "2222"},
		},
	})
	if err != nil {
		t.Fatalf("UnifyTable: %v", err)
	}

	want := UnifyStats{Groups: 1, Pairs: 2, Linked: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	roots := personRoots(t, s)
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	keys := neighborKeys(t, s, roots[0].ID)
	for _, k := range []string{"0000-1|orcid", "1111|isni", "2222|isni"} {
		if !keys[k] {
			t.Errorf("root missing neighbor %s", k)
		}
	}

	for _, value := range []string{"1111", "2222"} {
		n, err := c.ReadByKey(ctx, common.NameISNI, value)
		if err != nil {
			t.Fatalf("ReadByKey: %v", err)
		}
		last := n.History[len(n.History)-1]
		if !strings.Contains(last, "Ambiguous identifier mapping") {
			t.Errorf("node %s missing ambiguity note, history = %v", n.Key, n.History)
		}
	}
}

func TestUnifyTableColumnOrderIsIrrelevant(t *testing.T) {
	ctx := context.Background()

	build := func(columns []string, rows [][]string) []string {
		c, s := newTestClient(t, ModeStrict)
		if _, err := c.UnifyTable(ctx, Table{Columns: columns, Rows: rows}); err != nil {
			t.Fatalf("UnifyTable: %v", err)
		}

		var shape []string
		for _, root := range personRoots(t, s) {
			keys := neighborKeys(t, s, root.ID)
			var sorted []string
			for k := range keys {
				sorted = append(sorted, k)
			}
			sort.Strings(sorted)
			shape = append(shape, strings.Join(sorted, ","))
		}
		sort.Strings(shape)
		return shape
	}

	forward := build(
		[]string{common.NameORCID, common.NameISNI},
		[][]string{{"0000-1", "1111"}, {"0000-2", "2222"}},
	)
	reversed := build(
		[]string{common.NameISNI, common.NameORCID},
		[][]string{{"1111", "0000-1"}, {"2222", "0000-2"}},
	)

	if !reflect.DeepEqual(forward, reversed) {
		t.Errorf("column order changed the result:\n%v\nvs\n%v", forward, reversed)
	}
}

func TestPartitionRows(t *testing.T) {
	table := Table{
		Columns: []string{common.NameORCID, common.NameISNI},
		Rows: [][]string{
			{"0000-1", "1111"},
			{"0000-2", "2222"},
			{"0000-1", "3333"}, // shares ORCID with row 0
			{"", ""},           // connects to nothing
		},
	}

	groups := partitionRows(table)

	want := [][]int{{0, 2}, {1}, {3}}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("groups = %v, want %v", groups, want)
	}
}
