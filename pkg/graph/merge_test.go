package graph

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/atlas/pkg/common"
)

func TestMergeValidation(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)

	doi := mustNode(t, c, "DOI", "article", "10.1/x")
	orcid := mustNode(t, c, common.NameORCID, "person", "0000-1")

	if _, err := c.Merge(ctx, common.Node{}, doi); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("zero from: err = %v, want ErrInvalidInput", err)
	}
	if _, err := c.Merge(ctx, doi, orcid); !errors.Is(err, common.ErrIncompatibleMerge) {
		t.Errorf("name mismatch: err = %v, want ErrIncompatibleMerge", err)
	}

	dataset := mustNode(t, c, "DOI", "dataset", "10.1/y")
	if _, err := c.Merge(ctx, doi, dataset); !errors.Is(err, common.ErrIncompatibleMerge) {
		t.Errorf("category mismatch: err = %v, want ErrIncompatibleMerge", err)
	}
}

func TestMergeSelfIsNoOp(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)
	doi := mustNode(t, c, "DOI", "article", "10.1/x")

	got, err := c.Merge(ctx, doi, doi)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !got.Same(doi) {
		t.Errorf("self merge returned a different node")
	}
	if _, err := c.ReadByKey(ctx, "DOI", "10.1/x"); err != nil {
		t.Errorf("self merge removed the node: %v", err)
	}
}

func TestMergeRehomesEdgesAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	from, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name: "DOI", Category: "article", Value: "10.1/dup", SourceEvent: "pure-2026",
	})
	if err != nil {
		t.Fatalf("create from: %v", err)
	}
	to, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name: "DOI", Category: "article", Value: "10.1/x", SourceEvent: "openalex-2026",
	})
	if err != nil {
		t.Fatalf("create to: %v", err)
	}

	org := mustNode(t, c, "ROR", "organization", "abc123")
	journal := mustNode(t, c, "ISSN", "journal", "1234-5678")
	for _, n := range []common.Node{org, journal} {
		if err := c.Connect(ctx, from, n); err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	// A neighbor shared with to already; re-homing must not duplicate it.
	if err := c.Connect(ctx, to, org); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	final, err := c.Merge(ctx, from, to)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if _, err := c.ReadByKey(ctx, "DOI", "10.1/dup"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("absorbed node still resolves, err = %v", err)
	}

	keys := neighborKeys(t, s, final.ID)
	if !keys[org.Key] || !keys[journal.Key] {
		t.Errorf("edges not re-homed, neighbors = %v", keys)
	}
	count, err := s.CountEdges(ctx, final.ID)
	if err != nil {
		t.Fatalf("CountEdges: %v", err)
	}
	if count != 2 {
		t.Errorf("edge count = %d, want 2", count)
	}

	if want := []string{"openalex-2026", "pure-2026"}; !reflect.DeepEqual(final.Sources, want) {
		t.Errorf("Sources = %v, want %v", final.Sources, want)
	}

	wantHistory := []string{
		"Created.",
		"Merged node 10.1/dup|doi into this node and deleted it.",
		"Created.",
		"Former neighbors: 1234-5678|issn, abc123|ror",
	}
	if !reflect.DeepEqual(final.History, wantHistory) {
		t.Errorf("History = %v, want %v", final.History, wantHistory)
	}
}

func TestMergeTruncatesLongCarriedHistory(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	from := mustNode(t, c, "DOI", "article", "10.1/dup")
	to := mustNode(t, c, "DOI", "article", "10.1/x")

	for i := 0; i < c.historyCarryCap+10; i++ {
		if err := c.appendHistory(ctx, from.ID, fmt.Sprintf("Updated property year from %q to \"%d\".", "", 2000+i)); err != nil {
			t.Fatalf("appendHistory: %v", err)
		}
	}
	from, err := s.ReadNodeByID(ctx, from.ID)
	if err != nil {
		t.Fatalf("ReadNodeByID: %v", err)
	}

	final, err := c.Merge(ctx, from, to)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	carried := 0
	truncated := false
	for _, line := range final.History {
		if strings.HasPrefix(line, "Updated property year") {
			carried++
		}
		if line == "History list truncated." {
			truncated = true
		}
	}
	if !truncated {
		t.Error("missing truncation marker")
	}
	// "Created." plus the cap minus one update lines fit under the cap.
	if carried >= c.historyCarryCap {
		t.Errorf("carried %d update lines, cap is %d", carried, c.historyCarryCap)
	}
}

func TestMergeWithoutEdgesMatchesEdgelessUpdate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)

	from, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name: "DOI", Category: "article", Value: "10.1/dup", SourceEvent: "pure-2026",
	})
	if err != nil {
		t.Fatalf("create from: %v", err)
	}
	to := mustNode(t, c, "DOI", "article", "10.1/x")

	final, err := c.Merge(ctx, from, to)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if _, err := c.ReadByKey(ctx, "DOI", "10.1/dup"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("absorbed node still resolves, err = %v", err)
	}
	for _, line := range final.History {
		if strings.HasPrefix(line, "Former neighbors:") {
			t.Errorf("edge-less merge recorded former neighbors: %q", line)
		}
	}
	if want := []string{"pure-2026"}; !reflect.DeepEqual(final.Sources, want) {
		t.Errorf("Sources = %v, want %v", final.Sources, want)
	}
}

func TestMergeRecomputesRootNameCache(t *testing.T) {
	ctx := context.Background()
	c, s := newTestClient(t, ModeStrict)

	orcid := mustNode(t, c, common.NameORCID, "person", "0000-1")
	nameA := mustNode(t, c, common.NameFullName, "person", "A. Example")
	nameB := mustNode(t, c, common.NameFullName, "person", "A Example")
	if err := c.Connect(ctx, orcid, nameA); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := c.Connect(ctx, nameB, orcid); err != nil {
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
	if root.Extra[common.PropComment] != "A Example; A. Example" {
		t.Fatalf("root name cache = %q", root.Extra[common.PropComment])
	}

	if _, err := c.Merge(ctx, nameB, nameA); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	root, err = s.ReadNodeByID(ctx, roots[0].ID)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if root.Extra[common.PropComment] != "A. Example" {
		t.Errorf("root name cache not recomputed: %q", root.Extra[common.PropComment])
	}
}

func TestUpdateNodeValueCollisionDegradesToMerge(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, ModeStrict)

	oldNode := mustNode(t, c, common.NameORCID, "person", "0000-1")
	existing := mustNode(t, c, common.NameORCID, "person", "0000-2")
	doi := mustNode(t, c, "DOI", "article", "10.1/x")
	if err := c.Connect(ctx, oldNode, doi); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	final, err := c.UpdateNodeValue(ctx, oldNode, "0000-2")
	if err != nil {
		t.Fatalf("UpdateNodeValue: %v", err)
	}

	if !final.Same(existing) {
		t.Fatalf("rename did not consolidate into the existing node")
	}
	if _, err := c.ReadByKey(ctx, common.NameORCID, "0000-1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("old node still resolves, err = %v", err)
	}

	var sawCollision, sawMerge bool
	for _, line := range final.History {
		if strings.Contains(line, `Rename of value from "0000-1" to "0000-2" collides`) {
			sawCollision = true
		}
		if strings.Contains(line, "Merged node 0000-1|orcid into this node") {
			sawMerge = true
		}
	}
	if !sawCollision || !sawMerge {
		t.Errorf("history missing provenance, got %v", final.History)
	}

	// The absorbed node's root was re-homed onto the survivor.
	roots, err := c.rootsOf(ctx, final)
	if err != nil {
		t.Fatalf("rootsOf: %v", err)
	}
	if len(roots) == 0 {
		t.Error("survivor lost the person root")
	}
}
