package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Table is a batch of co-occurring person identifier observations. Each
// column is an identifier type (ORCID, ISNI, FULL_NAME, ...); each row holds
// the values observed together on one external record. Empty cells mean the
// identifier was not observed.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`

	// Source tags every node touched by this table.
	Source string `json:"source,omitempty"`
}

// UnifyStats summarizes one unification run.
type UnifyStats struct {
	Groups  int // connected-component groups processed
	Pairs   int // column-pair value pairs after de-duplication
	Linked  int // pairs connected through a shared root
	Dropped int // ambiguous pairs dropped (strict mode)
}

// UnifyTable links every unordered column pair of the table independently:
// rows missing either value are skipped, exact pairs are de-duplicated, and
// one-to-many mappings are dropped in strict mode or cross-linked with an
// ambiguity note in lenient mode. Transitive identity is not computed here;
// it emerges from nodes sharing roots.
//
// Rows are partitioned into connected components over their observed values
// and the components are processed by a bounded worker pool, so no two
// workers ever touch the same person-root group.
func (c *Client) UnifyTable(ctx context.Context, t Table) (UnifyStats, error) {
	if len(t.Columns) < 2 {
		return UnifyStats{}, fmt.Errorf("unification needs at least two identifier columns: %w", common.ErrInvalidInput)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return UnifyStats{}, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), len(t.Columns), common.ErrInvalidInput)
		}
	}

	groups := partitionRows(t)
	logger.Info("[Unify] Processing table",
		"columns", len(t.Columns), "rows", len(t.Rows), "groups", len(groups), "mode", c.mode)

	var (
		mu    sync.Mutex
		stats = UnifyStats{Groups: len(groups)}
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.parallelGroups)

	for _, group := range groups {
		rows := group
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}

			groupStats, err := c.unifyGroup(gCtx, t, rows)
			if err != nil {
				return err
			}

			mu.Lock()
			stats.Pairs += groupStats.Pairs
			stats.Linked += groupStats.Linked
			stats.Dropped += groupStats.Dropped
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return UnifyStats{}, fmt.Errorf("failed to unify table: %w", err)
	}

	logger.Info("[Unify] Table processed",
		"pairs", stats.Pairs, "linked", stats.Linked, "dropped", stats.Dropped)
	return stats, nil
}

// partitionRows groups row indices into connected components: rows sharing
// any (column, value) cell belong to the same component and therefore to the
// same potential root group.
func partitionRows(t Table) [][]int {
	parent := make([]int, len(t.Rows))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	firstRow := make(map[string]int)
	for i, row := range t.Rows {
		for col, value := range row {
			if value == "" {
				continue
			}
			token := t.Columns[col] + "\x00" + value
			if j, seen := firstRow[token]; seen {
				union(i, j)
			} else {
				firstRow[token] = i
			}
		}
	}

	byRoot := make(map[int][]int)
	var order []int
	for i := range t.Rows {
		root := find(i)
		if _, seen := byRoot[root]; !seen {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}

	groups := make([][]int, 0, len(order))
	for _, root := range order {
		groups = append(groups, byRoot[root])
	}
	return groups
}

type valuePair struct {
	a, b string
}

func (c *Client) unifyGroup(ctx context.Context, t Table, rows []int) (UnifyStats, error) {
	var stats UnifyStats

	for colA := 0; colA < len(t.Columns); colA++ {
		for colB := colA + 1; colB < len(t.Columns); colB++ {
			pairs, countA, countB := collectPairs(t, rows, colA, colB)
			stats.Pairs += len(pairs)

			for _, p := range pairs {
				if err := ctx.Err(); err != nil {
					return UnifyStats{}, err
				}

				ambiguous := countA[p.a] > 1 || countB[p.b] > 1
				if ambiguous && c.mode == ModeStrict {
					logger.Debug("[Unify] Dropping ambiguous pair",
						"col_a", t.Columns[colA], "value_a", p.a,
						"col_b", t.Columns[colB], "value_b", p.b)
					stats.Dropped++
					continue
				}

				if err := c.unifyPair(ctx, t, colA, colB, p, ambiguous); err != nil {
					return UnifyStats{}, err
				}
				stats.Linked++
			}
		}
	}
	return stats, nil
}

// collectPairs gathers the de-duplicated value pairs of one column pair and
// the per-column multiplicity of each value among those pairs.
func collectPairs(t Table, rows []int, colA, colB int) ([]valuePair, map[string]int, map[string]int) {
	seen := make(map[valuePair]struct{})
	var pairs []valuePair
	countA := make(map[string]int)
	countB := make(map[string]int)

	for _, i := range rows {
		p := valuePair{a: t.Rows[i][colA], b: t.Rows[i][colB]}
		if p.a == "" || p.b == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
		countA[p.a]++
		countB[p.b]++
	}
	return pairs, countA, countB
}

func (c *Client) unifyPair(ctx context.Context, t Table, colA, colB int, p valuePair, ambiguous bool) error {
	a, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name:        t.Columns[colA],
		Category:    common.CategoryPerson,
		Value:       p.a,
		SourceEvent: t.Source,
	})
	if err != nil {
		return err
	}
	b, err := c.CreateOrUpdateNode(ctx, NodeInput{
		Name:        t.Columns[colB],
		Category:    common.CategoryPerson,
		Value:       p.b,
		SourceEvent: t.Source,
	})
	if err != nil {
		return err
	}

	if err := c.Connect(ctx, a, b); err != nil {
		return err
	}

	if ambiguous {
		line := fmt.Sprintf(
			"Ambiguous identifier mapping between %s %q and %s %q: one of the values co-occurs with several counterparts. Possibly mislabeled in a source system.",
			t.Columns[colA], p.a, t.Columns[colB], p.b)
		if err := c.appendHistory(ctx, a.ID, line); err != nil {
			return err
		}
		if err := c.appendHistory(ctx, b.ID, line); err != nil {
			return err
		}
	}
	return nil
}
