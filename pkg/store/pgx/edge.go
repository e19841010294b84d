package pgx

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/store"
)

func (s *Store) CreateEdgeIfAbsent(ctx context.Context, idA, idB string) error {
	a, err := parseID(idA)
	if err != nil {
		return err
	}
	b, err := parseID(idB)
	if err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("self-edge on node %s: %w", idA, common.ErrInvalidInput)
	}

	// Both directions in one transaction so the logical edge never exists
	// halfway.
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return storeErr("create edge", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO edges (from_id, to_id) VALUES ($1, $2), ($2, $1)
		 ON CONFLICT DO NOTHING`, a, b)
	if err != nil {
		return storeErr("create edge", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("create edge", err)
	}
	return nil
}

func (s *Store) CountEdges(ctx context.Context, id string) (int, error) {
	nid, err := parseID(id)
	if err != nil {
		return 0, err
	}

	// Outgoing rows count logical edges exactly once since every logical
	// edge stores both directions.
	var count int
	err = s.conn.QueryRow(ctx,
		`SELECT count(*) FROM edges WHERE from_id = $1`, nid,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count edges", err)
	}
	return count, nil
}

func (s *Store) Neighbors(ctx context.Context, id string, f store.NeighborFilter, limit int) ([]common.Node, error) {
	nid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sql := `SELECT n.id, n.name, n.category, n.value, n.key, n.history, n.sources, n.extra
	        FROM edges e JOIN nodes n ON n.id = e.to_id
	        WHERE e.from_id = $1`
	args := []any{nid}

	if len(f.Names) > 0 {
		args = append(args, f.Names)
		sql += fmt.Sprintf(" AND n.name = ANY($%d)", len(args))
	}
	if len(f.ExcludeNames) > 0 {
		args = append(args, f.ExcludeNames)
		sql += fmt.Sprintf(" AND NOT (n.name = ANY($%d))", len(args))
	}
	if len(f.Categories) > 0 {
		args = append(args, f.Categories)
		sql += fmt.Sprintf(" AND n.category = ANY($%d)", len(args))
	}
	if len(f.ExcludeCategories) > 0 {
		args = append(args, f.ExcludeCategories)
		sql += fmt.Sprintf(" AND NOT (n.category = ANY($%d))", len(args))
	}
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("neighbors", err)
	}
	result, err := collectNodes(rows)
	if err != nil {
		return nil, storeErr("neighbors", err)
	}
	return result, nil
}
