package pgx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/store"
)

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed node id %q: %w", id, common.ErrInvalidInput)
	}
	return v, nil
}

func emptyDefaults(n common.Node) common.Node {
	if n.History == nil {
		n.History = []string{}
	}
	if n.Sources == nil {
		n.Sources = []string{}
	}
	if n.Extra == nil {
		n.Extra = map[string]string{}
	}
	return n
}

func (s *Store) CreateNode(ctx context.Context, n common.Node) (string, error) {
	n = emptyDefaults(n)

	var id int64
	err := s.conn.QueryRow(ctx,
		`INSERT INTO nodes (name, category, value, key, history, sources, extra)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		n.Name, n.Category, n.Value, n.Key, n.History, n.Sources, n.Extra,
	).Scan(&id)
	if err != nil {
		return "", storeErr("create node", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) ReadNode(ctx context.Context, name, value string) (common.Node, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE name = $1 AND value = $2`,
		name, value,
	)
	n, err := scanNode(row)
	if err != nil {
		return common.Node{}, storeErr("read node", err)
	}
	return n, nil
}

func (s *Store) ReadNodeByID(ctx context.Context, id string) (common.Node, error) {
	nid, err := parseID(id)
	if err != nil {
		return common.Node{}, err
	}

	row := s.conn.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE id = $1`, nid,
	)
	n, err := scanNode(row)
	if err != nil {
		return common.Node{}, storeErr("read node by id", err)
	}
	return n, nil
}

func (s *Store) FindNodes(ctx context.Context, f store.Filters, limit int) ([]common.Node, error) {
	sql := `SELECT ` + nodeColumns + ` FROM nodes WHERE 1=1`
	args := []any{}

	if f.Name != "" {
		args = append(args, f.Name)
		sql += fmt.Sprintf(" AND name = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		sql += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Value != "" {
		if f.Exact {
			args = append(args, f.Value)
			sql += fmt.Sprintf(" AND value = $%d", len(args))
		} else {
			args = append(args, "%"+f.Value+"%")
			sql += fmt.Sprintf(" AND value ILIKE $%d", len(args))
		}
	}
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("find nodes", err)
	}
	result, err := collectNodes(rows)
	if err != nil {
		return nil, storeErr("find nodes", err)
	}
	return result, nil
}

func (s *Store) UpdateNode(ctx context.Context, n common.Node) (common.Node, error) {
	nid, err := parseID(n.ID)
	if err != nil {
		return common.Node{}, err
	}
	n = emptyDefaults(n)

	row := s.conn.QueryRow(ctx,
		`UPDATE nodes
		 SET name = $2, category = $3, value = $4, key = $5,
		     history = $6, sources = $7, extra = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING `+nodeColumns,
		nid, n.Name, n.Category, n.Value, n.Key, n.History, n.Sources, n.Extra,
	)
	updated, err := scanNode(row)
	if err != nil {
		return common.Node{}, storeErr("update node", err)
	}
	return updated, nil
}

func (s *Store) DeleteNode(ctx context.Context, id string) error {
	nid, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := s.conn.Exec(ctx, `DELETE FROM nodes WHERE id = $1`, nid)
	if err != nil {
		return storeErr("delete node", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
