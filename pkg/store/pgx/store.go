// Package pgx implements the NodeStore interface on PostgreSQL.
package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/atlas/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// Store is a NodeStore over a pgx connection or pool. Nodes live in the
// nodes table, logical edges as two opposite rows in the edges table so that
// neighbor traversal is direction-agnostic.
type Store struct {
	conn pgxIConn
}

// NewStoreWithConnection creates a Store on an existing connection or pool.
func NewStoreWithConnection(conn pgxIConn) *Store {
	return &Store{conn: conn}
}

// storeErr classifies backend errors into the engine taxonomy: row misses
// become ErrNotFound, everything else is fatal ErrStoreUnavailable.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, err, common.ErrStoreUnavailable)
}

const nodeColumns = "id, name, category, value, key, history, sources, extra"

type nodeRow struct {
	ID       int64
	Name     string
	Category string
	Value    string
	Key      string
	History  []string
	Sources  []string
	Extra    map[string]string
}

func scanNode(row pgxv5.Row) (common.Node, error) {
	var r nodeRow
	err := row.Scan(&r.ID, &r.Name, &r.Category, &r.Value, &r.Key, &r.History, &r.Sources, &r.Extra)
	if err != nil {
		return common.Node{}, err
	}
	return r.toNode(), nil
}

func (r nodeRow) toNode() common.Node {
	return common.Node{
		ID:       fmt.Sprintf("%d", r.ID),
		Name:     r.Name,
		Category: r.Category,
		Value:    r.Value,
		Key:      r.Key,
		History:  r.History,
		Sources:  r.Sources,
		Extra:    r.Extra,
	}
}

func collectNodes(rows pgxv5.Rows) ([]common.Node, error) {
	defer rows.Close()

	var result []common.Node
	for rows.Next() {
		var r nodeRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.Value, &r.Key, &r.History, &r.Sources, &r.Extra); err != nil {
			return nil, err
		}
		result = append(result, r.toNode())
	}
	return result, rows.Err()
}
