package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/onecx/workspace-menu/internal/domain"
)

//go:embed migrations/001_menu_items.sql
var sqliteMigration string

// SQLiteStore keeps menus as flat rows linked by parent_item_id.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dsn and applies
// the schema. Use ":memory:" for an in-memory database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating directory %s: %w", dir, err)
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if dsn == ":memory:" {
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return err
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Workspaces lists the names of all stored workspaces, sorted.
func (s *SQLiteStore) Workspaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM workspaces ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query workspaces: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// InitWorkspace registers an empty workspace.
func (s *SQLiteStore) InitWorkspace(ctx context.Context, workspace string) error {
	if err := ValidateWorkspace(workspace); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO workspaces (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, workspace)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrWorkspaceExists, workspace)
	}
	return nil
}

// FetchMenu loads the menu rows and nests them by parent_item_id.
func (s *SQLiteStore) FetchMenu(ctx context.Context, ref domain.MenuRef) (*domain.MenuStructure, error) {
	if err := s.requireWorkspace(ctx, s.db, ref.Workspace); err != nil {
		return nil, err
	}
	flat, err := s.loadFlat(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	nested, _ := domain.NestRecords(flat)
	return &domain.MenuStructure{
		WorkspaceName: ref.Workspace,
		Menu:          []domain.MenuGroup{{Key: ref.MenuKey, Children: nested}},
	}, nil
}

// ReplaceMenu overwrites a whole menu.
func (s *SQLiteStore) ReplaceMenu(ctx context.Context, ref domain.MenuRef, items []domain.MenuItemRecord) error {
	return s.mutate(ctx, ref, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE workspace = ? AND menu_key = ?`, ref.Workspace, ref.MenuKey); err != nil {
			return fmt.Errorf("clear menu: %w", err)
		}
		for _, r := range domain.FlattenRecords(domain.EnsureNested(items)) {
			if err := insertRecord(ctx, tx, ref, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// WritePositions applies a batch of position and parent changes.
func (s *SQLiteStore) WritePositions(ctx context.Context, ref domain.MenuRef, updates []domain.PositionUpdate) error {
	return s.mutate(ctx, ref, func(tx *sql.Tx) error {
		for _, u := range updates {
			res, err := tx.ExecContext(ctx, `
				UPDATE menu_items SET position = ?, parent_item_id = ?, updated_at = datetime('now')
				WHERE workspace = ? AND menu_key = ? AND id = ?
			`, u.Position, u.ParentItemID, ref.Workspace, ref.MenuKey, u.ID)
			if err := expectRow(res, err, u.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateItem inserts a new item.
func (s *SQLiteStore) CreateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error {
	return s.mutate(ctx, ref, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM menu_items WHERE workspace = ? AND menu_key = ? AND id = ?
		`, ref.Workspace, ref.MenuKey, item.ID).Scan(&n)
		if err != nil {
			return fmt.Errorf("check item: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
		return insertRecord(ctx, tx, ref, item)
	})
}

// UpdateItem replaces the scalar fields of an item. Parent and position are
// left untouched.
func (s *SQLiteStore) UpdateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error {
	i18n, err := encodeI18n(item.I18n)
	if err != nil {
		return err
	}
	return s.mutate(ctx, ref, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE menu_items
			SET item_key = ?, name = ?, i18n = ?, url = ?, external = ?, badge = ?, disabled = ?, updated_at = datetime('now')
			WHERE workspace = ? AND menu_key = ? AND id = ?
		`, item.Key, item.Name, i18n, item.URL, item.External, item.Badge, item.Disabled,
			ref.Workspace, ref.MenuKey, item.ID)
		return expectRow(res, err, item.ID)
	})
}

// DeleteItems removes the listed items.
func (s *SQLiteStore) DeleteItems(ctx context.Context, ref domain.MenuRef, ids []string) error {
	return s.mutate(ctx, ref, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM menu_items WHERE workspace = ? AND menu_key = ? AND id = ?
			`, ref.Workspace, ref.MenuKey, id)
			if err := expectRow(res, err, id); err != nil {
				return err
			}
		}
		return nil
	})
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mutate runs fn in a transaction and commits only when the resulting menu
// still forms a valid hierarchy.
func (s *SQLiteStore) mutate(ctx context.Context, ref domain.MenuRef, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.requireWorkspace(ctx, tx, ref.Workspace); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}
	flat, err := s.loadFlat(ctx, tx, ref)
	if err != nil {
		return err
	}
	if _, err := nest(flat); err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) requireWorkspace(ctx context.Context, q querier, workspace string) error {
	if err := ValidateWorkspace(workspace); err != nil {
		return err
	}
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM workspaces WHERE name = ?`, workspace).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, workspace)
	}
	if err != nil {
		return fmt.Errorf("query workspace: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadFlat(ctx context.Context, q querier, ref domain.MenuRef) ([]domain.MenuItemRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, item_key, parent_item_id, name, i18n, url, external, position, badge, disabled
		FROM menu_items
		WHERE workspace = ? AND menu_key = ?
		ORDER BY position, rowid
	`, ref.Workspace, ref.MenuKey)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	var flat []domain.MenuItemRecord
	for rows.Next() {
		var r domain.MenuItemRecord
		var i18n string
		if err := rows.Scan(&r.ID, &r.Key, &r.ParentItemID, &r.Name, &i18n, &r.URL,
			&r.External, &r.Position, &r.Badge, &r.Disabled); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		if i18n != "" && i18n != "{}" {
			if err := json.Unmarshal([]byte(i18n), &r.I18n); err != nil {
				return nil, fmt.Errorf("decode i18n of %s: %w", r.ID, err)
			}
		}
		flat = append(flat, r)
	}
	return flat, rows.Err()
}

func insertRecord(ctx context.Context, tx *sql.Tx, ref domain.MenuRef, r domain.MenuItemRecord) error {
	i18n, err := encodeI18n(r.I18n)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO menu_items (workspace, menu_key, id, item_key, parent_item_id, name, i18n, url, external, position, badge, disabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ref.Workspace, ref.MenuKey, r.ID, r.Key, r.ParentItemID, r.Name, i18n, r.URL,
		r.External, r.Position, r.Badge, r.Disabled)
	if err != nil {
		return fmt.Errorf("insert menu item %s: %w", r.ID, err)
	}
	return nil
}

func encodeI18n(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode i18n: %w", err)
	}
	return string(b), nil
}

func expectRow(res sql.Result, err error, id string) error {
	if err != nil {
		return fmt.Errorf("write menu item %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return nil
}
