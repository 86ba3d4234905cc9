package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"

	_ "modernc.org/sqlite"
)

// Store keeps one JSON document per task row. Rows are listed in rowid
// order, which is creation order since updates never re-insert.
type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL enables one writer + many readers; busy_timeout avoids "database is locked"
	// when the TUI and a CLI command touch the file at the same time.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			folder_id TEXT NOT NULL DEFAULT '',
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_folder ON tasks(folder_id);`,
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context, folderID *string) ([]model.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if folderID == nil {
		rows, err = s.db.QueryContext(ctx, `SELECT json FROM tasks ORDER BY rowid ASC`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT json FROM tasks WHERE folder_id = ? ORDER BY rowid ASC`, *folderID)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		t, err := decodeTask(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	return getTask(ctx, s.db, id)
}

func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t, err := store.PrepareNew(t)
	if err != nil {
		return model.Task{}, err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return model.Task{}, fmt.Errorf("marshal task: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(id, folder_id, json, updated_at_unixms) VALUES(?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		t.ID, folderKey(t.FolderID), string(raw), t.UpdatedAt.UnixMilli())
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Task{}, store.TaskExists(t.ID)
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, id string, changes model.Patch) (model.Task, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := getTask(ctx, tx, id)
	if err != nil {
		return model.Task{}, err
	}
	next, err := store.ApplyPatch(cur, changes)
	if err != nil {
		return model.Task{}, err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return model.Task{}, fmt.Errorf("marshal task: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET folder_id = ?, json = ?, updated_at_unixms = ? WHERE id = ?`,
		folderKey(next.FolderID), string(raw), next.UpdatedAt.UnixMilli(), id); err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	return next, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.TaskNotFound(id)
	}
	return nil
}

func (s *Store) Folders(ctx context.Context) ([]model.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM folders ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()
	out := []model.Folder{}
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	f, err := store.NewFolder(name)
	if err != nil {
		return model.Folder{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO folders(id, name) VALUES(?, ?)`, f.ID, f.Name); err != nil {
		return model.Folder{}, fmt.Errorf("insert folder: %w", err)
	}
	return f, nil
}

func (s *Store) Close() error { return s.db.Close() }

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTask(ctx context.Context, q querier, id string) (model.Task, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT json FROM tasks WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, store.TaskNotFound(id)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return decodeTask(raw)
}

func decodeTask(raw string) (model.Task, error) {
	var t model.Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return model.Task{}, fmt.Errorf("decode task: %w", err)
	}
	if t.Subtasks == nil {
		t.Subtasks = []model.Subtask{}
	}
	return t, nil
}

func folderKey(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

var _ store.Store = (*Store)(nil)
