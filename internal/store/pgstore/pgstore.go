package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// Store is a PostgreSQL-backed task store. Subtasks live in a JSONB column
// and are always written as a whole.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and ensures the tables exist.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.EnsureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureTables creates the tables if they don't exist.
func (s *Store) EnsureTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id             TEXT PRIMARY KEY,
			seq            BIGSERIAL,
			name           TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			completed      BOOLEAN NOT NULL DEFAULT FALSE,
			parent_task_id TEXT,
			folder_id      TEXT,
			subtasks       JSONB NOT NULL DEFAULT '[]',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensure tasks table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_folder ON tasks(folder_id) WHERE folder_id IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("ensure tasks index: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS folders (
			id   TEXT PRIMARY KEY,
			seq  BIGSERIAL,
			name TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure folders table: %w", err)
	}
	return nil
}

const taskColumns = `id, name, description, completed, parent_task_id, folder_id, subtasks, created_at, updated_at`

func (s *Store) List(ctx context.Context, folderID *string) ([]model.Task, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if folderID == nil {
		rows, err = s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY seq ASC`)
	} else {
		rows, err = s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE folder_id = $1 ORDER BY seq ASC`, *folderID)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, store.TaskNotFound(id)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t, err := store.PrepareNew(t)
	if err != nil {
		return model.Task{}, err
	}
	t.CreatedAt = t.CreatedAt.Truncate(time.Microsecond)
	t.UpdatedAt = t.UpdatedAt.Truncate(time.Microsecond)
	subJSON, err := json.Marshal(t.Subtasks)
	if err != nil {
		return model.Task{}, fmt.Errorf("marshal subtasks: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, name, description, completed, parent_task_id, folder_id, subtasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.Name, t.Description, t.Completed, t.ParentTaskID, t.FolderID, string(subJSON), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Task{}, store.TaskExists(t.ID)
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, id string, changes model.Patch) (model.Task, error) {
	if err := store.ValidatePatch(changes); err != nil {
		return model.Task{}, err
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	set, args, err := buildUpdate(changes, now)
	if err != nil {
		return model.Task{}, err
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING %s`, set, len(args), taskColumns)
	t, err := scanTask(s.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, store.TaskNotFound(id)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.TaskNotFound(id)
	}
	return nil
}

func (s *Store) Folders(ctx context.Context) ([]model.Folder, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM folders ORDER BY seq ASC`)
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
	if _, err := s.pool.Exec(ctx, `INSERT INTO folders (id, name) VALUES ($1, $2)`, f.ID, f.Name); err != nil {
		return model.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// buildUpdate renders the SET clause for the fields present in p. The first
// placeholder is always updated_at.
func buildUpdate(p model.Patch, now time.Time) (string, []any, error) {
	clauses := []string{"updated_at = $1"}
	args := []any{now}
	add := func(col string, v any, cast string) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("%s = $%d%s", col, len(args), cast))
	}
	if p.Name != nil {
		add("name", *p.Name, "")
	}
	if p.Description != nil {
		add("description", *p.Description, "")
	}
	if p.Completed != nil {
		add("completed", *p.Completed, "")
	}
	if p.Subtasks != nil {
		b, err := json.Marshal(*p.Subtasks)
		if err != nil {
			return "", nil, fmt.Errorf("marshal subtasks: %w", err)
		}
		add("subtasks", string(b), "::jsonb")
	}
	return strings.Join(clauses, ", "), args, nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t       model.Task
		subJSON []byte
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Completed, &t.ParentTaskID, &t.FolderID, &subJSON, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Subtasks = []model.Subtask{}
	if len(subJSON) > 0 {
		if err := json.Unmarshal(subJSON, &t.Subtasks); err != nil {
			return model.Task{}, fmt.Errorf("decode subtasks: %w", err)
		}
	}
	return t, nil
}

var _ store.Store = (*Store)(nil)
