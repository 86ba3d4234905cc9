// Package neo4jstore keeps tasks as (:Task) nodes. Parent links are
// HAS_PARENT edges and folder membership is an IN_FOLDER edge.
package neo4jstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

type Store struct {
	driver neo4j.DriverWithContext
}

// Open connects to uri and verifies the connection.
func Open(ctx context.Context, uri, user, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connect: %w", err)
	}
	return New(driver), nil
}

// New wraps an existing driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

const returnTask = `
	OPTIONAL MATCH (t)-[:HAS_PARENT]->(p:Task)
	OPTIONAL MATCH (t)-[:IN_FOLDER]->(f:Folder)
	RETURN t.id AS id, t.name AS name, t.description AS description,
	       t.completed AS completed, t.subtasks AS subtasks,
	       t.createdAt AS createdAt, t.updatedAt AS updatedAt,
	       p.id AS parentId, f.id AS folderId`

func (s *Store) List(ctx context.Context, folderID *string) ([]model.Task, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := "MATCH (t:Task) WITH t ORDER BY t.createdAt, t.id" + returnTask
	params := map[string]any{}
	if folderID != nil {
		query = "MATCH (t:Task)-[:IN_FOLDER]->(:Folder {id: $folderId}) WITH t ORDER BY t.createdAt, t.id" + returnTask
		params["folderId"] = *folderID
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		tasks := []model.Task{}
		for res.Next(ctx) {
			t, err := taskFromRecord(res.Record().AsMap())
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
		return tasks, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return result.([]model.Task), nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return getTask(ctx, tx, id)
	})
	if err != nil {
		return model.Task{}, err
	}
	return result.(model.Task), nil
}

func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t, err := store.PrepareNew(t)
	if err != nil {
		return model.Task{}, err
	}
	params, err := taskParams(t)
	if err != nil {
		return model.Task{}, err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (t:Task {id: $id}) RETURN count(t) AS existing", map[string]any{"id": t.ID})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		if n, _ := rec.Get("existing"); n != int64(0) {
			return nil, store.TaskExists(t.ID)
		}
		if _, err := tx.Run(ctx,
			"CREATE (t:Task {id: $id, name: $name, description: $description, completed: $completed, "+
				"subtasks: $subtasks, createdAt: $createdAt, updatedAt: $updatedAt})",
			params,
		); err != nil {
			return nil, err
		}
		if t.ParentTaskID != nil {
			if _, err := tx.Run(ctx,
				"MATCH (t:Task {id: $id}), (p:Task {id: $parentId}) CREATE (t)-[:HAS_PARENT]->(p)",
				map[string]any{"id": t.ID, "parentId": *t.ParentTaskID},
			); err != nil {
				return nil, err
			}
		}
		if t.FolderID != nil {
			if _, err := tx.Run(ctx,
				"MATCH (t:Task {id: $id}), (f:Folder {id: $folderId}) CREATE (t)-[:IN_FOLDER]->(f)",
				map[string]any{"id": t.ID, "folderId": *t.FolderID},
			); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Update reads the node, applies the patch and writes every property back
// inside one write transaction.
func (s *Store) Update(ctx context.Context, id string, changes model.Patch) (model.Task, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		cur, err := getTask(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		next, err := store.ApplyPatch(cur, changes)
		if err != nil {
			return nil, err
		}
		params, err := taskParams(next)
		if err != nil {
			return nil, err
		}
		_, err = tx.Run(ctx,
			"MATCH (t:Task {id: $id}) SET t.name = $name, t.description = $description, "+
				"t.completed = $completed, t.subtasks = $subtasks, t.updatedAt = $updatedAt",
			params,
		)
		if err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return result.(model.Task), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id}) DETACH DELETE t RETURN count(t) AS deleted",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _ := rec.Get("deleted")
		return n, nil
	})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, _ := result.(int64); n == 0 {
		return store.TaskNotFound(id)
	}
	return nil
}

func (s *Store) Folders(ctx context.Context) ([]model.Folder, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (f:Folder) RETURN f.id AS id, f.name AS name ORDER BY f.createdAt, f.id", nil)
		if err != nil {
			return nil, err
		}
		folders := []model.Folder{}
		for res.Next(ctx) {
			m := res.Record().AsMap()
			id, _ := m["id"].(string)
			name, _ := m["name"].(string)
			folders = append(folders, model.Folder{ID: id, Name: name})
		}
		return folders, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return result.([]model.Folder), nil
}

func (s *Store) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	f, err := store.NewFolder(name)
	if err != nil {
		return model.Folder{}, err
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx,
			"CREATE (f:Folder {id: $id, name: $name, createdAt: $createdAt})",
			map[string]any{"id": f.ID, "name": f.Name, "createdAt": time.Now().UnixMilli()},
		)
	})
	if err != nil {
		return model.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

func getTask(ctx context.Context, tx neo4j.ManagedTransaction, id string) (model.Task, error) {
	res, err := tx.Run(ctx, "MATCH (t:Task {id: $id})"+returnTask, map[string]any{"id": id})
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return model.Task{}, err
		}
		return model.Task{}, store.TaskNotFound(id)
	}
	return taskFromRecord(res.Record().AsMap())
}

// taskParams flattens t into node properties. Subtasks are stored as a JSON
// string since Neo4j properties can't hold maps.
func taskParams(t model.Task) (map[string]any, error) {
	sub, err := json.Marshal(t.Subtasks)
	if err != nil {
		return nil, fmt.Errorf("marshal subtasks: %w", err)
	}
	return map[string]any{
		"id":          t.ID,
		"name":        t.Name,
		"description": t.Description,
		"completed":   t.Completed,
		"subtasks":    string(sub),
		"createdAt":   t.CreatedAt.UnixMilli(),
		"updatedAt":   t.UpdatedAt.UnixMilli(),
	}, nil
}

func taskFromRecord(m map[string]any) (model.Task, error) {
	var t model.Task
	t.ID, _ = m["id"].(string)
	t.Name, _ = m["name"].(string)
	t.Description, _ = m["description"].(string)
	t.Completed, _ = m["completed"].(bool)
	if ms, ok := m["createdAt"].(int64); ok {
		t.CreatedAt = time.UnixMilli(ms).UTC()
	}
	if ms, ok := m["updatedAt"].(int64); ok {
		t.UpdatedAt = time.UnixMilli(ms).UTC()
	}
	if p, ok := m["parentId"].(string); ok {
		t.ParentTaskID = &p
	}
	if f, ok := m["folderId"].(string); ok {
		t.FolderID = &f
	}
	t.Subtasks = []model.Subtask{}
	if raw, ok := m["subtasks"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &t.Subtasks); err != nil {
			return model.Task{}, fmt.Errorf("decode subtasks of %s: %w", t.ID, err)
		}
	}
	return t, nil
}

var _ store.Store = (*Store)(nil)
