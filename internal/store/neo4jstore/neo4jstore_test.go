package neo4jstore

import (
	"testing"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
)

func TestTaskParams_RoundTripThroughRecord(t *testing.T) {
	folder := "f1"
	parent := "p1"
	task := model.Task{
		ID:           "t1",
		Name:         "Ship",
		Description:  "notes",
		Completed:    true,
		ParentTaskID: &parent,
		FolderID:     &folder,
		Subtasks:     []model.Subtask{{ID: "s1", Text: "write", Completed: true}},
		CreatedAt:    time.UnixMilli(1000).UTC(),
		UpdatedAt:    time.UnixMilli(2000).UTC(),
	}

	params, err := taskParams(task)
	if err != nil {
		t.Fatalf("taskParams: %v", err)
	}
	if _, ok := params["subtasks"].(string); !ok {
		t.Fatalf("expected subtasks to be a JSON string, got %T", params["subtasks"])
	}

	// The record carries edges as parentId/folderId, not node properties.
	params["parentId"] = parent
	params["folderId"] = folder
	got, err := taskFromRecord(params)
	if err != nil {
		t.Fatalf("taskFromRecord: %v", err)
	}
	if got.Name != "Ship" || !got.Completed || got.Description != "notes" {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.FolderID == nil || *got.FolderID != "f1" || got.ParentTaskID == nil || *got.ParentTaskID != "p1" {
		t.Fatalf("expected edges to be restored, got %+v", got)
	}
	if len(got.Subtasks) != 1 || got.Subtasks[0].Text != "write" || !got.Subtasks[0].Completed {
		t.Fatalf("unexpected subtasks %+v", got.Subtasks)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("timestamps changed: %v %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestTaskFromRecord_NullEdgesAndSubtasks(t *testing.T) {
	got, err := taskFromRecord(map[string]any{"id": "t1", "name": "x", "parentId": nil, "folderId": nil})
	if err != nil {
		t.Fatalf("taskFromRecord: %v", err)
	}
	if got.ParentTaskID != nil || got.FolderID != nil {
		t.Fatalf("expected nil edges, got %+v", got)
	}
	if got.Subtasks == nil || len(got.Subtasks) != 0 {
		t.Fatalf("expected empty non-nil subtasks, got %#v", got.Subtasks)
	}
}

func TestTaskFromRecord_CorruptSubtasks(t *testing.T) {
	if _, err := taskFromRecord(map[string]any{"id": "t1", "subtasks": "{"}); err == nil {
		t.Fatalf("expected decode error")
	}
}
