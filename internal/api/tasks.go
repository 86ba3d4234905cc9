package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Makepad-fr/tada/internal/model"
)

// CreateTaskRequest is the POST /tasks body.
type CreateTaskRequest struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	FolderID     *string         `json:"folderId,omitempty"`
	ParentTaskID *string         `json:"parentTaskId,omitempty"`
	Subtasks     []model.Subtask `json:"subtasks,omitempty"`
}

type CreateFolderRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	var folderID *string
	if f := r.URL.Query().Get("folder"); f != "" {
		folderID = &f
	}
	tasks, err := s.store.List(r.Context(), folderID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	t := model.NewTask(req.Name)
	if req.ID != "" {
		t.ID = req.ID
	}
	t.Description = req.Description
	t.FolderID = req.FolderID
	t.ParentTaskID = req.ParentTaskID
	if req.Subtasks != nil {
		t.Subtasks = model.CloneSubtasks(req.Subtasks)
	}
	out, err := s.store.Create(r.Context(), t)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.log.Info("task created", "task", out.ID)
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var p model.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if p.IsEmpty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	out, err := s.store.Update(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.log.Info("task updated", "task", id, "fields", p.Fields())
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.log.Info("task deleted", "task", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFolderList(w http.ResponseWriter, r *http.Request) {
	folders, err := s.store.Folders(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (s *Server) handleFolderCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	f, err := s.store.CreateFolder(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}
