// Package remote is a store.Store backed by a `tada serve` instance.
package remote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized (run `tada auth login` or set TADA_TOKEN)")

type Store struct {
	base   string
	token  string
	client *http.Client
}

type Option func(*Store)

func WithHTTPClient(c *http.Client) Option { return func(s *Store) { s.client = c } }

// New targets baseURL, e.g. "http://localhost:8080". An empty token sends
// no Authorization header.
func New(baseURL, token string, opts ...Option) *Store {
	s := &Store{
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) List(ctx context.Context, folderID *string) ([]model.Task, error) {
	path := "/tasks"
	if folderID != nil {
		path += "?folder=" + url.QueryEscape(*folderID)
	}
	var out []model.Task
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	if err := s.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return model.Task{}, s.notFound(err, "task", id)
	}
	return t, nil
}

type createBody struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	FolderID     *string         `json:"folderId,omitempty"`
	ParentTaskID *string         `json:"parentTaskId,omitempty"`
	Subtasks     []model.Subtask `json:"subtasks,omitempty"`
}

// Create sends the client-side id when set; the server stamps timestamps.
func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	body := createBody{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		FolderID:     t.FolderID,
		ParentTaskID: t.ParentTaskID,
		Subtasks:     t.Subtasks,
	}
	var out model.Task
	if err := s.do(ctx, http.MethodPost, "/tasks", body, &out); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id string, changes model.Patch) (model.Task, error) {
	var out model.Task
	if err := s.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), changes, &out); err != nil {
		return model.Task{}, s.notFound(err, "task", id)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return s.notFound(err, "task", id)
	}
	return nil
}

func (s *Store) Folders(ctx context.Context) ([]model.Folder, error) {
	var out []model.Folder
	if err := s.do(ctx, http.MethodGet, "/folders", nil, &out); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	if out == nil {
		out = []model.Folder{}
	}
	return out, nil
}

func (s *Store) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	var out model.Folder
	if err := s.do(ctx, http.MethodPost, "/folders", map[string]string{"name": name}, &out); err != nil {
		return model.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Stream reads GET /events and calls fn for every change until ctx is
// cancelled or the connection drops.
func (s *Store) Stream(ctx context.Context, fn func(store.Change)) error {
	req, err := s.newRequest(ctx, http.MethodGet, "/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	// The default client timeout would cut the stream.
	client := *s.client
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("events: %w", err)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var c store.Change
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			continue
		}
		fn(c)
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("events: %w", err)
	}
	return nil
}

func (s *Store) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return req, nil
}

func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	req, err := s.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type statusError struct {
	Code int
	Msg  string
}

func (e *statusError) Error() string { return fmt.Sprintf("server returned %d: %s", e.Code, e.Msg) }

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", store.ErrInvalid, strings.TrimPrefix(body.Error, store.ErrInvalid.Error()+": "))
	}
	return &statusError{Code: resp.StatusCode, Msg: body.Error}
}

func (s *Store) notFound(err error, kind, id string) error {
	var se *statusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return store.NotFoundError{Kind: kind, ID: id}
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}

var _ store.Store = (*Store)(nil)
