package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/session"
	"github.com/abdul-hamid-achik/dashai/internal/workspace"
)

// fakeWorkspace records every action and can be told to fail some of them.
type fakeWorkspace struct {
	mu        sync.Mutex
	projects  []backend.Project
	documents []backend.RagDocument
	members   map[string][]backend.TeamMember
	failOn    map[string]error

	calls            []string
	refetchProjects  int
	refetchTasks     int
	refetchDocuments int
}

func newFakeWorkspace(projects ...backend.Project) *fakeWorkspace {
	return &fakeWorkspace{
		projects: projects,
		members:  make(map[string][]backend.TeamMember),
		failOn:   make(map[string]error),
	}
}

func (w *fakeWorkspace) record(call string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
	name, _, _ := strings.Cut(call, ":")
	return w.failOn[name]
}

func (w *fakeWorkspace) CreateProject(_ context.Context, in backend.ProjectInput) (backend.Project, error) {
	if err := w.record("createProject:" + in.Name); err != nil {
		return backend.Project{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	p := backend.Project{ID: fmt.Sprintf("p%d", len(w.projects)+1), Name: in.Name, Status: in.Status, Priority: in.Priority}
	w.projects = append(w.projects, p)
	return p, nil
}

func (w *fakeWorkspace) UpdateProject(_ context.Context, id string, updates map[string]any) (backend.Project, error) {
	if err := w.record("updateProject:" + id); err != nil {
		return backend.Project{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, p := range w.projects {
		if p.ID == id {
			if status, ok := updates["status"].(string); ok {
				w.projects[i].Status = status
			}
			return w.projects[i], nil
		}
	}
	return backend.Project{}, dasherr.BackendNotFound("projects", id)
}

func (w *fakeWorkspace) CreateTask(_ context.Context, in backend.TaskInput) (backend.Task, error) {
	if err := w.record("createTask:" + in.Title); err != nil {
		return backend.Task{}, err
	}
	return backend.Task{ID: "t1", Title: in.Title}, nil
}

func (w *fakeWorkspace) AddRagDocument(_ context.Context, in backend.DocumentInput) (backend.RagDocument, error) {
	if err := w.record("addRagDocument:" + in.Metadata.Title); err != nil {
		return backend.RagDocument{}, err
	}
	return backend.RagDocument{ID: "d1", Content: in.Content, Metadata: in.Metadata}, nil
}

func (w *fakeWorkspace) RefetchProjects(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refetchProjects++
	return nil
}

func (w *fakeWorkspace) RefetchTasks(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refetchTasks++
	return nil
}

func (w *fakeWorkspace) RefetchDocuments(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refetchDocuments++
	return nil
}

func (w *fakeWorkspace) Snapshot() workspace.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return workspace.Snapshot{
		Projects:  append([]backend.Project(nil), w.projects...),
		Documents: append([]backend.RagDocument(nil), w.documents...),
	}
}

func (w *fakeWorkspace) TeamMembers(_ context.Context, projectID string) ([]backend.TeamMember, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.members[projectID], nil
}

func (w *fakeWorkspace) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

// memTranscripts is an in-memory Transcripts.
type memTranscripts struct {
	mu       sync.Mutex
	sessions map[string][]session.Message
	readErr  error
}

func newMemTranscripts() *memTranscripts {
	return &memTranscripts{sessions: make(map[string][]session.Message)}
}

func (m *memTranscripts) Messages(_ context.Context, id string) ([]session.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]session.Message(nil), m.sessions[id]...), nil
}

// Stored returns the messages of id regardless of readErr.
func (m *memTranscripts) Stored(id string) []session.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]session.Message(nil), m.sessions[id]...)
}

func (m *memTranscripts) AppendMessage(_ context.Context, id string, msg session.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = append(m.sessions[id], msg)
	return nil
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	items []string
}

func (n *recordingNotifier) Notify(level NotifyLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, level.String()+": "+message)
}

func (n *recordingNotifier) Levels() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, item := range n.items {
		level, _, _ := strings.Cut(item, ":")
		out = append(out, level)
	}
	return out
}

// fakeSearcher returns canned results or an error.
type fakeSearcher struct {
	results []backend.SearchResult
	err     error

	mu    sync.Mutex
	limit int
	user  string
}

func (s *fakeSearcher) Search(_ context.Context, _ string, userID string, limit int) ([]backend.SearchResult, error) {
	s.mu.Lock()
	s.limit, s.user = limit, userID
	s.mu.Unlock()
	return s.results, s.err
}
