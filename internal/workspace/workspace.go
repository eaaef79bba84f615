// Package workspace keeps the in-memory copy of the dashboard data the
// assistant reasons over and performs the mutations it requests.
package workspace

import (
	"context"
	"sync"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Store is the remote data store behind the workspace.
type Store interface {
	ListProjects(ctx context.Context) ([]backend.Project, error)
	CreateProject(ctx context.Context, in backend.ProjectInput) (backend.Project, error)
	UpdateProject(ctx context.Context, id string, updates map[string]any) (backend.Project, error)
	ListTasks(ctx context.Context) ([]backend.Task, error)
	CreateTask(ctx context.Context, in backend.TaskInput) (backend.Task, error)
	ListDocuments(ctx context.Context) ([]backend.RagDocument, error)
	AddDocument(ctx context.Context, in backend.DocumentInput) (backend.RagDocument, error)
	ListTeamMembers(ctx context.Context, projectID string) ([]backend.TeamMember, error)
}

// Snapshot is a consistent copy of the collections at one point in time.
type Snapshot struct {
	Projects  []backend.Project
	Tasks     []backend.Task
	Documents []backend.RagDocument
}

// Workspace caches projects, tasks, documents and team members.
// Refetches of the same collection are coalesced.
type Workspace struct {
	store Store
	log   *logging.Logger
	group singleflight.Group

	mu        sync.RWMutex
	projects  []backend.Project
	tasks     []backend.Task
	documents []backend.RagDocument
	members   map[string][]backend.TeamMember
}

// New creates an empty workspace over store.
func New(store Store, log *logging.Logger) *Workspace {
	return &Workspace{
		store:   store,
		log:     logging.Or(log).WithPrefix("workspace"),
		members: make(map[string][]backend.TeamMember),
	}
}

// Load fetches every collection.
func (w *Workspace) Load(ctx context.Context) error {
	if err := w.RefetchProjects(ctx); err != nil {
		return err
	}
	if err := w.RefetchTasks(ctx); err != nil {
		return err
	}
	return w.RefetchDocuments(ctx)
}

// Snapshot returns copies of the cached collections.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Snapshot{
		Projects:  append([]backend.Project(nil), w.projects...),
		Tasks:     append([]backend.Task(nil), w.tasks...),
		Documents: append([]backend.RagDocument(nil), w.documents...),
	}
}

// Projects returns a copy of the cached projects.
func (w *Workspace) Projects() []backend.Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]backend.Project(nil), w.projects...)
}

// Project looks up a cached project by id.
func (w *Workspace) Project(id string) (backend.Project, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, p := range w.projects {
		if p.ID == id {
			return p, true
		}
	}
	return backend.Project{}, false
}

// TeamMembers returns the members of projectID, fetching them on first use.
// Unknown project ids yield no members and no request.
func (w *Workspace) TeamMembers(ctx context.Context, projectID string) ([]backend.TeamMember, error) {
	if projectID == "" {
		return nil, nil
	}
	if _, ok := w.Project(projectID); !ok {
		return nil, nil
	}

	w.mu.RLock()
	cached, ok := w.members[projectID]
	w.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := w.group.Do("members:"+projectID, func() (any, error) {
		members, err := w.store.ListTeamMembers(ctx, projectID)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.members[projectID] = members
		w.mu.Unlock()
		return members, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]backend.TeamMember), nil
}

// RefetchProjects reloads the project collection.
func (w *Workspace) RefetchProjects(ctx context.Context) error {
	_, err, shared := w.group.Do("projects", func() (any, error) {
		projects, err := w.store.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.projects = projects
		w.mu.Unlock()
		return nil, nil
	})
	w.logRefetch("projects", err, shared)
	return err
}

// RefetchTasks reloads the task collection.
func (w *Workspace) RefetchTasks(ctx context.Context) error {
	_, err, shared := w.group.Do("tasks", func() (any, error) {
		tasks, err := w.store.ListTasks(ctx)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.tasks = tasks
		w.mu.Unlock()
		return nil, nil
	})
	w.logRefetch("tasks", err, shared)
	return err
}

// RefetchDocuments reloads the document collection.
func (w *Workspace) RefetchDocuments(ctx context.Context) error {
	_, err, shared := w.group.Do("documents", func() (any, error) {
		docs, err := w.store.ListDocuments(ctx)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		w.documents = docs
		w.mu.Unlock()
		return nil, nil
	})
	w.logRefetch("documents", err, shared)
	return err
}

func (w *Workspace) logRefetch(collection string, err error, shared bool) {
	if err != nil {
		w.log.Warn("refetch failed", logging.Collection(collection), logging.Error(err))
		return
	}
	w.log.Debug("refetched", logging.Collection(collection), logging.F("shared", shared))
}

// CreateProject inserts a project. The cache is refreshed by RefetchProjects.
func (w *Workspace) CreateProject(ctx context.Context, in backend.ProjectInput) (backend.Project, error) {
	return w.store.CreateProject(ctx, in)
}

// UpdateProject patches an existing project.
func (w *Workspace) UpdateProject(ctx context.Context, id string, updates map[string]any) (backend.Project, error) {
	return w.store.UpdateProject(ctx, id, updates)
}

// CreateTask inserts a task.
func (w *Workspace) CreateTask(ctx context.Context, in backend.TaskInput) (backend.Task, error) {
	return w.store.CreateTask(ctx, in)
}

// AddRagDocument stores a knowledge-base document.
func (w *Workspace) AddRagDocument(ctx context.Context, in backend.DocumentInput) (backend.RagDocument, error) {
	return w.store.AddDocument(ctx, in)
}
