package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
)

// DefaultSampleDocuments is how many documents the /rag page embeds.
const DefaultSampleDocuments = 5

// PageContext is what the assistant is told about the screen the user is on.
type PageContext struct {
	Page string
	Team string
}

// ContextAssembler maps the current navigation path to narrative context blocks.
type ContextAssembler struct {
	SampleSize int
}

// Assemble evaluates the path rules in order, most specific first. members
// are the team members of the project the path points at, if any.
func (a ContextAssembler) Assemble(path string, projects []backend.Project, documents []backend.RagDocument, members []backend.TeamMember) PageContext {
	path = normalizePath(path)

	if id, ok := projectIDFromPath(path); ok {
		project, found := findProject(projects, id)
		if !found {
			return PageContext{}
		}
		return PageContext{
			Page: fmt.Sprintf("The user is viewing the project %q. Full project record:\n%s", project.Name, marshalIndent(project)),
			Team: teamBlock(project.Name, members),
		}
	}

	switch {
	case path == "/projects":
		return PageContext{Page: "The user is viewing the list of all projects."}
	case hasSegmentPrefix(path, "/rag"):
		return PageContext{Page: ragBlock(documents, a.sampleSize())}
	case hasSegmentPrefix(path, "/dashboard"):
		return PageContext{Page: "The user is on the dashboard overview, which summarises projects, tasks and recent activity."}
	case hasSegmentPrefix(path, "/calendar"):
		return PageContext{Page: "The user is viewing the calendar of project deadlines and task due dates."}
	}
	return PageContext{}
}

func (a ContextAssembler) sampleSize() int {
	if a.SampleSize <= 0 {
		return DefaultSampleDocuments
	}
	return a.SampleSize
}

// projectIDFromPath extracts <id> from /projects/<id>[/...].
func projectIDFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/projects/")
	if !ok {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "/")
	if id == "" {
		return "", false
	}
	return id, true
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// hasSegmentPrefix matches prefix as whole path segments, so /rag matches
// /rag and /rag/x but not /ragged.
func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func findProject(projects []backend.Project, id string) (backend.Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return backend.Project{}, false
}

type memberSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func teamBlock(projectName string, members []backend.TeamMember) string {
	if len(members) == 0 {
		return ""
	}
	summaries := make([]memberSummary, 0, len(members))
	for _, m := range members {
		summaries = append(summaries, memberSummary{ID: m.ID, Name: m.Name, Role: m.Role})
	}
	return fmt.Sprintf("Team members of %q:\n%s", projectName, marshalIndent(summaries))
}

func ragBlock(documents []backend.RagDocument, n int) string {
	if len(documents) > n {
		documents = documents[:n]
	}
	if documents == nil {
		documents = []backend.RagDocument{}
	}
	return fmt.Sprintf("The user is viewing the knowledge base. Sample of the first %d documents:\n%s", len(documents), marshalIndent(documents))
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
