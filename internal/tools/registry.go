// Package tools defines the actions the assistant can request: the argument
// contract shown to the model, typed decoding of a request, and execution
// against the dashboard data.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
)

// Actions are the side-effecting operations tool calls are dispatched to
type Actions interface {
	CreateProject(ctx context.Context, in backend.ProjectInput) (backend.Project, error)
	UpdateProject(ctx context.Context, id string, updates map[string]any) (backend.Project, error)
	CreateTask(ctx context.Context, in backend.TaskInput) (backend.Task, error)
	AddRagDocument(ctx context.Context, in backend.DocumentInput) (backend.RagDocument, error)
	RefetchProjects(ctx context.Context) error
}

// Effect records which collections a call changed
type Effect uint8

const (
	EffectProjectsChanged Effect = 1 << iota
	EffectTasksChanged
	EffectDocumentAdded
)

// Has reports whether e includes flag.
func (e Effect) Has(flag Effect) bool {
	return e&flag != 0
}

// Outcome is the result of one executed call
type Outcome struct {
	Confirmation string
	Effects      Effect
}

// Call is a decoded request for a known tool, with typed arguments
type Call interface {
	ToolName() string
	Execute(ctx context.Context, actions Actions) (Outcome, error)
}

// Argument documents one argument in the tool catalog
type Argument struct {
	Name        string
	Type        string
	Description string
	Optional    bool
	Default     string // Shown in the catalog; empty means no default
}

// Tool defines the interface all tools must implement
type Tool interface {
	Name() string
	Description() string
	Arguments() []Argument
	// Decode validates raw arguments and returns the typed call.
	Decode(raw json.RawMessage) (Call, error)
}

// Defaults holds values applied to omitted arguments
type Defaults struct {
	DocumentTitle  string
	DocumentSource string
}

// Registry manages available tools in catalog order
type Registry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a registry holding the four dashboard tools
func NewRegistry(defaults Defaults) *Registry {
	if defaults.DocumentTitle == "" {
		defaults.DocumentTitle = "Note from assistant"
	}
	if defaults.DocumentSource == "" {
		defaults.DocumentSource = "ai-assistant"
	}

	r := &Registry{tools: make(map[string]Tool)}
	r.Register(&CreateProjectTool{})
	r.Register(&UpdateProjectTool{})
	r.Register(&CreateTaskTool{})
	r.Register(&AddRagDocumentTool{DefaultTitle: defaults.DocumentTitle, Source: defaults.DocumentSource})
	return r
}

// Register adds a tool, replacing any tool with the same name
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools in registration order
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Catalog renders the tool contract included in the system prompt.
func (r *Registry) Catalog() string {
	var b strings.Builder
	for i, tool := range r.List() {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, tool.Name(), tool.Description())
		b.WriteString("   arguments:\n")
		for _, arg := range tool.Arguments() {
			fmt.Fprintf(&b, "   - %s (%s", arg.Name, arg.Type)
			if arg.Optional {
				b.WriteString(", optional")
				if arg.Default != "" {
					fmt.Fprintf(&b, ", default %q", arg.Default)
				}
			} else {
				b.WriteString(", required")
			}
			fmt.Fprintf(&b, "): %s\n", arg.Description)
		}
	}
	return b.String()
}

// decodeArgs unmarshals raw into v, treating absent arguments as an empty object.
func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("arguments must be an object: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
