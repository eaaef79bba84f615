package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
)

// Project argument defaults
const (
	DefaultProjectStatus   = "planning"
	DefaultProjectPriority = "medium"
)

// CreateProjectTool creates a new project
type CreateProjectTool struct{}

func (t *CreateProjectTool) Name() string {
	return "createProject"
}

func (t *CreateProjectTool) Description() string {
	return "Create a new project."
}

func (t *CreateProjectTool) Arguments() []Argument {
	return []Argument{
		{Name: "name", Type: "string", Description: "project name"},
		{Name: "description", Type: "string", Description: "what the project is about", Optional: true},
		{Name: "status", Type: "string", Description: "planning | active | on_hold | completed", Optional: true, Default: DefaultProjectStatus},
		{Name: "priority", Type: "string", Description: "low | medium | high", Optional: true, Default: DefaultProjectPriority},
		{Name: "start_date", Type: "string", Description: "YYYY-MM-DD", Optional: true},
		{Name: "end_date", Type: "string", Description: "YYYY-MM-DD", Optional: true},
		{Name: "client", Type: "string", Description: "client or customer name", Optional: true},
	}
}

func (t *CreateProjectTool) Decode(raw json.RawMessage) (Call, error) {
	var in backend.ProjectInput
	if err := decodeArgs(raw, &in); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, errors.New("name is required")
	}
	in.Status = orDefault(in.Status, DefaultProjectStatus)
	in.Priority = orDefault(in.Priority, DefaultProjectPriority)
	return &CreateProjectCall{Input: in}, nil
}

// CreateProjectCall is a decoded createProject request
type CreateProjectCall struct {
	Input backend.ProjectInput
}

func (c *CreateProjectCall) ToolName() string { return "createProject" }

func (c *CreateProjectCall) Execute(ctx context.Context, actions Actions) (Outcome, error) {
	project, err := actions.CreateProject(ctx, c.Input)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Confirmation: fmt.Sprintf("✅ Project %q created successfully.", orDefault(project.Name, c.Input.Name)),
		Effects:      EffectProjectsChanged,
	}, nil
}

// UpdateProjectTool updates fields of an existing project
type UpdateProjectTool struct{}

func (t *UpdateProjectTool) Name() string {
	return "updateProject"
}

func (t *UpdateProjectTool) Description() string {
	return "Update an existing project. Only use an id taken from the project data above; never invent one."
}

func (t *UpdateProjectTool) Arguments() []Argument {
	return []Argument{
		{Name: "id", Type: "string", Description: "id of the project to update"},
		{Name: "updates", Type: "object", Description: "fields to change, e.g. {\"status\": \"completed\", \"progress\": 100}"},
	}
}

func (t *UpdateProjectTool) Decode(raw json.RawMessage) (Call, error) {
	var args struct {
		ID      string         `json:"id"`
		Updates map[string]any `json:"updates"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	args.ID = strings.TrimSpace(args.ID)
	if args.ID == "" {
		return nil, errors.New("id is required")
	}
	if len(args.Updates) == 0 {
		return nil, errors.New("updates must name at least one field")
	}
	return &UpdateProjectCall{ID: args.ID, Updates: args.Updates}, nil
}

// UpdateProjectCall is a decoded updateProject request
type UpdateProjectCall struct {
	ID      string
	Updates map[string]any
}

func (c *UpdateProjectCall) ToolName() string { return "updateProject" }

func (c *UpdateProjectCall) Execute(ctx context.Context, actions Actions) (Outcome, error) {
	project, err := actions.UpdateProject(ctx, c.ID, c.Updates)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Confirmation: fmt.Sprintf("✅ Project %q updated successfully.", orDefault(project.Name, c.ID)),
		Effects:      EffectProjectsChanged,
	}, nil
}
