package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
)

// Task argument defaults
const (
	DefaultTaskStatus   = "todo"
	DefaultTaskPriority = "medium"
)

// CreateTaskTool creates a task, optionally attached to a project
type CreateTaskTool struct{}

func (t *CreateTaskTool) Name() string {
	return "createTask"
}

func (t *CreateTaskTool) Description() string {
	return "Create a new task."
}

func (t *CreateTaskTool) Arguments() []Argument {
	return []Argument{
		{Name: "title", Type: "string", Description: "task title"},
		{Name: "project_id", Type: "string", Description: "id of the project the task belongs to", Optional: true},
		{Name: "description", Type: "string", Description: "details", Optional: true},
		{Name: "status", Type: "string", Description: "todo | in_progress | done", Optional: true, Default: DefaultTaskStatus},
		{Name: "priority", Type: "string", Description: "low | medium | high", Optional: true, Default: DefaultTaskPriority},
		{Name: "due_date", Type: "string", Description: "YYYY-MM-DD", Optional: true},
	}
}

func (t *CreateTaskTool) Decode(raw json.RawMessage) (Call, error) {
	var in backend.TaskInput
	if err := decodeArgs(raw, &in); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, errors.New("title is required")
	}
	in.Status = orDefault(in.Status, DefaultTaskStatus)
	in.Priority = orDefault(in.Priority, DefaultTaskPriority)
	return &CreateTaskCall{Input: in}, nil
}

// CreateTaskCall is a decoded createTask request
type CreateTaskCall struct {
	Input backend.TaskInput
}

func (c *CreateTaskCall) ToolName() string { return "createTask" }

func (c *CreateTaskCall) Execute(ctx context.Context, actions Actions) (Outcome, error) {
	task, err := actions.CreateTask(ctx, c.Input)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Confirmation: fmt.Sprintf("✅ Task %q created successfully.", orDefault(task.Title, c.Input.Title)),
		Effects:      EffectTasksChanged,
	}, nil
}
