package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/tools"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func newTestExecutor() *ToolExecutor {
	return NewToolExecutor(tools.NewRegistry(tools.Defaults{DocumentTitle: "Untitled note"}), nil)
}

func TestDispatchSingleCallInProse(t *testing.T) {
	ws := newFakeWorkspace()
	reply := "Of course! Here you go:\n" + `{"tool_name":"createProject","arguments":{"name":"Beta","priority":"high"}}` + "\nAnything else?"

	result, err := newTestExecutor().Dispatch(context.Background(), reply, ws)
	require.NoError(t, err)

	assert.Equal(t, []string{"createProject:Beta"}, ws.Calls())
	assert.Equal(t, `✅ Project "Beta" created successfully.`, result.Confirmation)
	assert.True(t, result.Dispatched)
	assert.Equal(t, 1, ws.refetchProjects)
	assert.Equal(t, "high", ws.projects[0].Priority)
}

func TestDispatchCallAfterJSONFragments(t *testing.T) {
	call := `{"tool_name":"createProject","arguments":{"name":"Beta"}}`
	tests := []struct {
		name  string
		reply string
	}{
		{"citation", "Voir la note [1]. " + call},
		{"empty object", "Je crée le projet (étape {}) : " + call},
		{"string list", `Options: ["a","b"] -> ` + call},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newFakeWorkspace()
			result, err := newTestExecutor().Dispatch(context.Background(), tt.reply, ws)
			require.NoError(t, err)

			assert.Equal(t, []string{"createProject:Beta"}, ws.Calls())
			assert.True(t, result.Dispatched)
			assert.Equal(t, `✅ Project "Beta" created successfully.`, result.Confirmation)
		})
	}
}

func TestDispatchArrayInOrder(t *testing.T) {
	ws := newFakeWorkspace()
	reply := `[{"tool_name":"createTask","arguments":{"title":"Call the client"}},{"tool_name":"addRagDocument","arguments":{"content":"Acme prefers email."}}]`

	result, err := newTestExecutor().Dispatch(context.Background(), reply, ws)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"createTask:Call the client", "addRagDocument:Untitled note"}, ws.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	want := "✅ Task \"Call the client\" created successfully.\n" + tools.DocumentConfirmation
	assert.Equal(t, want, result.Confirmation)
	assert.True(t, result.ShouldRefetchTasks)
	assert.True(t, result.DidAddRagDoc)
	assert.Equal(t, 0, ws.refetchProjects, "no project changed")
}

func TestDispatchPlainText(t *testing.T) {
	ws := newFakeWorkspace()
	result, err := newTestExecutor().Dispatch(context.Background(), "You have three projects in progress.", ws)
	require.NoError(t, err)

	assert.Equal(t, DispatchResult{}, result)
	assert.Empty(t, ws.Calls())
	assert.Equal(t, 0, ws.refetchProjects)
}

func TestDispatchUnknownToolIsSkipped(t *testing.T) {
	ws := newFakeWorkspace()
	result, err := newTestExecutor().Dispatch(context.Background(), `{"tool_name":"deleteEverything","arguments":{"confirm":true}}`, ws)
	require.NoError(t, err)

	assert.Empty(t, ws.Calls())
	assert.Empty(t, result.Confirmation)
	assert.True(t, result.Dispatched)
}

func TestDispatchBestEffortBatch(t *testing.T) {
	ws := newFakeWorkspace(backend.Project{ID: "p1", Name: "Existing"})
	ws.failOn["updateProject"] = errors.New("row level security violation")

	reply := `[
		{"tool_name":"createProject","arguments":{"name":"Gamma"}},
		{"tool_name":"updateProject","arguments":{"id":"p1","updates":{"status":"completed"}}},
		{"tool_name":"createTask","arguments":{"title":"Kickoff"}},
		{"tool_name":"createTask","arguments":{}}
	]`

	result, err := newTestExecutor().Dispatch(context.Background(), reply, ws)
	require.Error(t, err)

	// every valid call ran, including those after the failure
	assert.Equal(t, []string{"createProject:Gamma", "updateProject:p1", "createTask:Kickoff"}, ws.Calls())
	assert.Equal(t, "✅ Project \"Gamma\" created successfully.\n✅ Task \"Kickoff\" created successfully.", result.Confirmation)

	// refetch still runs once because createProject succeeded
	assert.Equal(t, 1, ws.refetchProjects)
	assert.True(t, result.ShouldRefetchTasks)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.True(t, dasherr.HasCode(errs[0], "tool_execution_failed"))
	assert.True(t, strings.Contains(errs[0].Error(), "row level security violation"))
	assert.True(t, dasherr.HasCode(errs[1], "tool_invalid_arguments"))
}

func TestDispatchNoRefetchWhenAllProjectCallsFail(t *testing.T) {
	ws := newFakeWorkspace()
	ws.failOn["createProject"] = errors.New("insert rejected")

	result, err := newTestExecutor().Dispatch(context.Background(),
		`[{"tool_name":"createProject","arguments":{"name":"A"}},{"tool_name":"createProject","arguments":{"name":"B"}}]`, ws)
	require.Error(t, err)

	assert.Len(t, ws.Calls(), 2)
	assert.Empty(t, result.Confirmation)
	assert.Equal(t, 0, ws.refetchProjects)
}

func TestDispatchRefetchesProjectsOnce(t *testing.T) {
	ws := newFakeWorkspace(backend.Project{ID: "p1", Name: "Existing"})
	reply := `[{"tool_name":"createProject","arguments":{"name":"A"}},{"tool_name":"createProject","arguments":{"name":"B"}},{"tool_name":"updateProject","arguments":{"id":"p1","updates":{"status":"active"}}}]`

	result, err := newTestExecutor().Dispatch(context.Background(), reply, ws)
	require.NoError(t, err)

	assert.Equal(t, 1, ws.refetchProjects)
	assert.Equal(t, 3, strings.Count(result.Confirmation, "✅"))
	assert.Contains(t, result.Confirmation, `Project "Existing" updated successfully.`)
}
