package agent

import (
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/dashai/internal/tools"
)

func TestBuildSystemPrompt(t *testing.T) {
	catalog := tools.NewRegistry(tools.Defaults{}).Catalog()
	prompt := BuildSystemPrompt(PromptInput{
		Context:   PageContext{Page: "PAGE-BLOCK", Team: "TEAM-BLOCK"},
		Projects:  testProjects,
		Retrieved: RetrievalHeader + "\n- the client prefers email",
		Catalog:   catalog,
	})

	order := []string{
		"business dashboard",
		"PAGE-BLOCK",
		"TEAM-BLOCK",
		`"name": "Website redesign"`,
		"the client prefers email",
		"createProject",
		`{"tool_name": "<tool>", "arguments": {...}}`,
		"addRagDocument call to remember it",
	}
	last := -1
	for _, want := range order {
		idx := strings.Index(prompt, want)
		if idx < 0 {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
		if idx < last {
			t.Errorf("%q appears out of order", want)
		}
		last = idx
	}

	if !strings.Contains(prompt, `default "medium"`) {
		t.Error("catalog defaults should be part of the prompt")
	}
}

func TestBuildSystemPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildSystemPrompt(PromptInput{})
	for _, heading := range []string{"## Current page", "## Team", "## Knowledge base", "## Available tools"} {
		if strings.Contains(prompt, heading) {
			t.Errorf("empty section %q should be omitted", heading)
		}
	}
	if !strings.Contains(prompt, "## All projects\n[]") {
		t.Error("project dump should always be present")
	}
}
