package agent

import (
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
)

const promptPreamble = `You are the assistant of a business dashboard that manages projects, tasks, team members and a knowledge base of documents.
You help the user understand their data, answer questions about it and carry out changes on their behalf.
Answer in the language the user writes in. Be concise.`

const promptToolContract = `## Actions
When the user asks you to create or change something, respond with ONLY a JSON object of the form
{"tool_name": "<tool>", "arguments": {...}}
or, for several actions, a JSON array of such objects, and nothing else.
Never invent a project id: updateProject must use an id from the project data above.
Whenever the user states durable information (facts about themselves, their clients, preferences or decisions),
also emit an addRagDocument call to remember it, even when the conversation is about something else.
When no action is needed, answer normally in plain text without any JSON.`

// PromptInput holds everything the system prompt is built from.
type PromptInput struct {
	Context   PageContext
	Projects  []backend.Project
	Retrieved string
	Catalog   string
}

// BuildSystemPrompt assembles the system message. Empty sections are omitted.
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder
	b.WriteString(promptPreamble)

	section := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		b.WriteString("\n\n## ")
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(body)
	}

	section("Current page", in.Context.Page)
	section("Team", in.Context.Team)

	projects := in.Projects
	if projects == nil {
		projects = []backend.Project{}
	}
	section("All projects", marshalIndent(projects))
	section("Knowledge base", in.Retrieved)
	section("Available tools", in.Catalog)

	b.WriteString("\n\n")
	b.WriteString(promptToolContract)
	return b.String()
}
