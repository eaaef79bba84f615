package llm

import "sort"

// Tier is a coarse cost/capability band used for display
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ModelInfo describes a selectable model
type ModelInfo struct {
	ID          string
	Name        string
	Tier        Tier
	Description string
}

var catalog = map[string]ModelInfo{
	"openai/gpt-4o-mini": {
		ID: "openai/gpt-4o-mini", Name: "GPT-4o mini", Tier: TierStandard,
		Description: "Fast, inexpensive general model; good default for dashboard chat",
	},
	"openai/gpt-4o": {
		ID: "openai/gpt-4o", Name: "GPT-4o", Tier: TierPremium,
		Description: "Strong reasoning and reliable structured output",
	},
	"anthropic/claude-3.5-sonnet": {
		ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Tier: TierPremium,
		Description: "High quality writing and careful tool use",
	},
	"anthropic/claude-3-haiku": {
		ID: "anthropic/claude-3-haiku", Name: "Claude 3 Haiku", Tier: TierStandard,
		Description: "Low latency replies for short turns",
	},
	"google/gemini-flash-1.5": {
		ID: "google/gemini-flash-1.5", Name: "Gemini 1.5 Flash", Tier: TierStandard,
		Description: "Large context window at low cost",
	},
	"meta-llama/llama-3.1-70b-instruct": {
		ID: "meta-llama/llama-3.1-70b-instruct", Name: "Llama 3.1 70B Instruct", Tier: TierStandard,
		Description: "Open-weights model with solid instruction following",
	},
	"mistralai/mistral-7b-instruct:free": {
		ID: "mistralai/mistral-7b-instruct:free", Name: "Mistral 7B Instruct", Tier: TierFree,
		Description: "Free tier; may ignore the tool-call format on complex requests",
	},
	"deepseek/deepseek-chat": {
		ID: "deepseek/deepseek-chat", Name: "DeepSeek V3", Tier: TierStandard,
		Description: "Capable general chat model with competitive pricing",
	},
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (ModelInfo, bool) {
	info, ok := catalog[id]
	return info, ok
}

// Models returns every catalog entry ordered by tier, then id.
func Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	rank := map[Tier]int{TierFree: 0, TierStandard: 1, TierPremium: 2}
	sort.Slice(out, func(i, j int) bool {
		if rank[out[i].Tier] != rank[out[j].Tier] {
			return rank[out[i].Tier] < rank[out[j].Tier]
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DisplayName returns the catalog name for id, or id itself when unknown.
func DisplayName(id string) string {
	if info, ok := Lookup(id); ok {
		return info.Name
	}
	return id
}
