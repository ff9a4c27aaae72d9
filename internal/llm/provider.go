// Package llm provides optional model-generated narratives over ranked
// findings. Narration never feeds back into confidence or ordering.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Narrate generates a prose narrative over the findings
	Narrate(ctx context.Context, req NarrateRequest) (*NarrateResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// NarrateRequest contains the input for narrative generation
type NarrateRequest struct {
	// Question is the user's question as asked
	Question string

	// Findings are the ranked answer candidates, best first
	Findings []model.Finding

	// AllowedIRIs is the strict allowlist of IRIs the narrative may
	// cite. The provider rejects output citing anything else.
	AllowedIRIs []string

	// Prompt overrides the default prompt when set
	Prompt string

	// Model selects a provider-specific model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// NarrateResponse contains the generated narrative
type NarrateResponse struct {
	Narrative  string
	CitedIRIs  []string // IRIs the narrative actually cited
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// BuildPrompt constructs the default narration prompt. The narrative
// must stay within the findings and their IRI allowlist.
func BuildPrompt(question string, findings []model.Finding, allowedIRIs []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are narrating results retrieved from nanopublication endpoints for a scientific question. You describe what was found; you never assert truth beyond the retrieved statements.

RULES:
1. You MUST ONLY cite IRIs from this allowed list:
%s

2. Do not infer, speculate, or cite anything beyond this list.
3. If the findings are weak or empty, say so explicitly.
4. Report confidence as retrieved, e.g. "with confidence 0.85".

Question: %s

Findings (best first):
`, joinIRIs(allowedIRIs), question)

	for i, f := range findings {
		if i >= 5 {
			fmt.Fprintf(&sb, "... and %d more findings\n", len(findings)-5)
			break
		}
		fmt.Fprintf(&sb, "%d. %s (confidence %.2f, %d supporting statements)\n", f.Rank, f.Description, f.Confidence, len(f.Bindings))
	}

	sb.WriteString("\nWrite a 2-4 sentence narrative answering the question from these findings only.")
	return sb.String()
}

func joinIRIs(iris []string) string {
	if len(iris) == 0 {
		return "(no IRIs available)"
	}
	var sb strings.Builder
	for i, iri := range iris {
		if i >= 20 {
			fmt.Fprintf(&sb, "\n... and %d more IRIs", len(iris)-20)
			break
		}
		fmt.Fprintf(&sb, "\n- %s", iri)
	}
	return sb.String()
}

// verifyCitations rejects narratives citing IRIs outside the allowlist
func verifyCitations(cited, allowed []string) error {
	for _, iri := range cited {
		if !contains(allowed, iri) {
			return fmt.Errorf("citation leak: narrative cited disallowed IRI %s", iri)
		}
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
