package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tidegate/askdocs/internal/domain/ports"
)

const decisionSystem = "You are a decision-making assistant. Respond with only SEARCH or DIRECT."

const decisionPromptFmt = `You are a helpful assistant. Analyze this user query and decide if you need to search through documents to answer it, or if you can answer directly from your general knowledge.

User query: %q

Respond with ONLY one word:
- "SEARCH" if you need to search documents (for company-specific info, policies, products, technical details)
- "DIRECT" if you can answer from general knowledge

Response:`

// DecisionPolicy decides, per query, whether retrieval is warranted. It
// issues exactly one classification call to the generator.
type DecisionPolicy struct {
	generator ports.Generator
}

// NewDecisionPolicy creates a DecisionPolicy backed by the given generator.
func NewDecisionPolicy(generator ports.Generator) *DecisionPolicy {
	return &DecisionPolicy{generator: generator}
}

// ShouldRetrieve returns true iff the model's reply contains SEARCH
// (case-insensitive). Fail-open: any generator error defaults to true, so a
// transient model failure triggers a retrieval pass instead of an answer
// guessed from general knowledge.
func (p *DecisionPolicy) ShouldRetrieve(ctx context.Context, query string) bool {
	prompt := fmt.Sprintf(decisionPromptFmt, query)

	response, err := p.generator.Generate(ctx, prompt, decisionSystem, nil)
	if err != nil {
		log.Printf("[WARN] Retrieval decision failed, defaulting to search: %v", err)
		return true
	}

	decision := strings.ToUpper(strings.TrimSpace(response))
	log.Printf("[INFO] Retrieval decision: %s", decision)
	return strings.Contains(decision, "SEARCH")
}
