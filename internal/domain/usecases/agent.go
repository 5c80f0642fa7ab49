package usecases

import (
	"context"
	"fmt"
	"log"

	"github.com/tidegate/askdocs/internal/domain/entities"
	"github.com/tidegate/askdocs/internal/domain/ports"
)

// The three system-instruction variants of the answer path.
const (
	systemWithContext = "You are a helpful AI assistant. Use the provided context from documents to answer the user's question accurately. If the context doesn't contain enough information, say so. Always cite the sources when providing information."

	systemNoEvidence = "You are a helpful AI assistant. The user asked a question but no relevant documents were found. Politely inform them that you don't have specific information about their query in the available documents, but try to provide general helpful information if possible."

	systemDirect = "You are a helpful AI assistant. Answer the user's question clearly and concisely using your general knowledge."
)

const groundedPromptFmt = `Context from documents:
%s

User question: %s

Please provide a clear, accurate answer based on the context above. Mention which sources you're using.`

// apologyMessage is the fixed user-facing answer when a query fails. The raw
// failure detail goes to logs, never to the user.
const apologyMessage = "I apologize, but I encountered an error while processing your question. Please try again."

// Agent sequences a query: decide whether to retrieve, optionally gather
// evidence, compose the prompt, generate, and record the exchange.
type Agent struct {
	decision   *DecisionPolicy
	retriever  *RetrieveUseCase
	generator  ports.Generator
	sessions   ports.SessionStore
	maxHistory int
}

// NewAgent creates the query agent.
func NewAgent(
	decision *DecisionPolicy,
	retriever *RetrieveUseCase,
	generator ports.Generator,
	sessions ports.SessionStore,
	maxHistory int,
) *Agent {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &Agent{
		decision:   decision,
		retriever:  retriever,
		generator:  generator,
		sessions:   sessions,
		maxHistory: maxHistory,
	}
}

// ProcessQuery answers one query. It never returns an error: any retrieval
// or generation failure produces the fixed apology answer with the failure
// detail carried on the response for logging.
func (a *Agent) ProcessQuery(ctx context.Context, query, sessionID string) *entities.QueryResponse {
	sid := a.sessions.GetOrCreate(sessionID)
	history := a.sessions.History(sid)
	a.sessions.Append(sid, "user", query)

	useRAG := a.decision.ShouldRetrieve(ctx, query)

	var (
		prompt  = query
		system  = systemDirect
		sources = []string{}
	)

	if useRAG {
		results, err := a.retriever.Retrieve(ctx, query, 0)
		if err != nil {
			return a.fail(sid, fmt.Errorf("retrieving context: %w", err))
		}

		if len(results) == 0 {
			// No evidence: still answer, but disclose the gap.
			system = systemNoEvidence
		} else {
			system = systemWithContext
			prompt = fmt.Sprintf(groundedPromptFmt, a.retriever.FormatContext(results), query)
			sources = a.retriever.Sources(results)
		}
	}

	answer, err := a.generator.Generate(ctx, prompt, system, lastTurns(history, a.maxHistory))
	if err != nil {
		return a.fail(sid, fmt.Errorf("generating answer: %w", err))
	}

	a.sessions.Append(sid, "assistant", answer)

	return &entities.QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sid,
		UsedRAG:   useRAG,
	}
}

func (a *Agent) fail(sessionID string, err error) *entities.QueryResponse {
	log.Printf("[ERROR] Query failed: %v", err)
	return &entities.QueryResponse{
		Answer:        apologyMessage,
		Sources:       []string{},
		SessionID:     sessionID,
		UsedRAG:       false,
		FailureDetail: err.Error(),
	}
}

// lastTurns returns at most n of the most recent history entries.
func lastTurns(history []entities.ChatMessage, n int) []entities.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
