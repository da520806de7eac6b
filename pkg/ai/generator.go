package ai

import "context"

// TextGenerator produces an answer from a system prompt and a user prompt.
// Implementations must honor ctx deadlines; callers treat any failure as a
// terminal upstream error and never retry here.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
