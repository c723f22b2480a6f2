package domain

import "context"

// QuestionGenerator is the external generative-text collaborator: it turns
// document text into a bank of multiple-choice questions. Implementations
// may fail (malformed output, quota, network); failures surface as a
// GENERATION_FAILED error, never as a silently empty bank.
type QuestionGenerator interface {
	Generate(ctx context.Context, documentText string, count int) ([]Question, error)
}
