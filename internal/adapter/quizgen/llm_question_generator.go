package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"classquiz/internal/config"
	"classquiz/internal/domain"
	"classquiz/internal/logger"
	"classquiz/internal/util"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const questionPromptTemplate = `You are a quiz author for a university course. Read the study material below and write exactly %d multiple-choice questions about it.

Respond with ONLY a JSON array. Each element must have this shape:
{
  "question": "the question text",
  "options": ["option A", "option B", "option C", "option D"],
  "correct_index": 0,
  "explanation": "one sentence explaining the correct answer"
}

Rules:
1. Exactly %d questions, each with exactly 4 options.
2. "correct_index" is the 0-based index of the correct option.
3. Every question must be answerable from the material alone.
4. Distractors must be plausible but clearly wrong.

Study material:
%s`

// llmQuestionGenerator implements domain.QuestionGenerator on top of a
// langchaingo chat model.
type llmQuestionGenerator struct {
	model   llms.Model
	timeout time.Duration
}

// NewLLMQuestionGenerator creates a question generator backed by the LLM the
// configuration selects: a local ollama server or the OpenAI API.
func NewLLMQuestionGenerator(cfg config.GenerationConfig) (domain.QuestionGenerator, error) {
	var model llms.Model
	var err error

	switch cfg.Source {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai generation source requires an API key")
		}
		model, err = openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
	case "ollama", "":
		httpClient := &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     10 * time.Second,
			},
		}
		model, err = ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("unknown generation source: %s", cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &llmQuestionGenerator{model: model, timeout: cfg.Timeout}, nil
}

// Generate produces count questions from the document text. A malformed or
// incomplete LLM response is a GENERATION_FAILED error, never a silently
// short question bank.
func (g *llmQuestionGenerator) Generate(ctx context.Context, documentText string, count int) ([]domain.Question, error) {
	l := logger.Get()

	if count <= 0 {
		return nil, domain.NewInvalidInputError("question count must be positive")
	}
	if strings.TrimSpace(documentText) == "" {
		return nil, domain.NewInvalidInputError("document text is empty")
	}

	prompt := fmt.Sprintf(questionPromptTemplate, count, count, documentText)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(callCtx, g.model, prompt, llms.WithTemperature(0.2))
	if err != nil {
		l.Error("LLM question generation call failed", zap.Error(err))
		return nil, domain.NewGenerationFailedError(err)
	}

	questions, err := parseGeneratedQuestions(response, count)
	if err != nil {
		l.Error("Failed to parse LLM question generation response",
			zap.Error(err),
			zap.Int("requested", count))
		return nil, err
	}

	l.Info("Generated question bank", zap.Int("count", len(questions)))
	return questions, nil
}

// generatedQuestion is the wire shape the prompt asks the model for.
type generatedQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// parseGeneratedQuestions cleans the raw LLM output and validates it into a
// question bank of exactly count questions.
func parseGeneratedQuestions(raw string, count int) ([]domain.Question, error) {
	responseStr := strings.TrimSpace(raw)

	// Reasoning models may prefix their output with a think block.
	if thinkStart := strings.Index(responseStr, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(responseStr, "</think>"); thinkEnd != -1 {
			responseStr = responseStr[thinkEnd+len("</think>"):]
		}
	}

	responseStr = strings.TrimSpace(responseStr)
	responseStr = strings.TrimPrefix(responseStr, "```json")
	responseStr = strings.TrimPrefix(responseStr, "```")
	responseStr = strings.TrimSuffix(responseStr, "```")
	responseStr = strings.TrimSpace(responseStr)

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(responseStr), &generated); err != nil {
		return nil, domain.NewGenerationFailedError(fmt.Errorf("failed to parse LLM response: %w", err))
	}

	if len(generated) != count {
		return nil, domain.NewGenerationFailedError(
			fmt.Errorf("requested %d questions, model returned %d", count, len(generated)))
	}

	questions := make([]domain.Question, len(generated))
	for i, gq := range generated {
		q := domain.Question{
			ID:           util.NewULID(),
			Position:     i,
			Text:         strings.TrimSpace(gq.Question),
			Options:      gq.Options,
			CorrectIndex: gq.CorrectIndex,
			Explanation:  strings.TrimSpace(gq.Explanation),
		}
		if err := q.Validate(); err != nil {
			return nil, domain.NewGenerationFailedError(
				fmt.Errorf("generated question %d is invalid: %w", i, err))
		}
		questions[i] = q
	}
	return questions, nil
}
