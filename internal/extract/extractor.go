// Package extract turns a question set into analyzed answers. A structured
// generation call is tried first; if it fails or its output does not match
// the schema, a plain text call is made and every question receives a
// sentinel record so the result keeps one entry per question.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/qaflow/internal/llmcall"
	"github.com/jackzampolin/qaflow/internal/prompts"
	"github.com/jackzampolin/qaflow/internal/providers"
	"github.com/jackzampolin/qaflow/internal/tabular"
)

// ErrExtractionFailed is returned when the fallback call fails, leaving
// nothing to degrade from.
var ErrExtractionFailed = errors.New("extraction failed")

// errAnswerCount marks structured output whose answers do not line up with the questions.
var errAnswerCount = errors.New("answer count does not match question count")

// Sentinel values for fallback results.
const (
	EmptySummary           = "No questions found in the CSV file."
	FallbackAnswer         = "fallback placeholder - see raw_response_text"
	FallbackCategory       = "general"
	FallbackLevel          = LevelIntermediate
	DefaultFallbackSummary = "Processed via fallback because structured analysis failed"
)

// DefaultFallbackTopics fill key_topics of fallback results when none are configured.
var DefaultFallbackTopics = []string{"aws", "serverless", "gemini", "pipeline"}

const defaultStructuredTimeout = 2 * time.Minute

// Generator is the generation surface the extractor needs.
type Generator interface {
	GenerateStructured(ctx context.Context, prompt string, schema json.RawMessage) (*providers.StructuredResult, error)
	GenerateText(ctx context.Context, prompt string) (*providers.ChatResult, error)
}

// Config controls extraction behavior.
type Config struct {
	// StructuredTimeout bounds the structured call; expiry switches to fallback.
	StructuredTimeout time.Duration
	// FallbackTimeout bounds each fallback attempt. Zero means no extra bound.
	FallbackTimeout time.Duration
	// FallbackAttempts is the number of fallback calls before giving up.
	// Values below 1 mean a single attempt.
	FallbackAttempts int
	// FallbackDelay is the pause between fallback attempts.
	FallbackDelay time.Duration
	// FallbackSummary and FallbackTopics fill fallback results.
	FallbackSummary string
	FallbackTopics  []string
}

// Extractor analyzes question sets.
type Extractor struct {
	gen      Generator
	cfg      Config
	prompts  *prompts.Resolver
	recorder llmcall.Recorder
	logger   *slog.Logger
}

// New creates an extractor. The resolver must have the extraction prompts
// registered (see RegisterPrompts); a nil resolver gets the embedded defaults.
func New(gen Generator, cfg Config, resolver *prompts.Resolver, recorder llmcall.Recorder, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = prompts.NewResolver(logger)
		RegisterPrompts(resolver)
	}
	if cfg.StructuredTimeout <= 0 {
		cfg.StructuredTimeout = defaultStructuredTimeout
	}
	if cfg.FallbackAttempts < 1 {
		cfg.FallbackAttempts = 1
	}
	if cfg.FallbackSummary == "" {
		cfg.FallbackSummary = DefaultFallbackSummary
	}
	if cfg.FallbackTopics == nil {
		cfg.FallbackTopics = append([]string{}, DefaultFallbackTopics...)
	}
	return &Extractor{
		gen:      gen,
		cfg:      cfg,
		prompts:  resolver,
		recorder: recorder,
		logger:   logger,
	}
}

type state int

const (
	stateStructured state = iota
	stateFallback
)

func (s state) String() string {
	if s == stateFallback {
		return ProcessingFallback
	}
	return ProcessingStructured
}

// Extract analyzes questions. An empty set short-circuits without any model
// call. The only error is ErrExtractionFailed (or a prompt rendering error).
func (e *Extractor) Extract(ctx context.Context, jobID string, questions tabular.QuestionSet) (Result, error) {
	if len(questions) == 0 {
		return Result{
			QuestionsAnswers: []QuestionAnswer{},
			Summary:          EmptySummary,
			KeyTopics:        []string{},
		}, nil
	}

	data, err := newPromptData(questions)
	if err != nil {
		return Result{}, fmt.Errorf("encode questions: %w", err)
	}

	logger := e.logger.With("job_id", jobID, "questions", len(questions))
	current := stateStructured
	for {
		switch current {
		case stateStructured:
			result, err := e.structured(ctx, jobID, questions, data)
			if err == nil {
				logger.Info("extract.structured.success")
				return result, nil
			}
			if ctx.Err() != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrExtractionFailed, ctx.Err())
			}
			// Every structured failure leads to fallback.
			logger.Warn("extract.structured.failed",
				"error", err,
				"schema_error", errors.Is(err, providers.ErrSchemaValidation),
				"timeout", errors.Is(err, context.DeadlineExceeded))
			current = stateFallback

		case stateFallback:
			result, err := e.fallback(ctx, jobID, questions, data)
			if err != nil {
				logger.Error("extract.fallback.failed", "error", err)
				return Result{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			logger.Info("extract.fallback.success")
			return result, nil
		}
	}
}

func (e *Extractor) structured(ctx context.Context, jobID string, questions tabular.QuestionSet, data PromptData) (Result, error) {
	prompt, err := e.render(AnalysisPromptKey, data)
	if err != nil {
		return Result{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.StructuredTimeout)
	defer cancel()

	out, err := e.gen.GenerateStructured(callCtx, prompt.text, extractionSchemaJSON)

	var result Result
	if err == nil {
		if uErr := json.Unmarshal(out.JSON, &result); uErr != nil {
			err = &providers.SchemaError{Raw: out.Raw, Cause: uErr}
		} else if len(result.QuestionsAnswers) != len(questions) {
			err = &providers.SchemaError{
				Raw:   out.Raw,
				Cause: fmt.Errorf("%w: got %d, want %d", errAnswerCount, len(result.QuestionsAnswers), len(questions)),
			}
		}
	}

	if out != nil {
		e.record(out.Chat, jobID, stateStructured, prompt, err)
	}
	if err != nil {
		return Result{}, err
	}

	result.TotalQuestions = len(result.QuestionsAnswers)
	result.RawResponseText = out.Raw
	result.FallbackUsed = false
	for i := range result.QuestionsAnswers {
		if result.QuestionsAnswers[i].AWSServicesMentioned == nil {
			result.QuestionsAnswers[i].AWSServicesMentioned = []string{}
		}
	}
	return result, nil
}

func (e *Extractor) fallback(ctx context.Context, jobID string, questions tabular.QuestionSet, data PromptData) (Result, error) {
	prompt, err := e.render(FallbackPromptKey, data)
	if err != nil {
		return Result{}, err
	}

	chat, err := retry.DoWithData(
		func() (*providers.ChatResult, error) {
			callCtx, cancel := ctx, context.CancelFunc(func() {})
			if e.cfg.FallbackTimeout > 0 {
				callCtx, cancel = context.WithTimeout(ctx, e.cfg.FallbackTimeout)
			}
			defer cancel()

			chat, err := e.gen.GenerateText(callCtx, prompt.text)
			e.record(chat, jobID, stateFallback, prompt, err)
			return chat, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.cfg.FallbackAttempts)),
		retry.Delay(e.cfg.FallbackDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Result{}, err
	}

	answers := make([]QuestionAnswer, len(questions))
	for i, q := range questions {
		answers[i] = QuestionAnswer{
			Question:             q,
			Answer:               FallbackAnswer,
			Category:             FallbackCategory,
			TechnicalLevel:       FallbackLevel,
			AWSServicesMentioned: []string{},
		}
	}
	return Result{
		TotalQuestions:   len(answers),
		QuestionsAnswers: answers,
		Summary:          e.cfg.FallbackSummary,
		KeyTopics:        append([]string{}, e.cfg.FallbackTopics...),
		RawResponseText:  chat.Content,
		FallbackUsed:     true,
	}, nil
}

func (e *Extractor) record(chat *providers.ChatResult, jobID string, st state, prompt renderedPrompt, err error) {
	if e.recorder == nil || chat == nil {
		return
	}
	e.recorder.Record(chat, llmcall.RecordOptions{
		JobID:      jobID,
		Mode:       st.String(),
		PromptKey:  prompt.key,
		PromptHash: prompt.hash,
		Err:        err,
	})
}
