// Package job runs the pipeline for one invocation: resolve the provider
// credential, fetch the source, normalize it, extract answers, assemble and
// persist the artifact. Every outcome is reported as an Envelope.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/qaflow/internal/artifact"
	"github.com/jackzampolin/qaflow/internal/blob"
	"github.com/jackzampolin/qaflow/internal/credentials"
	"github.com/jackzampolin/qaflow/internal/extract"
	"github.com/jackzampolin/qaflow/internal/llmcall"
	"github.com/jackzampolin/qaflow/internal/prompts"
	"github.com/jackzampolin/qaflow/internal/providers"
	"github.com/jackzampolin/qaflow/internal/tabular"
)

// Config holds the per-deployment settings of a Handler.
type Config struct {
	// Provider names the registry entry used for generation.
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int

	// SecretName is the credential holding the provider api_key. Empty
	// means the provider's configured key is used.
	SecretName string

	JobPrefix    string
	OutputSuffix string
	Retention    time.Duration
	SampleRows   int

	QuestionToken string
	Delimiter     rune
	RequireRows   bool
	Sheet         string

	Extract extract.Config
}

// ClientFactory builds provider clients. *providers.Registry implements it.
type ClientFactory interface {
	Client(name, apiKey string) (providers.LLMClient, error)
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Blob        blob.Store
	Credentials credentials.Provider
	Clients     ClientFactory
	// Prompts must have the extraction prompts registered; nil uses the
	// embedded defaults.
	Prompts *prompts.Resolver
	// Recorder receives every generation call in addition to the artifact.
	Recorder llmcall.Recorder
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Handler runs invocations. It holds no per-invocation state and is safe for
// concurrent use.
type Handler struct {
	cfg       Config
	deps      Deps
	assembler artifact.Assembler
	logger    *slog.Logger
}

var _ ClientFactory = (*providers.Registry)(nil)

// New creates a handler.
func New(cfg Config, deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Prompts == nil {
		deps.Prompts = prompts.NewResolver(deps.Logger)
		extract.RegisterPrompts(deps.Prompts)
	}
	return &Handler{
		cfg:  cfg,
		deps: deps,
		assembler: artifact.Assembler{
			Prefix:       cfg.JobPrefix,
			OutputSuffix: cfg.OutputSuffix,
			Retention:    cfg.Retention,
			SampleRows:   cfg.SampleRows,
			Clock:        deps.Clock,
		},
		logger: deps.Logger,
	}
}

// Handle runs one invocation. It never panics and never returns a partial
// result: the artifact is written once, after extraction has finished.
func (h *Handler) Handle(ctx context.Context, ev Event) (env Envelope) {
	start := h.deps.Clock()
	defer func() {
		if r := recover(); r != nil {
			env = h.failure(fmt.Errorf("panic: %v", r), start)
		}
	}()

	env, err := h.run(ctx, ev, start)
	if err != nil {
		return h.failure(err, start)
	}
	return env
}

func (h *Handler) failure(err error, start time.Time) Envelope {
	env := Envelope{
		StatusCode: statusCode(err),
		JobID:      artifact.NewFailureID(),
		Status:     StatusFailed,
		Error:      err.Error(),
	}
	h.logger.Error("job.failed",
		"job_id", env.JobID,
		"status_code", env.StatusCode,
		"error", err,
		"elapsed_ms", h.deps.Clock().Sub(start).Milliseconds())
	return env
}

func (h *Handler) run(ctx context.Context, ev Event, start time.Time) (Envelope, error) {
	uri := ev.Locator()
	if uri == "" {
		return Envelope{}, fmt.Errorf("%w: source_uri is required", ErrInput)
	}
	src, err := blob.ParseLocator(uri)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInput, err)
	}
	logger := h.logger.With("source", src.String())

	client, err := h.client(ctx)
	if err != nil {
		return Envelope{}, err
	}

	raw, err := h.deps.Blob.Get(ctx, src)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: fetch source: %w", ErrUpstreamUnavailable, err)
	}

	ds, err := tabular.NormalizeFile(src.Base(), raw, tabular.Options{
		Delimiter:     h.cfg.Delimiter,
		QuestionToken: h.cfg.QuestionToken,
		RequireRows:   h.cfg.RequireRows,
		Sheet:         h.cfg.Sheet,
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("normalize %s: %w", src.Base(), err)
	}
	questions := ds.Questions()

	jobID := h.assembler.NewJobID()
	logger = logger.With("job_id", jobID)
	logger.Info("job.started", "rows", ds.RowCount(), "columns", len(ds.Columns), "questions", len(questions))

	collector := llmcall.NewCollector()
	gen := providers.NewGenerator(client, providers.GeneratorOptions{
		Model:       h.cfg.Model,
		Temperature: h.cfg.Temperature,
		MaxTokens:   h.cfg.MaxTokens,
		Sanitize:    extract.Sanitize,
	})
	extractor := extract.New(gen, h.cfg.Extract, h.deps.Prompts, llmcall.Multi{collector, h.deps.Recorder}, logger)

	result, err := extractor.Extract(ctx, jobID, questions)
	if err != nil {
		return Envelope{}, err
	}

	calls := collector.Calls()
	meta, art := h.assembler.Assemble(artifact.Input{
		JobID:     jobID,
		Source:    src,
		Dataset:   ds,
		Questions: questions,
		Result:    result,
		Calls:     calls,
		Provider:  client.Name(),
		Model:     modelUsed(h.cfg.Model, calls),
		StartedAt: start,
	})

	data, err := art.Encode()
	if err != nil {
		return Envelope{}, fmt.Errorf("encode artifact: %w", err)
	}
	out := h.assembler.Output(src, jobID)
	if err := h.deps.Blob.Put(ctx, out, data, artifact.ContentType); err != nil {
		return Envelope{}, fmt.Errorf("%w: write artifact: %w", ErrUpstreamUnavailable, err)
	}

	logger.Info("job.completed",
		"output", out.String(),
		"processing_type", result.ProcessingType(),
		"llm_calls", len(calls),
		"elapsed_ms", h.deps.Clock().Sub(start).Milliseconds())

	return Envelope{
		StatusCode: 200,
		JobID:      jobID,
		Status:     StatusCompleted,
		Metadata:   &meta,
		Result:     &result,
		OutputURI:  out.String(),
	}, nil
}

// client resolves the API key and builds the provider client.
func (h *Handler) client(ctx context.Context) (providers.LLMClient, error) {
	if h.deps.Clients == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrUpstreamUnavailable)
	}
	var apiKey string
	if h.cfg.SecretName != "" {
		if h.deps.Credentials == nil {
			return nil, fmt.Errorf("%w: no credential provider for secret %s", ErrUpstreamUnavailable, h.cfg.SecretName)
		}
		key, err := credentials.APIKey(ctx, h.deps.Credentials, h.cfg.SecretName)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve credential: %w", ErrUpstreamUnavailable, err)
		}
		apiKey = key
	}
	client, err := h.deps.Clients.Client(h.cfg.Provider, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return client, nil
}

// modelUsed prefers the configured model and falls back to the model
// reported by the last call.
func modelUsed(configured string, calls []llmcall.Call) string {
	if configured != "" {
		return configured
	}
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Model != "" {
			return calls[i].Model
		}
	}
	return ""
}

// CheckStatus echoes the state of a job started earlier. A COMPLETED job
// reports its output locator; any other status is reported as IN_PROGRESS.
func (h *Handler) CheckStatus(req StatusRequest) StatusResponse {
	d := req.JobDetails
	switch {
	case d.JobID == "":
		return StatusResponse{StatusCode: 400, Error: "job_id not found in request"}
	case d.Status == "":
		return StatusResponse{StatusCode: 400, JobID: d.JobID, Error: "status not found in request"}
	}

	now := h.deps.Clock().UTC()
	resp := StatusResponse{
		StatusCode: 200,
		JobID:      d.JobID,
		Status:     StatusInProgress,
		Result:     &StatusResult{},
		CheckedAt:  &now,
	}
	if d.Status == StatusCompleted {
		resp.Status = StatusCompleted
		resp.Result = &StatusResult{OutputURI: d.OutputURI, CompletedAt: &now}
	}
	h.logger.Debug("job.status", "job_id", d.JobID, "status", resp.Status)
	return resp
}

