// Package artifact assembles the output document and job metadata for one
// pipeline run. Assembly has no side effects; callers persist the encoded
// artifact themselves.
package artifact

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jackzampolin/qaflow/internal/blob"
	"github.com/jackzampolin/qaflow/internal/extract"
	"github.com/jackzampolin/qaflow/internal/llmcall"
	"github.com/jackzampolin/qaflow/internal/tabular"
)

// StatusCompleted is the status of every assembled job.
const StatusCompleted = "COMPLETED"

// ContentType of encoded artifacts.
const ContentType = "application/json"

const (
	defaultRetention  = 24 * time.Hour
	defaultSampleRows = 3
)

// JobMetadata describes one completed run. It is built once and never updated.
type JobMetadata struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	InputURI    string    `json:"input_uri"`
	OutputURI   string    `json:"output_uri"`
	Namespace   string    `json:"namespace"`
	InputKey    string    `json:"input_key"`
	OutputKey   string    `json:"output_key"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	// TTL is an informational expiry in unix seconds; nothing enforces it.
	TTL int64 `json:"ttl"`
}

// DataSummary is a snapshot of the normalized input.
type DataSummary struct {
	TotalRows  int              `json:"total_rows"`
	Columns    []string         `json:"columns"`
	SampleData []tabular.RawRow `json:"sample_data"`
}

// ProcessingMetadata records how the analysis was produced.
type ProcessingMetadata struct {
	TotalRowsProcessed int      `json:"total_rows_processed"`
	ColumnsAnalyzed    []string `json:"columns_analyzed"`
	QuestionsExtracted int      `json:"questions_extracted"`
	ProcessingType     string   `json:"processing_type"`
	Provider           string   `json:"provider,omitempty"`
	Model              string   `json:"model,omitempty"`
	PromptHash         string   `json:"prompt_hash,omitempty"`
}

// OutputArtifact is the persisted result document.
type OutputArtifact struct {
	Timestamp          time.Time           `json:"timestamp"`
	StructuredAnalysis extract.Result      `json:"structured_analysis"`
	DataSummary        DataSummary         `json:"data_summary"`
	ProcessingMetadata ProcessingMetadata  `json:"processing_metadata"`
	QuestionsProcessed tabular.QuestionSet `json:"questions_processed"`
	LLMCalls           []llmcall.Call      `json:"llm_calls"`
}

// Encode renders the artifact as indented UTF-8 JSON without HTML escaping.
func (a OutputArtifact) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Input is everything one run hands to the assembler.
type Input struct {
	// JobID is generated when empty.
	JobID     string
	Source    blob.Locator
	Dataset   *tabular.Dataset
	Questions tabular.QuestionSet
	Result    extract.Result
	Calls     []llmcall.Call
	Provider  string
	Model     string
	StartedAt time.Time
}

// Assembler builds artifacts. The zero value uses the defaults.
type Assembler struct {
	Prefix       string
	OutputSuffix string
	Retention    time.Duration
	SampleRows   int
	Clock        func() time.Time
}

func (a Assembler) now() time.Time {
	if a.Clock != nil {
		return a.Clock().UTC()
	}
	return time.Now().UTC()
}

// NewJobID returns a fresh id using the assembler's prefix and clock.
func (a Assembler) NewJobID() string {
	return NewJobID(a.Prefix, a.now())
}

// Output returns the artifact locator for a job.
func (a Assembler) Output(source blob.Locator, jobID string) blob.Locator {
	suffix := a.OutputSuffix
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	return OutputLocator(source, suffix, jobID)
}

// Assemble merges a run's pieces into its metadata and output artifact.
func (a Assembler) Assemble(in Input) (JobMetadata, OutputArtifact) {
	now := a.now()
	jobID := in.JobID
	if jobID == "" {
		jobID = NewJobID(a.Prefix, now)
	}
	started := in.StartedAt.UTC()
	if in.StartedAt.IsZero() {
		started = now
	}
	retention := a.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	sampleRows := a.SampleRows
	if sampleRows <= 0 {
		sampleRows = defaultSampleRows
	}

	ds := in.Dataset
	if ds == nil {
		ds = &tabular.Dataset{}
	}
	questions := in.Questions
	if questions == nil {
		questions = tabular.QuestionSet{}
	}
	calls := in.Calls
	if calls == nil {
		calls = []llmcall.Call{}
	}
	columns := ds.Columns
	if columns == nil {
		columns = []string{}
	}
	sample := append([]tabular.RawRow{}, ds.Sample(sampleRows)...)

	out := a.Output(in.Source, jobID)
	meta := JobMetadata{
		JobID:       jobID,
		Status:      StatusCompleted,
		InputURI:    in.Source.String(),
		OutputURI:   out.String(),
		Namespace:   in.Source.Namespace,
		InputKey:    in.Source.Key,
		OutputKey:   out.Key,
		StartedAt:   started,
		CompletedAt: now,
		TTL:         now.Add(retention).Unix(),
	}

	artifact := OutputArtifact{
		Timestamp:          now,
		StructuredAnalysis: in.Result,
		DataSummary: DataSummary{
			TotalRows:  ds.RowCount(),
			Columns:    columns,
			SampleData: sample,
		},
		ProcessingMetadata: ProcessingMetadata{
			TotalRowsProcessed: ds.RowCount(),
			ColumnsAnalyzed:    append([]string{}, columns...),
			QuestionsExtracted: len(questions),
			ProcessingType:     in.Result.ProcessingType(),
			Provider:           in.Provider,
			Model:              in.Model,
			PromptHash:         producingPromptHash(calls, in.Result.ProcessingType()),
		},
		QuestionsProcessed: questions,
		LLMCalls:           calls,
	}
	return meta, artifact
}

// producingPromptHash returns the prompt hash of the last successful call in
// the mode that produced the result.
func producingPromptHash(calls []llmcall.Call, mode string) string {
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Success && calls[i].Mode == mode {
			return calls[i].PromptHash
		}
	}
	return ""
}
