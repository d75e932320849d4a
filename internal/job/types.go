package job

import (
	"time"

	"github.com/jackzampolin/qaflow/internal/artifact"
	"github.com/jackzampolin/qaflow/internal/extract"
)

// Envelope statuses.
const (
	StatusCompleted  = artifact.StatusCompleted
	StatusFailed     = "FAILED"
	StatusInProgress = "IN_PROGRESS"
)

// Event is one invocation. SourceURI wins when both keys are set.
type Event struct {
	SourceURI string `json:"source_uri,omitempty"`
	S3URI     string `json:"s3_uri,omitempty"`
}

// Locator returns the source locator string.
func (e Event) Locator() string {
	if e.SourceURI != "" {
		return e.SourceURI
	}
	return e.S3URI
}

// Envelope is the invocation result. Failure envelopes carry a synthetic
// job id and the error message, never metadata or a result.
type Envelope struct {
	StatusCode int                   `json:"statusCode"`
	JobID      string                `json:"job_id"`
	Status     string                `json:"status"`
	Error      string                `json:"error,omitempty"`
	Metadata   *artifact.JobMetadata `json:"metadata,omitempty"`
	Result     *extract.Result       `json:"result,omitempty"`
	OutputURI  string                `json:"output_uri,omitempty"`
}

// OK reports whether the envelope describes a completed run.
func (e Envelope) OK() bool {
	return e.StatusCode == 200 && e.Status == StatusCompleted
}

// StatusRequest asks for the state of a job previously started.
type StatusRequest struct {
	JobDetails JobDetails `json:"job_details"`
}

// JobDetails is the part of a start envelope the status check reads.
type JobDetails struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	OutputURI string `json:"output_uri,omitempty"`
}

// StatusResult holds the details of a completed job.
type StatusResult struct {
	OutputURI   string     `json:"output_uri,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StatusResponse answers a StatusRequest.
type StatusResponse struct {
	StatusCode int           `json:"statusCode"`
	JobID      string        `json:"job_id,omitempty"`
	Status     string        `json:"status,omitempty"`
	Error      string        `json:"error,omitempty"`
	Result     *StatusResult `json:"result,omitempty"`
	CheckedAt  *time.Time    `json:"checked_at,omitempty"`
}
