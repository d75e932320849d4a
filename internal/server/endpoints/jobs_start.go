package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/qaflow/internal/api"
	"github.com/jackzampolin/qaflow/internal/job"
	"github.com/jackzampolin/qaflow/internal/svcctx"
)

// StartJobEndpoint handles POST /api/jobs/start. The job runs inside the
// request; the response is the job envelope and its HTTP status mirrors the
// envelope status code.
type StartJobEndpoint struct{}

func (e *StartJobEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/jobs/start", e.handler
}

func (e *StartJobEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Run a job
//	@Description	Normalize a question file, analyze it and persist the artifact
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		job.Event	true	"Source locator"
//	@Success		200		{object}	job.Envelope
//	@Failure		400		{object}	job.Envelope
//	@Failure		500		{object}	job.Envelope
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/jobs/start [post]
func (e *StartJobEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var ev job.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h := svcctx.HandlerFrom(r.Context())
	if h == nil {
		writeError(w, http.StatusServiceUnavailable, "job handler not initialized")
		return
	}

	env := h.Handle(r.Context(), ev)
	writeJSON(w, env.StatusCode, env)
}

func (e *StartJobEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "start <source-uri>",
		Short: "Run a job on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var env job.Envelope
			err := client.Post(cmd.Context(), "/api/jobs/start", job.Event{SourceURI: args[0]}, &env)
			// Failure envelopes come back with 4xx/5xx; show them as-is.
			var statusErr *api.StatusError
			if errors.As(err, &statusErr) && statusErr.Decode(&env) == nil {
				if outErr := api.Output(env); outErr != nil {
					return outErr
				}
				return err
			}
			if err != nil {
				return err
			}
			return api.Output(env)
		},
	}
}
