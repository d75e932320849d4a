package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/qaflow/internal/api"
	"github.com/jackzampolin/qaflow/internal/job"
	"github.com/jackzampolin/qaflow/internal/svcctx"
)

// JobStatusEndpoint handles POST /api/jobs/status.
type JobStatusEndpoint struct{}

func (e *JobStatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/jobs/status", e.handler
}

func (e *JobStatusEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Check job status
//	@Description	Echo the state of a job from its start envelope
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		job.StatusRequest	true	"Job details"
//	@Success		200		{object}	job.StatusResponse
//	@Failure		400		{object}	job.StatusResponse
//	@Router			/api/jobs/status [post]
func (e *JobStatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req job.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h := svcctx.HandlerFrom(r.Context())
	if h == nil {
		writeError(w, http.StatusServiceUnavailable, "job handler not initialized")
		return
	}

	resp := h.CheckStatus(req)
	writeJSON(w, resp.StatusCode, resp)
}

func (e *JobStatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	var status, outputURI string
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Check the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := job.StatusRequest{JobDetails: job.JobDetails{
				JobID:     args[0],
				Status:    status,
				OutputURI: outputURI,
			}}
			var resp job.StatusResponse
			if err := client.Post(cmd.Context(), "/api/jobs/status", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&status, "status", job.StatusCompleted, "Status reported by the start envelope")
	cmd.Flags().StringVar(&outputURI, "output-uri", "", "Output locator reported by the start envelope")
	return cmd
}
