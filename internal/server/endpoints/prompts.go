package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/qaflow/internal/api"
	"github.com/jackzampolin/qaflow/internal/svcctx"
)

// PromptResponse represents a single resolved prompt.
type PromptResponse struct {
	Key         string   `json:"key"`
	Text        string   `json:"text"`
	Description string   `json:"description,omitempty"`
	Variables   []string `json:"variables,omitempty"`
	Hash        string   `json:"hash"`
	IsOverride  bool     `json:"is_override"`
	Source      string   `json:"source,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// PromptsListResponse contains all prompts.
type PromptsListResponse struct {
	Prompts []PromptResponse `json:"prompts"`
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List prompts
//	@Description	List every registered prompt as it currently resolves, including overrides
//	@Tags			prompts
//	@Produce		json
//	@Success		200	{object}	PromptsListResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt resolver not initialized")
		return
	}

	resp := PromptsListResponse{Prompts: []PromptResponse{}}
	for _, ep := range resolver.AllEmbedded() {
		pr := PromptResponse{Key: ep.Key, Description: ep.Description}
		resolved, err := resolver.Resolve(ep.Key)
		if err != nil {
			// A broken override file is reported, not fatal to the listing.
			pr.Text, pr.Variables, pr.Hash = ep.Text, ep.Variables, ep.Hash
			pr.Error = err.Error()
		} else {
			pr.Text = resolved.Text
			pr.Variables = resolved.Variables
			pr.Hash = resolved.Hash
			pr.IsOverride = resolved.IsOverride
			pr.Source = resolved.Source
		}
		resp.Prompts = append(resp.Prompts, pr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List prompts used by the extractor",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptsListResponse
			if err := client.Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
