package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/qaflow/internal/api"
	"github.com/jackzampolin/qaflow/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running qaflow server via HTTP.

These commands require a running server (qaflow serve).
Use --server to specify a custom server URL.

Examples:
  qaflow api health                               # Check server health
  qaflow api jobs start file://uploads/q.csv      # Run a job on the server
  qaflow api prompts list                         # Show resolved prompts`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(api.Group("jobs", "Job commands", getServerURL, endpoints.JobCommands()...))
	apiCmd.AddCommand(api.Group("prompts", "Prompt commands", getServerURL, endpoints.PromptCommands()...))

	rootCmd.AddCommand(apiCmd)
}
