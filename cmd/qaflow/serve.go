package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/qaflow/internal/server"
	"github.com/jackzampolin/qaflow/internal/svcctx"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the qaflow server",
	Long: `Start the qaflow HTTP server.

The config file is watched; provider, prompt and pipeline changes apply to
the next job without a restart.

The server provides:
  - /health           - Basic server health check
  - /status           - Configured providers and readiness
  - /api/jobs/start   - Run a job and return its envelope
  - /api/jobs/status  - Check a job from its envelope
  - /api/prompts      - Resolved prompts
  - /swagger/         - API documentation

Examples:
  qaflow serve                    # Start on the configured port
  qaflow serve --port 3000        # Start on custom port
  qaflow serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		h, logger, mgr, err := loadEnv()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		services, err := svcctx.Build(ctx, cfg, h, logger)
		if err != nil {
			return err
		}

		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Services:      services,
			ConfigManager: mgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
