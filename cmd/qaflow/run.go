package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/qaflow/internal/api"
	"github.com/jackzampolin/qaflow/internal/job"
	"github.com/jackzampolin/qaflow/internal/svcctx"
)

var runCmd = &cobra.Command{
	Use:   "run <source-uri>",
	Short: "Run one job locally without a server",
	Long: `Run one job in-process and print its envelope.

file:// locators resolve under {home}/data unless blob.file_root is set.
s3:// locators need blob.s3_enabled and AWS credentials.

Examples:
  qaflow run file://uploads/questions.csv
  qaflow run s3://my-bucket/uploads/questions.xlsx -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		h, logger, mgr, err := loadEnv()
		if err != nil {
			return err
		}

		services, err := svcctx.Build(ctx, mgr.Get(), h, logger)
		if err != nil {
			return err
		}

		env := services.Handler().Handle(ctx, job.Event{SourceURI: args[0]})
		if err := api.Output(env); err != nil {
			return err
		}
		if !env.OK() {
			return fmt.Errorf("job %s failed: %s", env.JobID, env.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
