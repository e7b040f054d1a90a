package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/logger"
)

// now is replaced in tests.
var now = time.Now

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "bulkcheck",
		Short:         "Check bulk waste movement CSV files before upload",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return logger.Init(logLevel, "console")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newValidateCmd(),
		newHeadersCmd(),
		newTemplateCmd(),
		newPackCmd(),
		newUnpackCmd(),
	)
	return root
}
