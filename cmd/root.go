// Package cmd provides the command-line interface for netscope.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/kedare/netscope/internal/logger"
	"github.com/kedare/netscope/internal/output"
	"github.com/spf13/cobra"
)

var (
	logLevel     string
	configPath   string
	profileName  string
	projects     []string
	regions      []string
	hostProject  string
	outputFormat string
	metricsFile  string
	concurrency  int
	timeout      time.Duration
	noCache      bool
	apiEndpoint  string
)

var rootCmd = &cobra.Command{
	Use:   "netscope",
	Short: "Inventory and audit Google Cloud networking",
	Long: `Discover networking resources across Google Cloud projects and run
cross-reference reports over them: quota usage, subnet utilization, IP
inventories, shared VPC access, certificate expiry and more.

Projects are read from the settings file or --project, otherwise every project
visible to the active credentials is inventoried.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLevel(logLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger.Log.Debugf("Log level set to: %s", logLevel)

		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		outputFormat = format

		return nil
	},
}

func Execute() error {
	return ExecuteContext(context.Background())
}

func ExecuteContext(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "Set the logging level (trace, debug, info, warn, error, fatal)")
	flags.StringVar(&configPath, "config", "", "Settings file (default $NETSCOPE_CONFIG or ~/.config/netscope/settings.yaml)")
	flags.StringVar(&profileName, "profile", "", "Settings profile narrowing networks and regions")
	flags.StringSliceVarP(&projects, "project", "p", nil, "Project to inventory, repeatable (overrides the settings file)")
	flags.StringSliceVar(&regions, "region", nil, "Region to list, repeatable (overrides the settings file)")
	flags.StringVar(&hostProject, "host-project", "", "Shared VPC host project (overrides the settings file)")
	flags.StringVarP(&outputFormat, "output", "o", output.DefaultFormat(output.FormatTable, output.Formats),
		"Output format: table, json or csv")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus fetch metrics to this file after the run")
	flags.IntVar(&concurrency, "concurrency", 0, "Maximum requests in flight (default from settings)")
	flags.DurationVar(&timeout, "timeout", 0, "Per-request timeout, e.g. 30s (default from settings)")
	flags.BoolVar(&noCache, "no-cache", false, "Bypass the local response cache")
	flags.StringVar(&apiEndpoint, "api-endpoint", "", "Send API requests to this base URL instead of googleapis.com")
	_ = flags.MarkHidden("api-endpoint")
}
