package cmd

import (
	"errors"
	"fmt"

	"github.com/kedare/netscope/internal/collector"
	"github.com/kedare/netscope/internal/logger"
	"github.com/kedare/netscope/internal/output"
	"github.com/kedare/netscope/internal/report"
	"github.com/spf13/cobra"
)

func newReportCommand(def report.Definition) *cobra.Command {
	return &cobra.Command{
		Use:   def.Name,
		Short: def.Description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, def)
		},
	}
}

func runReport(cmd *cobra.Command, def report.Definition) error {
	s, err := newSession(cmd.Context(), "Collecting "+def.Name)
	if err != nil {
		return err
	}
	defer s.close()

	logger.Log.Debugf("Running report %s over %s", def.Name, describeProjects(s.collectOpts))

	s.spinner.Start()

	snapshot, err := s.collector.Collect(cmd.Context(), def.Needs, s.collectOpts)
	if err != nil {
		s.spinner.Fail(fmt.Sprintf("Collection for %s failed", def.Name))

		return explain(err)
	}

	s.spinner.Success(fmt.Sprintf("Collected %d projects", len(snapshot.Projects)))

	tables := def.Build(snapshot, s.reportOpts)

	return output.Render(cmd.OutOrStdout(), outputFormat, tables...)
}

// explain adds the usual fix to well-known collection errors.
func explain(err error) error {
	switch {
	case errors.Is(err, collector.ErrNoHostProject):
		return fmt.Errorf("%w: set host_project_id in the settings file or pass --host-project", err)
	case errors.Is(err, collector.ErrNoProjects):
		return fmt.Errorf("%w: check the credentials or pass --project", err)
	default:
		return err
	}
}

func init() {
	for _, def := range report.Definitions() {
		rootCmd.AddCommand(newReportCommand(def))
	}
}
