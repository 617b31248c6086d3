package cmd

import (
	"fmt"

	"github.com/kedare/netscope/internal/output"
	"github.com/kedare/netscope/internal/report"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects a run would inventory",
	Long: `Resolve projects the same way the reports do: the settings file or --project
when set, otherwise every active project visible to the credentials, narrowed by
project_filter.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), "Resolving projects")
		if err != nil {
			return err
		}
		defer s.close()

		s.spinner.Start()

		found, err := s.collector.Projects(cmd.Context(), s.collectOpts)
		if err != nil {
			s.spinner.Fail("Project lookup failed")

			return explain(err)
		}

		s.spinner.Success(fmt.Sprintf("Found %d projects", len(found)))

		tbl := report.NewTable("projects", "Projects", "project_id", "project_number", "name", "state")
		for _, project := range found {
			number := ""
			if project.Number != 0 {
				number = fmt.Sprint(project.Number)
			}
			tbl.Add(project.ProjectID, number, project.DisplayName, project.State)
		}

		return output.Render(cmd.OutOrStdout(), outputFormat, tbl)
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
