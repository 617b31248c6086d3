package report

import (
	"fmt"
	"sort"

	"github.com/kedare/netscope/internal/inventory"
)

// ComputeServiceAccount returns the IAM member of a project's default compute
// service account.
func ComputeServiceAccount(projectNumber int64) string {
	return fmt.Sprintf("serviceAccount:%d-compute@%s", projectNumber, computeAccountDomain)
}

// OrphanedServiceProjects lists the service projects of hostProject whose
// default compute service account is granted on none of the host's subnets.
// subnets must already carry their IAM members. Rows are sorted by project id.
func OrphanedServiceProjects(hostProject string, serviceProjects []inventory.Project, subnets []inventory.Subnet) *Table {
	table := NewTable("orphaned_projects", "Service Projects Missing Subnet Access",
		"project_id", "number", "host_project", "service_account")

	granted := map[string]struct{}{}
	for _, subnet := range subnets {
		if subnet.NetworkProjectID != hostProject {
			continue
		}

		for _, member := range subnet.IAMMembers {
			granted[member] = struct{}{}
		}
	}

	projects := inventory.Dedupe(serviceProjects)
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].ProjectID < projects[j].ProjectID
	})

	for _, project := range projects {
		if project.ProjectID == hostProject || project.Number == 0 {
			continue
		}

		account := ComputeServiceAccount(project.Number)
		if _, ok := granted[account]; ok {
			continue
		}

		table.Add(project.ProjectID, project.Number, hostProject, account)
	}

	return table
}
