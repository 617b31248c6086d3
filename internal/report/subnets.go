package report

import (
	"sort"
	"strings"

	"github.com/kedare/netscope/internal/inventory"
)

// FreeRange marks a secondary range that no cluster uses.
const FreeRange = "FREE"

// EmptySubnets lists the private subnets that no instance NIC and no
// forwarding rule attaches to, sorted by network name.
func EmptySubnets(subnets []inventory.Subnet, nics []inventory.NetworkInterface, rules []inventory.ForwardingRule) *Table {
	table := NewTable("empty_subnets", "Empty Subnets", "network_name", "project_id", "region", "name", "cidr")

	used := make(map[string]struct{}, len(nics)+len(rules))
	for _, nic := range nics {
		used[nic.SubnetKey] = struct{}{}
	}
	for _, rule := range rules {
		used[rule.SubnetKey] = struct{}{}
	}

	reported := map[string]struct{}{}
	for _, subnet := range subnets {
		if subnet.Purpose != inventory.PurposePrivate {
			continue
		}

		if _, ok := used[subnet.Key]; ok {
			continue
		}

		if _, ok := reported[subnet.Key]; ok {
			continue
		}

		reported[subnet.Key] = struct{}{}
		table.Add(subnet.NetworkName, subnet.ProjectID, subnet.Region, subnet.Name, subnet.CIDR)
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i]["network_name"].(string) < table.Rows[j]["network_name"].(string)
	})

	return table
}

// GKERanges maps every services secondary range of the private subnets to
// the cluster using it. A range is used by a cluster when both its subnet key
// and its services range name match. Rows are sorted by subnet key and keep
// the subnet's range order.
func GKERanges(subnets []inventory.Subnet, clusters []inventory.Cluster, opts Options) *Table {
	opts = opts.withDefaults()
	table := NewTable("gke_ranges", "Subnet Additional Ranges", "subnet_key", "range_name", "cidr", "gke_cluster")

	candidates := make([]inventory.Subnet, 0, len(subnets))
	for _, subnet := range subnets {
		if subnet.Purpose != inventory.PurposePrivate || len(subnet.SecondaryRanges) == 0 {
			continue
		}

		if opts.HostProjectID != "" && subnet.ProjectID != opts.HostProjectID {
			continue
		}

		candidates = append(candidates, subnet)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Key < candidates[j].Key
	})

	type rangeRef struct{ subnet, name string }
	owners := map[rangeRef]string{}
	for _, cluster := range clusters {
		if cluster.ServiceRangeName == "" || cluster.SubnetKey == "" {
			continue
		}

		ref := rangeRef{cluster.SubnetKey, cluster.ServiceRangeName}
		if _, taken := owners[ref]; !taken {
			owners[ref] = cluster.Name
		}
	}

	for _, subnet := range inventory.Dedupe(candidates) {
		for _, secondary := range subnet.SecondaryRanges {
			if !strings.Contains(secondary.Name, opts.ServicesRangeMarker) {
				continue
			}

			owner, ok := owners[rangeRef{subnet.Key, secondary.Name}]
			if !ok {
				owner = FreeRange
			}

			table.Add(subnet.Key, secondary.Name, secondary.CIDR, owner)
		}
	}

	return table
}

// SubnetAttachments lists, for every subnet, the distinct projects whose
// instance NICs attach to it. Subnets without attachments are omitted. With a
// host project set only its subnets are considered.
func SubnetAttachments(subnets []inventory.Subnet, nics []inventory.NetworkInterface, opts Options) *Table {
	table := NewTable("subnet_attachments", "Subnet Attachments", "subnet_key", "network_name", "region", "projects", "project_count")

	attached := map[string][]string{}
	for _, nic := range nics {
		if nic.SubnetKey == "" {
			continue
		}

		projects := attached[nic.SubnetKey]
		if !contains(projects, nic.ProjectID) {
			attached[nic.SubnetKey] = append(projects, nic.ProjectID)
		}
	}

	selected := make([]inventory.Subnet, 0, len(subnets))
	for _, subnet := range inventory.Dedupe(subnets) {
		if opts.HostProjectID != "" && subnet.ProjectID != opts.HostProjectID {
			continue
		}

		if len(attached[subnet.Key]) > 0 {
			selected = append(selected, subnet)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Key < selected[j].Key
	})

	for _, subnet := range selected {
		projects := append([]string(nil), attached[subnet.Key]...)
		sort.Strings(projects)
		table.Add(subnet.Key, subnet.NetworkName, subnet.Region, projects, len(projects))
	}

	return table
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
