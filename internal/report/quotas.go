package report

import (
	"sort"

	"github.com/kedare/netscope/internal/inventory"
)

// NetworkQuotas counts the quota-relevant resources attached to each network.
// Rows are sorted by instance NIC count, largest first; ties keep network order.
func NetworkQuotas(networks []inventory.Network, nics []inventory.NetworkInterface, rules []inventory.ForwardingRule, firewalls []inventory.FirewallRule, routers []inventory.Router) *Table {
	table := NewTable("network_quotas", "Network Counts",
		"project_id", "network_key", "subnets", "peerings", "cloud_routers", "instances",
		"firewall_rules", "internal_forwarding_rules", "application_ilbs", "passthrough_ilbs")

	nicCount := countBy(nics, func(n inventory.NetworkInterface) string { return n.NetworkKey })
	firewallCount := countBy(firewalls, func(f inventory.FirewallRule) string { return f.NetworkKey })
	routerCount := countBy(routers, func(r inventory.Router) string { return r.NetworkKey })

	internal := map[string]int{}
	managed := map[string]int{}
	for _, rule := range rules {
		if !rule.Scheme.Internal || rule.NetworkKey == "" {
			continue
		}

		internal[rule.NetworkKey]++
		if rule.Scheme.Managed {
			managed[rule.NetworkKey]++
		}
	}

	for _, network := range networks {
		key := network.Key
		table.Add(network.ProjectID, key, network.SubnetCount, len(network.Peerings), routerCount[key],
			nicCount[key], firewallCount[key], internal[key], managed[key], internal[key]-managed[key])
	}

	sortByIntDesc(table.Rows, "instances")

	return table
}

// ProjectQuotas counts networks, firewall rules and routers per project.
// Projects seen only through their resources are appended after the listed
// ones. Rows are sorted by network count, largest first.
func ProjectQuotas(projects []inventory.Project, networks []inventory.Network, firewalls []inventory.FirewallRule, routers []inventory.Router) *Table {
	table := NewTable("project_quotas", "Project Counts",
		"project_id", "number", "created", "state", "networks", "firewall_rules", "cloud_routers")

	networkCount := countBy(networks, func(n inventory.Network) string { return n.ProjectID })
	firewallCount := countBy(firewalls, func(f inventory.FirewallRule) string { return f.ProjectID })
	routerCount := countBy(routers, func(r inventory.Router) string { return r.ProjectID })

	seen := map[string]bool{}
	add := func(id string, number int64, created any, state string) {
		if id == "" || seen[id] {
			return
		}

		seen[id] = true
		table.Add(id, number, created, state, networkCount[id], firewallCount[id], routerCount[id])
	}

	for _, project := range projects {
		add(project.ProjectID, project.Number, project.CreatedAt, project.State)
	}

	for _, network := range networks {
		add(network.ProjectID, 0, nil, "")
	}

	for _, firewall := range firewalls {
		add(firewall.ProjectID, 0, nil, "")
	}

	for _, router := range routers {
		add(router.ProjectID, 0, nil, "")
	}

	sortByIntDesc(table.Rows, "networks")

	return table
}

// NATSizing counts instance NICs per network and region, the figure a Cloud
// NAT gateway has to be sized for.
func NATSizing(networks []inventory.Network, nics []inventory.NetworkInterface) *Table {
	table := NewTable("nat_sizing", "Cloud NAT Counts", "network_key", "region", "instances")

	perNetwork := map[string]map[string]int{}
	for _, nic := range nics {
		if nic.NetworkKey == "" {
			continue
		}

		if perNetwork[nic.NetworkKey] == nil {
			perNetwork[nic.NetworkKey] = map[string]int{}
		}
		perNetwork[nic.NetworkKey][nic.Region]++
	}

	for _, network := range networks {
		regions := perNetwork[network.Key]

		names := make([]string, 0, len(regions))
		for region := range regions {
			names = append(names, region)
		}
		sort.Strings(names)

		for _, region := range names {
			table.Add(network.Key, region, regions[region])
		}
	}

	sortByIntDesc(table.Rows, "instances")

	return table
}

// SubnetUtilization reports address usage of every subnet that can host
// instances. Rows are sorted by NIC count, largest first.
func SubnetUtilization(subnets []inventory.Subnet, nics []inventory.NetworkInterface, rules []inventory.ForwardingRule) *Table {
	table := NewTable("subnet_utilization", "Subnet Counts",
		"name", "network_name", "region", "cidr", "usable_addresses", "instances", "forwarding_rules", "utilization")

	nicCount := countBy(nics, func(n inventory.NetworkInterface) string { return n.SubnetKey })
	ruleCount := countBy(rules, func(r inventory.ForwardingRule) string { return r.SubnetKey })

	for _, subnet := range subnets {
		if subnet.Purpose == inventory.PurposePSC || subnet.Purpose == inventory.PurposeProxyOnly {
			continue
		}

		used := nicCount[subnet.Key] + ruleCount[subnet.Key]
		table.Add(subnet.Name, subnet.NetworkName, subnet.Region, subnet.CIDR, subnet.UsableAddressCount,
			nicCount[subnet.Key], ruleCount[subnet.Key], utilization(used, subnet.UsableAddressCount))
	}

	sortByIntDesc(table.Rows, "instances")

	return table
}

// utilization returns used/usable as a rounded percentage.
func utilization(used int, usable int64) int {
	if usable <= 0 {
		return 0
	}

	return int((int64(used)*200 + usable) / (usable * 2))
}

func countBy[T any](items []T, key func(T) string) map[string]int {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		if k := key(item); k != "" {
			counts[k]++
		}
	}

	return counts
}
