package report

import (
	"sort"
	"strings"

	"github.com/kedare/netscope/internal/inventory"
)

// RecentFirewallRules lists the rules created within opts.RecentWindow,
// newest first.
func RecentFirewallRules(rules []inventory.FirewallRule, opts Options) *Table {
	opts = opts.withDefaults()
	table := NewTable("recent_firewall_rules", "Recently Created Firewall Rules",
		"name", "project_id", "network_name", "direction", "priority", "created_at", "source_ranges", "allowed", "denied")

	cutoff := opts.Now.Add(-opts.RecentWindow)

	recent := make([]inventory.FirewallRule, 0)
	for _, rule := range inventory.Dedupe(rules) {
		if !rule.CreatedAt.IsZero() && rule.CreatedAt.After(cutoff) {
			recent = append(recent, rule)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	for _, rule := range recent {
		table.Add(rule.Name, rule.ProjectID, rule.NetworkName, rule.Direction, rule.Priority, rule.CreatedAt,
			rule.SourceRanges, rule.Allowed, rule.Denied)
	}

	return table
}

// SecurityPolicyRules flattens every rule of every security policy, sorted by
// policy key then priority.
func SecurityPolicyRules(policies []inventory.SecurityPolicy) *Table {
	table := NewTable("security_policy_rules", "Security Policy Rules",
		"policy_key", "policy", "priority", "action", "preview", "match", "description")

	sorted := append([]inventory.SecurityPolicy(nil), inventory.Dedupe(policies)...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	for _, policy := range sorted {
		for _, rule := range policy.Rules {
			table.Add(policy.Key, policy.Name, rule.Priority, rule.Action, rule.Preview,
				strings.Join(rule.Expressions, "; "), rule.Description)
		}
	}

	return table
}

// AccessConfigs lists the NICs exposing an external address, sorted by
// instance name.
func AccessConfigs(instances []inventory.Instance) *Table {
	table := NewTable("access_configs", "Instance Access Configs",
		"name", "project_id", "region", "zone", "interface", "access_config_name", "access_config_type", "external_address")

	sorted := append([]inventory.Instance(nil), instances...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	for _, instance := range sorted {
		for _, nic := range instance.Interfaces {
			if nic.ExternalAddress == "" {
				continue
			}

			table.Add(instance.Name, instance.ProjectID, instance.Region, instance.Zone, nic.Name,
				nic.AccessConfigName, nic.AccessConfigType, nic.ExternalAddress)
		}
	}

	return table
}
