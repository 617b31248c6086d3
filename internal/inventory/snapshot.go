package inventory

import (
	"strings"
	"time"

	"github.com/kedare/netscope/internal/gcp"
)

// Snapshot is the set of entities collected in one fetch cycle. It is built
// once and then treated as read-only. Data from auxiliary round trips lives in
// keyed side maps rather than on shared entity values.
type Snapshot struct {
	RunID   string
	TakenAt time.Time

	Projects           []Project
	Networks           []Network
	Subnets            []Subnet
	Instances          []Instance
	ForwardingRules    []ForwardingRule
	TargetProxies      []TargetProxy
	Routers            []Router
	FirewallRules      []FirewallRule
	Certificates       []Certificate
	Clusters           []Cluster
	Databases          []Database
	SecurityPolicies   []SecurityPolicy
	PrivateConnections []PrivateConnection

	// SubnetMembers maps a subnet key to the IAM members granted on it.
	SubnetMembers map[string][]string
	// RouterNATAddresses maps a router key to its allocated NAT addresses.
	RouterNATAddresses map[string][]string
	// ServiceProjects maps a shared VPC host project to its service projects.
	ServiceProjects map[string][]string
}

// Interfaces flattens the NICs of every instance in instance order.
func (s *Snapshot) Interfaces() []NetworkInterface {
	var nics []NetworkInterface
	for _, instance := range s.Instances {
		nics = append(nics, instance.Interfaces...)
	}

	return nics
}

// SubnetsWithMembers returns copies of the subnets carrying the members
// recorded in SubnetMembers.
func (s *Snapshot) SubnetsWithMembers() []Subnet {
	out := make([]Subnet, 0, len(s.Subnets))
	for _, subnet := range s.Subnets {
		if members, ok := s.SubnetMembers[subnet.Key]; ok {
			subnet = subnet.WithIAMMembers(members)
		}

		out = append(out, subnet)
	}

	return out
}

// Deduplicated returns a copy where every collection keeps one entity per key.
func (s *Snapshot) Deduplicated() *Snapshot {
	out := *s
	out.Projects = Dedupe(s.Projects)
	out.Networks = Dedupe(s.Networks)
	out.Subnets = Dedupe(s.Subnets)
	out.Instances = Dedupe(s.Instances)
	out.ForwardingRules = Dedupe(s.ForwardingRules)
	out.TargetProxies = Dedupe(s.TargetProxies)
	out.Routers = Dedupe(s.Routers)
	out.FirewallRules = Dedupe(s.FirewallRules)
	out.Certificates = Dedupe(s.Certificates)
	out.Clusters = Dedupe(s.Clusters)
	out.Databases = Dedupe(s.Databases)
	out.SecurityPolicies = Dedupe(s.SecurityPolicies)
	out.PrivateConnections = Dedupe(s.PrivateConnections)

	return &out
}

// Filter narrows a snapshot before any join runs. Global entities are never
// removed by the region filter, and entities without a network are never
// removed by the network filter.
type Filter struct {
	Regions []string
	// NetworkString keeps only entities whose network name contains it.
	NetworkString string
}

func (f Filter) IsZero() bool {
	return len(f.Regions) == 0 && f.NetworkString == ""
}

// Keep reports whether r passes the filter.
func (f Filter) Keep(r Resource) bool {
	if len(f.Regions) > 0 && r.Scope != gcp.ScopeGlobal && r.Region != "" {
		found := false
		for _, region := range f.Regions {
			if region == r.Region {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	if f.NetworkString != "" && r.NetworkName != "" && !strings.Contains(r.NetworkName, f.NetworkString) {
		return false
	}

	return true
}

// Apply returns a filtered copy of s. Instances keep only their matching
// NICs and are dropped when none remain.
func (f Filter) Apply(s *Snapshot) *Snapshot {
	if f.IsZero() {
		return s
	}

	out := *s
	out.Networks = Select(s.Networks, f.Keep)
	out.Subnets = Select(s.Subnets, f.Keep)
	out.ForwardingRules = Select(s.ForwardingRules, f.Keep)
	out.TargetProxies = Select(s.TargetProxies, f.Keep)
	out.Routers = Select(s.Routers, f.Keep)
	out.FirewallRules = Select(s.FirewallRules, f.Keep)
	out.Certificates = Select(s.Certificates, f.Keep)
	out.Clusters = Select(s.Clusters, f.Keep)
	out.Databases = Select(s.Databases, f.Keep)
	out.SecurityPolicies = Select(s.SecurityPolicies, f.Keep)
	out.PrivateConnections = Select(s.PrivateConnections, f.Keep)

	out.Instances = make([]Instance, 0, len(s.Instances))
	for _, instance := range s.Instances {
		if !f.Keep(Resource{Scope: instance.Scope, Region: instance.Region}) {
			continue
		}

		nics := Select(instance.Interfaces, f.Keep)
		if len(instance.Interfaces) > 0 && len(nics) == 0 {
			continue
		}

		instance.Interfaces = nics
		out.Instances = append(out.Instances, instance)
	}

	return &out
}
