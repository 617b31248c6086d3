package report

import (
	"sort"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
)

// Needs lists the data a report requires from the collector.
type Needs struct {
	Kinds []gcp.Kind
	// SubnetIAM requests the IAM policy of every subnet.
	SubnetIAM bool
	// RouterStatus requests the runtime NAT addresses of routers with NAT.
	RouterStatus bool
	// SharedVPC requests the host project's service projects.
	SharedVPC bool
	// PrivateServices requests private services access connections.
	PrivateServices bool
	// Required kinds must yield at least one entity for the report to run.
	Required []gcp.Kind
}

// Definition binds a report name to its inputs and builder.
type Definition struct {
	Name        string
	Description string
	Needs       Needs
	Build       func(s *inventory.Snapshot, opts Options) []*Table
}

var definitions = map[string]Definition{
	"quotas": {
		Name:        "quotas",
		Description: "Count quota-relevant resources per network, project and NAT region",
		Needs: Needs{
			Kinds: []gcp.Kind{
				gcp.KindNetwork, gcp.KindFirewallRule, gcp.KindSubnet, gcp.KindInstance, gcp.KindForwardingRule, gcp.KindRouter,
			},
			Required: []gcp.Kind{gcp.KindNetwork},
		},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			nics := s.Interfaces()

			return []*Table{
				ProjectQuotas(s.Projects, s.Networks, s.FirewallRules, s.Routers),
				NetworkQuotas(s.Networks, nics, s.ForwardingRules, s.FirewallRules, s.Routers),
				SubnetUtilization(s.Subnets, nics, s.ForwardingRules),
				NATSizing(s.Networks, nics),
			}
		},
	},
	"empty-subnets": {
		Name:        "empty-subnets",
		Description: "List private subnets without instances or forwarding rules",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindSubnet, gcp.KindInstance, gcp.KindForwardingRule}},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			return []*Table{EmptySubnets(s.Subnets, s.Interfaces(), s.ForwardingRules)}
		},
	},
	"subnet-usage": {
		Name:        "subnet-usage",
		Description: "Show address utilization of every subnet",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindSubnet, gcp.KindInstance, gcp.KindForwardingRule}},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			return []*Table{SubnetUtilization(s.Subnets, s.Interfaces(), s.ForwardingRules)}
		},
	},
	"nat-sizing": {
		Name:        "nat-sizing",
		Description: "Count instances per network and region for Cloud NAT sizing",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindNetwork, gcp.KindInstance}},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			return []*Table{NATSizing(s.Networks, s.Interfaces())}
		},
	},
	"ip-addresses": {
		Name:        "ip-addresses",
		Description: "Inventory every IP address in use, sorted numerically",
		Needs: Needs{
			Kinds:        []gcp.Kind{gcp.KindInstance, gcp.KindForwardingRule, gcp.KindRouter, gcp.KindCluster, gcp.KindDatabase},
			RouterStatus: true,
		},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			return []*Table{IPInventory(AddressSources{
				Instances:          s.Instances,
				ForwardingRules:    s.ForwardingRules,
				Routers:            s.Routers,
				RouterNATAddresses: s.RouterNATAddresses,
				Clusters:           s.Clusters,
				Databases:          s.Databases,
			})}
		},
	},
	"orphans": {
		Name:        "orphans",
		Description: "Find shared VPC service projects missing subnet access",
		Needs: Needs{
			Kinds:     []gcp.Kind{gcp.KindSubnet},
			SubnetIAM: true,
			SharedVPC: true,
			Required:  []gcp.Kind{gcp.KindSubnet},
		},
		Build: func(s *inventory.Snapshot, opts Options) []*Table {
			host := resolveHost(s, opts)

			return []*Table{OrphanedServiceProjects(host, serviceProjects(s, host), s.SubnetsWithMembers())}
		},
	},
	"certificates": {
		Name:        "certificates",
		Description: "List attached SSL certificates that expire soon",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindCertificate, gcp.KindTargetProxy}},
		Build: func(s *inventory.Snapshot, opts Options) []*Table {
			return []*Table{CertificateCandidates(s.Certificates, s.TargetProxies, opts)}
		},
	},
	"gke-ranges": {
		Name:        "gke-ranges",
		Description: "Map GKE services ranges to the clusters using them",
		Needs: Needs{
			Kinds:    []gcp.Kind{gcp.KindSubnet, gcp.KindCluster},
			Required: []gcp.Kind{gcp.KindSubnet},
		},
		Build: func(s *inventory.Snapshot, opts Options) []*Table {
			return []*Table{GKERanges(s.Subnets, s.Clusters, opts)}
		},
	},
	"subnet-attachments": {
		Name:        "subnet-attachments",
		Description: "Show which projects attach instances to each subnet",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindSubnet, gcp.KindInstance}},
		Build: func(s *inventory.Snapshot, opts Options) []*Table {
			return []*Table{SubnetAttachments(s.Subnets, s.Interfaces(), opts)}
		},
	},
	"access-configs": {
		Name:        "access-configs",
		Description: "List instance NICs with an external address",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindInstance}},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			return []*Table{AccessConfigs(s.Instances)}
		},
	},
	"firewall-recent": {
		Name:        "firewall-recent",
		Description: "List recently created firewall rules",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindFirewallRule}},
		Build: func(s *inventory.Snapshot, opts Options) []*Table {
			return []*Table{RecentFirewallRules(s.FirewallRules, opts)}
		},
	},
	"security-policies": {
		Name:        "security-policies",
		Description: "Flatten Cloud Armor security policy rules",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindSecurityPolicy}},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			return []*Table{SecurityPolicyRules(s.SecurityPolicies)}
		},
	},
	"psa-connections": {
		Name:        "psa-connections",
		Description: "List private services access connections to configured producers",
		Needs:       Needs{Kinds: []gcp.Kind{gcp.KindNetwork}, PrivateServices: true},
		Build: func(s *inventory.Snapshot, _ Options) []*Table {
			return []*Table{PrivateServiceConnections(s.PrivateConnections)}
		},
	},
}

// Lookup returns the report registered under name.
func Lookup(name string) (Definition, bool) {
	def, ok := definitions[name]

	return def, ok
}

// Definitions returns every report sorted by name.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, def)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}

// resolveHost returns the configured host project, or the one the collector
// detected when a single host is known.
func resolveHost(s *inventory.Snapshot, opts Options) string {
	if opts.HostProjectID != "" || len(s.ServiceProjects) != 1 {
		return opts.HostProjectID
	}

	for host := range s.ServiceProjects {
		return host
	}

	return ""
}

// serviceProjects returns the snapshot projects attached to host.
func serviceProjects(s *inventory.Snapshot, host string) []inventory.Project {
	ids := s.ServiceProjects[host]

	var out []inventory.Project
	for _, project := range s.Projects {
		if contains(ids, project.ProjectID) {
			out = append(out, project)
		}
	}

	return out
}
