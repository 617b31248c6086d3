package report

import (
	"net/netip"
	"sort"

	"github.com/kedare/netscope/internal/inventory"
)

// Address types reported by IPInventory.
const (
	AddressInstanceNIC    = "GCE Instance NIC"
	AddressInstanceNAT    = "GCE Instance NAT IP"
	AddressForwardingRule = "Forwarding Rule"
	AddressCloudNAT       = "Cloud NAT External IP"
	AddressGKEEndpoint    = "GKE Endpoint"
	AddressCloudSQL       = "Cloud SQL Instance"
)

// AddressSources groups the collections IPInventory flattens.
type AddressSources struct {
	Instances       []inventory.Instance
	ForwardingRules []inventory.ForwardingRule
	Routers         []inventory.Router
	// RouterNATAddresses maps a router key to the NAT addresses in use.
	RouterNATAddresses map[string][]string
	Clusters           []inventory.Cluster
	Databases          []inventory.Database
}

// IPInventory emits one row per address and owning entity, sorted by the
// numeric value of the address. Unparsable addresses sort last.
func IPInventory(src AddressSources) *Table {
	table := NewTable("ip_addresses", "IP Addresses",
		"ip_address", "type", "name", "project_id", "region", "network_key", "owner_key")

	add := func(address, kind string, owner inventory.Resource, networkKey string) {
		if address == "" {
			return
		}

		table.Add(address, kind, owner.Name, owner.ProjectID, owner.Region, networkKey, owner.Key)
	}

	for _, instance := range src.Instances {
		for _, nic := range instance.Interfaces {
			add(nic.Address, AddressInstanceNIC, instance.Resource, nic.NetworkKey)
			if nic.AccessConfigName != "" {
				add(nic.ExternalAddress, AddressInstanceNAT, instance.Resource, nic.NetworkKey)
			}
		}
	}

	for _, rule := range src.ForwardingRules {
		add(rule.Address, AddressForwardingRule, rule.Resource, rule.NetworkKey)
	}

	for _, router := range src.Routers {
		for _, address := range src.RouterNATAddresses[router.Key] {
			add(address, AddressCloudNAT, router.Resource, router.NetworkKey)
		}
	}

	for _, cluster := range src.Clusters {
		for _, address := range cluster.EndpointAddresses {
			add(address, AddressGKEEndpoint, cluster.Resource, cluster.NetworkKey)
		}
	}

	for _, db := range src.Databases {
		for _, address := range db.Addresses {
			add(address, AddressCloudSQL, db.Resource, db.NetworkKey)
		}
	}

	SortAddresses(table.Rows, "ip_address")

	return table
}

// SortAddresses stably orders rows by the IP address in column, comparing
// addresses numerically.
func SortAddresses(rows []Row, column string) {
	parsed := make(map[string]netip.Addr, len(rows))
	for _, row := range rows {
		value, _ := row[column].(string)
		if _, ok := parsed[value]; ok {
			continue
		}

		addr, err := netip.ParseAddr(value)
		if err != nil {
			addr = netip.Addr{}
		}
		parsed[value] = addr
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a := parsed[rows[i][column].(string)]
		b := parsed[rows[j][column].(string)]

		switch {
		case !a.IsValid():
			return false
		case !b.IsValid():
			return true
		default:
			return a.Less(b)
		}
	})
}
