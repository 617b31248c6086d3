package report

import (
	"sort"
	"strings"

	"github.com/kedare/netscope/internal/inventory"
)

// PeeredNetworks returns the networks with a peering whose peer network
// mentions one of the service names, in input order.
func PeeredNetworks(networks []inventory.Network, services map[string]string) []inventory.Network {
	var out []inventory.Network
	for _, network := range networks {
		if len(PeeredServices(network, services)) > 0 {
			out = append(out, network)
		}
	}

	return out
}

// PeeredServices returns the sorted service hosts whose name appears in one of
// the peer networks of network.
func PeeredServices(network inventory.Network, services map[string]string) []string {
	var hosts []string
	for name, host := range services {
		for _, peering := range network.Peerings {
			if strings.Contains(peering.Network, name) {
				hosts = append(hosts, host)

				break
			}
		}
	}

	sort.Strings(hosts)

	return hosts
}

// PrivateServiceConnections lists the private services access connections,
// sorted by network key then service.
func PrivateServiceConnections(connections []inventory.PrivateConnection) *Table {
	table := NewTable("psa_connections", "Private Service Connections",
		"network_key", "network_name", "project_id", "service", "peering", "reserved_ranges")

	sorted := append([]inventory.PrivateConnection(nil), inventory.Dedupe(connections)...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].NetworkKey != sorted[j].NetworkKey {
			return sorted[i].NetworkKey < sorted[j].NetworkKey
		}

		return sorted[i].ServiceName < sorted[j].ServiceName
	})

	for _, conn := range sorted {
		table.Add(conn.NetworkKey, conn.NetworkName, conn.ProjectID, conn.ServiceName, conn.PeerNetworkName, conn.ReservedRanges)
	}

	return table
}
