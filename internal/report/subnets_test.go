package report

import (
	"testing"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
	"github.com/stretchr/testify/require"
)

func TestEmptySubnets(t *testing.T) {
	subnets := []inventory.Subnet{
		subnet("p1", "us-east1", "used-by-vm", "zeta", inventory.PurposePrivate),
		subnet("p1", "us-east1", "used-by-rule", "zeta", inventory.PurposePrivate),
		subnet("p1", "us-east1", "empty-z", "zeta", inventory.PurposePrivate),
		subnet("p1", "us-east1", "empty-a", "alpha", inventory.PurposePrivate),
		subnet("p1", "us-east1", "proxy", "alpha", inventory.PurposeProxyOnly),
		subnet("p1", "us-east1", "empty-z", "zeta", inventory.PurposePrivate),
	}

	nics := []inventory.NetworkInterface{
		nic("svc", "us-east1-b", "vm1", "p1/zeta", "p1/us-east1/used-by-vm", "10.0.0.2"),
	}
	rules := []inventory.ForwardingRule{
		forwardingRule("svc", "us-east1", "fr", "p1/zeta", "p1/us-east1/used-by-rule", "10.0.0.3", "INTERNAL"),
	}

	table := EmptySubnets(subnets, nics, rules)

	require.Equal(t, []any{"empty-a", "empty-z"}, table.Column("name"))
	require.Equal(t, []any{"alpha", "zeta"}, table.Column("network_name"))
}

func TestEmptySubnetsReportedOncePerSubnet(t *testing.T) {
	subnets := []inventory.Subnet{
		subnet("p1", "us-east1", "lonely", "shared", inventory.PurposePrivate),
		subnet("p1", "us-east1", "busy-1", "shared", inventory.PurposePrivate),
		subnet("p1", "us-east1", "busy-2", "shared", inventory.PurposePrivate),
		subnet("p1", "us-east1", "busy-3", "shared", inventory.PurposePrivate),
	}

	var nics []inventory.NetworkInterface
	for _, name := range []string{"busy-1", "busy-2", "busy-3"} {
		nics = append(nics, nic("p1", "us-east1-b", "vm-"+name, "p1/shared", "p1/us-east1/"+name, "10.0.0.2"))
	}

	table := EmptySubnets(subnets, nics, nil)
	require.Len(t, table.Rows, 1)
	require.Equal(t, "lonely", table.Rows[0]["name"])
}

func TestGKERanges(t *testing.T) {
	withRanges := subnet("host", "us-central1", "gke-subnet", "vpc", inventory.PurposePrivate)
	withRanges.SecondaryRanges = []inventory.SecondaryRange{
		{Name: "gke-pods", CIDR: "10.4.0.0/14"},
		{Name: "gke-services-1", CIDR: "10.8.0.0/20"},
		{Name: "gke-services-2", CIDR: "10.8.16.0/20"},
	}

	other := subnet("host", "europe-west1", "another", "vpc", inventory.PurposePrivate)
	other.SecondaryRanges = []inventory.SecondaryRange{{Name: "gke-services-9", CIDR: "10.9.0.0/20"}}

	foreign := subnet("elsewhere", "us-central1", "x", "vpc", inventory.PurposePrivate)
	foreign.SecondaryRanges = []inventory.SecondaryRange{{Name: "gke-services-1", CIDR: "10.10.0.0/20"}}

	clusters := []inventory.Cluster{
		{
			Resource:         inventory.Resource{Kind: gcp.KindCluster, Name: "prod", SubnetKey: "host/us-central1/gke-subnet"},
			ServiceRangeName: "gke-services-1",
		},
		{
			// Same range name on another subnet must not claim the range.
			Resource:         inventory.Resource{Kind: gcp.KindCluster, Name: "stray", SubnetKey: "host/europe-west1/another"},
			ServiceRangeName: "gke-services-2",
		},
	}

	table := GKERanges([]inventory.Subnet{withRanges, other, foreign}, clusters, Options{Now: testNow, HostProjectID: "host"})

	require.Equal(t, []Row{
		{"subnet_key": "host/europe-west1/another", "range_name": "gke-services-9", "cidr": "10.9.0.0/20", "gke_cluster": FreeRange},
		{"subnet_key": "host/us-central1/gke-subnet", "range_name": "gke-services-1", "cidr": "10.8.0.0/20", "gke_cluster": "prod"},
		{"subnet_key": "host/us-central1/gke-subnet", "range_name": "gke-services-2", "cidr": "10.8.16.0/20", "gke_cluster": FreeRange},
	}, table.Rows)
}

func TestSubnetAttachments(t *testing.T) {
	subnets := []inventory.Subnet{
		subnet("host", "us-east1", "b", "vpc", inventory.PurposePrivate),
		subnet("host", "us-east1", "a", "vpc", inventory.PurposePrivate),
		subnet("host", "us-east1", "unused", "vpc", inventory.PurposePrivate),
		subnet("other", "us-east1", "c", "vpc", inventory.PurposePrivate),
	}

	nics := []inventory.NetworkInterface{
		nic("svc-2", "us-east1-b", "vm1", "host/vpc", "host/us-east1/a", "10.0.0.2"),
		nic("svc-1", "us-east1-b", "vm2", "host/vpc", "host/us-east1/a", "10.0.0.3"),
		nic("svc-1", "us-east1-c", "vm3", "host/vpc", "host/us-east1/a", "10.0.0.4"),
		nic("svc-3", "us-east1-b", "vm4", "host/vpc", "host/us-east1/b", "10.0.1.2"),
		nic("svc-4", "us-east1-b", "vm5", "other/vpc", "other/us-east1/c", "10.0.2.2"),
	}

	table := SubnetAttachments(subnets, nics, Options{HostProjectID: "host"})

	require.Equal(t, []any{"host/us-east1/a", "host/us-east1/b"}, table.Column("subnet_key"))
	require.Equal(t, []string{"svc-1", "svc-2"}, table.Rows[0]["projects"])
	require.Equal(t, 2, table.Rows[0]["project_count"])

	all := SubnetAttachments(subnets, nics, Options{})
	require.Len(t, all.Rows, 3)
}
