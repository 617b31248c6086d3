package report

import (
	"time"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func network(project, name string, subnets int) inventory.Network {
	key := gcp.ComposeKey(gcp.ScopeGlobal, project, "", "", name)

	return inventory.Network{
		Resource: inventory.Resource{
			Kind: gcp.KindNetwork, Name: name, Scope: gcp.ScopeGlobal, ProjectID: project, Key: key,
			NetworkKey: key, NetworkName: name, NetworkProjectID: project,
		},
		SubnetCount: subnets,
	}
}

func subnet(project, region, name, networkName string, purpose inventory.Purpose) inventory.Subnet {
	key := gcp.ComposeKey(gcp.ScopeRegional, project, region, "", name)

	return inventory.Subnet{
		Resource: inventory.Resource{
			Kind: gcp.KindSubnet, Name: name, Scope: gcp.ScopeRegional, Region: region, ProjectID: project, Key: key,
			NetworkKey: project + "/" + networkName, NetworkName: networkName, NetworkProjectID: project,
			SubnetKey: key, SubnetName: name,
		},
		CIDR:               "10.0.0.0/24",
		Purpose:            purpose,
		UsableAddressCount: 252,
	}
}

func nic(project, zone, instance, networkKey, subnetKey, address string) inventory.NetworkInterface {
	instanceKey := gcp.ComposeKey(gcp.ScopeZonal, project, "", zone, instance)

	return inventory.NetworkInterface{
		Resource: inventory.Resource{
			Kind: inventory.KindNetworkInterface, Name: "nic0", Scope: gcp.ScopeZonal, Zone: zone,
			Region: gcp.RegionFromZone(zone), ProjectID: project, Key: instanceKey + "/nic0",
			NetworkKey: networkKey, SubnetKey: subnetKey,
		},
		InstanceKey:  instanceKey,
		InstanceName: instance,
		Address:      address,
	}
}

func instance(project, zone, name string, nics ...inventory.NetworkInterface) inventory.Instance {
	return inventory.Instance{
		Resource: inventory.Resource{
			Kind: gcp.KindInstance, Name: name, Scope: gcp.ScopeZonal, Zone: zone, Region: gcp.RegionFromZone(zone),
			ProjectID: project, Key: gcp.ComposeKey(gcp.ScopeZonal, project, "", zone, name),
		},
		Interfaces: nics,
	}
}

func forwardingRule(project, region, name, networkKey, subnetKey, address, scheme string) inventory.ForwardingRule {
	return inventory.ForwardingRule{
		Resource: inventory.Resource{
			Kind: gcp.KindForwardingRule, Name: name, Scope: gcp.ScopeRegional, Region: region, ProjectID: project,
			Key: gcp.ComposeKey(gcp.ScopeRegional, project, region, "", name), NetworkKey: networkKey, SubnetKey: subnetKey,
		},
		Address: address,
		Scheme:  inventory.ParseScheme(scheme),
	}
}
