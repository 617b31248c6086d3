package gcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTargetsForAggregated(t *testing.T) {
	targets := TargetsFor(KindSubnet, "p1", nil)
	require.Len(t, targets, 1)
	require.Equal(t, "compute/v1/projects/p1/aggregated/subnetworks", targets[0].Path)
	require.Equal(t, ShapeAggregated, targets[0].ResolveEnvelope().Shape)
	require.Equal(t, "subnetworks", targets[0].ResolveEnvelope().Inner)
}

func TestTargetsForRegions(t *testing.T) {
	targets := TargetsFor(KindSubnet, "p1", []string{"us-central1", " ", "europe-west1"})
	require.Len(t, targets, 2)
	require.Equal(t, "compute/v1/projects/p1/regions/us-central1/subnetworks", targets[0].Path)
	require.Equal(t, "compute/v1/projects/p1/regions/europe-west1/subnetworks", targets[1].Path)
}

func TestTargetsForForwardingRulesIncludesGlobal(t *testing.T) {
	targets := TargetsFor(KindForwardingRule, "p1", nil)
	require.Len(t, targets, 2)
	require.Equal(t, "compute/v1/projects/p1/aggregated/forwardingRules", targets[0].Path)
	require.Equal(t, "compute/v1/projects/p1/global/forwardingRules", targets[1].Path)
}

func TestTargetsForOtherAPIs(t *testing.T) {
	clusters := TargetsFor(KindCluster, "p1", nil)
	require.Equal(t, []Target{{Kind: KindCluster, API: "container", Path: "v1/projects/p1/locations/-/clusters"}}, clusters)
	require.Equal(t, "clusters", clusters[0].ResolveEnvelope().Field)

	databases := TargetsFor(KindDatabase, "p1", nil)
	require.Equal(t, "sqladmin", databases[0].API)
	require.Equal(t, "items", databases[0].ResolveEnvelope().Field)

	require.Nil(t, TargetsFor(KindIAMPolicy, "p1", nil))
	require.Nil(t, TargetsFor(KindNetwork, " ", nil))
}

func TestLocatorTargets(t *testing.T) {
	iam := IAMPolicyTarget("https://www.googleapis.com/compute/v1/projects/host/regions/us-central1/subnetworks/s1")
	require.Equal(t, "compute/v1/projects/host/regions/us-central1/subnetworks/s1/getIamPolicy", iam.Path)
	require.Equal(t, "optionsRequestedPolicyVersion=1", iam.Query)
	require.Equal(t, ShapeSingleton, iam.ResolveEnvelope().Shape)

	status := RouterStatusTarget("projects/p1/regions/us-central1/routers/r1")
	require.Equal(t, "compute/v1/projects/p1/regions/us-central1/routers/r1/getRouterStatus", status.Path)
	require.Equal(t, ShapeSingleton, status.ResolveEnvelope().Shape)

	psa := PrivateConnectionsTarget("svc.example.com", "https://www.googleapis.com/compute/v1/projects/p1/global/networks/n1")
	require.Equal(t, "v1/services/svc.example.com/connections", psa.Path)
	require.Equal(t, "network=projects%2Fp1%2Fglobal%2Fnetworks%2Fn1", psa.Query)
	require.Equal(t, "connections", psa.ResolveEnvelope().Field)

	project := ProjectTarget("svc")
	require.Equal(t, "v1/projects/svc", project.Path)
	require.Equal(t, ShapeSingleton, project.ResolveEnvelope().Shape)

	require.Equal(t, "filter=parent.id%3A123", ProjectsTarget("parent.id:123").Query)
	require.Empty(t, ProjectsTarget("").Query)
	require.Equal(t, "resources", XpnResourcesTarget("host").ResolveEnvelope().Field)
	require.Equal(t, ShapeSingleton, XpnHostTarget("svc").ResolveEnvelope().Shape)
}
