package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
	"github.com/kedare/netscope/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const computeURL = "https://www.googleapis.com/compute/v1/"

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeAPI serves canned JSON bodies by request path and records the query of
// every request. Unknown paths answer 403.
type fakeAPI struct {
	t      *testing.T
	bodies map[string]any

	mu      sync.Mutex
	queries map[string][]url.Values
}

func (f *fakeAPI) seen(path string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queries[path]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	if f.queries == nil {
		f.queries = map[string][]url.Values{}
	}
	f.queries[r.URL.Path] = append(f.queries[r.URL.Path], r.URL.Query())
	f.mu.Unlock()

	body, ok := f.bodies[r.URL.Path]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"permission denied"}}`))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	assert.NoError(f.t, json.NewEncoder(w).Encode(body))
}

func newTestCollector(t *testing.T, api *fakeAPI) *Collector {
	t.Helper()

	api.t = t
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	fetcher := gcp.NewFetcher(server.Client(), gcp.WithBaseURL(server.URL))

	return New(gcp.NewExecutor(fetcher, 4))
}

func project(id, number string) map[string]any {
	return map[string]any{"projectId": id, "projectNumber": number, "lifecycleState": "ACTIVE", "name": id}
}

func items(v ...any) map[string]any {
	return map[string]any{"items": v}
}

func aggregated(inner string, scopes map[string][]any) map[string]any {
	out := map[string]any{}
	for scope, list := range scopes {
		out[scope] = map[string]any{inner: list}
	}

	return map[string]any{"items": out}
}

func vpc(project string, peerings ...map[string]any) map[string]any {
	return map[string]any{
		"name":     "vpc",
		"selfLink": computeURL + "projects/" + project + "/global/networks/vpc",
		"peerings": peerings,
	}
}

func subnetwork(project, region, name, cidr string) map[string]any {
	return map[string]any{
		"name":        name,
		"selfLink":    computeURL + "projects/" + project + "/regions/" + region + "/subnetworks/" + name,
		"network":     computeURL + "projects/" + project + "/global/networks/vpc",
		"ipCidrRange": cidr,
	}
}

func quotasAPI() *fakeAPI {
	return &fakeAPI{bodies: map[string]any{
		"/v1/projects/p1":                          project("p1", "111"),
		"/compute/v1/projects/p1/global/networks":  items(vpc("p1")),
		"/compute/v1/projects/p1/global/firewalls": items(),
		"/compute/v1/projects/p1/aggregated/subnetworks": aggregated("subnetworks", map[string][]any{
			"regions/us-east1":     {subnetwork("p1", "us-east1", "east", "10.0.0.0/24")},
			"regions/europe-west1": {subnetwork("p1", "europe-west1", "west", "10.1.0.0/24")},
		}),
		"/compute/v1/projects/p1/aggregated/instances": aggregated("instances", map[string][]any{
			"zones/us-east1-b": {map[string]any{
				"name":     "vm1",
				"selfLink": computeURL + "projects/p1/zones/us-east1-b/instances/vm1",
				"networkInterfaces": []map[string]any{{
					"name":       "nic0",
					"network":    computeURL + "projects/p1/global/networks/vpc",
					"subnetwork": computeURL + "projects/p1/regions/us-east1/subnetworks/east",
					"networkIP":  "10.0.0.2",
				}},
			}},
		}),
	}}
}

func TestCollectQuotas(t *testing.T) {
	c := newTestCollector(t, quotasAPI())
	def, ok := report.Lookup("quotas")
	require.True(t, ok)

	snapshot, err := c.Collect(context.Background(), def.Needs, Options{
		Projects: []string{"p1", " p2 ", "p1"},
		Now:      testNow,
		RunID:    "run-1",
	})
	require.NoError(t, err)

	require.Equal(t, "run-1", snapshot.RunID)
	require.True(t, snapshot.TakenAt.Equal(testNow))

	require.Len(t, snapshot.Projects, 2)
	require.Equal(t, "p1", snapshot.Projects[0].ProjectID)
	require.EqualValues(t, 111, snapshot.Projects[0].Number)
	require.Equal(t, "p2", snapshot.Projects[1].ProjectID)
	require.Zero(t, snapshot.Projects[1].Number)

	require.Len(t, snapshot.Networks, 1)
	require.Len(t, snapshot.Subnets, 2)
	require.Len(t, snapshot.Instances, 1)
	require.Equal(t, "p1/us-east1/east", snapshot.Instances[0].Interfaces[0].SubnetKey)

	tables := def.Build(snapshot, report.DefaultOptions(testNow))
	require.NotEmpty(t, tables)
}

func TestCollectAppliesFilterBeforeReports(t *testing.T) {
	c := newTestCollector(t, quotasAPI())
	def, _ := report.Lookup("empty-subnets")

	snapshot, err := c.Collect(context.Background(), def.Needs, Options{
		Projects: []string{"p1"},
		Now:      testNow,
		Filter:   inventory.Filter{Regions: []string{"europe-west1"}},
	})
	require.NoError(t, err)

	require.Len(t, snapshot.Subnets, 1)
	require.Equal(t, "west", snapshot.Subnets[0].Name)
	require.Empty(t, snapshot.Instances)
	require.NotEmpty(t, snapshot.RunID)
}

func TestCollectRequiredKindMissing(t *testing.T) {
	c := newTestCollector(t, &fakeAPI{bodies: map[string]any{}})
	def, _ := report.Lookup("quotas")

	_, err := c.Collect(context.Background(), def.Needs, Options{Projects: []string{"locked"}, Now: testNow})
	require.ErrorIs(t, err, ErrNoResources)
	require.ErrorContains(t, err, string(gcp.KindNetwork))
}

func TestProjectsDiscovery(t *testing.T) {
	api := &fakeAPI{bodies: map[string]any{
		"/v1/projects": map[string]any{"projects": []any{
			project("zeta", "3"),
			map[string]any{"projectId": "gone", "lifecycleState": "DELETE_REQUESTED"},
			project("alpha", "1"),
		}},
	}}

	c := newTestCollector(t, api)

	projects, err := c.Projects(context.Background(), Options{ProjectFilter: "labels.team:net"})
	require.NoError(t, err)

	require.Len(t, projects, 2)
	require.Equal(t, "alpha", projects[0].ProjectID)
	require.Equal(t, "zeta", projects[1].ProjectID)
	requests := api.seen("/v1/projects")
	require.Len(t, requests, 1)
	require.Equal(t, "labels.team:net", requests[0].Get("filter"))
}

func TestProjectsNoneFound(t *testing.T) {
	c := newTestCollector(t, &fakeAPI{bodies: map[string]any{
		"/v1/projects": map[string]any{"projects": []any{
			map[string]any{"projectId": "gone", "lifecycleState": "DELETE_REQUESTED"},
		}},
	}})

	_, err := c.Projects(context.Background(), Options{})
	require.ErrorIs(t, err, ErrNoProjects)

	denied := newTestCollector(t, &fakeAPI{bodies: map[string]any{}})
	_, err = denied.Projects(context.Background(), Options{})
	require.ErrorIs(t, err, ErrNoProjects)
}

func TestCollectSharedVPCNeedsHost(t *testing.T) {
	c := newTestCollector(t, quotasAPI())
	def, _ := report.Lookup("orphans")

	_, err := c.Collect(context.Background(), def.Needs, Options{Projects: []string{"p1"}})
	require.ErrorIs(t, err, ErrNoHostProject)
}

func TestCollectOrphans(t *testing.T) {
	c := newTestCollector(t, &fakeAPI{bodies: map[string]any{
		"/v1/projects/svc-a": project("svc-a", "1"),
		"/v1/projects/svc-b": project("svc-b", "2"),
		"/v1/projects/host":  project("host", "999"),
		"/compute/v1/projects/host/aggregated/subnetworks": aggregated("subnetworks", map[string][]any{
			"regions/us-east1": {subnetwork("host", "us-east1", "shared", "10.0.0.0/20")},
		}),
		"/compute/v1/projects/host/getXpnResources": map[string]any{"resources": []any{
			map[string]any{"id": "svc-b", "type": "PROJECT"},
			map[string]any{"id": "svc-a", "type": "PROJECT"},
		}},
		"/compute/v1/projects/host/regions/us-east1/subnetworks/shared/getIamPolicy": map[string]any{
			"bindings": []any{
				map[string]any{"role": "roles/compute.networkUser", "members": []string{
					"serviceAccount:1-compute@developer.gserviceaccount.com",
					"deleted:serviceAccount:2-compute@developer.gserviceaccount.com",
				}},
				map[string]any{"role": "roles/viewer", "members": []string{
					"serviceAccount:2-compute@developer.gserviceaccount.com",
				}},
			},
		},
	}})

	def, _ := report.Lookup("orphans")

	snapshot, err := c.Collect(context.Background(), def.Needs, Options{
		Projects:      []string{"host"},
		HostProjectID: "host",
		Now:           testNow,
	})
	require.NoError(t, err)

	require.Equal(t, map[string][]string{"host": {"svc-a", "svc-b"}}, snapshot.ServiceProjects)
	require.Equal(t, []string{"serviceAccount:1-compute@developer.gserviceaccount.com"},
		snapshot.SubnetMembers["host/us-east1/shared"])
	require.Len(t, snapshot.Projects, 3)

	opts := report.DefaultOptions(testNow)
	opts.HostProjectID = "host"

	tables := def.Build(snapshot, opts)
	require.Len(t, tables, 1)
	require.Equal(t, []any{"svc-b"}, tables[0].Column("project_id"))
}

func TestCollectDetectsHostProject(t *testing.T) {
	api := &fakeAPI{bodies: map[string]any{
		"/v1/projects/svc-a":                        project("svc-a", "1"),
		"/v1/projects/svc-b":                        project("svc-b", "2"),
		"/v1/projects/host":                         project("host", "999"),
		"/compute/v1/projects/svc-a/getXpnHost":     map[string]any{"name": "host", "xpnProjectStatus": "HOST"},
		"/compute/v1/projects/svc-b/getXpnHost":     map[string]any{"name": "host", "xpnProjectStatus": "HOST"},
		"/compute/v1/projects/host/getXpnResources": map[string]any{"resources": []any{map[string]any{"id": "svc-a", "type": "PROJECT"}}},
		"/compute/v1/projects/host/aggregated/subnetworks": aggregated("subnetworks", map[string][]any{
			"regions/us-east1": {subnetwork("host", "us-east1", "shared", "10.0.0.0/20")},
		}),
	}}
	c := newTestCollector(t, api)
	def, _ := report.Lookup("orphans")

	snapshot, err := c.Collect(context.Background(), def.Needs, Options{Projects: []string{"svc-a", "svc-b"}, Now: testNow})
	require.NoError(t, err)

	require.Equal(t, map[string][]string{"host": {"svc-a"}}, snapshot.ServiceProjects)
	require.True(t, hasProject(snapshot.Projects, "host"))
	require.Len(t, api.seen("/compute/v1/projects/host/aggregated/subnetworks"), 1)

	tables := def.Build(snapshot, report.DefaultOptions(testNow))
	require.Equal(t, []any{"svc-a"}, tables[0].Column("project_id"))
}

func TestCollectSeveralHostsIsAmbiguous(t *testing.T) {
	c := newTestCollector(t, &fakeAPI{bodies: map[string]any{
		"/v1/projects/svc-a":                    project("svc-a", "1"),
		"/v1/projects/svc-b":                    project("svc-b", "2"),
		"/compute/v1/projects/svc-a/getXpnHost": map[string]any{"name": "host-1"},
		"/compute/v1/projects/svc-b/getXpnHost": map[string]any{"name": "host-2"},
	}})
	def, _ := report.Lookup("orphans")

	_, err := c.Collect(context.Background(), def.Needs, Options{Projects: []string{"svc-a", "svc-b"}})
	require.ErrorIs(t, err, ErrNoHostProject)
	require.ErrorContains(t, err, "host-1, host-2")
}

func TestCollectRouterNATAddresses(t *testing.T) {
	c := newTestCollector(t, &fakeAPI{bodies: map[string]any{
		"/v1/projects/p1": project("p1", "111"),
		"/compute/v1/projects/p1/aggregated/routers": aggregated("routers", map[string][]any{
			"regions/us-east1": {
				map[string]any{
					"name":     "with-nat",
					"selfLink": computeURL + "projects/p1/regions/us-east1/routers/with-nat",
					"network":  computeURL + "projects/p1/global/networks/vpc",
					"nats":     []any{map[string]any{"name": "nat", "natIpAllocateOption": "AUTO_ONLY"}},
				},
				map[string]any{
					"name":     "no-nat",
					"selfLink": computeURL + "projects/p1/regions/us-east1/routers/no-nat",
					"network":  computeURL + "projects/p1/global/networks/vpc",
				},
			},
		}),
		"/compute/v1/projects/p1/regions/us-east1/routers/with-nat/getRouterStatus": map[string]any{
			"result": map[string]any{"natStatus": []any{
				map[string]any{"autoAllocatedNatIps": []string{"35.1.1.2", "35.1.1.1"}},
			}},
		},
	}})

	def, _ := report.Lookup("ip-addresses")

	snapshot, err := c.Collect(context.Background(), def.Needs, Options{Projects: []string{"p1"}, Now: testNow})
	require.NoError(t, err)

	require.Equal(t, map[string][]string{"p1/us-east1/with-nat": {"35.1.1.1", "35.1.1.2"}}, snapshot.RouterNATAddresses)

	tables := def.Build(snapshot, report.DefaultOptions(testNow))
	require.Equal(t, []any{"35.1.1.1", "35.1.1.2"}, tables[0].Column("ip_address"))
}

func TestCollectPrivateServiceConnections(t *testing.T) {
	const service = "cloudvolumesgcp-api-netapp.netapp.com"

	api := &fakeAPI{
		bodies: map[string]any{
			"/v1/projects/p1": project("p1", "111"),
			"/compute/v1/projects/p1/global/networks": items(
				vpc("p1", map[string]any{
					"name":    "sn-netapp",
					"network": computeURL + "projects/tenant/global/networks/netapp-tenant-vpc",
					"state":   "ACTIVE",
				}),
			),
			"/v1/services/" + service + "/connections": map[string]any{"connections": []any{
				map[string]any{
					"network":               "projects/111/global/networks/vpc",
					"peering":               "sn-netapp",
					"service":               "services/" + service,
					"reservedPeeringRanges": []string{"netapp-range"},
				},
			}},
		},
	}

	c := newTestCollector(t, api)
	def, _ := report.Lookup("psa-connections")

	snapshot, err := c.Collect(context.Background(), def.Needs, Options{
		Projects:        []string{"p1"},
		PrivateServices: map[string]string{"netapp": service},
		Now:             testNow,
	})
	require.NoError(t, err)

	requests := api.seen("/v1/services/" + service + "/connections")
	require.Len(t, requests, 1)
	require.Equal(t, "projects/111/global/networks/vpc", requests[0].Get("network"))
	require.Len(t, snapshot.PrivateConnections, 1)

	conn := snapshot.PrivateConnections[0]
	require.Equal(t, "p1/vpc", conn.NetworkKey)
	require.Equal(t, "p1", conn.ProjectID)
	require.Equal(t, service, conn.ServiceName)
	require.Equal(t, "sn-netapp", conn.PeerNetworkName)
}

func TestUniqueProjects(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, uniqueProjects([]string{" a", "b", "", "a ", "b"}))
	require.Empty(t, uniqueProjects(nil))
}
