package report

import (
	"testing"

	"github.com/kedare/netscope/internal/inventory"
	"github.com/stretchr/testify/require"
)

func TestDefinitionsBuildOnEmptySnapshot(t *testing.T) {
	defs := Definitions()
	require.NotEmpty(t, defs)

	for i, def := range defs {
		if i > 0 {
			require.Less(t, defs[i-1].Name, def.Name)
		}

		t.Run(def.Name, func(t *testing.T) {
			require.NotEmpty(t, def.Description)
			require.NotEmpty(t, def.Needs.Kinds)

			tables := def.Build(&inventory.Snapshot{}, DefaultOptions(testNow))
			require.NotEmpty(t, tables)
			for _, table := range tables {
				require.Zero(t, table.Len())
				require.NotEmpty(t, table.Columns)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	def, ok := Lookup("orphans")
	require.True(t, ok)
	require.True(t, def.Needs.SubnetIAM)
	require.True(t, def.Needs.SharedVPC)

	_, ok = Lookup("does-not-exist")
	require.False(t, ok)
}

func TestOrphansDefinitionUsesSideMaps(t *testing.T) {
	shared := subnet("host", "us-east1", "shared", "vpc", inventory.PurposePrivate)

	snapshot := &inventory.Snapshot{
		Projects:        []inventory.Project{project("svc-a", 1), project("svc-b", 2), project("unrelated", 3)},
		Subnets:         []inventory.Subnet{shared},
		SubnetMembers:   map[string][]string{shared.Key: {ComputeServiceAccount(1)}},
		ServiceProjects: map[string][]string{"host": {"svc-a", "svc-b"}},
	}

	def, _ := Lookup("orphans")
	opts := DefaultOptions(testNow)
	opts.HostProjectID = "host"

	tables := def.Build(snapshot, opts)
	require.Len(t, tables, 1)
	require.Equal(t, []any{"svc-b"}, tables[0].Column("project_id"))
}

func TestOrphansDefinitionFallsBackToDetectedHost(t *testing.T) {
	shared := subnet("host", "us-east1", "shared", "vpc", inventory.PurposePrivate)

	snapshot := &inventory.Snapshot{
		Projects:        []inventory.Project{project("svc-a", 1)},
		Subnets:         []inventory.Subnet{shared},
		ServiceProjects: map[string][]string{"host": {"svc-a"}},
	}

	def, _ := Lookup("orphans")

	tables := def.Build(snapshot, DefaultOptions(testNow))
	require.Equal(t, []any{"svc-a"}, tables[0].Column("project_id"))
	require.Equal(t, "host", resolveHost(snapshot, DefaultOptions(testNow)))

	opts := DefaultOptions(testNow)
	opts.HostProjectID = "other"
	require.Equal(t, "other", resolveHost(snapshot, opts))
}
