package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, 16, cfg.Concurrency)
	require.Equal(t, time.Minute, cfg.Timeout)
	require.Equal(t, 20, cfg.Certificates.DaysThreshold)
	require.Equal(t, 21, cfg.Certificates.ExpiringSoonDays)
	require.Equal(t, "gke-services", cfg.GKE.ServicesRangeMarker)
	require.Equal(t, 72, cfg.Firewall.RecentHours)
	require.Equal(t, netappService, cfg.PrivateServices["netapp"])
	require.True(t, cfg.Cache.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
projects: [host, svc-a]
concurrency: 4
timeout: 15s
regions: [europe-west1]
host_project_id: host
certificates:
  days_threshold: 14
profiles:
  prod:
    network_string: prod
    regions: [us-east1, us-central1]
cache:
  enabled: false
  ttl: 30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"host", "svc-a"}, cfg.Projects)
	require.Equal(t, 4, cfg.Concurrency)
	require.Equal(t, 15*time.Second, cfg.Timeout)
	require.Equal(t, 14, cfg.Certificates.DaysThreshold)
	require.Equal(t, 21, cfg.Certificates.ExpiringSoonDays)
	require.Equal(t, "gke-services", cfg.GKE.ServicesRangeMarker)
	require.False(t, cfg.Cache.Enabled)
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.Equal(t, []string{"prod"}, cfg.ProfileNames())
}

func TestLoadMissingFiles(t *testing.T) {
	t.Setenv(EnvPath, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "explicit.yaml"))
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvPath, writeConfig(t, "host_project_id: from-env\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.HostProjectID)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative concurrency", "concurrency: -1\n"},
		{"negative timeout", "timeout: -5s\n"},
		{"negative threshold", "certificates:\n  days_threshold: -3\n"},
		{"negative recent hours", "firewall:\n  recent_hours: -1\n"},
		{"empty service host", "private_services:\n  netapp: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(writeConfig(t, "projects: [unterminated\n"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Projects = []string{"p1"}
	cfg.Regions = []string{"europe-west1"}
	cfg.HostProjectID = "host"
	cfg.Certificates.DaysThreshold = 14
	cfg.Firewall.RecentHours = 24
	cfg.Profiles = map[string]Profile{
		"prod": {NetworkString: "prod", Regions: []string{"us-east1"}},
		"edge": {NetworkString: "edge"},
	}

	reportOpts, collectOpts, err := cfg.Resolve("", testNow)
	require.NoError(t, err)
	require.Equal(t, 14*24*time.Hour, reportOpts.CertificateThreshold)
	require.Equal(t, 24*time.Hour, reportOpts.RecentWindow)
	require.Equal(t, "host", reportOpts.HostProjectID)
	require.True(t, reportOpts.Now.Equal(testNow))
	require.Equal(t, []string{"europe-west1"}, collectOpts.Regions)
	require.Equal(t, []string{"p1"}, collectOpts.Projects)
	require.Empty(t, collectOpts.Filter.NetworkString)
	require.Equal(t, 21*24*time.Hour, collectOpts.ExpiringSoon)

	_, prod, err := cfg.Resolve("prod", testNow)
	require.NoError(t, err)
	require.Equal(t, []string{"us-east1"}, prod.Filter.Regions)
	require.Equal(t, "prod", prod.Filter.NetworkString)

	_, edge, err := cfg.Resolve("edge", testNow)
	require.NoError(t, err)
	require.Equal(t, []string{"europe-west1"}, edge.Regions)

	_, _, err = cfg.Resolve("missing", testNow)
	require.ErrorIs(t, err, ErrUnknownProfile)
}
