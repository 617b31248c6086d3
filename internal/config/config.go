// Package config loads the netscope settings file and resolves it into the
// explicit option values handed to the collector and the reports.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kedare/netscope/internal/collector"
	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
	"github.com/kedare/netscope/internal/logger"
	"github.com/kedare/netscope/internal/report"
	"gopkg.in/yaml.v3"
)

// EnvPath overrides the settings file location.
const EnvPath = "NETSCOPE_CONFIG"

const (
	defaultDaysThreshold    = 20
	defaultExpiringSoonDays = 21
	defaultRecentHours      = 72
	netappService           = "cloudvolumesgcp-api-netapp.netapp.com"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownProfile is returned when resolving a profile that is not defined.
	ErrUnknownProfile = errors.New("unknown profile")
)

// Profile narrows a run to some networks and regions.
type Profile struct {
	// NetworkString keeps the entities whose network name contains it.
	NetworkString string   `yaml:"network_string"`
	Regions       []string `yaml:"regions"`
}

type Certificates struct {
	DaysThreshold    int `yaml:"days_threshold"`
	ExpiringSoonDays int `yaml:"expiring_soon_days"`
}

type GKE struct {
	ServicesRangeMarker string `yaml:"services_range_marker"`
}

type Firewall struct {
	RecentHours int `yaml:"recent_hours"`
}

type Cache struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"`
	TTL     time.Duration `yaml:"ttl"`
}

// Config mirrors the settings file.
type Config struct {
	// Projects lists the projects to inventory. Empty discovers them.
	Projects      []string           `yaml:"projects"`
	ProjectFilter string             `yaml:"project_filter"`
	Concurrency   int                `yaml:"concurrency"`
	// Timeout bounds each page request.
	Timeout       time.Duration      `yaml:"timeout"`
	Regions       []string           `yaml:"regions"`
	Profiles      map[string]Profile `yaml:"profiles"`
	HostProjectID string             `yaml:"host_project_id"`
	Certificates  Certificates       `yaml:"certificates"`
	GKE           GKE                `yaml:"gke"`
	Firewall      Firewall           `yaml:"firewall"`
	// PrivateServices maps a producer name matched against peerings to its
	// service host.
	PrivateServices map[string]string `yaml:"private_services"`
	Cache           Cache             `yaml:"cache"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Concurrency: gcp.DefaultConcurrency,
		Timeout:     gcp.DefaultRequestTimeout,
		Certificates: Certificates{
			DaysThreshold:    defaultDaysThreshold,
			ExpiringSoonDays: defaultExpiringSoonDays,
		},
		GKE:             GKE{ServicesRangeMarker: report.DefaultServicesRangeMarker},
		Firewall:        Firewall{RecentHours: defaultRecentHours},
		PrivateServices: map[string]string{"netapp": netappService},
		Cache:           Cache{Enabled: true},
	}
}

// Path returns the settings file location: $NETSCOPE_CONFIG, else
// $HOME/.config/netscope/settings.yaml.
func Path() (string, error) {
	if path := strings.TrimSpace(os.Getenv(EnvPath)); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".config", "netscope", "settings.yaml"), nil
}

// Load reads the settings file at path over the defaults. An empty path
// resolves through Path, and a missing file at that location yields the
// defaults. An explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		resolved, err := Path()
		if err != nil {
			return nil, err
		}

		path = resolved
	}

	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path is user input by design
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			logger.Log.Debugf("No settings file at %s, using defaults", path)

			return cfg, nil
		}

		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Log.Debugf("Loaded settings from %s", path)

	return cfg, nil
}

// Validate rejects negative limits and thresholds.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value int64
	}{
		{"concurrency", int64(c.Concurrency)},
		{"timeout", int64(c.Timeout)},
		{"certificates.days_threshold", int64(c.Certificates.DaysThreshold)},
		{"certificates.expiring_soon_days", int64(c.Certificates.ExpiringSoonDays)},
		{"firewall.recent_hours", int64(c.Firewall.RecentHours)},
		{"cache.ttl", int64(c.Cache.TTL)},
	}

	for _, check := range checks {
		if check.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, check.name)
		}
	}

	for name, host := range c.PrivateServices {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(host) == "" {
			return fmt.Errorf("%w: private_services entries need a name and a host", ErrInvalidConfig)
		}
	}

	return nil
}

// ProfileNames returns the defined profiles sorted by name.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Resolve turns the settings and an optional profile into the option values
// of one run evaluated at now. Profile regions replace the global regions.
func (c *Config) Resolve(profile string, now time.Time) (report.Options, collector.Options, error) {
	regions := c.Regions
	networkString := ""

	if profile != "" {
		p, ok := c.Profiles[profile]
		if !ok {
			return report.Options{}, collector.Options{}, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
		}

		networkString = p.NetworkString
		if len(p.Regions) > 0 {
			regions = p.Regions
		}
	}

	reportOpts := report.DefaultOptions(now)
	reportOpts.HostProjectID = c.HostProjectID
	reportOpts.PrivateServices = c.PrivateServices
	if c.Certificates.DaysThreshold > 0 {
		reportOpts.CertificateThreshold = days(c.Certificates.DaysThreshold)
	}
	if c.GKE.ServicesRangeMarker != "" {
		reportOpts.ServicesRangeMarker = c.GKE.ServicesRangeMarker
	}
	if c.Firewall.RecentHours > 0 {
		reportOpts.RecentWindow = time.Duration(c.Firewall.RecentHours) * time.Hour
	}

	collectOpts := collector.Options{
		Projects:        c.Projects,
		ProjectFilter:   c.ProjectFilter,
		Regions:         regions,
		Filter:          inventory.Filter{Regions: regions, NetworkString: networkString},
		HostProjectID:   c.HostProjectID,
		PrivateServices: c.PrivateServices,
		Now:             now,
		ExpiringSoon:    days(c.Certificates.ExpiringSoonDays),
	}

	return reportOpts, collectOpts, nil
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
