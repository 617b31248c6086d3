// Package collector builds the inventory snapshot a report runs on: it
// discovers projects, fans out the listings the report needs, normalizes the
// items and runs the auxiliary round trips (subnet IAM, router NAT status,
// shared VPC topology, private service connections).
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
	"github.com/kedare/netscope/internal/logger"
	"github.com/kedare/netscope/internal/report"
)

var (
	// ErrNoProjects indicates that project discovery returned nothing.
	ErrNoProjects = errors.New("no projects available")
	// ErrNoHostProject indicates a shared VPC report without a configured
	// host project and no single host detectable from the projects.
	ErrNoHostProject = errors.New("no shared VPC host project configured")
	// ErrNoResources indicates that a required resource kind came back empty.
	ErrNoResources = errors.New("no resources found")
)

// Options selects what a collection run covers.
type Options struct {
	// Projects lists the projects to inventory. Empty discovers every
	// visible project through Resource Manager.
	Projects      []string
	ProjectFilter string
	// Regions lists regional collections per region instead of through the
	// aggregated endpoints.
	Regions []string
	Filter  inventory.Filter
	// HostProjectID is the shared VPC host project.
	HostProjectID string
	// PrivateServices maps a producer name matched against peerings to its
	// service host.
	PrivateServices map[string]string
	Now             time.Time
	ExpiringSoon    time.Duration
	// RunID tags the snapshot. Empty generates a random one.
	RunID string
}

// Collector drives an executor to build snapshots.
type Collector struct {
	executor *gcp.Executor
	metrics  *gcp.Metrics
}

// Option customises a Collector.
type Option func(*Collector)

// WithMetrics counts dropped items on m.
func WithMetrics(m *gcp.Metrics) Option {
	return func(c *Collector) {
		c.metrics = m
	}
}

func New(executor *gcp.Executor, opts ...Option) *Collector {
	c := &Collector{executor: executor}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Projects resolves the projects of a run. Explicit projects keep their order
// and fall back to an id-only entry when their metadata cannot be read.
// Discovered projects are sorted by id. Inactive projects are skipped.
func (c *Collector) Projects(ctx context.Context, opts Options) ([]inventory.Project, error) {
	normalizer := inventory.NewNormalizer(inventory.WithMetrics(c.metrics))

	var projects []inventory.Project
	if ids := uniqueProjects(opts.Projects); len(ids) > 0 {
		projects = c.lookupProjects(ctx, normalizer, ids)
	} else {
		res := c.executor.FetchAll(ctx, []gcp.Target{gcp.ProjectsTarget(opts.ProjectFilter)})
		projects = inventory.NormalizeAll[inventory.Project](normalizer, gcp.KindProject, res.ItemsOfKind(gcp.KindProject))
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].ProjectID < projects[j].ProjectID
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	active := make([]inventory.Project, 0, len(projects))
	for _, project := range inventory.Dedupe(projects) {
		if project.State != "" && project.State != "ACTIVE" {
			logger.Log.Debugf("Skipping project %s in state %s", project.ProjectID, project.State)

			continue
		}

		active = append(active, project)
	}

	if len(active) == 0 {
		return nil, ErrNoProjects
	}

	return active, nil
}

func (c *Collector) lookupProjects(ctx context.Context, normalizer *inventory.Normalizer, ids []string) []inventory.Project {
	targets := make([]gcp.Target, len(ids))
	for i, id := range ids {
		targets[i] = gcp.ProjectTarget(id)
	}

	res := c.executor.FetchAll(ctx, targets)

	projects := make([]inventory.Project, 0, len(ids))
	for i, id := range ids {
		found := inventory.NormalizeAll[inventory.Project](normalizer, gcp.KindProject, res.Items(targets[i]))
		if len(found) == 1 {
			projects = append(projects, found[0])

			continue
		}

		logger.Log.Debugf("Metadata of project %s not readable, using its id only", id)
		projects = append(projects, projectStub(id))
	}

	return projects
}

// Collect builds the snapshot needs describes. Per-target failures never
// abort the run; ErrNoProjects, ErrNoHostProject and ErrNoResources do.
func (c *Collector) Collect(ctx context.Context, needs report.Needs, opts Options) (*inventory.Snapshot, error) {
	projects, err := c.Projects(ctx, opts)
	if err != nil {
		return nil, err
	}

	host := strings.TrimSpace(opts.HostProjectID)
	if needs.SharedVPC && host == "" {
		if host, err = c.detectHost(ctx, projects); err != nil {
			return nil, err
		}
	}

	if needs.SharedVPC && !hasProject(projects, host) {
		normalizer := inventory.NewNormalizer(inventory.WithMetrics(c.metrics))
		projects = append(projects, c.lookupProjects(ctx, normalizer, []string{host})...)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var targets []gcp.Target
	for _, kind := range needs.Kinds {
		if kind == gcp.KindProject {
			continue
		}

		for _, project := range projects {
			targets = append(targets, gcp.TargetsFor(kind, project.ProjectID, opts.Regions)...)
		}
	}

	if needs.SharedVPC {
		targets = append(targets, gcp.XpnResourcesTarget(host))
	}

	logger.Log.Debugf("Collecting %d targets across %d projects (run %s)", len(targets), len(projects), runID)

	res := c.executor.FetchAll(ctx, targets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	warnIncomplete(res)

	normalizer := c.normalizer(projects, now, opts.ExpiringSoon)

	snapshot := &inventory.Snapshot{RunID: runID, TakenAt: now, Projects: projects}
	fill(snapshot, normalizer, res)

	snapshot = opts.Filter.Apply(snapshot.Deduplicated())

	for _, kind := range needs.Required {
		if countOf(snapshot, kind) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoResources, kind)
		}
	}

	if err := c.attach(ctx, needs, opts, host, snapshot, res); err != nil {
		return nil, err
	}

	logger.Log.Debugf("Snapshot %s: %d projects, %d networks, %d subnets, %d instances, %d forwarding rules",
		snapshot.RunID, len(snapshot.Projects), len(snapshot.Networks), len(snapshot.Subnets),
		len(snapshot.Instances), len(snapshot.ForwardingRules))

	return snapshot, nil
}

// detectHost asks every project for its shared VPC host and returns the host
// when all attached projects agree on one.
func (c *Collector) detectHost(ctx context.Context, projects []inventory.Project) (string, error) {
	targets := make([]gcp.Target, len(projects))
	for i, project := range projects {
		targets[i] = gcp.XpnHostTarget(project.ProjectID)
	}

	res := c.executor.FetchAll(ctx, targets)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	seen := map[string]struct{}{}
	for _, raw := range res.ItemsOfKind(gcp.KindXpnHost) {
		host, err := inventory.XpnHost(raw)
		if err != nil || host == "" {
			continue
		}
		seen[host] = struct{}{}
	}

	hosts := make([]string, 0, len(seen))
	for host := range seen {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	switch len(hosts) {
	case 0:
		return "", ErrNoHostProject
	case 1:
		logger.Log.Debugf("Detected shared VPC host project %s", hosts[0])

		return hosts[0], nil
	default:
		return "", fmt.Errorf("%w: projects attach to several hosts (%s)", ErrNoHostProject, strings.Join(hosts, ", "))
	}
}

func (c *Collector) normalizer(projects []inventory.Project, now time.Time, expiringSoon time.Duration) *inventory.Normalizer {
	opts := []inventory.Option{
		inventory.WithClock(func() time.Time { return now }),
		inventory.WithProjectNumbers(inventory.ProjectNumbers(projects)),
		inventory.WithMetrics(c.metrics),
	}

	if expiringSoon > 0 {
		opts = append(opts, inventory.WithExpiringSoon(expiringSoon))
	}

	return inventory.NewNormalizer(opts...)
}

// fill normalizes every listed kind into the snapshot.
func fill(s *inventory.Snapshot, n *inventory.Normalizer, res *gcp.FanOutResult) {
	s.Networks = inventory.NormalizeAll[inventory.Network](n, gcp.KindNetwork, res.ItemsOfKind(gcp.KindNetwork))
	s.Subnets = inventory.NormalizeAll[inventory.Subnet](n, gcp.KindSubnet, res.ItemsOfKind(gcp.KindSubnet))
	s.Instances = inventory.NormalizeAll[inventory.Instance](n, gcp.KindInstance, res.ItemsOfKind(gcp.KindInstance))
	s.ForwardingRules = inventory.NormalizeAll[inventory.ForwardingRule](n, gcp.KindForwardingRule, res.ItemsOfKind(gcp.KindForwardingRule))
	s.TargetProxies = inventory.NormalizeAll[inventory.TargetProxy](n, gcp.KindTargetProxy, res.ItemsOfKind(gcp.KindTargetProxy))
	s.Routers = inventory.NormalizeAll[inventory.Router](n, gcp.KindRouter, res.ItemsOfKind(gcp.KindRouter))
	s.FirewallRules = inventory.NormalizeAll[inventory.FirewallRule](n, gcp.KindFirewallRule, res.ItemsOfKind(gcp.KindFirewallRule))
	s.Certificates = inventory.NormalizeAll[inventory.Certificate](n, gcp.KindCertificate, res.ItemsOfKind(gcp.KindCertificate))
	s.Clusters = inventory.NormalizeAll[inventory.Cluster](n, gcp.KindCluster, res.ItemsOfKind(gcp.KindCluster))
	s.Databases = inventory.NormalizeAll[inventory.Database](n, gcp.KindDatabase, res.ItemsOfKind(gcp.KindDatabase))
	s.SecurityPolicies = inventory.NormalizeAll[inventory.SecurityPolicy](n, gcp.KindSecurityPolicy, res.ItemsOfKind(gcp.KindSecurityPolicy))
}

func countOf(s *inventory.Snapshot, kind gcp.Kind) int {
	switch kind {
	case gcp.KindProject:
		return len(s.Projects)
	case gcp.KindNetwork:
		return len(s.Networks)
	case gcp.KindSubnet:
		return len(s.Subnets)
	case gcp.KindInstance:
		return len(s.Instances)
	case gcp.KindForwardingRule:
		return len(s.ForwardingRules)
	case gcp.KindTargetProxy:
		return len(s.TargetProxies)
	case gcp.KindRouter:
		return len(s.Routers)
	case gcp.KindFirewallRule:
		return len(s.FirewallRules)
	case gcp.KindCertificate:
		return len(s.Certificates)
	case gcp.KindCluster:
		return len(s.Clusters)
	case gcp.KindDatabase:
		return len(s.Databases)
	case gcp.KindSecurityPolicy:
		return len(s.SecurityPolicies)
	case gcp.KindPrivateConnection:
		return len(s.PrivateConnections)
	default:
		return 0
	}
}

func warnIncomplete(res *gcp.FanOutResult) {
	if res.Stats.Failed == 0 {
		return
	}

	logger.Log.Warnf("%d of %d requests failed, results may be incomplete", res.Stats.Failed, res.Stats.Total)

	for _, failure := range res.Errors() {
		if failure.Outcome == gcp.OutcomeFailed {
			logger.Log.Debugf("  %v", failure.Err)
		}
	}
}

func projectStub(id string) inventory.Project {
	return inventory.Project{Resource: inventory.Resource{
		Kind:      gcp.KindProject,
		Name:      id,
		Scope:     gcp.ScopeGlobal,
		ProjectID: id,
		Locator:   "projects/" + id,
		Key:       id,
	}}
}

func hasProject(projects []inventory.Project, id string) bool {
	for _, project := range projects {
		if project.ProjectID == id {
			return true
		}
	}

	return false
}

// uniqueProjects trims, deduplicates and keeps the order of project ids.
func uniqueProjects(projects []string) []string {
	seen := make(map[string]struct{}, len(projects))
	ordered := make([]string, 0, len(projects))

	for _, project := range projects {
		project = strings.TrimSpace(project)
		if project == "" {
			continue
		}

		if _, ok := seen[project]; ok {
			continue
		}

		seen[project] = struct{}{}
		ordered = append(ordered, project)
	}

	return ordered
}

func projectNumbersByID(projects []inventory.Project) map[string]string {
	numbers := make(map[string]string, len(projects))
	for _, project := range projects {
		if project.Number != 0 {
			numbers[project.ProjectID] = strconv.FormatInt(project.Number, 10)
		}
	}

	return numbers
}
