package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kedare/netscope/internal/cache"
	"github.com/kedare/netscope/internal/collector"
	"github.com/kedare/netscope/internal/config"
	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/logger"
	"github.com/kedare/netscope/internal/output"
	"github.com/kedare/netscope/internal/report"
	"github.com/kedare/netscope/internal/version"
	"github.com/prometheus/client_golang/prometheus"
)

// envAccessToken supplies a bearer token instead of application default credentials.
const envAccessToken = "NETSCOPE_ACCESS_TOKEN"

// session holds everything one command run needs to talk to the APIs.
type session struct {
	cfg         *config.Config
	registry    *prometheus.Registry
	store       *cache.Store
	spinner     *output.Spinner
	collector   *collector.Collector
	reportOpts  report.Options
	collectOpts collector.Options
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if len(projects) > 0 {
		cfg.Projects = projects
	}
	if len(regions) > 0 {
		cfg.Regions = regions
	}
	if hostProject != "" {
		cfg.HostProjectID = hostProject
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	return cfg, cfg.Validate()
}

func accessToken(ctx context.Context) (string, error) {
	if token := strings.TrimSpace(os.Getenv(envAccessToken)); token != "" {
		return token, nil
	}

	return gcp.DefaultAccessToken(ctx)
}

func newSession(ctx context.Context, label string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	reportOpts, collectOpts, err := cfg.Resolve(profileName, time.Now())
	if err != nil {
		return nil, err
	}
	collectOpts.RunID = uuid.NewString()

	token, err := accessToken(ctx)
	if err != nil {
		return nil, err
	}

	client, err := gcp.NewHTTPClient(ctx, token)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:         cfg,
		registry:    prometheus.NewRegistry(),
		reportOpts:  reportOpts,
		collectOpts: collectOpts,
	}
	metrics := gcp.NewMetrics(s.registry)

	fetcherOpts := []gcp.FetcherOption{
		gcp.WithMetrics(metrics),
		gcp.WithUserAgent(version.Get().UserAgent()),
		gcp.WithTimeout(cfg.Timeout),
	}
	if apiEndpoint != "" {
		fetcherOpts = append(fetcherOpts, gcp.WithBaseURL(apiEndpoint))
	}

	var fetcher gcp.TargetFetcher = gcp.NewFetcher(client, fetcherOpts...)

	if cfg.Cache.Enabled {
		store, err := openStore(cfg)
		if err != nil {
			logger.Log.Warnf("Response cache disabled: %v", err)
		} else {
			s.store = store
			fetcher = cache.NewFetcher(fetcher, store, collectOpts.RunID, cache.WithEndpoint(apiEndpoint))
		}
	}

	s.spinner = output.NewSpinner(label)
	executor := gcp.NewExecutor(fetcher, cfg.Concurrency,
		gcp.WithExecutorMetrics(metrics),
		gcp.WithProgress(s.spinner.Progress(label)),
	)
	s.collector = collector.New(executor, collector.WithMetrics(metrics))

	return s, nil
}

func openStore(cfg *config.Config) (*cache.Store, error) {
	path := cfg.Cache.Path
	if path == "" {
		resolved, err := cache.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	return cache.Open(path, cfg.Cache.TTL)
}

// close flushes metrics and releases the cache.
func (s *session) close() {
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, s.registry); err != nil {
			logger.Log.Warnf("Failed to write metrics to %s: %v", metricsFile, err)
		} else {
			logger.Log.Debugf("Metrics written to %s", metricsFile)
		}
	}

	if s.store == nil {
		return
	}

	logger.Log.Debug(s.store.Stats().String())

	if err := s.store.Close(); err != nil {
		logger.Log.Warnf("Failed to close response cache: %v", err)
	}
}

func describeProjects(opts collector.Options) string {
	switch {
	case len(opts.Projects) > 0:
		return fmt.Sprintf("%d projects", len(opts.Projects))
	case opts.ProjectFilter != "":
		return fmt.Sprintf("projects matching %q", opts.ProjectFilter)
	default:
		return "all visible projects"
	}
}
