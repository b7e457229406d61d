package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sbai-works/drawctl/cache"
	"github.com/sbai-works/drawctl/cli/config"
	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/log"
	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/poll"
	"github.com/sbai-works/drawctl/resilience"
)

// DefaultBaseURL is used when neither flag nor config names the backend.
const DefaultBaseURL = "http://localhost:8000/api"

// appEnv bundles the wired dependencies one command invocation uses.
type appEnv struct {
	cfg     config.Config
	logger  *log.Logger
	metrics *metrics.Collector
	api     *client.Client
	exec    *resilience.Executor
	cache   *cache.Store
	poller  *poll.Poller
}

// buildEnv loads the optional config file and wires up the client stack.
// Flag values win over config values; config values win over defaults.
func buildEnv(c *cli.Context) (*appEnv, error) {
	var cfg config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	baseURL := c.String("api-url")
	if baseURL == "" {
		baseURL = cfg.API.BaseURL
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.API.Timeout.Duration
	if d := c.Duration("timeout"); d > 0 {
		timeout = d
	}

	logger := log.NewLogger(c.Bool("verbose"))
	collector := metrics.NewCollector()

	api, err := client.New(client.Config{BaseURL: baseURL, Timeout: timeout}, collector)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	interval := cfg.Poll.Interval.Duration
	if d := c.Duration("poll-interval"); d > 0 {
		interval = d
	}

	rcfg := resilience.DefaultConfig()
	if cfg.Retry.Attempts != nil && *cfg.Retry.Attempts >= 1 {
		rcfg.MaxAttempts = *cfg.Retry.Attempts
	}
	if d := cfg.Retry.InitialBackoff.Duration; d > 0 {
		rcfg.InitialBackoff = d
	}
	if d := cfg.Retry.MaxBackoff.Duration; d > 0 {
		rcfg.MaxBackoff = d
	}
	if b := cfg.Retry.Breaker; b.Enabled {
		rcfg.BreakerEnabled = true
		if b.MinRequests > 0 {
			rcfg.BreakerMinRequests = uint32(b.MinRequests)
		}
		if b.FailureRatio > 0 {
			rcfg.BreakerFailureRatio = b.FailureRatio
		}
		if d := b.OpenTimeout.Duration; d > 0 {
			rcfg.BreakerOpenTimeout = d
		}
	}

	var store *cache.Store
	if !cfg.Cache.Disabled && !c.Bool("no-cache") {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		store = cache.New(dir, collector)
	}

	return &appEnv{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		api:     api,
		exec:    resilience.NewExecutor(rcfg, logger),
		cache:   store,
		poller:  poll.New(api, interval, logger, collector),
	}, nil
}

// Close releases the environment's connections.
func (e *appEnv) Close() {
	if e.api != nil {
		e.api.Close()
	}
}

// exitNetworkError maps backend failures to user-facing exits. Errors that
// are neither network nor status shaped pass through unchanged.
func exitNetworkError(err error) error {
	if resilience.IsCircuitOpen(err) {
		return cli.Exit("백엔드 연결이 일시적으로 차단되었습니다. 잠시 후 다시 시도하세요.", 1)
	}

	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return cli.Exit(netErr.UserMessage(), 1)
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return cli.Exit(statusErr.Error(), 1)
	}
	return err
}
