package container

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"phddash/adapters/source"
	"phddash/internal/cache"
	"phddash/internal/config"
	"phddash/internal/errors"
	"phddash/internal/logging"
	"phddash/ui"
)

var logger = logging.For("Container")

// Container holds the application dependencies shared by the server and
// the CLI
type Container struct {
	Config *config.Config

	// Infrastructure
	Fetcher  *source.Router
	Registry *prometheus.Registry
	Metrics  *cache.Metrics

	// Dataset
	Loader  *cache.Loader
	Widgets ui.Widgets
}

// New creates the container. The S3 client is only built when the source
// is an s3:// URL.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := cache.NewMetrics(registry)

	c := &Container{
		Config:   cfg,
		Fetcher:  fetcher,
		Registry: registry,
		Metrics:  metrics,
		Loader: cache.NewLoader(fetcher, cfg.Data.SourceURL,
			cache.WithTTL(cfg.Data.CacheTTL),
			cache.WithFetchTimeout(cfg.Data.FetchTimeout),
			cache.WithMetrics(metrics),
		),
		Widgets: ui.DefaultWidgets(cfg.Slider.Min, cfg.Slider.Max, cfg.Slider.Default),
	}
	logger.Infof("Dataset source %s (ttl %s)", cfg.Data.SourceURL, ttlLabel(cfg))
	return c, nil
}

func newFetcher(ctx context.Context, cfg *config.Config) (*source.Router, error) {
	router := source.NewRouter().
		Register(source.NewHTTPFetcher(cfg.Data.FetchTimeout), "http", "https").
		Register(source.FileFetcher{}, "", "file")

	scheme, err := source.Scheme(cfg.Data.SourceURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid DATA_SOURCE_URL")
	}
	if scheme == "s3" {
		s3Fetcher, err := source.NewS3Fetcher(ctx, source.S3Config{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to configure s3 source")
		}
		router.Register(s3Fetcher, "s3")
	}
	return router, nil
}

// NewServer builds the dashboard web server
func (c *Container) NewServer() (*ui.Server, error) {
	return ui.NewServer(c.Loader, c.Widgets)
}

func ttlLabel(cfg *config.Config) string {
	if cfg.Data.CacheTTL == 0 {
		return "process lifetime"
	}
	return cfg.Data.CacheTTL.String()
}

// SliderFor returns the Year slider described by cfg
func SliderFor(cfg *config.Config) ui.Slider {
	return ui.DefaultWidgets(cfg.Slider.Min, cfg.Slider.Max, cfg.Slider.Default).Year
}
