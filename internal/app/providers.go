package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Domains
	"github.com/nanostudio/server/internal/domain/media"

	// Inbound adapters
	mediahttp "github.com/nanostudio/server/internal/adapter/inbound/http/media"

	// Ports
	"github.com/nanostudio/server/internal/port/inbound"
	"github.com/nanostudio/server/internal/port/outbound"

	// Outbound adapters
	"github.com/nanostudio/server/internal/adapter/outbound/gemini"
	"github.com/nanostudio/server/internal/adapter/outbound/memory"
	redisadapter "github.com/nanostudio/server/internal/adapter/outbound/redis"
	s3adapter "github.com/nanostudio/server/internal/adapter/outbound/s3"

	// Infrastructure
	"github.com/nanostudio/server/internal/infra/config"
	"github.com/nanostudio/server/internal/infra/httpclient"
	"github.com/nanostudio/server/internal/infra/task"
	"github.com/nanostudio/server/internal/shared/cache"
	"github.com/nanostudio/server/internal/shared/logger"

	// Utils
	"github.com/nanostudio/server/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideRateLimiter,
	ProvideResponseCache,
)

// ProvideLogger creates the zap logger.
func ProvideLogger(cfg *config.Config) *zap.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New("nanostudio", reg)
}

// ProvideRedisClient creates a Redis client. It returns nil when Redis is not
// reachable and nothing requires it.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func(), error) {
	required := cfg.Panel.Backend == "redis"
	if cfg.Redis.Address == "" {
		if required {
			return nil, nil, fmt.Errorf("redis.address is required for the redis panel backend")
		}
		return nil, func() {}, nil
	}

	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		if required {
			return nil, nil, err
		}
		log.Warn("Redis connection failed, continuing with in-memory stores", zap.Error(err))
		return nil, func() {}, nil
	}

	cleanup := func() {
		if err := cache.Close(client); err != nil {
			log.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideRateLimiter creates the generation rate limiter. It returns nil when
// rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config, redis goredis.UniversalClient) outbound.RateLimiterPort {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if redis != nil {
		return redisadapter.NewRateLimiter(redis)
	}
	return memory.NewRateLimiter(cfg.RateLimit.Window * 2)
}

// ProvideResponseCache creates the idempotency response cache. It returns nil
// when idempotency replay is disabled.
func ProvideResponseCache(cfg *config.Config, redis goredis.UniversalClient) outbound.ResponseCachePort {
	if !cfg.Idempotency.Enabled {
		return nil
	}
	if redis != nil {
		return redisadapter.NewResponseCache(redis)
	}
	return memory.NewResponseCache()
}

// ===== Outbound Adapter Providers =====

// AdapterSet provides outbound adapters.
var AdapterSet = wire.NewSet(
	ProvideVendor,
	ProvideBlobStore,
	ProvidePanelStore,
)

// ProvideVendor creates the Gemini vendor, guarded by circuit breakers when enabled.
func ProvideVendor(cfg *config.Config, httpClient *http.Client, m *metrics.Metrics, log *zap.Logger) outbound.MediaVendorPort {
	client := gemini.NewClient(&gemini.Config{
		BaseURL:          cfg.Gemini.BaseURL,
		ImageModel:       cfg.Gemini.ImageModel,
		VideoModel:       cfg.Gemini.VideoModel,
		MaxDownloadBytes: cfg.Gemini.MaxDownloadBytes,
	}, httpClient, log)

	if !cfg.Breaker.Enabled {
		return client
	}
	return gemini.NewBreakerVendor(client, &gemini.BreakerConfig{
		MaxRequests:         cfg.Breaker.HalfOpenRequests,
		Interval:            cfg.Breaker.Interval,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.FailureThreshold,
	}, m, log)
}

// ProvideBlobStore creates the downloaded video store.
func ProvideBlobStore(cfg *config.Config) (outbound.BlobStorePort, error) {
	if cfg.Storage.Backend != "s3" {
		return memory.NewBlobStore(cfg.Storage.BlobTTL), nil
	}

	client, err := s3adapter.NewClient(context.Background(), &s3adapter.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		Prefix:          cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return s3adapter.NewBlobStore(client, cfg.Storage.Bucket, cfg.Storage.Prefix), nil
}

// ProvidePanelStore creates the per-session panel state store.
func ProvidePanelStore(cfg *config.Config, redis goredis.UniversalClient) (outbound.PanelStorePort, error) {
	if cfg.Panel.Backend != "redis" {
		return memory.NewPanelStore(cfg.Panel.TTL), nil
	}
	if redis == nil {
		return nil, fmt.Errorf("redis panel backend selected but no redis client is available")
	}
	return redisadapter.NewPanelStore(redis, cfg.Panel.TTL, cfg.Panel.ClaimTTL), nil
}

// ===== Domain Providers =====

// DomainSet provides domain services.
var DomainSet = wire.NewSet(
	ProvideTaskManager,
	ProvideMediaConfig,
	ProvideMediaAdapter,
	ProvideMediaDomain,
	wire.Bind(new(media.Observer), new(*metrics.Metrics)),
	wire.Bind(new(media.TaskRunner), new(*task.Manager)),
	wire.Bind(new(inbound.MediaDomain), new(*media.Domain)),
)

// ProvideTaskManager creates the background task manager.
func ProvideTaskManager(cfg *config.Config, log *zap.Logger) (*task.Manager, func()) {
	manager := task.NewManager(
		task.NewMemoryRepository(cfg.Task.Retention),
		log,
		&task.Config{
			MaxConcurrent: cfg.Task.MaxConcurrent,
			TaskTimeout:   cfg.Task.Timeout,
		},
	)
	return manager, manager.Stop
}

// ProvideMediaConfig maps configuration onto generation defaults.
func ProvideMediaConfig(cfg *config.Config) *media.Config {
	mc := media.DefaultConfig()
	mc.ImageAspectRatio = cfg.Media.ImageAspectRatio
	mc.VideoResolution = cfg.Media.VideoResolution
	mc.VideoAspectRatio = cfg.Media.VideoAspectRatio
	if cfg.Media.DefaultVideoPrompt != "" {
		mc.DefaultVideoPrompt = cfg.Media.DefaultVideoPrompt
	}
	mc.Poll = media.RetryPolicy{
		Interval:    cfg.Media.PollInterval,
		MaxAttempts: cfg.Media.PollMaxAttempts,
		Timeout:     cfg.Media.PollTimeout,
	}
	mc.BatchInterval = cfg.Media.BatchInterval
	mc.BatchBurst = cfg.Media.BatchBurst
	mc.TaskTimeout = cfg.Task.Timeout
	return mc
}

// ProvideMediaAdapter creates the request/response adapter.
func ProvideMediaAdapter(
	vendor outbound.MediaVendorPort,
	blobs outbound.BlobStorePort,
	mc *media.Config,
	observer media.Observer,
	log *zap.Logger,
) *media.Adapter {
	return media.NewAdapter(vendor, blobs, mc, observer, log)
}

// ProvideMediaDomain creates the media domain.
func ProvideMediaDomain(
	adapter *media.Adapter,
	panels outbound.PanelStorePort,
	tasks media.TaskRunner,
	mc *media.Config,
	observer media.Observer,
	log *zap.Logger,
) *media.Domain {
	return media.NewDomain(adapter, panels, tasks, mc, observer, log)
}

// ===== HTTP Handler Providers =====

// HandlerSet provides HTTP handlers.
var HandlerSet = wire.NewSet(
	ProvideMediaHandler,
)

// ProvideMediaHandler creates the media HTTP handler.
func ProvideMediaHandler(domain inbound.MediaDomain, cfg *config.Config) *mediahttp.Handler {
	hc := mediahttp.DefaultConfig()
	if cfg.Server.MaxUploadBytes > 0 {
		hc.MaxUploadBytes = cfg.Server.MaxUploadBytes
	}
	return mediahttp.NewHandler(domain, hc)
}

// ===== Complete Application Set =====

// AppSet combines all provider sets.
var AppSet = wire.NewSet(
	InfraSet,
	AdapterSet,
	DomainSet,
	HandlerSet,
)
