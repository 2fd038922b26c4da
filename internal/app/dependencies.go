package app

import (
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	mediahttp "github.com/nanostudio/server/internal/adapter/inbound/http/media"
	"github.com/nanostudio/server/internal/infra/config"
	"github.com/nanostudio/server/internal/infra/task"
	"github.com/nanostudio/server/internal/port/inbound"
	"github.com/nanostudio/server/internal/port/outbound"
	"github.com/nanostudio/server/internal/utils/metrics"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config        *config.Config
	Logger        *zap.Logger
	Registry      *prometheus.Registry
	Metrics       *metrics.Metrics
	Redis         goredis.UniversalClient
	RateLimiter   outbound.RateLimiterPort
	ResponseCache outbound.ResponseCachePort
	Tasks         *task.Manager

	// Domains
	MediaDomain inbound.MediaDomain

	// HTTP Handlers
	MediaHandler *mediahttp.Handler
}
