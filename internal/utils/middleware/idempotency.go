package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nanostudio/server/internal/port/outbound"
	"github.com/nanostudio/server/internal/shared/logger"
	apperrors "github.com/nanostudio/server/internal/utils/errors"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the cache.
	IdempotencyReplayedHeader = "Idempotency-Replayed"

	defaultIdempotencyTTL = time.Hour
	idempotencyLockTTL    = 30 * time.Second
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	// TTL is the time to live for stored responses.
	TTL time.Duration
}

// idempotencyResponse stores the cached response.
type idempotencyResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// idempotencyResponseWriter wraps gin.ResponseWriter to capture the response.
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first response for a repeated Idempotency-Key,
// so a client retrying a panel submission sees its original 202 instead of
// a busy conflict. Requests without the header pass through untouched.
func Idempotency(cache outbound.ResponseCachePort, cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if cache == nil || idempotencyKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		key := idempotencyCacheKey(c, idempotencyKey)

		if data, err := cache.Get(ctx, key); err != nil {
			log.Warn("idempotency lookup failed", zap.Error(err))
		} else if data != nil {
			var resp idempotencyResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				c.Header(IdempotencyReplayedHeader, "true")
				c.Data(resp.StatusCode, resp.ContentType, resp.Body)
				c.Abort()
				return
			}
		}

		locked, err := cache.Lock(ctx, key, idempotencyLockTTL)
		if err != nil {
			log.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !locked {
			appErr := apperrors.Conflict("A request with this idempotency key is already being processed")
			appErr.Code = "REQUEST_IN_PROGRESS"
			c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
			return
		}
		defer func() {
			if err := cache.Unlock(ctx, key); err != nil {
				log.Warn("idempotency unlock failed", zap.Error(err))
			}
		}()

		w := &idempotencyResponseWriter{ResponseWriter: c.Writer, body: bytes.NewBuffer(nil)}
		c.Writer = w

		c.Next()

		// Only successful outcomes are replayed; errors may be retried.
		if status := w.Status(); status >= 200 && status < 300 {
			data, err := json.Marshal(idempotencyResponse{
				StatusCode:  status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			})
			if err == nil {
				err = cache.Set(ctx, key, data, cfg.TTL)
			}
			if err != nil {
				log.Warn("failed to store idempotent response", zap.Error(err))
			}
		}
	}
}

// idempotencyCacheKey scopes the client key to the route, session and caller.
func idempotencyCacheKey(c *gin.Context, idempotencyKey string) string {
	hash := sha256.Sum256([]byte(c.FullPath() + ":" + c.Param("session_id") + ":" + KeyByCredential(c) + ":" + idempotencyKey))
	return hex.EncodeToString(hash[:])
}
