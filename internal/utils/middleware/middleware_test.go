package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nanostudio/server/internal/adapter/outbound/memory"
	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/shared/logger"
	"github.com/nanostudio/server/internal/utils/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bufferLogger(level string) (*zap.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.New(&logger.Config{Level: level, Format: "json", Output: buf}), buf
}

func TestRequestID(t *testing.T) {
	t.Run("generates new request ID when not provided", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		existingID := "existing-request-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, existingID, w.Header().Get(RequestIDHeader))
		assert.Equal(t, existingID, w.Body.String())
	})
}

func TestGetRequestID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))

	c.Set(RequestIDKey, "test-id")
	assert.Equal(t, "test-id", GetRequestID(c))
}

func TestCredential(t *testing.T) {
	newRouter := func(fallback model.Credential) *gin.Engine {
		router := gin.New()
		router.Use(Credential(fallback))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, string(GetCredential(c)))
		})
		return router
	}

	t.Run("header wins", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(APIKeyHeader, " user-key ")
		w := httptest.NewRecorder()
		newRouter("server-key").ServeHTTP(w, req)
		assert.Equal(t, "user-key", w.Body.String())
	})

	t.Run("falls back to server key", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("server-key").ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, "server-key", w.Body.String())
	})

	t.Run("empty when neither is set", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("").ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestLogging(t *testing.T) {
	t.Run("logs successful requests", func(t *testing.T) {
		log, buf := bufferLogger("info")

		router := gin.New()
		router.Use(RequestID())
		router.Use(Logging(log))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest("GET", "/test?foo=bar", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		out := buf.String()
		assert.Contains(t, out, "HTTP Request")
		assert.Contains(t, out, `"method":"GET"`)
		assert.Contains(t, out, `"path":"/test"`)
		assert.Contains(t, out, `"status":200`)
		assert.Contains(t, out, "foo=bar")
		assert.Contains(t, out, "TestAgent/1.0")
		assert.Contains(t, out, `"request_id":"`+w.Header().Get(RequestIDHeader)+`"`)
	})

	t.Run("logs 4xx requests as warnings", func(t *testing.T) {
		log, buf := bufferLogger("warn")

		router := gin.New()
		router.Use(Logging(log))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusNotFound, "not found")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		assert.Contains(t, buf.String(), `"level":"warn"`)
		assert.Contains(t, buf.String(), `"status":404`)
	})

	t.Run("logs 5xx requests as errors", func(t *testing.T) {
		log, buf := bufferLogger("error")

		router := gin.New()
		router.Use(Logging(log))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "error")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.Contains(t, buf.String(), `"status":500`)
	})

	t.Run("exposes request logger to handlers", func(t *testing.T) {
		log, buf := bufferLogger("info")

		router := gin.New()
		router.Use(RequestID(), Logging(log))
		router.GET("/test", func(c *gin.Context) {
			logger.FromContext(c.Request.Context()).Info("inside handler")
			c.Status(http.StatusNoContent)
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "rid-1")
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, buf.String(), "inside handler")
		assert.Contains(t, buf.String(), `"request_id":"rid-1"`)
	})
}

func TestRecovery(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		log, buf := bufferLogger("error")

		router := gin.New()
		router.Use(Recovery(log))
		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		w := httptest.NewRecorder()
		require.NotPanics(t, func() {
			router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
		assert.Contains(t, buf.String(), "Panic recovered")
		assert.Contains(t, buf.String(), "test panic")
	})

	t.Run("works without a logger", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery(nil))
		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		w := httptest.NewRecorder()
		require.NotPanics(t, func() {
			router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS(CORSConfig{AllowOrigins: []string{"http://allowed.com"}}))
	router.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "http://allowed.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", APIKeyHeader)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "http://allowed.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), APIKeyHeader)
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, APIKeyHeader)
	assert.Contains(t, cfg.AllowHeaders, IdempotencyKeyHeader)
	assert.Contains(t, cfg.ExposeHeaders, "Content-Disposition")
	assert.False(t, cfg.AllowCredentials)
}

func TestRateLimit(t *testing.T) {
	newRouter := func(limit int) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(memory.NewRateLimiter(time.Minute), RateLimitConfig{
			Limit:   limit,
			Window:  time.Hour,
			KeyFunc: KeyByCredential,
		}))
		router.POST("/gen", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("rejects after limit", func(t *testing.T) {
		router := newRouter(2)
		codes := make([]int, 3)
		for i := range codes {
			req := httptest.NewRequest(http.MethodPost, "/gen", nil)
			req.Header.Set(APIKeyHeader, "key-a")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes[i] = w.Code
			if i == 2 {
				assert.Contains(t, w.Body.String(), "RATE_LIMITED")
				assert.NotEmpty(t, w.Header().Get(RetryAfter))
			}
		}
		assert.Equal(t, []int{200, 200, 429}, codes)
	})

	t.Run("separate credentials have separate budgets", func(t *testing.T) {
		router := newRouter(1)
		for _, key := range []string{"key-a", "key-b"} {
			req := httptest.NewRequest(http.MethodPost, "/gen", nil)
			req.Header.Set(APIKeyHeader, key)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "1", w.Header().Get(RateLimitLimit))
		}
	})

	t.Run("nil limiter passes through", func(t *testing.T) {
		router := gin.New()
		router.Use(RateLimit(nil, DefaultRateLimitConfig()))
		router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestKeyByCredential(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip:10.0.0.1", KeyByCredential(c))

	c.Request.Header.Set(APIKeyHeader, "secret")
	key := KeyByCredential(c)
	assert.Contains(t, key, "cred:")
	assert.NotContains(t, key, "secret")
}

func TestIdempotency(t *testing.T) {
	newRouter := func(calls *atomic.Int32) *gin.Engine {
		router := gin.New()
		router.Use(Idempotency(memory.NewResponseCache(), IdempotencyConfig{TTL: time.Minute}))
		router.POST("/v1/sessions/:session_id/panels/gallery", func(c *gin.Context) {
			n := calls.Add(1)
			if n > 1 {
				c.JSON(http.StatusConflict, gin.H{"n": n})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"n": n})
		})
		return router
	}
	postAs := func(router *gin.Engine, cred, session, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+session+"/panels/gallery", nil)
		if cred != "" {
			req.Header.Set(APIKeyHeader, cred)
		}
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	post := func(router *gin.Engine, session, key string) *httptest.ResponseRecorder {
		return postAs(router, "", session, key)
	}

	t.Run("replays first successful response", func(t *testing.T) {
		var calls atomic.Int32
		router := newRouter(&calls)

		first := post(router, "s1", "k1")
		second := post(router, "s1", "k1")

		assert.Equal(t, http.StatusAccepted, first.Code)
		assert.Equal(t, http.StatusAccepted, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("key is scoped to the session", func(t *testing.T) {
		var calls atomic.Int32
		router := newRouter(&calls)

		post(router, "s1", "k1")
		w := post(router, "s2", "k1")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("key is scoped to the credential", func(t *testing.T) {
		var calls atomic.Int32
		router := newRouter(&calls)

		first := postAs(router, "key-a", "s1", "k1")
		other := postAs(router, "key-b", "s1", "k1")
		again := postAs(router, "key-a", "s1", "k1")

		assert.Equal(t, http.StatusAccepted, first.Code)
		assert.Equal(t, http.StatusConflict, other.Code)
		assert.Empty(t, other.Header().Get(IdempotencyReplayedHeader))
		assert.Equal(t, "true", again.Header().Get(IdempotencyReplayedHeader))
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("without key every request runs", func(t *testing.T) {
		var calls atomic.Int32
		router := newRouter(&calls)

		post(router, "s1", "")
		post(router, "s1", "")
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())

	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/v1/blobs/:blob_id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/blobs/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/blobs/:blob_id", "4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}
