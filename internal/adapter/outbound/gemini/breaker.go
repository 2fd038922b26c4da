package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
	apperrors "github.com/nanostudio/server/internal/utils/errors"
)

// BreakerConfig configures the circuit breakers around the vendor.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns default breaker settings.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// StateRecorder receives breaker state changes.
type StateRecorder interface {
	RecordBreakerState(name string, state string)
}

// BreakerVendor guards a vendor with one breaker for image calls and one for
// video calls, so a Veo outage does not block image generation.
type BreakerVendor struct {
	next   outbound.MediaVendorPort
	image  *gobreaker.CircuitBreaker[any]
	video  *gobreaker.CircuitBreaker[any]
	logger *zap.Logger
}

// NewBreakerVendor wraps next with circuit breakers. recorder may be nil.
func NewBreakerVendor(next outbound.MediaVendorPort, config *BreakerConfig, recorder StateRecorder, logger *zap.Logger) *BreakerVendor {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &BreakerVendor{next: next, logger: logger.Named("gemini-breaker")}
	v.image = gobreaker.NewCircuitBreaker[any](v.settings("gemini.image", config, recorder))
	v.video = gobreaker.NewCircuitBreaker[any](v.settings("gemini.video", config, recorder))
	return v
}

func (v *BreakerVendor) settings(name string, config *BreakerConfig, recorder StateRecorder) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || callerFault(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			v.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if recorder != nil {
				recorder.RecordBreakerState(name, to.String())
			}
		},
	}
}

// callerFault reports whether err is a 4xx rejection of this caller's
// request (bad key, bad argument, safety block). 429 still counts against
// the vendor.
func callerFault(err error) bool {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	var statusErr *StatusError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	case errors.As(err, &statusErr):
		code = statusErr.Code
	}
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var zero T
	out, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", cb.Name(), apperrors.ErrServiceUnavail, err)
		}
		return zero, err
	}
	return out.(T), nil
}

// GenerateImage implements outbound.MediaVendorPort.
func (v *BreakerVendor) GenerateImage(ctx context.Context, cred model.Credential, prompt, aspectRatio string) ([]model.ContentPart, error) {
	return execute(v.image, func() ([]model.ContentPart, error) {
		return v.next.GenerateImage(ctx, cred, prompt, aspectRatio)
	})
}

// EditImage implements outbound.MediaVendorPort.
func (v *BreakerVendor) EditImage(ctx context.Context, cred model.Credential, prompt string, source *model.SourceImage) ([]model.ContentPart, error) {
	return execute(v.image, func() ([]model.ContentPart, error) {
		return v.next.EditImage(ctx, cred, prompt, source)
	})
}

// SubmitVideo implements outbound.MediaVendorPort.
func (v *BreakerVendor) SubmitVideo(ctx context.Context, cred model.Credential, req model.VideoRequest) (*model.VideoJob, error) {
	return execute(v.video, func() (*model.VideoJob, error) {
		return v.next.SubmitVideo(ctx, cred, req)
	})
}

// GetVideoJob implements outbound.MediaVendorPort.
func (v *BreakerVendor) GetVideoJob(ctx context.Context, cred model.Credential, job *model.VideoJob) (*model.VideoJob, error) {
	return execute(v.video, func() (*model.VideoJob, error) {
		return v.next.GetVideoJob(ctx, cred, job)
	})
}

// Download implements outbound.MediaVendorPort.
func (v *BreakerVendor) Download(ctx context.Context, cred model.Credential, uri string) (*model.Asset, error) {
	return execute(v.video, func() (*model.Asset, error) {
		return v.next.Download(ctx, cred, uri)
	})
}

var _ outbound.MediaVendorPort = (*BreakerVendor)(nil)
