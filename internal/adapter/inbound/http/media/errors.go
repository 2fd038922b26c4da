package mediahttp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nanostudio/server/internal/domain/media"
	"github.com/nanostudio/server/internal/shared/logger"
	apperrors "github.com/nanostudio/server/internal/utils/errors"
)

// handleMediaError maps media domain errors onto the JSON error envelope.
// fallback is the user-facing message for failures without dedicated wording.
func handleMediaError(c *gin.Context, err error, fallback string) {
	abortError(c, toAppError(err, fallback))
}

func toAppError(err error, fallback string) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if kind, ok := media.KindOf(err); ok {
		code := strings.ToUpper(string(kind))
		msg := media.UserMessage(err, fallback)
		switch kind {
		case media.KindMissingCredential:
			return apperrors.NewAppError(code, msg, http.StatusUnauthorized, err)
		case media.KindMissingSourceImage, media.KindInvalidPrompt:
			return apperrors.NewAppError(code, msg, http.StatusBadRequest, err)
		case media.KindRemoteCallFailure:
			if apperrors.IsServiceUnavailable(err) {
				return apperrors.NewAppError("SERVICE_UNAVAILABLE", msg, http.StatusServiceUnavailable, err)
			}
			return apperrors.BadGateway(code, msg, err)
		default:
			return apperrors.BadGateway(code, msg, err)
		}
	}

	switch {
	case errors.Is(err, media.ErrPanelBusy):
		return apperrors.NewAppError("PANEL_BUSY", "A generation is already in progress for this panel", http.StatusConflict, err)
	case errors.Is(err, media.ErrUnknownPanel):
		return apperrors.NotFound("panel").WithError(err)
	case errors.Is(err, media.ErrResultNotFound):
		return apperrors.NotFound("result").WithError(err)
	case errors.Is(err, media.ErrBlobNotFound):
		return apperrors.NotFound("blob").WithError(err)
	}

	msg := fallback
	if msg == "" {
		msg = "internal server error"
	}
	return apperrors.Internal(msg, err)
}

// abortError writes err and records it on the gin context for request logging.
func abortError(c *gin.Context, err error) {
	appErr := toAppError(err, "")
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("code", appErr.Code),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}

// bindError maps a JSON binding failure to 400 or 413.
func bindError(err error) *apperrors.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.TooLarge("request body too large")
	}
	return apperrors.BadRequest("invalid request body").WithError(err)
}
