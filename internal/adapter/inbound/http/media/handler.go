package mediahttp

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nanostudio/server/internal/port/inbound"
	"github.com/nanostudio/server/internal/utils/middleware"
)

// Config holds handler limits.
type Config struct {
	// MaxUploadBytes caps JSON request bodies carrying source images.
	MaxUploadBytes int64
}

// DefaultConfig returns the default handler configuration.
func DefaultConfig() Config {
	return Config{MaxUploadBytes: 20 << 20}
}

// Handler handles media and panel HTTP requests.
type Handler struct {
	domain inbound.MediaDomain
	config Config
}

// NewHandler creates a new media handler.
func NewHandler(domain inbound.MediaDomain, config Config) *Handler {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	return &Handler{domain: domain, config: config}
}

// RegisterRoutes registers media routes. generate wraps every route that
// calls the remote model; submit additionally wraps panel submissions.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, generate, submit []gin.HandlerFunc) {
	images := r.Group("/images", generate...)
	{
		images.POST("/generations", h.GenerateImage)
		images.POST("/edits", h.EditImage)
	}

	r.GET("/blobs/:blob_id", h.GetBlob)

	sessions := r.Group("/sessions/:session_id")
	{
		panels := sessions.Group("/panels")
		submits := panels.Group("", append(append([]gin.HandlerFunc{}, generate...), submit...)...)
		{
			submits.POST("/storyboard", h.SubmitStoryboard)
			submits.POST("/gallery", h.SubmitGallery)
			submits.POST("/studio", h.SubmitStudio)
			submits.POST("/video", h.SubmitVideo)
		}
		panels.GET("/:panel", h.GetPanel)
		panels.GET("/:panel/results/:index/download", h.DownloadResult)

		sessions.GET("/tasks", h.ListTasks)
	}
}

// GenerateImage handles text-to-image requests.
//
//	@Summary		Generate image
//	@Description	Generate one image from a text prompt and return it as a data URI
//	@Tags			Images
//	@Accept			json
//	@Produce		json
//	@Param			X-Goog-Api-Key	header		string							false	"Gemini API key"
//	@Param			request			body		inbound.ImageGenerationInput	true	"Generation request"
//	@Success		200				{object}	inbound.ImageOutput
//	@Failure		400				{object}	apperrors.ErrorResponse	"Invalid request"
//	@Failure		401				{object}	apperrors.ErrorResponse	"Missing API key"
//	@Failure		502				{object}	apperrors.ErrorResponse	"Remote model failure"
//	@Failure		503				{object}	apperrors.ErrorResponse	"Remote model unavailable"
//	@Router			/images/generations [post]
func (h *Handler) GenerateImage(c *gin.Context) {
	var input inbound.ImageGenerationInput
	if !h.bind(c, &input) {
		return
	}

	result, err := h.domain.GenerateImage(c.Request.Context(), middleware.GetCredential(c), input.Prompt, input.AspectRatio)
	if err != nil {
		handleMediaError(c, err, "Failed to generate image")
		return
	}

	c.JSON(http.StatusOK, inbound.ImageOutput{Kind: result.Kind, URI: result.URI})
}

// EditImage handles image edit requests.
//
//	@Summary		Edit image
//	@Description	Apply a text instruction to a source image and return the result as a data URI
//	@Tags			Images
//	@Accept			json
//	@Produce		json
//	@Param			X-Goog-Api-Key	header		string					false	"Gemini API key"
//	@Param			request			body		inbound.ImageEditInput	true	"Edit request"
//	@Success		200				{object}	inbound.ImageOutput
//	@Failure		400				{object}	apperrors.ErrorResponse	"Invalid request or missing source image"
//	@Failure		401				{object}	apperrors.ErrorResponse	"Missing API key"
//	@Failure		413				{object}	apperrors.ErrorResponse	"Source image too large"
//	@Failure		502				{object}	apperrors.ErrorResponse	"Remote model failure"
//	@Router			/images/edits [post]
func (h *Handler) EditImage(c *gin.Context) {
	var input inbound.ImageEditInput
	if !h.bind(c, &input) {
		return
	}

	source, err := decodeSource(input.SourceImage)
	if err != nil {
		abortError(c, err)
		return
	}

	result, err := h.domain.EditImage(c.Request.Context(), middleware.GetCredential(c), input.Prompt, source)
	if err != nil {
		handleMediaError(c, err, "Failed to edit image")
		return
	}

	c.JSON(http.StatusOK, inbound.ImageOutput{Kind: result.Kind, URI: result.URI})
}

// GetBlob serves a stored artifact such as a downloaded video clip.
//
//	@Summary	Get blob
//	@Tags		Blobs
//	@Produce	octet-stream
//	@Param		blob_id	path	string	true	"Blob ID"
//	@Success	200		{file}	binary
//	@Failure	404		{object}	apperrors.ErrorResponse	"Blob not found or expired"
//	@Router		/blobs/{blob_id} [get]
func (h *Handler) GetBlob(c *gin.Context) {
	asset, err := h.domain.Blob(c.Request.Context(), c.Param("blob_id"))
	if err != nil {
		handleMediaError(c, err, "")
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, asset.MIMEType, asset.Data)
}

// bind decodes an optional JSON body under the upload limit.
// An empty body leaves v at its zero value.
func (h *Handler) bind(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes)
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		abortError(c, bindError(err))
		return false
	}
	return true
}

// Compile-time interface checks
var (
	_ inbound.MediaHttpPort = (*Handler)(nil)
	_ inbound.PanelHttpPort = (*Handler)(nil)
)
