package mediahttp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/inbound"
	apperrors "github.com/nanostudio/server/internal/utils/errors"
	"github.com/nanostudio/server/internal/utils/middleware"
)

const maxSessionIDLength = 128

// SubmitStoryboard starts the three-scene storyboard for a product prompt.
//
//	@Summary		Submit storyboard
//	@Description	Generate three storyboard scenes in parallel. Poll the panel for results.
//	@Tags			Panels
//	@Accept			json
//	@Produce		json
//	@Param			X-Goog-Api-Key	header		string					false	"Gemini API key"
//	@Param			Idempotency-Key	header		string					false	"Replay key for retries"
//	@Param			session_id		path		string					true	"Session ID"
//	@Param			request			body		inbound.StoryboardInput	true	"Storyboard request"
//	@Success		202				{object}	model.PanelSnapshot
//	@Failure		400				{object}	apperrors.ErrorResponse	"Missing prompt"
//	@Failure		401				{object}	apperrors.ErrorResponse	"Missing API key"
//	@Failure		409				{object}	apperrors.ErrorResponse	"Panel busy"
//	@Router			/sessions/{session_id}/panels/storyboard [post]
func (h *Handler) SubmitStoryboard(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	var input inbound.StoryboardInput
	if !h.bind(c, &input) {
		return
	}

	snap, err := h.domain.SubmitStoryboard(c.Request.Context(), middleware.GetCredential(c), session, input.Prompt)
	respondSubmit(c, snap, err, "Failed to generate storyboard")
}

// SubmitGallery starts the fixed sample gallery.
//
//	@Summary	Submit gallery
//	@Tags		Panels
//	@Produce	json
//	@Param		X-Goog-Api-Key	header		string	false	"Gemini API key"
//	@Param		session_id		path		string	true	"Session ID"
//	@Success	202				{object}	model.PanelSnapshot
//	@Failure	401				{object}	apperrors.ErrorResponse	"Missing API key"
//	@Failure	409				{object}	apperrors.ErrorResponse	"Panel busy"
//	@Router		/sessions/{session_id}/panels/gallery [post]
func (h *Handler) SubmitGallery(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}

	snap, err := h.domain.SubmitGallery(c.Request.Context(), middleware.GetCredential(c), session)
	respondSubmit(c, snap, err, "Failed to generate sample images")
}

// SubmitStudio starts a single generate or edit request.
//
//	@Summary		Submit studio
//	@Description	mode=generate creates an image from the prompt; mode=edit applies the prompt to source_image.
//	@Tags			Panels
//	@Accept			json
//	@Produce		json
//	@Param			X-Goog-Api-Key	header		string				false	"Gemini API key"
//	@Param			session_id		path		string				true	"Session ID"
//	@Param			request			body		inbound.StudioInput	true	"Studio request"
//	@Success		202				{object}	model.PanelSnapshot
//	@Failure		400				{object}	apperrors.ErrorResponse	"Invalid mode, prompt or source image"
//	@Failure		401				{object}	apperrors.ErrorResponse	"Missing API key"
//	@Failure		409				{object}	apperrors.ErrorResponse	"Panel busy"
//	@Failure		413				{object}	apperrors.ErrorResponse	"Source image too large"
//	@Router			/sessions/{session_id}/panels/studio [post]
func (h *Handler) SubmitStudio(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	var input inbound.StudioInput
	if !h.bind(c, &input) {
		return
	}

	req, err := studioRequest(&input)
	if err != nil {
		abortError(c, err)
		return
	}

	snap, err := h.domain.SubmitStudio(c.Request.Context(), middleware.GetCredential(c), session, req)
	respondSubmit(c, snap, err, "Failed to process image")
}

// SubmitVideo starts a video ad generation.
//
//	@Summary		Submit video ad
//	@Description	Start a long-running video job. An empty prompt uses the default ad prompt.
//	@Tags			Panels
//	@Accept			json
//	@Produce		json
//	@Param			X-Goog-Api-Key	header		string				false	"Gemini API key"
//	@Param			session_id		path		string				true	"Session ID"
//	@Param			request			body		inbound.VideoInput	false	"Video request"
//	@Success		202				{object}	model.PanelSnapshot
//	@Failure		401				{object}	apperrors.ErrorResponse	"Missing API key"
//	@Failure		409				{object}	apperrors.ErrorResponse	"Panel busy"
//	@Router			/sessions/{session_id}/panels/video [post]
func (h *Handler) SubmitVideo(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	var input inbound.VideoInput
	if !h.bind(c, &input) {
		return
	}

	snap, err := h.domain.SubmitVideo(c.Request.Context(), middleware.GetCredential(c), session, input.Prompt)
	respondSubmit(c, snap, err, "Failed to generate video")
}

// GetPanel returns the current panel snapshot.
//
//	@Summary	Get panel
//	@Tags		Panels
//	@Produce	json
//	@Param		session_id	path		string	true	"Session ID"
//	@Param		panel		path		string	true	"Panel"	Enums(storyboard, gallery, studio, video)
//	@Success	200			{object}	model.PanelSnapshot
//	@Failure	404			{object}	apperrors.ErrorResponse	"Unknown panel"
//	@Router		/sessions/{session_id}/panels/{panel} [get]
func (h *Handler) GetPanel(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}

	snap, err := h.domain.Panel(c.Request.Context(), session, model.PanelKind(c.Param("panel")))
	if err != nil {
		handleMediaError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, snap)
}

// DownloadResult downloads one settled result as an attachment.
//
//	@Summary	Download panel result
//	@Tags		Panels
//	@Produce	octet-stream
//	@Param		session_id	path	string	true	"Session ID"
//	@Param		panel		path	string	true	"Panel"
//	@Param		index		path	int		true	"Result index"
//	@Success	200			{file}	binary
//	@Failure	404			{object}	apperrors.ErrorResponse	"No such result"
//	@Router		/sessions/{session_id}/panels/{panel}/results/{index}/download [get]
func (h *Handler) DownloadResult(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortError(c, apperrors.BadRequest("index must be an integer"))
		return
	}

	panel := model.PanelKind(c.Param("panel"))
	asset, err := h.domain.ResultAsset(c.Request.Context(), session, panel, index)
	if err != nil {
		handleMediaError(c, err, "")
		return
	}

	filename := fmt.Sprintf("nanostudio-%s-%d%s", panel, index+1, extensionFor(asset.MIMEType))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, asset.MIMEType, asset.Data)
}

// ListTasks lists the background tasks of a session, newest first.
//
//	@Summary	List session tasks
//	@Tags		Panels
//	@Produce	json
//	@Param		session_id	path	string	true	"Session ID"
//	@Param		limit		query	int		false	"Max tasks"	default(20)
//	@Success	200			{array}	task.Task
//	@Router		/sessions/{session_id}/tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	tasks, err := h.domain.Tasks(c.Request.Context(), session, limit)
	if err != nil {
		handleMediaError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func respondSubmit(c *gin.Context, snap *model.PanelSnapshot, err error, fallback string) {
	if err != nil {
		handleMediaError(c, err, fallback)
		return
	}
	c.Header("Location", c.Request.URL.Path) // same path serves GET of the panel
	c.JSON(http.StatusAccepted, snap)
}

func sessionID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("session_id"))
	if id == "" || len(id) > maxSessionIDLength || strings.ContainsAny(id, "/ ") {
		abortError(c, apperrors.BadRequest("invalid session id"))
		return "", false
	}
	return id, true
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ""
	}
}
