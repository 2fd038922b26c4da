package inbound

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nanostudio/server/internal/infra/task"
	"github.com/nanostudio/server/internal/model"
)

// --- Request/Response Types ---

// SourceImageInput is an uploaded image, either a data URI or raw base64 with a MIME type.
type SourceImageInput struct {
	Data     string `json:"data" example:"data:image/png;base64,iVBORw0KGgo="`
	MIMEType string `json:"mime_type,omitempty" example:"image/png"`
}

// ImageGenerationInput represents a text-to-image request.
type ImageGenerationInput struct {
	Prompt      string `json:"prompt" example:"A red bicycle"`
	AspectRatio string `json:"aspect_ratio,omitempty" example:"1:1"`
}

// ImageEditInput represents an image edit request.
type ImageEditInput struct {
	Prompt      string            `json:"prompt" example:"Make the background blue"`
	SourceImage *SourceImageInput `json:"source_image"`
}

// ImageOutput is the result of a synchronous image call.
type ImageOutput struct {
	Kind model.ResultKind `json:"kind" example:"image"`
	URI  string           `json:"uri" example:"data:image/png;base64,AAAA"`
}

// StoryboardInput represents a storyboard submission.
type StoryboardInput struct {
	Prompt string `json:"prompt" example:"A sleek electric scooter"`
}

// StudioInput represents a studio submission; Mode selects generate or edit.
type StudioInput struct {
	Mode        string            `json:"mode" example:"generate" enums:"generate,edit"`
	Prompt      string            `json:"prompt"`
	AspectRatio string            `json:"aspect_ratio,omitempty"`
	SourceImage *SourceImageInput `json:"source_image,omitempty"`
}

// VideoInput represents a video ad submission. An empty prompt uses the default ad prompt.
type VideoInput struct {
	Prompt string `json:"prompt,omitempty"`
}

// --- Domain Interface ---

// MediaDomain defines the media domain service interface.
type MediaDomain interface {
	// GenerateImage generates one image synchronously.
	GenerateImage(ctx context.Context, cred model.Credential, prompt, aspectRatio string) (*model.GenerationResult, error)

	// EditImage edits one image synchronously.
	EditImage(ctx context.Context, cred model.Credential, prompt string, source *model.SourceImage) (*model.GenerationResult, error)

	// Blob returns a stored artifact.
	Blob(ctx context.Context, key string) (*model.Asset, error)

	// SubmitStoryboard starts the storyboard panel.
	SubmitStoryboard(ctx context.Context, cred model.Credential, session, prompt string) (*model.PanelSnapshot, error)

	// SubmitGallery starts the gallery panel.
	SubmitGallery(ctx context.Context, cred model.Credential, session string) (*model.PanelSnapshot, error)

	// SubmitStudio starts the studio panel with a generate or edit request.
	SubmitStudio(ctx context.Context, cred model.Credential, session string, req model.GenerationRequest) (*model.PanelSnapshot, error)

	// SubmitVideo starts the video ad panel.
	SubmitVideo(ctx context.Context, cred model.Credential, session, prompt string) (*model.PanelSnapshot, error)

	// Panel returns a panel snapshot.
	Panel(ctx context.Context, session string, kind model.PanelKind) (*model.PanelSnapshot, error)

	// ResultAsset returns the binary behind a settled result.
	ResultAsset(ctx context.Context, session string, kind model.PanelKind, index int) (*model.Asset, error)

	// Tasks lists a session's background tasks.
	Tasks(ctx context.Context, session string, limit int) ([]*task.Task, error)
}

// --- HTTP Port Interfaces ---

// MediaHttpPort defines media HTTP handlers.
type MediaHttpPort interface {
	GenerateImage(c *gin.Context)
	EditImage(c *gin.Context)
	GetBlob(c *gin.Context)
}

// PanelHttpPort defines panel HTTP handlers.
type PanelHttpPort interface {
	SubmitStoryboard(c *gin.Context)
	SubmitGallery(c *gin.Context)
	SubmitStudio(c *gin.Context)
	SubmitVideo(c *gin.Context)
	GetPanel(c *gin.Context)
	DownloadResult(c *gin.Context)
	ListTasks(c *gin.Context)
}
