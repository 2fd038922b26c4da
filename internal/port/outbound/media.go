package outbound

import (
	"context"

	"github.com/nanostudio/server/internal/model"
)

// MediaVendorPort is the remote generative model service.
// Every call carries the credential explicitly.
type MediaVendorPort interface {
	// GenerateImage asks for an image from a text prompt and returns the raw response parts.
	GenerateImage(ctx context.Context, cred model.Credential, prompt, aspectRatio string) ([]model.ContentPart, error)

	// EditImage sends the source image together with the edit prompt.
	EditImage(ctx context.Context, cred model.Credential, prompt string, source *model.SourceImage) ([]model.ContentPart, error)

	// SubmitVideo starts a long-running video job.
	SubmitVideo(ctx context.Context, cred model.Credential, req model.VideoRequest) (*model.VideoJob, error)

	// GetVideoJob re-fetches the status of a video job.
	GetVideoJob(ctx context.Context, cred model.Credential, job *model.VideoJob) (*model.VideoJob, error)

	// Download fetches a result URI with the credential attached.
	Download(ctx context.Context, cred model.Credential, uri string) (*model.Asset, error)
}

// BlobStorePort stores downloaded artifacts under opaque keys.
type BlobStorePort interface {
	Put(ctx context.Context, key string, asset *model.Asset) error
	Get(ctx context.Context, key string) (*model.Asset, error)
}

// PanelStorePort keeps panel snapshots and enforces one in-flight
// submission per panel.
type PanelStorePort interface {
	// Begin atomically moves the panel to in-flight with the given snapshot.
	// It returns false, leaving the panel untouched, when a submission is already in flight.
	Begin(ctx context.Context, snap *model.PanelSnapshot) (bool, error)

	// Update replaces the snapshot of an in-flight panel (progress reports).
	Update(ctx context.Context, snap *model.PanelSnapshot) error

	// Settle stores the final snapshot and releases the in-flight claim.
	Settle(ctx context.Context, snap *model.PanelSnapshot) error

	// Get returns the snapshot, or nil when the panel was never used.
	Get(ctx context.Context, key model.PanelKey) (*model.PanelSnapshot, error)
}
