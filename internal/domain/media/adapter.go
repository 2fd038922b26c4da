package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
	"github.com/nanostudio/server/internal/utils/requestctx"
)

const (
	opGenerateImage = "generate_image"
	opEditImage     = "edit_image"
	opGenerateVideo = "generate_video"
	opPollVideo     = "poll_video"
	opDownloadVideo = "download_video"
)

// imageDataURIPrefix is used for every image result regardless of the
// payload's reported MIME type.
const imageDataURIPrefix = "data:image/png;base64,"

var dataURIPattern = regexp.MustCompile(`^data:(image/[a-zA-Z+.-]+);base64,(.+)$`)

// Adapter builds remote model calls and extracts their artifacts.
type Adapter struct {
	vendor   outbound.MediaVendorPort
	blobs    outbound.BlobStorePort
	poller   *Poller
	config   *Config
	observer Observer
	logger   *zap.Logger
}

// NewAdapter creates a new request/response adapter.
func NewAdapter(
	vendor outbound.MediaVendorPort,
	blobs outbound.BlobStorePort,
	config *Config,
	observer Observer,
	logger *zap.Logger,
) *Adapter {
	if config == nil {
		config = DefaultConfig()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("media-adapter")
	return &Adapter{
		vendor:   vendor,
		blobs:    blobs,
		poller:   NewPoller(vendor, config.Poll, observer, logger),
		config:   config,
		observer: observer,
		logger:   logger,
	}
}

// GenerateImage turns a text prompt into an image data URI.
func (a *Adapter) GenerateImage(ctx context.Context, cred model.Credential, prompt, aspectRatio string) (uri string, err error) {
	if err := checkRequest(opGenerateImage, cred, prompt); err != nil {
		return "", err
	}
	if aspectRatio == "" {
		aspectRatio = a.config.ImageAspectRatio
	}

	start := time.Now()
	defer func() { a.observer.RecordGeneration(opGenerateImage, statusOf(err), time.Since(start)) }()

	parts, err := a.vendor.GenerateImage(ctx, cred, prompt, aspectRatio)
	if err != nil {
		return "", newError(KindRemoteCallFailure, opGenerateImage, err)
	}
	return extractImage(opGenerateImage, parts)
}

// EditImage applies a text instruction to a source image and returns the result as a data URI.
func (a *Adapter) EditImage(ctx context.Context, cred model.Credential, prompt string, source *model.SourceImage) (uri string, err error) {
	if err := checkRequest(opEditImage, cred, prompt); err != nil {
		return "", err
	}
	if source == nil || len(source.Data) == 0 {
		return "", newError(KindMissingSourceImage, opEditImage, nil)
	}
	if !source.IsImage() {
		return "", newError(KindMissingSourceImage, opEditImage, fmt.Errorf("unsupported media type %q", source.MediaType))
	}

	start := time.Now()
	defer func() { a.observer.RecordGeneration(opEditImage, statusOf(err), time.Since(start)) }()

	parts, err := a.vendor.EditImage(ctx, cred, prompt, source)
	if err != nil {
		return "", newError(KindRemoteCallFailure, opEditImage, err)
	}
	return extractImage(opEditImage, parts)
}

// GenerateVideo submits a video job, waits for it and stores the downloaded
// clip. The returned URI points at the local blob store.
func (a *Adapter) GenerateVideo(ctx context.Context, cred model.Credential, req model.VideoRequest, onTransition Transition) (uri string, err error) {
	if err := checkRequest(opGenerateVideo, cred, req.Prompt); err != nil {
		return "", err
	}
	if req.Resolution == "" {
		req.Resolution = a.config.VideoResolution
	}
	if req.AspectRatio == "" {
		req.AspectRatio = a.config.VideoAspectRatio
	}

	start := time.Now()
	defer func() { a.observer.RecordGeneration(opGenerateVideo, statusOf(err), time.Since(start)) }()

	job, err := a.vendor.SubmitVideo(ctx, cred, req)
	if err != nil {
		return "", newError(KindRemoteCallFailure, opGenerateVideo, err)
	}
	if job == nil {
		return "", newError(KindRemoteCallFailure, opGenerateVideo, fmt.Errorf("empty submit response"))
	}

	a.logger.Info("video job submitted",
		zap.String("job_id", job.ID),
		zap.String("request_id", requestctx.RequestID(ctx)),
		zap.String("resolution", req.Resolution),
		zap.String("aspect_ratio", req.AspectRatio))

	job, err = a.poller.Wait(ctx, cred, job, onTransition)
	if err != nil {
		return "", err
	}

	asset, err := a.vendor.Download(ctx, cred, job.ResultURI)
	if err != nil {
		return "", newError(KindRemoteCallFailure, opDownloadVideo, err)
	}
	if asset == nil || len(asset.Data) == 0 {
		return "", newError(KindRemoteCallFailure, opDownloadVideo, fmt.Errorf("empty video body"))
	}
	if asset.MIMEType == "" {
		asset.MIMEType = "video/mp4"
	}

	key := uuid.NewString()
	if err := a.blobs.Put(ctx, key, asset); err != nil {
		return "", fmt.Errorf("store video: %w", err)
	}

	a.logger.Info("video stored",
		zap.String("job_id", job.ID),
		zap.String("request_id", requestctx.RequestID(ctx)),
		zap.String("blob_id", key),
		zap.Int("bytes", len(asset.Data)))

	return a.config.BlobURLPrefix + key, nil
}

// Dispatch routes a generation request to the matching operation.
func (a *Adapter) Dispatch(ctx context.Context, cred model.Credential, req model.GenerationRequest, onTransition Transition) (*model.GenerationResult, error) {
	switch r := req.(type) {
	case model.GenerateImageRequest:
		uri, err := a.GenerateImage(ctx, cred, r.Prompt, r.AspectRatio)
		if err != nil {
			return nil, err
		}
		return &model.GenerationResult{Kind: model.ResultKindImage, URI: uri}, nil
	case model.EditImageRequest:
		uri, err := a.EditImage(ctx, cred, r.Prompt, r.Source)
		if err != nil {
			return nil, err
		}
		return &model.GenerationResult{Kind: model.ResultKindImage, URI: uri}, nil
	case model.VideoRequest:
		uri, err := a.GenerateVideo(ctx, cred, r, onTransition)
		if err != nil {
			return nil, err
		}
		return &model.GenerationResult{Kind: model.ResultKindVideo, URI: uri}, nil
	case *model.GenerateImageRequest:
		return a.Dispatch(ctx, cred, *r, onTransition)
	case *model.EditImageRequest:
		return a.Dispatch(ctx, cred, *r, onTransition)
	case *model.VideoRequest:
		return a.Dispatch(ctx, cred, *r, onTransition)
	default:
		return nil, fmt.Errorf("unsupported generation request %T", req)
	}
}

// Blob returns a stored artifact.
func (a *Adapter) Blob(ctx context.Context, key string) (*model.Asset, error) {
	return a.blobs.Get(ctx, key)
}

func checkRequest(op string, cred model.Credential, prompt string) error {
	if cred.IsZero() {
		return newError(KindMissingCredential, op, nil)
	}
	if strings.TrimSpace(prompt) == "" {
		return newError(KindInvalidPrompt, op, nil)
	}
	return nil
}

// extractImage returns the first inline payload as a PNG data URI.
func extractImage(op string, parts []model.ContentPart) (string, error) {
	for _, part := range parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return imageDataURIPrefix + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
	}
	return "", newError(KindNoPayloadInResponse, op, nil)
}

// ParseDataURI decodes an image data URI into a source image.
func ParseDataURI(uri string) (*model.SourceImage, error) {
	m := dataURIPattern.FindStringSubmatch(strings.TrimSpace(uri))
	if m == nil {
		return nil, fmt.Errorf("not an image data uri")
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return &model.SourceImage{Data: data, MediaType: m[1]}, nil
}
