package mediahttp

import (
	"encoding/base64"
	"strings"

	"github.com/nanostudio/server/internal/domain/media"
	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/inbound"
	apperrors "github.com/nanostudio/server/internal/utils/errors"
)

const (
	modeGenerate = "generate"
	modeEdit     = "edit"
)

// decodeSource turns an uploaded image into a SourceImage. A missing or empty
// upload yields nil so the domain reports MissingSourceImage.
func decodeSource(in *inbound.SourceImageInput) (*model.SourceImage, error) {
	if in == nil || strings.TrimSpace(in.Data) == "" {
		return nil, nil
	}

	data := strings.TrimSpace(in.Data)
	if strings.HasPrefix(data, "data:") {
		src, err := media.ParseDataURI(data)
		if err != nil {
			return nil, apperrors.BadRequest("source_image must be a base64 image data URI").WithError(err)
		}
		return src, nil
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, apperrors.BadRequest("source_image.data is not valid base64").WithError(err)
	}
	return &model.SourceImage{Data: raw, MediaType: in.MIMEType}, nil
}

// studioRequest parses the studio mode into a generation request.
func studioRequest(in *inbound.StudioInput) (model.GenerationRequest, error) {
	switch strings.ToLower(strings.TrimSpace(in.Mode)) {
	case modeGenerate, "":
		return model.GenerateImageRequest{Prompt: in.Prompt, AspectRatio: in.AspectRatio}, nil
	case modeEdit:
		source, err := decodeSource(in.SourceImage)
		if err != nil {
			return nil, err
		}
		return model.EditImageRequest{Prompt: in.Prompt, Source: source}, nil
	default:
		return nil, apperrors.BadRequest(`mode must be "generate" or "edit"`)
	}
}
