package model

import "strings"

// Credential is the opaque API key presented to the remote model service.
type Credential string

// IsZero reports whether no credential was supplied.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(string(c)) == ""
}

// String masks the credential so it never ends up in logs verbatim.
func (c Credential) String() string {
	if len(c) <= 4 {
		return "****"
	}
	return "****" + string(c[len(c)-4:])
}

// RequestKind identifies a generation request variant.
type RequestKind string

const (
	RequestKindGenerate RequestKind = "generate"
	RequestKindEdit     RequestKind = "edit"
	RequestKindVideo    RequestKind = "video"
)

// ResultKind identifies what a generation produced.
type ResultKind string

const (
	ResultKindImage ResultKind = "image"
	ResultKindVideo ResultKind = "video"
)

// SourceImage is a user-supplied image used as the base for an edit.
type SourceImage struct {
	Data      []byte `json:"-"`
	MediaType string `json:"media_type"`
}

// IsImage reports whether the media type is an image/* type.
func (s *SourceImage) IsImage() bool {
	return s != nil && strings.HasPrefix(strings.ToLower(s.MediaType), "image/")
}

// GenerationRequest is a sealed union of the three request variants.
// Requests are immutable once submitted.
type GenerationRequest interface {
	Kind() RequestKind
	PromptText() string
	isGenerationRequest()
}

// GenerateImageRequest asks for a new image from text.
type GenerateImageRequest struct {
	Prompt      string
	AspectRatio string
}

func (GenerateImageRequest) Kind() RequestKind { return RequestKindGenerate }
func (r GenerateImageRequest) PromptText() string { return r.Prompt }
func (GenerateImageRequest) isGenerationRequest() {}

// EditImageRequest asks for an edited version of Source.
type EditImageRequest struct {
	Prompt string
	Source *SourceImage
}

func (EditImageRequest) Kind() RequestKind { return RequestKindEdit }
func (r EditImageRequest) PromptText() string { return r.Prompt }
func (EditImageRequest) isGenerationRequest() {}

// VideoRequest asks for a video clip from text.
type VideoRequest struct {
	Prompt      string
	Resolution  string
	AspectRatio string
}

func (VideoRequest) Kind() RequestKind { return RequestKindVideo }
func (r VideoRequest) PromptText() string { return r.Prompt }
func (VideoRequest) isGenerationRequest() {}

// GenerationResult is the artifact produced by one request.
type GenerationResult struct {
	Kind ResultKind `json:"kind"`
	URI  string     `json:"uri"`
}

// InlineData is a binary payload carried inside a response part.
type InlineData struct {
	Data     []byte
	MIMEType string
}

// ContentPart is one part of a remote model response.
type ContentPart struct {
	Text       string
	InlineData *InlineData
}

// VideoJob is a handle to a long-running remote video generation.
type VideoJob struct {
	ID        string `json:"id"`
	Done      bool   `json:"done"`
	ResultURI string `json:"result_uri,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Asset is a downloaded binary artifact.
type Asset struct {
	Data     []byte
	MIMEType string
}
