// Package gemini adapts the Gemini / Veo APIs to the media vendor port.
package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
)

// APIKeyHeader carries the credential on download requests.
const APIKeyHeader = "x-goog-api-key"

// StatusError is a non-200 response to an artifact download.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Config holds Gemini client settings.
type Config struct {
	BaseURL    string
	ImageModel string
	VideoModel string
	// MaxDownloadBytes caps a single video download; zero means no cap.
	MaxDownloadBytes int64
}

// DefaultConfig returns the models the studio was built against.
func DefaultConfig() *Config {
	return &Config{
		ImageModel:       "gemini-2.5-flash-image",
		VideoModel:       "veo-3.1-fast-generate-preview",
		MaxDownloadBytes: 512 << 20,
	}
}

// Client implements outbound.MediaVendorPort with the genai SDK.
// SDK clients are created per credential and reused for a while.
type Client struct {
	config  *Config
	http    *http.Client
	clients *gocache.Cache
	logger  *zap.Logger
}

// NewClient creates a new Gemini client.
func NewClient(config *Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:  config,
		http:    httpClient,
		clients: gocache.New(30*time.Minute, 10*time.Minute),
		logger:  logger.Named("gemini"),
	}
}

func (c *Client) sdk(ctx context.Context, cred model.Credential) (*genai.Client, error) {
	key := string(cred)
	if v, ok := c.clients.Get(key); ok {
		return v.(*genai.Client), nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.http,
	}
	if c.config.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.clients.SetDefault(key, client)
	return client, nil
}

// GenerateImage sends a single text part and asks for the configured aspect ratio.
func (c *Client) GenerateImage(ctx context.Context, cred model.Credential, prompt, aspectRatio string) ([]model.ContentPart, error) {
	client, err := c.sdk(ctx, cred)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	var config *genai.GenerateContentConfig
	if aspectRatio != "" {
		config = &genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{AspectRatio: aspectRatio},
		}
	}

	resp, err := client.Models.GenerateContent(ctx, c.config.ImageModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return partsFromResponse(resp), nil
}

// EditImage sends the source image followed by the instruction text.
func (c *Client) EditImage(ctx context.Context, cred model.Credential, prompt string, source *model.SourceImage) ([]model.ContentPart, error) {
	client, err := c.sdk(ctx, cred)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(source.Data, source.MediaType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, c.config.ImageModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return partsFromResponse(resp), nil
}

// SubmitVideo starts a Veo generation for one video.
func (c *Client) SubmitVideo(ctx context.Context, cred model.Credential, req model.VideoRequest) (*model.VideoJob, error) {
	client, err := c.sdk(ctx, cred)
	if err != nil {
		return nil, err
	}

	op, err := client.Models.GenerateVideos(ctx, c.config.VideoModel, req.Prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		Resolution:     req.Resolution,
		AspectRatio:    req.AspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("generate videos: %w", err)
	}
	return jobFromOperation(op), nil
}

// GetVideoJob re-fetches the long-running operation.
func (c *Client) GetVideoJob(ctx context.Context, cred model.Credential, job *model.VideoJob) (*model.VideoJob, error) {
	client, err := c.sdk(ctx, cred)
	if err != nil {
		return nil, err
	}

	op, err := client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: job.ID}, nil)
	if err != nil {
		return nil, fmt.Errorf("get videos operation: %w", err)
	}
	return jobFromOperation(op), nil
}

// Download fetches uri with the credential in the API key header.
func (c *Client) Download(ctx context.Context, cred model.Credential, uri string) (*model.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set(APIKeyHeader, string(cred))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download: %w", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))})
	}

	var body io.Reader = resp.Body
	if c.config.MaxDownloadBytes > 0 {
		body = io.LimitReader(resp.Body, c.config.MaxDownloadBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read download: %w", err)
	}
	if c.config.MaxDownloadBytes > 0 && int64(len(data)) > c.config.MaxDownloadBytes {
		return nil, fmt.Errorf("download exceeds %d bytes", c.config.MaxDownloadBytes)
	}

	c.logger.Debug("downloaded artifact",
		zap.Int("bytes", len(data)),
		zap.String("content_type", resp.Header.Get("Content-Type")))

	return &model.Asset{Data: data, MIMEType: mediaType(resp.Header.Get("Content-Type"))}, nil
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

var _ outbound.MediaVendorPort = (*Client)(nil)
