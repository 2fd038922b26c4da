package media

import "time"

// Config holds media domain configuration.
type Config struct {
	// ImageAspectRatio is used for text-to-image requests that don't name one.
	ImageAspectRatio string

	// VideoResolution and VideoAspectRatio are the video job defaults.
	VideoResolution  string
	VideoAspectRatio string

	// DefaultVideoPrompt is used when a video panel submission has no prompt.
	DefaultVideoPrompt string

	// Poll bounds the video job status loop.
	Poll RetryPolicy

	// BatchInterval paces batch sub-requests; zero disables pacing.
	BatchInterval time.Duration
	BatchBurst    int

	// BlobURLPrefix is prepended to blob keys to form local result URIs.
	BlobURLPrefix string

	// TaskTimeout caps a single panel submission end to end.
	TaskTimeout time.Duration
}

// DefaultConfig returns default media configuration.
func DefaultConfig() *Config {
	return &Config{
		ImageAspectRatio:   "1:1",
		VideoResolution:    "720p",
		VideoAspectRatio:   "16:9",
		DefaultVideoPrompt: DefaultVideoPrompt,
		Poll:               DefaultRetryPolicy(),
		BatchInterval:      0,
		BatchBurst:         2,
		BlobURLPrefix:      "/v1/blobs/",
		TaskTimeout:        30 * time.Minute,
	}
}
