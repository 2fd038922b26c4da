package media

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationError(t *testing.T) {
	cause := errors.New("connection reset")
	err := newError(KindRemoteCallFailure, opGenerateImage, cause)

	assert.Equal(t, "generate_image: remote_call_failure: connection reset", err.Error())
	assert.ErrorIs(t, err, ErrRemoteCallFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrJobFailure)

	wrapped := fmt.Errorf("panel: %w", err)
	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindRemoteCallFailure, kind)

	_, ok = KindOf(cause)
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing credential", newError(KindMissingCredential, opGenerateImage, nil), "Please enter your Gemini API Key at the top of the page."},
		{"missing source", newError(KindMissingSourceImage, opEditImage, nil), "Please upload a source image first"},
		{"invalid prompt", newError(KindInvalidPrompt, opGenerateImage, nil), "Please enter a prompt"},
		{"no payload on generate", newError(KindNoPayloadInResponse, opGenerateImage, nil), "Failed to generate image"},
		{"no payload on edit", newError(KindNoPayloadInResponse, opEditImage, nil), "Failed to edit image"},
		{"remote failure", newError(KindRemoteCallFailure, opGenerateImage, nil), "fallback"},
		{"job failure", newError(KindJobFailure, opPollVideo, nil), "fallback"},
		{"plain error", errors.New("boom"), "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, "fallback"))
		})
	}
}
