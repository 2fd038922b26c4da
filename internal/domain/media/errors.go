package media

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a generation failure.
type ErrorKind string

const (
	KindMissingCredential   ErrorKind = "missing_credential"
	KindMissingSourceImage  ErrorKind = "missing_source_image"
	KindInvalidPrompt       ErrorKind = "invalid_prompt"
	KindRemoteCallFailure   ErrorKind = "remote_call_failure"
	KindNoPayloadInResponse ErrorKind = "no_payload_in_response"
	KindJobFailure          ErrorKind = "job_failure"
)

// GenerationError is returned by every generation operation.
type GenerationError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is matches any GenerationError of the same kind.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, op string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Op: op, Err: err}
}

// Kind sentinels for errors.Is.
var (
	ErrMissingCredential   = &GenerationError{Kind: KindMissingCredential}
	ErrMissingSourceImage  = &GenerationError{Kind: KindMissingSourceImage}
	ErrInvalidPrompt       = &GenerationError{Kind: KindInvalidPrompt}
	ErrRemoteCallFailure   = &GenerationError{Kind: KindRemoteCallFailure}
	ErrNoPayloadInResponse = &GenerationError{Kind: KindNoPayloadInResponse}
	ErrJobFailure          = &GenerationError{Kind: KindJobFailure}
)

var (
	// ErrPanelBusy is returned when a panel already has a submission in flight.
	ErrPanelBusy = errors.New("panel already has a generation in flight")

	// ErrUnknownPanel is returned for a panel name that does not exist.
	ErrUnknownPanel = errors.New("unknown panel")

	// ErrResultNotFound is returned when a result index is out of range.
	ErrResultNotFound = errors.New("result not found")

	// ErrBlobNotFound is returned when a stored artifact has expired or never existed.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrPollExhausted is the cause of a JobFailure when the retry policy runs out.
	ErrPollExhausted = errors.New("video job polling exhausted")

	// ErrJobMissingURI is the cause of a JobFailure when a finished job carries no result.
	ErrJobMissingURI = errors.New("video job finished without a result uri")
)

// KindOf returns the kind of a GenerationError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return "", false
}

// UserMessage returns the message shown to end users for err.
// fallback is used for failures that have no dedicated wording.
func UserMessage(err error, fallback string) string {
	kind, ok := KindOf(err)
	if !ok {
		return fallback
	}
	switch kind {
	case KindMissingCredential:
		return "Please enter your Gemini API Key at the top of the page."
	case KindMissingSourceImage:
		return "Please upload a source image first"
	case KindInvalidPrompt:
		return "Please enter a prompt"
	case KindNoPayloadInResponse:
		var ge *GenerationError
		if errors.As(err, &ge) && ge.Op == opEditImage {
			return "Failed to edit image"
		}
		return "Failed to generate image"
	default:
		return fallback
	}
}
