package media

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
)

// --- Mock implementations ---

type MockVendor struct {
	mock.Mock
}

func (m *MockVendor) GenerateImage(ctx context.Context, cred model.Credential, prompt, aspectRatio string) ([]model.ContentPart, error) {
	args := m.Called(ctx, cred, prompt, aspectRatio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentPart), args.Error(1)
}

func (m *MockVendor) EditImage(ctx context.Context, cred model.Credential, prompt string, source *model.SourceImage) ([]model.ContentPart, error) {
	args := m.Called(ctx, cred, prompt, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentPart), args.Error(1)
}

func (m *MockVendor) SubmitVideo(ctx context.Context, cred model.Credential, req model.VideoRequest) (*model.VideoJob, error) {
	args := m.Called(ctx, cred, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoJob), args.Error(1)
}

func (m *MockVendor) GetVideoJob(ctx context.Context, cred model.Credential, job *model.VideoJob) (*model.VideoJob, error) {
	args := m.Called(ctx, cred, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoJob), args.Error(1)
}

func (m *MockVendor) Download(ctx context.Context, cred model.Credential, uri string) (*model.Asset, error) {
	args := m.Called(ctx, cred, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

var _ outbound.MediaVendorPort = (*MockVendor)(nil)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key string, asset *model.Asset) error {
	args := m.Called(ctx, key, asset)
	return args.Error(0)
}

func (m *MockBlobStore) Get(ctx context.Context, key string) (*model.Asset, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

var _ outbound.BlobStorePort = (*MockBlobStore)(nil)

// recordingObserver keeps every observation for assertions.
type recordingObserver struct {
	mu          sync.Mutex
	generations []string
	polls       []string
	panels      []string
}

func (o *recordingObserver) RecordGeneration(operation, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generations = append(o.generations, operation+":"+status)
}

func (o *recordingObserver) RecordPollAttempt(state string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls = append(o.polls, state)
}

func (o *recordingObserver) RecordPanelSubmission(panel, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.panels = append(o.panels, panel+":"+outcome)
}

func (o *recordingObserver) panelOutcomes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.panels...)
}

// fakeClock drives the poller without real waiting.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	return nil
}

func imagePart(data string) []model.ContentPart {
	return []model.ContentPart{{InlineData: &model.InlineData{Data: []byte(data), MIMEType: "image/png"}}}
}
