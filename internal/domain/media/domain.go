package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nanostudio/server/internal/infra/task"
	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
	"github.com/nanostudio/server/internal/utils/requestctx"
)

// TaskRunner runs registered executors in the background.
type TaskRunner interface {
	RegisterExecutor(taskType string, executor task.Executor)
	Submit(ctx context.Context, ownerID string, req *task.SubmitRequest) (*task.Task, error)
	List(ctx context.Context, ownerID string, filter *task.Filter) ([]*task.Task, error)
}

// panelFallback is the message shown when a failure has no dedicated wording.
var panelFallback = map[model.PanelKind]string{
	model.PanelStoryboard: "Failed to generate storyboard",
	model.PanelGallery:    "Failed to generate sample images",
	model.PanelStudio:     "Failed to process image",
	model.PanelVideo:      "Failed to generate video",
}

// panelJob is the task payload for one panel submission.
type panelJob struct {
	key       model.PanelKey
	snap      *model.PanelSnapshot
	requestID string
	run       func(ctx context.Context, progress func(int)) ([]model.GenerationResult, error)
}

// Domain implements the studio's panel logic on top of the adapter.
type Domain struct {
	adapter  *Adapter
	panels   outbound.PanelStorePort
	tasks    TaskRunner
	config   *Config
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// NewDomain creates a new media domain and registers its panel executors.
func NewDomain(
	adapter *Adapter,
	panels outbound.PanelStorePort,
	tasks TaskRunner,
	config *Config,
	observer Observer,
	logger *zap.Logger,
) *Domain {
	if config == nil {
		config = DefaultConfig()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Domain{
		adapter:  adapter,
		panels:   panels,
		tasks:    tasks,
		config:   config,
		observer: observer,
		logger:   logger.Named("media"),
		now:      time.Now,
	}
	for _, kind := range []model.PanelKind{model.PanelStoryboard, model.PanelGallery, model.PanelStudio, model.PanelVideo} {
		tasks.RegisterExecutor(taskType(kind), d.executePanel)
	}
	return d
}

func taskType(kind model.PanelKind) string {
	return "panel." + string(kind)
}

// --- Direct generation ---

// GenerateImage generates one image synchronously.
func (d *Domain) GenerateImage(ctx context.Context, cred model.Credential, prompt, aspectRatio string) (*model.GenerationResult, error) {
	return d.adapter.Dispatch(ctx, cred, model.GenerateImageRequest{Prompt: prompt, AspectRatio: aspectRatio}, nil)
}

// EditImage edits one image synchronously.
func (d *Domain) EditImage(ctx context.Context, cred model.Credential, prompt string, source *model.SourceImage) (*model.GenerationResult, error) {
	return d.adapter.Dispatch(ctx, cred, model.EditImageRequest{Prompt: prompt, Source: source}, nil)
}

// Blob returns a stored artifact by key.
func (d *Domain) Blob(ctx context.Context, key string) (*model.Asset, error) {
	asset, err := d.adapter.Blob(ctx, key)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrBlobNotFound
	}
	return asset, nil
}

// --- Panels ---

// SubmitStoryboard generates the three storyboard scenes for prompt.
func (d *Domain) SubmitStoryboard(ctx context.Context, cred model.Credential, session, prompt string) (*model.PanelSnapshot, error) {
	if err := checkRequest(opGenerateImage, cred, prompt); err != nil {
		return nil, err
	}
	prompts := StoryboardPrompts(strings.TrimSpace(prompt))
	return d.submit(ctx, session, model.PanelStoryboard, prompts, func(ctx context.Context, progress func(int)) ([]model.GenerationResult, error) {
		return d.runBatch(ctx, cred, prompts, progress)
	})
}

// SubmitGallery generates the fixed sample images.
func (d *Domain) SubmitGallery(ctx context.Context, cred model.Credential, session string) (*model.PanelSnapshot, error) {
	if cred.IsZero() {
		return nil, newError(KindMissingCredential, opGenerateImage, nil)
	}
	prompts := GalleryPrompts()
	return d.submit(ctx, session, model.PanelGallery, prompts, func(ctx context.Context, progress func(int)) ([]model.GenerationResult, error) {
		return d.runBatch(ctx, cred, prompts, progress)
	})
}

// SubmitStudio runs a single generate or edit request.
func (d *Domain) SubmitStudio(ctx context.Context, cred model.Credential, session string, req model.GenerationRequest) (*model.PanelSnapshot, error) {
	switch r := req.(type) {
	case model.GenerateImageRequest:
		if err := checkRequest(opGenerateImage, cred, r.Prompt); err != nil {
			return nil, err
		}
	case model.EditImageRequest:
		if err := checkRequest(opEditImage, cred, r.Prompt); err != nil {
			return nil, err
		}
		if r.Source == nil || len(r.Source.Data) == 0 {
			return nil, newError(KindMissingSourceImage, opEditImage, nil)
		}
	default:
		return nil, fmt.Errorf("studio does not accept %T", req)
	}

	return d.submit(ctx, session, model.PanelStudio, []string{req.PromptText()}, func(ctx context.Context, progress func(int)) ([]model.GenerationResult, error) {
		progress(10)
		result, err := d.adapter.Dispatch(ctx, cred, req, nil)
		if err != nil {
			return nil, err
		}
		return []model.GenerationResult{*result}, nil
	})
}

// SubmitVideo starts a video ad generation. An empty prompt uses the default ad prompt.
func (d *Domain) SubmitVideo(ctx context.Context, cred model.Credential, session, prompt string) (*model.PanelSnapshot, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = d.config.DefaultVideoPrompt
	}
	if err := checkRequest(opGenerateVideo, cred, prompt); err != nil {
		return nil, err
	}

	req := model.VideoRequest{
		Prompt:      prompt,
		Resolution:  d.config.VideoResolution,
		AspectRatio: d.config.VideoAspectRatio,
	}
	return d.submit(ctx, session, model.PanelVideo, []string{prompt}, func(ctx context.Context, progress func(int)) ([]model.GenerationResult, error) {
		result, err := d.adapter.Dispatch(ctx, cred, req, videoProgress(progress))
		if err != nil {
			return nil, err
		}
		return []model.GenerationResult{*result}, nil
	})
}

// Panel returns the current snapshot of a panel.
func (d *Domain) Panel(ctx context.Context, session string, kind model.PanelKind) (*model.PanelSnapshot, error) {
	if !kind.Valid() {
		return nil, ErrUnknownPanel
	}
	snap, err := d.panels.Get(ctx, model.PanelKey{Session: session, Panel: kind})
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return model.IdlePanel(session, kind), nil
	}
	return snap, nil
}

// ResultAsset returns the binary behind a settled panel result for download.
func (d *Domain) ResultAsset(ctx context.Context, session string, kind model.PanelKind, index int) (*model.Asset, error) {
	snap, err := d.Panel(ctx, session, kind)
	if err != nil {
		return nil, err
	}
	if snap.State != model.PanelStateSettled || index < 0 || index >= len(snap.Results) {
		return nil, ErrResultNotFound
	}

	result := snap.Results[index]
	if strings.HasPrefix(result.URI, "data:") {
		src, err := ParseDataURI(result.URI)
		if err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		return &model.Asset{Data: src.Data, MIMEType: "image/png"}, nil
	}
	if key, ok := strings.CutPrefix(result.URI, d.config.BlobURLPrefix); ok {
		return d.Blob(ctx, key)
	}
	return nil, ErrResultNotFound
}

// Tasks lists the background tasks started for a session.
func (d *Domain) Tasks(ctx context.Context, session string, limit int) ([]*task.Task, error) {
	return d.tasks.List(ctx, session, &task.Filter{Limit: limit})
}

// submit claims the panel and hands the work to the task runner.
// A claim that fails leaves the panel exactly as it was.
func (d *Domain) submit(
	ctx context.Context,
	session string,
	kind model.PanelKind,
	prompts []string,
	run func(ctx context.Context, progress func(int)) ([]model.GenerationResult, error),
) (*model.PanelSnapshot, error) {
	key := model.PanelKey{Session: session, Panel: kind}
	snap := &model.PanelSnapshot{
		Session:   session,
		Panel:     kind,
		State:     model.PanelStateInFlight,
		TaskID:    uuid.New(),
		Prompts:   prompts,
		UpdatedAt: d.now(),
	}

	ok, err := d.panels.Begin(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("claim panel: %w", err)
	}
	if !ok {
		d.observer.RecordPanelSubmission(string(kind), "busy")
		return nil, ErrPanelBusy
	}

	job := &panelJob{key: key, snap: snap, requestID: requestctx.RequestID(ctx), run: run}
	if _, err := d.tasks.Submit(ctx, session, &task.SubmitRequest{
		ID:      snap.TaskID,
		Type:    taskType(kind),
		Payload: job,
		Timeout: d.config.TaskTimeout,
		OnAbort: func(err error) { d.settle(job, nil, err) },
	}); err != nil {
		d.settle(job, nil, err)
		return nil, fmt.Errorf("submit panel task: %w", err)
	}

	d.observer.RecordPanelSubmission(string(kind), "accepted")
	d.logger.Info("panel submission accepted",
		zap.String("panel", key.String()),
		zap.String("task_id", snap.TaskID.String()),
		zap.String("request_id", job.requestID))

	out := *snap
	return &out, nil
}

// executePanel is the task executor shared by every panel kind.
// The panel is settled on every path out, including a panic in run.
func (d *Domain) executePanel(ctx context.Context, t *task.Task, onProgress func(int, map[string]any)) (err error) {
	job, ok := t.Payload.(*panelJob)
	if !ok {
		return fmt.Errorf("unexpected payload %T", t.Payload)
	}
	ctx = requestctx.WithRequestID(ctx, job.requestID)

	settled := false
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panel %s panicked: %v", job.key, r)
			if !settled {
				d.settle(job, nil, err)
			}
		}
	}()

	progress := func(p int) {
		onProgress(p, nil)
		snap := *job.snap
		snap.Progress = p
		snap.UpdatedAt = d.now()
		if err := d.panels.Update(requestctx.Detach(ctx), &snap); err != nil {
			d.logger.Debug("failed to record panel progress",
				zap.String("panel", job.key.String()),
				zap.Error(err))
		}
	}

	results, err := job.run(ctx, progress)
	settled = true
	d.settle(job, results, err)
	if err != nil {
		return err
	}

	uris := make([]string, len(results))
	for i, r := range results {
		if strings.HasPrefix(r.URI, "data:") {
			uris[i] = "inline"
		} else {
			uris[i] = r.URI
		}
	}
	onProgress(100, map[string]any{"results": uris})
	return nil
}

// settle records the outcome and releases the panel.
func (d *Domain) settle(job *panelJob, results []model.GenerationResult, err error) {
	snap := *job.snap
	snap.State = model.PanelStateSettled
	snap.UpdatedAt = d.now()
	if err != nil {
		kind, _ := KindOf(err)
		code := string(kind)
		if code == "" {
			code = "internal_error"
		}
		snap.Results = nil
		snap.Error = &model.PanelError{
			Code:    code,
			Message: UserMessage(err, panelFallback[job.key.Panel]),
		}
		d.observer.RecordPanelSubmission(string(job.key.Panel), "failed")
		d.logger.Warn("panel generation failed",
			zap.String("panel", job.key.String()),
			zap.String("request_id", job.requestID),
			zap.String("code", code),
			zap.Error(err))
	} else {
		snap.Progress = 100
		snap.Results = results
		d.observer.RecordPanelSubmission(string(job.key.Panel), "succeeded")
		d.logger.Info("panel generation settled",
			zap.String("panel", job.key.String()),
			zap.String("request_id", job.requestID),
			zap.Int("results", len(results)))
	}

	ctx, cancel := context.WithTimeout(requestctx.WithRequestID(context.Background(), job.requestID), 10*time.Second)
	defer cancel()
	if serr := d.panels.Settle(ctx, &snap); serr != nil {
		d.logger.Error("failed to settle panel",
			zap.String("panel", job.key.String()),
			zap.Error(serr))
	}
}

// runBatch generates one image per prompt and reports coarse progress.
func (d *Domain) runBatch(ctx context.Context, cred model.Credential, prompts []string, progress func(int)) ([]model.GenerationResult, error) {
	progress(10)
	uris, err := d.adapter.GenerateBatch(ctx, cred, prompts, "")
	if err != nil {
		return nil, err
	}
	results := make([]model.GenerationResult, len(uris))
	for i, uri := range uris {
		results[i] = model.GenerationResult{Kind: model.ResultKindImage, URI: uri}
	}
	return results, nil
}

// videoProgress maps poller transitions onto a 0-100 progress scale.
func videoProgress(progress func(int)) Transition {
	return func(state JobState, _ *model.VideoJob, attempt int) {
		switch state {
		case JobSubmitted:
			progress(10)
		case JobPolling:
			// 30-90 while polling
			p := 30 + attempt*5
			if p > 90 {
				p = 90
			}
			progress(p)
		case JobDone:
			progress(95)
		}
	}
}
