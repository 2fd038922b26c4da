package media

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nanostudio/server/internal/model"
)

// GenerateBatch runs one image generation per prompt concurrently.
// Either every prompt yields a result, in prompt order, or the first
// failure is returned and all partial results are discarded.
func (a *Adapter) GenerateBatch(ctx context.Context, cred model.Credential, prompts []string, aspectRatio string) ([]string, error) {
	if cred.IsZero() {
		return nil, newError(KindMissingCredential, opGenerateImage, nil)
	}
	if len(prompts) == 0 {
		return nil, newError(KindInvalidPrompt, opGenerateImage, fmt.Errorf("empty batch"))
	}

	results := make([]string, len(prompts))
	eg, egCtx := errgroup.WithContext(ctx)

	var limiter *rate.Limiter
	if a.config.BatchInterval > 0 {
		burst := a.config.BatchBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(a.config.BatchInterval), burst)
	}

	for i, prompt := range prompts {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("batch item %d panicked: %v", i, r)
				}
			}()
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					return err
				}
			}
			uri, err := a.GenerateImage(egCtx, cred, prompt, aspectRatio)
			if err != nil {
				return err
			}
			results[i] = uri
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
