// Package extractor runs an ordered chain of extraction strategies for a
// platform, under the retry executor.
package extractor

import (
	"context"
	"fmt"
	"time"

	"vidscraper/pkg/config"
	"vidscraper/pkg/downloader"
	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
	"vidscraper/pkg/retry"
)

// Enricher post-processes every Found record, whichever strategy made it
type Enricher func(m metadata.VideoMetadata, a *Attempt)

// Engine drives the strategy chain of one platform
type Engine struct {
	Platform   platform.Platform
	Strategies []Strategy
	Enrich     Enricher
	Retry      *retry.Config
	Logger     logger.Logger
}

// NewEngine builds an engine whose retry policy follows cfg
func NewEngine(p platform.Platform, cfg config.ScraperConfig, log logger.Logger, strategies ...Strategy) *Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}
	cfg = cfg.WithDefaults()
	log = log.WithField("platform", string(p))

	return &Engine{
		Platform:   p,
		Strategies: strategies,
		Retry: &retry.Config{
			MaxAttempts: cfg.Retries,
			Backoff:     retry.Linear(cfg.RetryDelay),
			Logger:      log,
		},
		Logger: log,
	}
}

// Run resolves target to metadata. Each retry attempt walks the whole
// chain again with fresh pages.
func (e *Engine) Run(ctx context.Context, target Target) (metadata.VideoMetadata, error) {
	return retry.Do(ctx, func(ctx context.Context) (metadata.VideoMetadata, error) {
		return e.runOnce(ctx, target)
	}, e.Retry)
}

func (e *Engine) runOnce(ctx context.Context, target Target) (metadata.VideoMetadata, error) {
	attempt := NewAttempt(target)
	var lastTransport error

	for _, s := range e.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		out := s.Attempt(ctx, attempt)
		fields := map[string]interface{}{
			"strategy": s.Name(),
			"id":       target.ID,
			"outcome":  out.Status.String(),
			"elapsed":  time.Since(start),
		}

		switch out.Status {
		case StatusFound:
			if e.Enrich != nil {
				e.Enrich(out.Meta, attempt)
			}
			e.Logger.DebugWithFields("strategy found video", fields)
			return out.Meta, nil
		case StatusRejected:
			fields["reason"] = out.Reason
			e.Logger.DebugWithFields("strategy rejected resource", fields)
			return nil, out.Err
		case StatusFailed:
			fields["error"] = out.Reason
			e.Logger.WarnWithFields("strategy transport failure", fields)
			lastTransport = out.Err
		default:
			fields["reason"] = out.Reason
			e.Logger.DebugWithFields("strategy found nothing", fields)
		}
	}

	parseErr := errs.NewParseError(string(e.Platform), errs.KindMetadataExtractionFailed,
		fmt.Sprintf("no strategy could extract a video for %s", target.URL))
	if lastTransport != nil {
		parseErr.Message += fmt.Sprintf(" (last transport error: %v)", lastTransport)
		parseErr.Cause = lastTransport
	}
	return nil, parseErr
}

// ScrapeFunc resolves a normalized URL to metadata
type ScrapeFunc func(ctx context.Context, url string) (metadata.VideoMetadata, error)

// FetchVideo re-resolves url through scrape and downloads the video it
// points at. Nothing is cached between calls.
func FetchVideo(ctx context.Context, p platform.Platform, scrape ScrapeFunc, d *downloader.Downloader, url string, opts downloader.Options) ([]byte, error) {
	meta, err := scrape(ctx, url)
	if err != nil {
		return nil, err
	}

	videoURL := meta.Base().VideoURL
	if videoURL == "" {
		return nil, errs.NewParseError(string(p), errs.KindVideoURLMissing, "no video url found for "+url)
	}

	return d.Fetch(ctx, p, videoURL, opts)
}
