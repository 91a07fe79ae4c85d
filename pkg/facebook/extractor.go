package facebook

import (
	"context"
	"fmt"
	"strings"

	"vidscraper/pkg/config"
	"vidscraper/pkg/downloader"
	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/extractor"
	"vidscraper/pkg/htmlquery"
	"vidscraper/pkg/httpclient"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
)

const (
	desktopSource = "desktop"
	mobileSource  = "mobile"
)

// Extractor resolves Facebook video, watch, reel, share and fb.watch URLs
type Extractor struct {
	fetcher    httpclient.Fetcher
	engine     *extractor.Engine
	downloader *downloader.Downloader
	logger     logger.Logger
}

// New creates a Facebook extractor. Strategies run in order: the desktop
// page, the mobile page, then the Graph API.
func New(fetcher httpclient.Fetcher, cfg config.ScraperConfig, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNopLogger()
	}

	e := &Extractor{
		fetcher:    fetcher,
		downloader: downloader.New(fetcher, log),
		logger:     log.WithField("platform", "facebook"),
	}

	e.engine = extractor.NewEngine(platform.Facebook, cfg, log,
		extractor.PageStrategy{Technique: htmlTechnique{}, Source: desktopSource, Load: e.loadDesktop},
		extractor.PageStrategy{Technique: mobileTechnique{}, Source: mobileSource, Load: e.loadMobile},
		&graphAPIStrategy{logger: e.logger},
	)
	e.engine.Enrich = enrich
	return e
}

// Platform returns platform.Facebook
func (e *Extractor) Platform() platform.Platform {
	return platform.Facebook
}

// VideoID returns the video identifier of url
func (e *Extractor) VideoID(url string) (string, error) {
	id, ok := extractor.Identify(url, videoIDPatterns)
	if !ok {
		return "", errs.NewParseError("facebook", errs.KindUnidentifiableResource,
			fmt.Sprintf("could not extract video id from %s", url))
	}
	return id, nil
}

// Scrape extracts metadata for url. An URL without a video id fails
// before any request is made.
func (e *Extractor) Scrape(ctx context.Context, url string) (metadata.VideoMetadata, error) {
	id, err := e.VideoID(url)
	if err != nil {
		return nil, err
	}

	e.logger.DebugWithFields("Scraping video", map[string]interface{}{
		"video_id": id,
		"url":      url,
	})
	return e.engine.Run(ctx, extractor.Target{URL: url, ID: id})
}

// Download scrapes url again and fetches the video it points at
func (e *Extractor) Download(ctx context.Context, url string, opts downloader.Options) ([]byte, error) {
	opts = opts.WithDefaultHeader("Referer", BaseURL+"/")
	return extractor.FetchVideo(ctx, platform.Facebook, e.Scrape, e.downloader, url, opts)
}

func (e *Extractor) loadDesktop(ctx context.Context, t extractor.Target) (*htmlquery.Document, error) {
	return e.load(ctx, t.URL, map[string]string{
		"Accept":          "text/html,application/xhtml+xml",
		"Accept-Language": "en-US,en;q=0.9",
		"Sec-Fetch-Mode":  "navigate",
	})
}

func (e *Extractor) loadMobile(ctx context.Context, t extractor.Target) (*htmlquery.Document, error) {
	return e.load(ctx, GetMobileURL(t.URL), map[string]string{
		"Accept":     "text/html,application/xhtml+xml",
		"User-Agent": MobileUserAgent,
	})
}

func (e *Extractor) load(ctx context.Context, url string, headers map[string]string) (*htmlquery.Document, error) {
	resp, err := e.fetcher.Do(ctx, &httpclient.Request{
		URL:      url,
		Headers:  headers,
		Platform: "facebook",
	})
	if err != nil {
		return nil, err
	}
	return htmlquery.Parse(string(resp.Body))
}

// graphAPIStrategy is the slot for an authenticated Graph API lookup. It
// needs app credentials this client never holds, so it finds nothing.
type graphAPIStrategy struct {
	logger logger.Logger
}

func (s *graphAPIStrategy) Name() string { return "graph_api" }

func (s *graphAPIStrategy) Attempt(ctx context.Context, a *extractor.Attempt) extractor.Outcome {
	s.logger.DebugWithFields("Graph API lookup skipped, no app credentials", map[string]interface{}{
		"video_id": a.Target.ID,
	})
	return extractor.NotFound("graph api requires app credentials")
}

func enrich(m metadata.VideoMetadata, a *extractor.Attempt) {
	metadata.Match(m, func(*metadata.Instagram) {}, func(fb *metadata.Facebook) {
		fb.Type = mediaType(a.Target.URL)
	})
}

func mediaType(url string) metadata.MediaType {
	switch {
	case strings.Contains(url, "/reel/"):
		return metadata.TypeReel
	case strings.Contains(url, "/posts/"), strings.Contains(url, "story_fbid"):
		return metadata.TypePost
	default:
		return metadata.TypeVideo
	}
}
