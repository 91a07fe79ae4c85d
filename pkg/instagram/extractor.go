package instagram

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

const desktopSource = "desktop"

// Extractor resolves Instagram post, reel, tv and story URLs
type Extractor struct {
	fetcher    httpclient.Fetcher
	engine     *extractor.Engine
	downloader *downloader.Downloader
	logger     logger.Logger
}

// New creates an Instagram extractor. Strategies run in order: the post
// JSON endpoint, then JSON-LD, page state and Open Graph tags read from a
// single fetch of the post page.
func New(fetcher httpclient.Fetcher, cfg config.ScraperConfig, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNopLogger()
	}

	e := &Extractor{
		fetcher:    fetcher,
		downloader: downloader.New(fetcher, log),
		logger:     log.WithField("platform", "instagram"),
	}

	e.engine = extractor.NewEngine(platform.Instagram, cfg, log,
		&apiStrategy{fetcher: fetcher, logger: e.logger},
		extractor.PageStrategy{Technique: jsonLDTechnique{}, Source: desktopSource, Load: e.loadPage},
		extractor.PageStrategy{Technique: pageStateTechnique{}, Source: desktopSource, Load: e.loadPage},
		extractor.PageStrategy{Technique: openGraphTechnique{}, Source: desktopSource, Load: e.loadPage},
	)
	e.engine.Enrich = enrich
	return e
}

// Platform returns platform.Instagram
func (e *Extractor) Platform() platform.Platform {
	return platform.Instagram
}

// Shortcode returns the post identifier of url
func (e *Extractor) Shortcode(url string) (string, error) {
	id, ok := extractor.Identify(url, shortcodePatterns)
	if !ok {
		return "", errs.NewParseError("instagram", errs.KindUnidentifiableResource,
			fmt.Sprintf("could not extract shortcode from %s", url))
	}
	return id, nil
}

// Scrape extracts metadata for url. An URL without a shortcode fails
// before any request is made.
func (e *Extractor) Scrape(ctx context.Context, url string) (metadata.VideoMetadata, error) {
	shortcode, err := e.Shortcode(url)
	if err != nil {
		return nil, err
	}

	e.logger.DebugWithFields("Scraping post", map[string]interface{}{
		"shortcode": shortcode,
		"url":       url,
	})
	return e.engine.Run(ctx, extractor.Target{URL: url, ID: shortcode})
}

// Download scrapes url again and fetches the video it points at
func (e *Extractor) Download(ctx context.Context, url string, opts downloader.Options) ([]byte, error) {
	opts = opts.WithDefaultHeader("Referer", BaseURL+"/")
	return extractor.FetchVideo(ctx, platform.Instagram, e.Scrape, e.downloader, url, opts)
}

func (e *Extractor) loadPage(ctx context.Context, t extractor.Target) (*htmlquery.Document, error) {
	resp, err := e.fetcher.Do(ctx, &httpclient.Request{
		URL: t.URL,
		Headers: map[string]string{
			"Accept": "text/html,application/xhtml+xml",
		},
		Platform: "instagram",
	})
	if err != nil {
		checkResponseStatus(e.logger, err)
		return nil, err
	}
	return htmlquery.Parse(string(resp.Body))
}

// enrich derives the fields every strategy shares: tags and mentions from
// the caption, and the media type from the URL.
func enrich(m metadata.VideoMetadata, a *extractor.Attempt) {
	metadata.Match(m, func(ig *metadata.Instagram) {
		ig.Hashtags = metadata.ExtractHashtags(ig.Caption)
		ig.Mentions = metadata.ExtractMentions(ig.Caption)
		ig.Type = mediaType(a.Target.URL, ig.Type)
	}, func(*metadata.Facebook) {})
}

func mediaType(url string, current metadata.MediaType) metadata.MediaType {
	switch {
	case strings.Contains(url, "/stories/"):
		return metadata.TypeStory
	case strings.Contains(url, "/reel/"), strings.Contains(url, "/reels/"):
		return metadata.TypeReel
	case current == "":
		return metadata.TypeVideo
	default:
		return current
	}
}
