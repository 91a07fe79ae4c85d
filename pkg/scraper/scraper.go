package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vidscraper/pkg/config"
	"vidscraper/pkg/downloader"
	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/facebook"
	"vidscraper/pkg/httpclient"
	"vidscraper/pkg/instagram"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
	"vidscraper/pkg/ratelimit"
)

// DownloadOptions tunes a single Download call
type DownloadOptions struct {
	// Quality and IncludeAudio are accepted but do not change which
	// stream is fetched yet
	Quality      string
	IncludeAudio bool

	// Timeout overrides downloader.DefaultTimeout for the binary fetch
	Timeout time.Duration
	Headers map[string]string
}

// DownloadResult is the outcome of Download. Failures are reported in
// Error, never returned.
type DownloadResult struct {
	Success  bool
	Metadata metadata.VideoMetadata
	Data     []byte
	Error    string
}

// Option configures a Scraper
type Option func(*options)

type options struct {
	logger     logger.Logger
	limiter    ratelimit.Limiter
	fetcher    httpclient.Fetcher
	transport  http.RoundTripper
	cookies    map[string]string
	agents     map[string]string
	extractors []Extractor
}

// WithLogger sets the logger; the global logger is used otherwise
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLimiter throttles every request the scraper makes
func WithLimiter(l ratelimit.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithFetcher replaces the HTTP client
func WithFetcher(f httpclient.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithTransport sets the round tripper of the default HTTP client
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithCookie sends cookie on every request to platform p, replacing the
// configured cookie for that platform
func WithCookie(p platform.Platform, cookie string) Option {
	return func(o *options) {
		if o.cookies == nil {
			o.cookies = make(map[string]string)
		}
		o.cookies[string(p)] = cookie
	}
}

// WithUserAgent sends ua on every request to platform p, typically the
// browser a stored cookie was taken from
func WithUserAgent(p platform.Platform, ua string) Option {
	return func(o *options) {
		if o.agents == nil {
			o.agents = make(map[string]string)
		}
		o.agents[string(p)] = ua
	}
}

// WithExtractor replaces the extractor registered for e.Platform()
func WithExtractor(e Extractor) Option {
	return func(o *options) { o.extractors = append(o.extractors, e) }
}

// Scraper dispatches URLs to the extractor of their platform
type Scraper struct {
	config     config.ScraperConfig
	extractors map[platform.Platform]Extractor
	logger     logger.Logger
}

// New creates a Scraper. Unset fields of cfg take their defaults.
func New(cfg config.ScraperConfig, opts ...Option) (*Scraper, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.GetLogger()
	}

	cfg = cfg.WithDefaults()

	fetcher := o.fetcher
	if fetcher == nil {
		client, err := httpclient.New(httpclient.Options{
			UserAgent:          cfg.UserAgent,
			Timeout:            cfg.Timeout,
			Proxy:              cfg.Proxy,
			Cookie:             cfg.Cookie,
			PlatformCookies:    o.cookies,
			PlatformUserAgents: o.agents,
			Limiter:            o.limiter,
			Logger:             o.logger,
			Transport:          o.transport,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create http client: %w", err)
		}
		fetcher = client
	}

	s := &Scraper{
		config: cfg,
		extractors: map[platform.Platform]Extractor{
			platform.Instagram: instagram.New(fetcher, cfg, o.logger),
			platform.Facebook:  facebook.New(fetcher, cfg, o.logger),
		},
		logger: o.logger,
	}
	for _, e := range o.extractors {
		s.extractors[e.Platform()] = e
	}
	return s, nil
}

// Config returns the effective configuration
func (s *Scraper) Config() config.ScraperConfig {
	return s.config
}

// GetMetadata classifies url and scrapes it with the matching extractor
func (s *Scraper) GetMetadata(ctx context.Context, url string) (metadata.VideoMetadata, error) {
	e, normalized, err := s.resolve(url)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	meta, err := e.Scrape(ctx, normalized)
	if err != nil {
		s.logger.WithError(err).WarnWithFields("Failed to get metadata", map[string]interface{}{
			"platform": string(e.Platform()),
			"url":      normalized,
		})
		return nil, err
	}

	s.logger.InfoWithFields("Metadata extracted", map[string]interface{}{
		"platform": string(e.Platform()),
		"url":      normalized,
		"type":     string(meta.Base().Type),
		"duration": time.Since(start),
	})
	return meta, nil
}

// Download resolves url and fetches its video. It never returns an error
// and never panics: every failure ends up in DownloadResult.Error.
func (s *Scraper) Download(ctx context.Context, url string, opts DownloadOptions) (result *DownloadResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorWithFields("Download panicked", map[string]interface{}{
				"url":   url,
				"panic": fmt.Sprint(r),
			})
			result = &DownloadResult{Error: fmt.Sprintf("unexpected failure: %v", r)}
		}
	}()

	meta, err := s.GetMetadata(ctx, url)
	if err != nil {
		return &DownloadResult{Error: err.Error()}
	}

	e, normalized, err := s.resolve(url)
	if err != nil {
		return &DownloadResult{Metadata: meta, Error: err.Error()}
	}

	data, err := e.Download(ctx, normalized, downloader.Options{
		Timeout: opts.Timeout,
		Headers: opts.Headers,
	})
	if err != nil {
		return &DownloadResult{Metadata: meta, Error: err.Error()}
	}

	return &DownloadResult{Success: true, Metadata: meta, Data: data}
}

// GetVideoURL returns the direct video URL of url
func (s *Scraper) GetVideoURL(ctx context.Context, url string) (string, error) {
	meta, err := s.GetMetadata(ctx, url)
	if err != nil {
		return "", err
	}

	if meta.Base().VideoURL == "" {
		return "", errs.NewExtractionError(string(meta.Platform()), "no video url found for "+url)
	}
	return meta.Base().VideoURL, nil
}

// IsSupported reports whether url belongs to a supported platform. It
// makes no request.
func (s *Scraper) IsSupported(url string) (supported bool) {
	defer func() {
		if recover() != nil {
			supported = false
		}
	}()

	_, err := platform.Classify(url)
	return err == nil
}

func (s *Scraper) resolve(url string) (Extractor, string, error) {
	c, err := platform.Classify(url)
	if err != nil {
		return nil, "", err
	}

	e, ok := s.extractors[c.Platform]
	if !ok {
		return nil, "", errs.NewURLError("no extractor registered for " + string(c.Platform))
	}
	return e, c.URL, nil
}
