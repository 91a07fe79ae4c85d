// Package downloader fetches raw video bytes from a resolved media URL.
package downloader

import (
	"context"
	"fmt"
	"time"

	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/httpclient"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/platform"
)

// DefaultTimeout bounds a binary fetch independently of the metadata timeout.
const DefaultTimeout = 30 * time.Second

// Options tunes a single fetch
type Options struct {
	Timeout time.Duration
	Headers map[string]string
}

// WithDefaultHeader returns a copy of o with key set to value unless the
// caller already set it
func (o Options) WithDefaultHeader(key, value string) Options {
	headers := make(map[string]string, len(o.Headers)+1)
	for k, v := range o.Headers {
		headers[k] = v
	}
	if _, ok := headers[key]; !ok {
		headers[key] = value
	}
	o.Headers = headers
	return o
}

// Downloader is pure transport: it performs the binary request and maps
// every failure to a network error tagged with the originating platform.
type Downloader struct {
	fetcher httpclient.Fetcher
	logger  logger.Logger
}

// New creates a Downloader over fetcher
func New(fetcher httpclient.Fetcher, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Downloader{fetcher: fetcher, logger: log}
}

// Fetch downloads directURL and returns its body
func (d *Downloader) Fetch(ctx context.Context, p platform.Platform, directURL string, opts Options) ([]byte, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	headers := map[string]string{"Accept": "*/*"}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	resp, err := d.fetcher.Do(ctx, &httpclient.Request{
		URL:      directURL,
		Headers:  headers,
		Timeout:  timeout,
		Platform: string(p),
	})
	if err != nil {
		logger.LogDownload(d.logger, string(p), directURL, 0, err)
		if errs.IsNetwork(err) {
			return nil, err
		}
		return nil, errs.NewNetworkError(string(p), fmt.Sprintf("download failed: %v", err), 0, err)
	}

	logger.LogDownload(d.logger, string(p), directURL, len(resp.Body), nil)
	return resp.Body, nil
}
