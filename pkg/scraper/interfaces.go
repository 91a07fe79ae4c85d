package scraper

import (
	"context"

	"vidscraper/pkg/downloader"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
)

// Extractor defines the operations a platform extractor provides
type Extractor interface {
	Platform() platform.Platform
	Scrape(ctx context.Context, url string) (metadata.VideoMetadata, error)
	Download(ctx context.Context, url string, opts downloader.Options) ([]byte, error)
}
