// Package scraper is the entry point for extracting videos from Instagram
// and Facebook post URLs.
//
// The Scraper classifies a URL, normalizes it and hands it to the
// extractor of its platform. Each extractor walks an ordered chain of
// strategies under the retry policy of the configuration.
//
// Usage:
//
//	s, err := scraper.New(config.ScraperConfig{Retries: 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	meta, err := s.GetMetadata(ctx, "https://www.instagram.com/reel/Cx1abc/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := s.Download(ctx, "https://fb.watch/abc123/", scraper.DownloadOptions{})
//	if !result.Success {
//	    log.Println(result.Error)
//	}
//
// Errors:
//
// GetMetadata and GetVideoURL return typed errors from package errors: a
// URL error for unsupported input, a network error for transport failures
// and a parse error when no strategy found a video. Download never returns
// an error; check DownloadResult.Success instead.
package scraper
