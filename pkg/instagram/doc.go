// Package instagram extracts video metadata from Instagram posts, reels,
// tv posts and stories.
//
// This package includes:
//   - Shortcode detection for the supported URL shapes
//   - A strategy for the post JSON endpoint (graphql and items payloads)
//   - JSON-LD, page state and Open Graph techniques over the post page
//   - Caption enrichment with hashtags and mentions
//
// Example usage:
//
//	client, _ := httpclient.New(httpclient.Options{UserAgent: config.DefaultUserAgent})
//	ig := instagram.New(client, config.ScraperConfig{}, logger.GetLogger())
//
//	meta, err := ig.Scrape(ctx, "https://www.instagram.com/reel/Cx1abc/")
//	if err != nil {
//	    if errors.KindOf(err) == errors.KindNotAVideo {
//	        // image post
//	    }
//	}
//
//	data, err := ig.Download(ctx, meta.Base().URL, downloader.Options{})
package instagram
