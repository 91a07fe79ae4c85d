package instagram

import (
	"context"
	"encoding/json"
	"fmt"

	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/extractor"
	"vidscraper/pkg/httpclient"
	"vidscraper/pkg/logger"
)

// apiStrategy queries the post JSON endpoint directly
type apiStrategy struct {
	fetcher httpclient.Fetcher
	logger  logger.Logger
}

func (s *apiStrategy) Name() string { return "api" }

func (s *apiStrategy) Attempt(ctx context.Context, a *extractor.Attempt) extractor.Outcome {
	resp, err := s.fetcher.Do(ctx, &httpclient.Request{
		URL: GetAPIURL(a.Target.ID),
		Headers: map[string]string{
			"Accept":           "application/json",
			"X-IG-App-ID":      AppID,
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          a.Target.URL,
		},
		Platform: "instagram",
	})
	if err != nil {
		checkResponseStatus(s.logger, err)
		return extractor.Failed(err)
	}

	var body apiResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		// login walls answer with HTML
		return extractor.NotFound(fmt.Sprintf("api response is not json: %v", err))
	}

	return fromAPIResponse(a.Target, &body)
}

func fromAPIResponse(t extractor.Target, body *apiResponse) extractor.Outcome {
	if body.Graphql != nil && body.Graphql.ShortcodeMedia != nil {
		meta, ok := fromShortcodeMedia(t.URL, body.Graphql.ShortcodeMedia)
		if !ok {
			return extractor.Rejected(notAVideo(t.ID))
		}
		return extractor.FoundIfVideo(meta, "graphql media without video url")
	}

	if len(body.Items) > 0 {
		meta, ok := fromItem(t.URL, &body.Items[0])
		if !ok {
			return extractor.Rejected(notAVideo(t.ID))
		}
		return extractor.FoundIfVideo(meta, "item without video url")
	}

	return extractor.NotFound("no media in api response")
}

func notAVideo(shortcode string) error {
	return errs.NewParseError("instagram", errs.KindNotAVideo,
		fmt.Sprintf("post %s does not contain a video", shortcode))
}

// checkResponseStatus logs the statuses that usually need user action
func checkResponseStatus(log logger.Logger, err error) {
	code := errs.StatusCode(err)
	fields := map[string]interface{}{"status_code": code}
	switch code {
	case 401, 403:
		log.WarnWithFields("Authentication required, set a session cookie", fields)
	case 404:
		log.WarnWithFields("Post not found", fields)
	case 429:
		log.WarnWithFields("Rate limited by Instagram", fields)
	}
}
