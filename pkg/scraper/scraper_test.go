package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidscraper/pkg/config"
	"vidscraper/pkg/downloader"
	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
)

const igJSONLDPage = `<html><head>
<script type="application/ld+json">{"@type":"VideoObject","contentUrl":"https://cdn/x.mp4","description":"Hello #world @friend"}</script>
</head></html>`

// mockPlatformServer answers for every host the scraper talks to. The
// rewriting transport sends all traffic here and keeps the original host
// in a header.
type mockPlatformServer struct {
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
}

func newMockPlatformServer(t *testing.T) *mockPlatformServer {
	m := &mockPlatformServer{hits: make(map[string]int)}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Original-Host")
		key := host + r.URL.Path
		if r.URL.Query().Get("__a") == "1" {
			key += "?api"
		}

		m.mu.Lock()
		m.hits[key]++
		m.mu.Unlock()

		switch {
		case host == "www.instagram.com" && r.URL.Query().Get("__a") == "1":
			// logged-out API answers with a login page
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>Login</html>"))
		case host == "www.instagram.com" && r.URL.Path == "/p/ABC123/":
			_, _ = w.Write([]byte(igJSONLDPage))
		case host == "cdn" && r.URL.Path == "/x.mp4":
			_, _ = w.Write([]byte("mp4-bytes"))
		case host == "www.facebook.com" || host == "m.facebook.com":
			_, _ = w.Write([]byte(`<html><head><title>Facebook</title></head><body>Log in</body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockPlatformServer) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[key]
}

type rewriteTransport struct {
	target *neturl.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Original-Host", req.URL.Host)
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func newTestScraper(t *testing.T, m *mockPlatformServer, opts ...Option) *Scraper {
	t.Helper()
	target, err := neturl.Parse(m.server.URL)
	require.NoError(t, err)

	opts = append([]Option{
		WithLogger(logger.NewTestLogger()),
		WithTransport(rewriteTransport{target: target}),
	}, opts...)

	s, err := New(config.ScraperConfig{Retries: 1, RetryDelay: time.Millisecond}, opts...)
	require.NoError(t, err)
	return s
}

func TestNewAppliesDefaults(t *testing.T) {
	s, err := New(config.ScraperConfig{}, WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, config.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, config.DefaultRetries, cfg.Retries)
	assert.Equal(t, config.DefaultRetryDelay, cfg.RetryDelay)
}

func TestGetMetadataInstagramJSONLD(t *testing.T) {
	m := newMockPlatformServer(t)
	s := newTestScraper(t, m)

	meta, err := s.GetMetadata(context.Background(), "https://www.instagram.com/p/ABC123?igshid=xyz")
	require.NoError(t, err)

	ig, ok := meta.(*metadata.Instagram)
	require.True(t, ok)
	assert.Equal(t, platform.Instagram, ig.Platform())
	assert.Equal(t, "https://www.instagram.com/p/ABC123/", ig.URL)
	assert.Equal(t, "https://cdn/x.mp4", ig.VideoURL)
	assert.Equal(t, []string{"world"}, ig.Hashtags)
	assert.Equal(t, []string{"friend"}, ig.Mentions)
	assert.Equal(t, 1, m.count("www.instagram.com/p/ABC123/?api"))
	assert.Equal(t, 1, m.count("www.instagram.com/p/ABC123/"))
}

func TestGetMetadataFacebookWithoutVideo(t *testing.T) {
	m := newMockPlatformServer(t)
	s := newTestScraper(t, m)

	_, err := s.GetMetadata(context.Background(), "https://www.facebook.com/watch/?v=12345&foo=bar")
	require.Error(t, err)
	assert.True(t, errs.IsParse(err))
	assert.Equal(t, errs.KindMetadataExtractionFailed, errs.KindOf(err))
	assert.Equal(t, 1, m.count("www.facebook.com/watch/"))
	assert.Equal(t, 1, m.count("m.facebook.com/watch/"))
}

func TestGetMetadataUnsupported(t *testing.T) {
	s := newTestScraper(t, newMockPlatformServer(t))

	for _, url := range []string{"", "   ", "https://example.com/video/1"} {
		_, err := s.GetMetadata(context.Background(), url)
		assert.True(t, errs.IsURL(err), "url %q", url)
	}
}

func TestDownloadSuccess(t *testing.T) {
	m := newMockPlatformServer(t)
	s := newTestScraper(t, m)

	result := s.Download(context.Background(), "https://www.instagram.com/p/ABC123/", DownloadOptions{Quality: "best"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []byte("mp4-bytes"), result.Data)
	assert.Equal(t, "https://cdn/x.mp4", result.Metadata.Base().VideoURL)
	assert.Empty(t, result.Error)
	assert.Equal(t, 1, m.count("cdn/x.mp4"))
}

func TestDownloadNeverFails(t *testing.T) {
	m := newMockPlatformServer(t)
	s := newTestScraper(t, m)

	urls := []string{
		"",
		"not a url",
		"https://example.com/clip",
		"https://www.instagram.com/explore/",
		"https://www.instagram.com/p/MISSING/",
		"https://www.facebook.com/watch/?v=12345",
	}
	for _, url := range urls {
		var result *DownloadResult
		assert.NotPanics(t, func() {
			result = s.Download(context.Background(), url, DownloadOptions{})
		})
		require.NotNil(t, result, url)
		assert.False(t, result.Success, url)
		assert.NotEmpty(t, result.Error, url)
		assert.Nil(t, result.Data, url)
	}
}

type fakeExtractor struct {
	p        platform.Platform
	meta     metadata.VideoMetadata
	panicMsg string
}

func (f *fakeExtractor) Platform() platform.Platform { return f.p }

func (f *fakeExtractor) Scrape(ctx context.Context, url string) (metadata.VideoMetadata, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.meta, nil
}

func (f *fakeExtractor) Download(ctx context.Context, url string, opts downloader.Options) ([]byte, error) {
	return nil, errs.NewParseError(string(f.p), errs.KindVideoURLMissing, "no video url")
}

func TestDownloadRecoversFromPanic(t *testing.T) {
	s := newTestScraper(t, newMockPlatformServer(t),
		WithExtractor(&fakeExtractor{p: platform.Facebook, panicMsg: "boom"}))

	result := s.Download(context.Background(), "https://fb.watch/abc/", DownloadOptions{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "boom")
}

func TestDownloadKeepsMetadataOnFetchFailure(t *testing.T) {
	meta := metadata.NewFacebook("https://fb.watch/abc/")
	s := newTestScraper(t, newMockPlatformServer(t),
		WithExtractor(&fakeExtractor{p: platform.Facebook, meta: meta}))

	result := s.Download(context.Background(), "https://fb.watch/abc/", DownloadOptions{})
	assert.False(t, result.Success)
	assert.Same(t, meta, result.Metadata)
	assert.Contains(t, result.Error, "no video url")
}

func TestGetVideoURL(t *testing.T) {
	m := newMockPlatformServer(t)
	s := newTestScraper(t, m)

	url, err := s.GetVideoURL(context.Background(), "https://www.instagram.com/p/ABC123/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.mp4", url)
}

func TestGetVideoURLMissing(t *testing.T) {
	s := newTestScraper(t, newMockPlatformServer(t),
		WithExtractor(&fakeExtractor{p: platform.Facebook, meta: metadata.NewFacebook("https://fb.watch/abc/")}))

	_, err := s.GetVideoURL(context.Background(), "https://fb.watch/abc/")
	require.Error(t, err)
	assert.True(t, errs.IsExtraction(err))
}

func TestIsSupported(t *testing.T) {
	s := newTestScraper(t, newMockPlatformServer(t))

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.instagram.com/p/ABC123/", true},
		{"https://INSTAGRAM.com/reel/x", true},
		{"https://www.facebook.com/watch/?v=1", true},
		{"https://fb.com/reel/1", true},
		{"https://fb.watch/abc/", true},
		{"https://www.youtube.com/watch?v=1", false},
		{"", false},
		{"%%%", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.IsSupported(tt.url), tt.url)
	}
}

func TestConcurrentCalls(t *testing.T) {
	m := newMockPlatformServer(t)
	s := newTestScraper(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meta, err := s.GetMetadata(context.Background(), "https://www.instagram.com/p/ABC123/")
			if assert.NoError(t, err) {
				assert.Equal(t, "https://cdn/x.mp4", meta.Base().VideoURL)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, m.count("www.instagram.com/p/ABC123/"))
}

func TestPerPlatformCookieAndUserAgent(t *testing.T) {
	var mu sync.Mutex
	seen := map[string][2]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("X-Original-Host")] = [2]string{r.Header.Get("Cookie"), r.Header.Get("User-Agent")}
		mu.Unlock()
		_, _ = w.Write([]byte(igJSONLDPage))
	}))
	t.Cleanup(server.Close)

	target, err := neturl.Parse(server.URL)
	require.NoError(t, err)
	s, err := New(config.ScraperConfig{Retries: 1, RetryDelay: time.Millisecond},
		WithLogger(logger.NewNopLogger()),
		WithTransport(rewriteTransport{target: target}),
		WithCookie(platform.Instagram, "sessionid=ig"),
		WithUserAgent(platform.Instagram, "cookie-browser"),
	)
	require.NoError(t, err)

	_, err = s.GetMetadata(context.Background(), "https://www.instagram.com/p/ABC123/")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [2]string{"sessionid=ig", "cookie-browser"}, seen["www.instagram.com"])
}
