package batch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vidscraper/pkg/logger"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/scraper"
)

type mockDownloader struct {
	delay   time.Duration
	failMsg string
	calls   int32
}

func (m *mockDownloader) Download(ctx context.Context, url string, opts scraper.DownloadOptions) *scraper.DownloadResult {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.failMsg != "" {
		return &scraper.DownloadResult{Error: m.failMsg}
	}
	return &scraper.DownloadResult{
		Success:  true,
		Metadata: metadata.NewInstagram(url),
		Data:     []byte("mock video data"),
	}
}

func (m *mockDownloader) count() int {
	return int(atomic.LoadInt32(&m.calls))
}

type mockStorage struct {
	saved     map[string]bool
	saveError error
	mu        sync.Mutex
}

func newMockStorage() *mockStorage {
	return &mockStorage{saved: make(map[string]bool)}
}

func (m *mockStorage) IsDownloaded(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[key]
}

func (m *mockStorage) SaveVideoWithMetadata(r io.Reader, key string, meta metadata.VideoMetadata) (string, error) {
	if m.saveError != nil {
		return "", m.saveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[key] = true
	return "/videos/" + key + ".mp4", nil
}

func (m *mockStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func reelURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://www.instagram.com/reel/code%d/", i)
	}
	return urls
}

func TestWorkerPoolBasicFunctionality(t *testing.T) {
	dl := &mockDownloader{delay: 10 * time.Millisecond}
	store := newMockStorage()

	pool := NewWorkerPool(3, dl, store, scraper.DownloadOptions{}, logger.NewNopLogger())

	var seen int32
	results := pool.Run(context.Background(), reelURLs(10), func(Result) { atomic.AddInt32(&seen, 1) })

	if len(results) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(results))
	}
	if atomic.LoadInt32(&seen) != 10 {
		t.Errorf("Expected callback for every result, got %d", seen)
	}

	for i, result := range results {
		if result.Job.Index != i {
			t.Errorf("Result %d out of order: index %d", i, result.Job.Index)
		}
		if !result.Success || result.Skipped {
			t.Errorf("Expected job %d to succeed, got %+v", i, result)
		}
		want := fmt.Sprintf("/videos/instagram_code%d.mp4", i)
		if result.Path != want {
			t.Errorf("Path mismatch: got %s, want %s", result.Path, want)
		}
		if result.Size != len("mock video data") {
			t.Errorf("Unexpected size %d", result.Size)
		}
	}

	if dl.count() != 10 {
		t.Errorf("Expected 10 download calls, got %d", dl.count())
	}
	if store.count() != 10 {
		t.Errorf("Expected 10 saved videos, got %d", store.count())
	}
}

func TestWorkerPoolWithErrors(t *testing.T) {
	dl := &mockDownloader{failMsg: "metadata_extraction_failed"}
	store := newMockStorage()

	pool := NewWorkerPool(2, dl, store, scraper.DownloadOptions{}, logger.NewNopLogger())
	results := pool.Run(context.Background(), reelURLs(5), nil)

	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}
	for _, result := range results {
		if result.Success {
			t.Error("Expected all downloads to fail")
		}
		if result.Error == nil {
			t.Error("Expected error in result")
		}
	}
	if store.count() != 0 {
		t.Errorf("Expected nothing saved, got %d", store.count())
	}
}

func TestWorkerPoolSaveError(t *testing.T) {
	store := newMockStorage()
	store.saveError = fmt.Errorf("disk full")

	pool := NewWorkerPool(1, &mockDownloader{}, store, scraper.DownloadOptions{}, logger.NewNopLogger())
	results := pool.Run(context.Background(), reelURLs(1), nil)

	if results[0].Success || results[0].Error == nil {
		t.Fatalf("Expected save failure, got %+v", results[0])
	}
	if results[0].Metadata == nil {
		t.Error("Expected metadata to be kept on save failure")
	}
}

func TestWorkerPoolUnsupportedURL(t *testing.T) {
	dl := &mockDownloader{}
	pool := NewWorkerPool(1, dl, newMockStorage(), scraper.DownloadOptions{}, logger.NewNopLogger())

	results := pool.Run(context.Background(), []string{"https://vimeo.com/1"}, nil)
	if results[0].Success || results[0].Error == nil {
		t.Fatalf("Expected classification failure, got %+v", results[0])
	}
	if dl.count() != 0 {
		t.Errorf("Expected no download for unsupported url, got %d", dl.count())
	}
}

func TestWorkerPoolConcurrency(t *testing.T) {
	dl := &mockDownloader{delay: 100 * time.Millisecond}
	pool := NewWorkerPool(5, dl, newMockStorage(), scraper.DownloadOptions{}, logger.NewNopLogger())

	start := time.Now()
	results := pool.Run(context.Background(), reelURLs(10), nil)
	elapsed := time.Since(start)

	// 10 jobs of 100ms on 5 workers take about 200ms
	if elapsed > 500*time.Millisecond {
		t.Errorf("Downloads took too long: %v", elapsed)
	}
	if len(results) != 10 {
		t.Errorf("Expected 10 results, got %d", len(results))
	}
}

func TestWorkerPoolDuplicateDetection(t *testing.T) {
	dl := &mockDownloader{}
	store := newMockStorage()
	store.saved["instagram_code1"] = true
	store.saved["instagram_code3"] = true

	pool := NewWorkerPool(2, dl, store, scraper.DownloadOptions{}, logger.NewNopLogger())
	results := pool.Run(context.Background(), reelURLs(4), nil)

	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}
	if !results[1].Skipped || !results[3].Skipped {
		t.Error("Expected existing videos to be skipped")
	}
	if results[0].Skipped || results[2].Skipped {
		t.Error("Expected new videos to be downloaded")
	}
	if dl.count() != 2 {
		t.Errorf("Expected 2 downloads, got %d", dl.count())
	}
	if store.count() != 4 {
		t.Errorf("Expected 4 saved videos, got %d", store.count())
	}
}

func TestWorkerPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dl := &mockDownloader{}
	pool := NewWorkerPool(2, dl, newMockStorage(), scraper.DownloadOptions{}, logger.NewNopLogger())
	results := pool.Run(ctx, reelURLs(6), nil)

	if len(results) != 6 {
		t.Fatalf("Expected a result for every url, got %d", len(results))
	}
	for _, result := range results {
		if result.Success || result.Error == nil {
			t.Errorf("Expected cancelled job to fail, got %+v", result)
		}
	}
	if dl.count() != 0 {
		t.Errorf("Expected no downloads after cancellation, got %d", dl.count())
	}
}

func TestWorkerPoolDuplicateURLsInBatch(t *testing.T) {
	dl := &mockDownloader{delay: 50 * time.Millisecond}
	store := newMockStorage()

	urls := []string{
		"https://www.instagram.com/reel/same/",
		"https://www.instagram.com/reel/same/?igshid=abc",
	}
	pool := NewWorkerPool(2, dl, store, scraper.DownloadOptions{}, logger.NewNopLogger())
	results := pool.Run(context.Background(), urls, nil)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if dl.count() != 1 {
		t.Errorf("Expected 1 download for a repeated video, got %d", dl.count())
	}
	skipped := 0
	for _, result := range results {
		if result.Skipped {
			skipped++
		}
	}
	if skipped != 1 {
		t.Errorf("Expected exactly one skipped result, got %d", skipped)
	}
}
