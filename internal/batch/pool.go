package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"vidscraper/pkg/logger"
	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
	"vidscraper/pkg/scraper"
	"vidscraper/pkg/storage"
)

// Job is a single URL to download
type Job struct {
	Index int
	URL   string
}

// Result is the outcome of a Job. Skipped is set for videos already on
// disk (Success too) and for repeats of a video earlier in the same batch.
type Result struct {
	Job      Job
	Success  bool
	Skipped  bool
	Path     string
	Metadata metadata.VideoMetadata
	Error    error
	Duration time.Duration
	Size     int
}

// VideoDownloader fetches a video and its metadata
type VideoDownloader interface {
	Download(ctx context.Context, url string, opts scraper.DownloadOptions) *scraper.DownloadResult
}

// VideoStorage stores downloaded videos
type VideoStorage interface {
	IsDownloaded(key string) bool
	SaveVideoWithMetadata(r io.Reader, key string, meta metadata.VideoMetadata) (string, error)
}

// WorkerPool downloads videos concurrently. Request pacing is left to the
// rate limiter of the scraper's HTTP client.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	downloader  VideoDownloader
	storage     VideoStorage
	opts        scraper.DownloadOptions
	logger      logger.Logger

	mu      sync.Mutex
	claimed map[string]bool // storage keys taken by a job of this pool
}

// NewWorkerPool creates a new download worker pool
func NewWorkerPool(
	numWorkers int,
	downloader VideoDownloader,
	storage VideoStorage,
	opts scraper.DownloadOptions,
	log logger.Logger,
) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		downloader:  downloader,
		storage:     storage,
		opts:        opts,
		logger:      log,
		claimed:     make(map[string]bool),
	}
}

// Start launches the workers. Cancelling ctx stops them after their
// current job.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.ctx, wp.cancel = context.WithCancel(ctx)

	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for the workers to drain it and closes the
// result channel
func (wp *WorkerPool) Stop() {
	wp.logger.Debug("Stopping worker pool")

	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("Worker pool stopped")
}

// Submit adds a job to the queue
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"index": job.Index,
			"url":   job.URL,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel results are delivered on
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		var result Result
		if err := wp.ctx.Err(); err != nil {
			result = Result{Job: job, Error: err}
		} else {
			result = wp.processJob(job, id)
		}

		// Results are always delivered so Run can account for every job
		wp.resultQueue <- result
	}
}

func (wp *WorkerPool) processJob(job Job, workerID int) Result {
	start := time.Now()
	result := Result{Job: job}

	c, err := platform.Classify(job.URL)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	key := storage.Key(c.Platform, c.URL)

	if !wp.claim(key) {
		wp.logger.DebugWithFields("Duplicate video in batch", map[string]interface{}{
			"worker_id": workerID,
			"key":       key,
			"url":       job.URL,
		})
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	if wp.storage.IsDownloaded(key) {
		wp.logger.DebugWithFields("Video already downloaded", map[string]interface{}{
			"worker_id": workerID,
			"key":       key,
		})
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	dl := wp.downloader.Download(wp.ctx, job.URL, wp.opts)
	result.Metadata = dl.Metadata
	if !dl.Success {
		result.Error = fmt.Errorf("download failed: %s", dl.Error)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to download video", map[string]interface{}{
			"worker_id": workerID,
			"url":       job.URL,
			"error":     dl.Error,
			"duration":  result.Duration,
		})
		return result
	}

	result.Size = len(dl.Data)

	path, err := wp.storage.SaveVideoWithMetadata(bytes.NewReader(dl.Data), key, dl.Metadata)
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to save video", map[string]interface{}{
			"worker_id": workerID,
			"key":       key,
			"error":     err.Error(),
			"size":      result.Size,
		})
		return result
	}

	result.Success = true
	result.Path = path
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker completed job successfully", map[string]interface{}{
		"worker_id": workerID,
		"key":       key,
		"size":      result.Size,
		"duration":  result.Duration,
	})

	return result
}

// claim reports whether key was not yet taken by another job
func (wp *WorkerPool) claim(key string) bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.claimed[key] {
		return false
	}
	wp.claimed[key] = true
	return true
}

// Run downloads urls and returns one result per url in input order.
// onResult, when set, is called as results arrive.
func (wp *WorkerPool) Run(ctx context.Context, urls []string, onResult func(Result)) []Result {
	wp.Start(ctx)

	go func() {
		defer wp.Stop()
		for i, url := range urls {
			job := Job{Index: i, URL: url}
			if err := wp.Submit(job); err != nil {
				wp.resultQueue <- Result{Job: job, Error: err}
			}
		}
	}()

	results := make([]Result, 0, len(urls))
	for result := range wp.Results() {
		if onResult != nil {
			onResult(result)
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Job.Index < results[j].Job.Index })
	return results
}
