package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"
	"emojiscraper/pkg/ratelimit"
	"emojiscraper/pkg/retry"
)

// DownloadJob represents a single emoji image to fetch
type DownloadJob struct {
	Emoji models.EmojiRecord
	// Force re-downloads an image that is already on disk
	Force bool
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job      DownloadJob
	Success  bool
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// ImageFetcher downloads the raw image of an emoji
type ImageFetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// ImageRenderer converts a raw image into the stored tile
type ImageRenderer interface {
	Render(raw []byte) ([]byte, error)
}

// ImageStorage stores rendered tiles
type ImageStorage interface {
	IsDownloaded(id string) bool
	SaveImage(r io.Reader, id string) error
}

// WorkerPool manages concurrent download workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan DownloadJob
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	fetcher     ImageFetcher
	renderer    ImageRenderer
	storage     ImageStorage
	rateLimiter ratelimit.Limiter
	retry       *retry.Config
	logger      logger.Logger
}

// NewWorkerPool creates a new download worker pool. A nil retry config means
// one attempt per image.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	fetcher ImageFetcher,
	renderer ImageRenderer,
	storage ImageStorage,
	rateLimiter ratelimit.Limiter,
	retryCfg *retry.Config,
	log logger.Logger,
) *WorkerPool {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if retryCfg == nil {
		retryCfg = &retry.Config{MaxAttempts: 1}
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		fetcher:     fetcher,
		renderer:    renderer,
		storage:     storage,
		rateLimiter: rateLimiter,
		retry:       retryCfg,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	logger.LogComponentStart(wp.logger, "download pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for the workers and closes Results.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	logger.LogComponentStop(wp.logger, "download pool", "queue drained")
}

// Cancel aborts in-flight and queued jobs. Stop must still be called.
func (wp *WorkerPool) Cancel() {
	wp.cancel()
}

// Submit adds a new download job to the queue
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming download results
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		var result DownloadResult
		if err := wp.ctx.Err(); err != nil {
			result = DownloadResult{Job: job, Error: err}
		} else {
			result = wp.processJob(job, id)
		}

		// results are always delivered so the consumer sees every job
		wp.resultQueue <- result
	}
}

func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	emojiID := job.Emoji.ID
	result := DownloadResult{Job: job}

	if !job.Force && wp.storage.IsDownloaded(emojiID) {
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		logger.LogDownload(wp.logger, emojiID, job.Emoji.Server, true, nil)
		return result
	}

	data, err := retry.DoWithResult(wp.ctx, wp.retry, func() ([]byte, error) {
		if wp.rateLimiter != nil {
			if err := wp.rateLimiter.Wait(wp.ctx); err != nil {
				return nil, err
			}
		}
		return wp.fetcher.Fetch(wp.ctx, emojiID)
	})
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(wp.logger.WithField("worker_id", workerID), emojiID, job.Emoji.Server, false, err)
		return result
	}

	tile, err := wp.renderer.Render(data)
	if err != nil {
		result.Error = fmt.Errorf("render failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(wp.logger.WithField("worker_id", workerID), emojiID, job.Emoji.Server, false, err)
		return result
	}
	result.Size = len(tile)

	if err := wp.storage.SaveImage(bytes.NewReader(tile), emojiID); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(wp.logger.WithField("worker_id", workerID), emojiID, job.Emoji.Server, false, err)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	logger.LogDownload(wp.logger.WithField("worker_id", workerID), emojiID, job.Emoji.Server, false, nil)
	return result
}

// GetQueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of active workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}

// Stats summarises a batch of downloads.
type Stats struct {
	Completed int
	Skipped   int
	Failed    int
	Bytes     int
}

// DownloadAll runs jobs through a started pool, calls onResult for each
// result and stops the pool. onResult runs on a single goroutine.
func (wp *WorkerPool) DownloadAll(jobs []DownloadJob, onResult func(DownloadResult)) Stats {
	var stats Stats
	done := make(chan struct{})

	go func() {
		defer close(done)
		for res := range wp.Results() {
			switch {
			case res.Skipped:
				stats.Skipped++
			case res.Success:
				stats.Completed++
				stats.Bytes += res.Size
			default:
				stats.Failed++
			}
			if onResult != nil {
				onResult(res)
			}
		}
	}()

	for i, job := range jobs {
		if err := wp.Submit(job); err != nil {
			// shutting down, account for the rest without running them
			for _, rest := range jobs[i:] {
				wp.resultQueue <- DownloadResult{Job: rest, Error: err}
			}
			break
		}
	}

	wp.Stop()
	<-done
	return stats
}
