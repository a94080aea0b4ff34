package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
)

var (
	ErrQueueFull     = errors.New("batch queue is full")
	ErrWorkerStopped = errors.New("worker stopped")
)

// BatchJob is one queued RunBatch call.
type BatchJob struct {
	BatchID       uuid.UUID
	JobPositionID uuid.UUID
	Files         []models.SourceFile
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(job BatchJob) error
}

type worker struct {
	screening   ScreeningService
	batches     BatchStore
	publisher   ProgressPublisher
	jobQueue    chan BatchJob
	concurrency int
	retention   time.Duration
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	mu          sync.Mutex
	stopped     bool
}

func NewWorker(
	screening ScreeningService,
	batches BatchStore,
	publisher ProgressPublisher,
	concurrency int,
	queueSize int,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	return &worker{
		screening:   screening,
		batches:     batches,
		publisher:   publisher,
		jobQueue:    make(chan BatchJob, queueSize),
		concurrency: concurrency,
		retention:   time.Hour,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pruneFinishedBatches()

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker. Batches still queued are marked failed so pollers
// do not wait on them.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		w.mu.Lock()
		w.stopped = true
		close(w.stopChan)
		w.mu.Unlock()

		w.wg.Wait()
		w.failQueuedJobs()
		log.Println("✅ Worker stopped")
	})
}

func (w *worker) failQueuedJobs() {
	for {
		select {
		case job := <-w.jobQueue:
			log.Printf("⚠️  Batch %s dropped at shutdown\n", job.BatchID)
			w.batches.Fail(job.BatchID, ErrWorkerStopped.Error())
			w.publish(context.Background(), job, BatchFailed, 0, ErrWorkerStopped.Error())
		default:
			return
		}
	}
}

// EnqueueJob implements Worker. It never blocks; a full queue is reported to
// the caller.
func (w *worker) EnqueueJob(job BatchJob) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrWorkerStopped
	}

	select {
	case w.jobQueue <- job:
		log.Printf("📥 Batch %s enqueued (%d files)\n", job.BatchID, len(job.Files))
		return nil
	default:
		log.Printf("⚠️  Queue full, cannot enqueue batch %s\n", job.BatchID)
		return ErrQueueFull
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case job := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing batch %s\n", workerID, job.BatchID)
			w.runJob(ctx, job)
		}
	}
}

func (w *worker) runJob(ctx context.Context, job BatchJob) {
	w.batches.MarkProcessing(job.BatchID)
	w.publish(ctx, job, BatchProcessing, 0, "")

	results, err := w.screening.RunBatch(ctx, job.Files, job.JobPositionID, func(progress float64) {
		w.batches.UpdateProgress(job.BatchID, progress)
		w.publish(ctx, job, BatchProcessing, progress, "")
	})
	if err != nil {
		log.Printf("❌ Batch %s failed: %v\n", job.BatchID, err)
		w.batches.Fail(job.BatchID, err.Error())
		w.publish(ctx, job, BatchFailed, 0, err.Error())
		return
	}

	w.batches.Complete(job.BatchID, results)
	w.publish(ctx, job, BatchCompleted, 100, "")
	log.Printf("✅ Batch %s completed with %d results\n", job.BatchID, len(results))
}

func (w *worker) publish(ctx context.Context, job BatchJob, status BatchStatus, progress float64, message string) {
	event := BatchEvent{
		BatchID:    job.BatchID.String(),
		Status:     status,
		Progress:   progress,
		TotalFiles: len(job.Files),
		Error:      message,
		Timestamp:  time.Now().UTC(),
	}
	if err := w.publisher.Publish(ctx, event); err != nil {
		log.Printf("⚠️  Failed to publish update for batch %s: %v\n", job.BatchID, err)
	}
}

func (w *worker) pruneFinishedBatches() {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if n := w.batches.PruneFinished(w.retention); n > 0 {
				log.Printf("🧹 Pruned %d finished batches\n", n)
			}
		}
	}
}
