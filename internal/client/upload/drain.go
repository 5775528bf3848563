// Package upload drains pending attachment uploads with a bounded pool of
// workers. The pool is per save operation: it is created for one pass over
// the entry's placeholders and joined before the save result is reported.
package upload

import (
	"context"
	"sync"

	"github.com/DAC098/tj2/internal/client/models"
)

// DefaultWorkers bounds upload concurrency per save. Two is enough to
// overlap transfer latency without flooding the server from one client.
const DefaultWorkers = 2

// Task is one placeholder-to-payload upload. FileID is the server-assigned
// placeholder id; Key is the client correlation key the placeholder echoed.
// A task lives for a single drain pass and ends either as a confirmed
// ServerFile or back in Failed with its payload intact.
type Task struct {
	FileID  string
	EntryID string
	Key     string
	Name    string
	MIME    string
	Payload []byte
}

// UploadFunc performs one upload. It must be safe for concurrent use.
type UploadFunc func(ctx context.Context, task Task) (models.ServerFile, error)

// Result collects per-task outcomes in completion order.
type Result struct {
	Succeeded []models.ServerFile
	Failed    []Task
}

// Drain uploads tasks using a fixed pool of workers claiming from a shared
// queue. Each worker runs strictly sequentially; a task is processed exactly
// once and a failing task never aborts the pool (its payload rides back in
// Failed for the next save). Drain returns only after every worker has
// finished.
//
// Cancelling ctx stops the queue: unclaimed tasks are returned as Failed
// with payloads retained, while uploads already dispatched settle normally.
func Drain(ctx context.Context, tasks []Task, workers int, fn UploadFunc) Result {
	if len(tasks) == 0 {
		return Result{}
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	// Unbuffered on purpose: a task is either in a worker's hands or still
	// ours to mark Failed on cancellation, never parked in between.
	queue := make(chan Task)

	var (
		mu  sync.Mutex
		res Result
		wg  sync.WaitGroup
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for task := range queue {
				file, err := fn(ctx, task)
				mu.Lock()
				if err != nil {
					res.Failed = append(res.Failed, task)
				} else {
					res.Succeeded = append(res.Succeeded, file)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range tasks {
		select {
		case queue <- tasks[i]:
		case <-ctx.Done():
			mu.Lock()
			res.Failed = append(res.Failed, tasks[i:]...)
			mu.Unlock()
			break feed
		}
	}
	close(queue)
	wg.Wait()

	return res
}
