package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/huggnote/api/internal/poller"
)

// PollWorker runs song:poll tasks with the shared poller manager
type PollWorker struct {
	manager *poller.Manager
}

// NewPollWorker creates a new poll worker
func NewPollWorker(manager *poller.Manager) *PollWorker {
	return &PollWorker{manager: manager}
}

// ProcessTask polls one song until it reaches a terminal state. Terminal
// failures are recorded on the song, not reported as task errors.
func (w *PollWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var job poller.Job
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return fmt.Errorf("failed to unmarshal poll job: %v: %w", err, asynq.SkipRetry)
	}
	if job.Owner == "" || job.SongID == "" {
		return fmt.Errorf("poll job without owner or song id: %w", asynq.SkipRetry)
	}

	log.Printf("Starting poll task for song %s", job.SongID)

	res, err := w.manager.Run(ctx, job)
	if errors.Is(err, poller.ErrAlreadyPolling) {
		log.Printf("Song %s is already polled by this worker", job.SongID)
		return nil
	}
	if err != nil {
		return err
	}

	if !res.Terminal() {
		return fmt.Errorf("poll for song %s interrupted: %w", job.SongID, res.Err)
	}

	log.Printf("Poll task for song %s finished: %s after %d attempts", job.SongID, res.Status, res.Attempts)
	return nil
}
