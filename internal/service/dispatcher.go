package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/huggnote/api/internal/poller"
)

const (
	TaskTypeSongPoll = "song:poll"
	QueuePolling     = "polling"
)

// Dispatcher hands a job to a poller.
type Dispatcher interface {
	Dispatch(ctx context.Context, job poller.Job) error
	CancelOwner(ctx context.Context, owner string)
	Name() string
}

// LocalDispatcher runs pollers as goroutines of this process.
type LocalDispatcher struct {
	manager *poller.Manager
}

func NewLocalDispatcher(manager *poller.Manager) *LocalDispatcher {
	return &LocalDispatcher{manager: manager}
}

func (d *LocalDispatcher) Dispatch(_ context.Context, job poller.Job) error {
	return d.manager.Start(job)
}

func (d *LocalDispatcher) CancelOwner(_ context.Context, owner string) {
	d.manager.StopOwner(owner)
}

func (d *LocalDispatcher) Name() string { return "local" }

// TaskEnqueuer is the part of *asynq.Client the queue dispatcher uses.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector is the part of *asynq.Inspector the queue dispatcher uses.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	CancelProcessing(id string) error
	ListActiveTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListPendingTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
}

const listPageSize = 100

// QueueDispatcher enqueues one asynq task per job. The task id is the job
// key, so a job can only be queued once at a time.
type QueueDispatcher struct {
	client    TaskEnqueuer
	inspector TaskInspector
	cfg       poller.Config
}

func NewQueueDispatcher(client TaskEnqueuer, inspector TaskInspector, cfg poller.Config) *QueueDispatcher {
	return &QueueDispatcher{
		client:    client,
		inspector: inspector,
		cfg:       cfg,
	}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, job poller.Job) error {
	task, err := NewSongPollTask(job)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	eta := job.ETA
	if eta <= 0 {
		eta = d.cfg.DefaultETA
	}
	budget := poller.MaxAttempts(eta, d.cfg.Interval, d.cfg.Buffer)
	timeout := time.Duration(budget+2) * d.cfg.Interval

	opts := []asynq.Option{
		asynq.Queue(QueuePolling),
		asynq.TaskID(job.Key()),
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
	}

	_, err = d.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// a finished task keeps its id until deleted
		if !d.clearStale(job.Key()) {
			return poller.ErrAlreadyPolling
		}
		_, err = d.client.EnqueueContext(ctx, task, opts...)
	}
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return poller.ErrAlreadyPolling
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Printf("[POLLING] Enqueued poll task %s (timeout %s)", job.Key(), timeout)
	return nil
}

func (d *QueueDispatcher) clearStale(taskID string) bool {
	info, err := d.inspector.GetTaskInfo(QueuePolling, taskID)
	if err != nil {
		return false
	}
	switch info.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
		return d.inspector.DeleteTask(QueuePolling, taskID) == nil
	}
	return false
}

// CancelOwner cancels the running poll tasks of owner and deletes pending ones.
func (d *QueueDispatcher) CancelOwner(_ context.Context, owner string) {
	prefix := owner + "/"

	for _, info := range d.list(d.inspector.ListActiveTasks, "active") {
		if strings.HasPrefix(info.ID, prefix) {
			if err := d.inspector.CancelProcessing(info.ID); err != nil {
				log.Printf("[POLLING] Failed to cancel poll task %s: %v", info.ID, err)
			}
		}
	}

	for _, info := range d.list(d.inspector.ListPendingTasks, "pending") {
		if strings.HasPrefix(info.ID, prefix) {
			if err := d.inspector.DeleteTask(QueuePolling, info.ID); err != nil {
				log.Printf("[POLLING] Failed to delete poll task %s: %v", info.ID, err)
			}
		}
	}
}

type listFunc func(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)

// list reads every page of one task state of the polling queue.
func (d *QueueDispatcher) list(fn listFunc, state string) []*asynq.TaskInfo {
	var all []*asynq.TaskInfo
	for page := 1; ; page++ {
		infos, err := fn(QueuePolling, asynq.Page(page), asynq.PageSize(listPageSize))
		if err != nil {
			log.Printf("[POLLING] Failed to list %s poll tasks: %v", state, err)
			return all
		}
		all = append(all, infos...)
		if len(infos) < listPageSize {
			return all
		}
	}
}

func (d *QueueDispatcher) Name() string { return "queue" }

// NewSongPollTask builds the asynq task carrying job.
func NewSongPollTask(job poller.Job) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSongPoll, data), nil
}
