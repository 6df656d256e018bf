// Package poller drives one external generation job from submission to a
// terminal outcome by querying the status endpoint on a fixed interval.
package poller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/model"
)

var (
	ErrPollingTimeout   = errors.New("polling attempt budget exhausted")
	ErrSchemaMismatch   = errors.New("completed conversion has no recognised audio url")
	ErrGenerationFailed = errors.New("generation failed")
)

// StatusChecker queries the external status endpoint.
type StatusChecker interface {
	GetConversion(ctx context.Context, id, idType string) (*client.StatusResponse, error)
}

// Updater applies a patch to one song. applied is false when the song does
// not exist or is already terminal.
type Updater interface {
	UpdateSong(ctx context.Context, owner, songID string, patch model.SongPatch) (applied bool, err error)
}

// Config holds the polling parameters.
type Config struct {
	Interval     time.Duration
	Buffer       int
	DefaultETA   int
	DefaultCover string
}

// DefaultConfig matches the interactive dashboard.
func DefaultConfig() Config {
	return Config{
		Interval:     10 * time.Second,
		Buffer:       10,
		DefaultETA:   120,
		DefaultCover: "assets/img/hero-bg.jpg",
	}
}

// MaxAttempts is the attempt budget: ticks covering twice the estimate, plus
// a fixed buffer.
func MaxAttempts(eta int, interval time.Duration, buffer int) int {
	secs := interval.Seconds()
	if secs <= 0 {
		secs = 1
	}
	if eta < 0 {
		eta = 0
	}
	return int(float64(2*eta)/secs) + buffer
}

// Job identifies the song to poll and carries its immutable handle.
type Job struct {
	Owner  string       `json:"owner"`
	SongID string       `json:"songId"`
	Handle model.Handle `json:"handle"`
	ETA    int          `json:"eta"`
}

// Key returns the registry key of the job.
func (j Job) Key() string {
	return j.Owner + "/" + j.SongID
}

// Result reports how a poll ended.
type Result struct {
	Status          model.SongStatus
	Attempts        int
	TransientErrors int
	AudioURL        string
	CoverImage      string
	Err             error
}

// Terminal reports whether the poll reached a terminal state.
func (r Result) Terminal() bool {
	return r.Status.IsTerminal()
}

// Poller is the state machine for a single job. It is not restartable.
type Poller struct {
	job         Job
	checker     StatusChecker
	updater     Updater
	cfg         Config
	maxAttempts int

	mu     sync.Mutex
	result Result
	done   bool
}

// New creates a poller for job.
func New(job Job, checker StatusChecker, updater Updater, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	eta := job.ETA
	if eta <= 0 {
		eta = cfg.DefaultETA
	}
	return &Poller{
		job:         job,
		checker:     checker,
		updater:     updater,
		cfg:         cfg,
		maxAttempts: MaxAttempts(eta, cfg.Interval, cfg.Buffer),
		result:      Result{Status: model.SongStatusProcessing},
	}
}

// MaxAttempts returns the attempt budget of this poller.
func (p *Poller) MaxAttempts() int {
	return p.maxAttempts
}

// Result returns the current outcome.
func (p *Poller) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Done reports whether a terminal transition happened.
func (p *Poller) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Run ticks until a terminal state is reached or ctx is cancelled. The
// ticker is always stopped on return.
func (p *Poller) Run(ctx context.Context, clock Clock) Result {
	if clock == nil {
		clock = RealClock()
	}

	id, idType := p.job.Handle.StatusQuery()
	log.Printf("[POLLING] Starting poll for song %s (%s=%s, ETA: %ds, budget: %d attempts every %s)",
		p.job.SongID, idType, id, p.job.ETA, p.maxAttempts, p.cfg.Interval)

	ticker := clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[POLLING] Poll for song %s cancelled: %v", p.job.SongID, ctx.Err())
			p.mu.Lock()
			if !p.done {
				p.result.Err = ctx.Err()
			}
			p.mu.Unlock()
			return p.Result()
		case <-ticker.C():
			if p.Tick(ctx) {
				return p.Result()
			}
		}
	}
}

// Tick performs one scheduled check and reports whether polling is over.
func (p *Poller) Tick(ctx context.Context) bool {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return true
	}
	p.result.Attempts++
	attempt := p.result.Attempts
	p.mu.Unlock()

	if attempt > p.maxAttempts {
		log.Printf("[POLLING] Max attempts (%d) reached for song %s. Stopping poll.", p.maxAttempts, p.job.SongID)
		return p.finish(ctx, model.StatusPatch(model.SongStatusFailedTimeout), ErrPollingTimeout)
	}

	id, idType := p.job.Handle.StatusQuery()
	resp, err := p.checker.GetConversion(ctx, id, idType)
	if err != nil {
		p.transient(attempt, err.Error())
		return false
	}
	if resp == nil || !resp.Success || resp.Conversion == nil {
		p.transient(attempt, "response without conversion")
		return false
	}

	conv := resp.Conversion
	status := conv.Status()
	log.Printf("[POLLING] Status check (%d/%d) for song %s: %s", attempt, p.maxAttempts, p.job.SongID, status)

	switch status {
	case client.ConversionStatusCompleted:
		audio := conv.AudioURL()
		if !audio.Found {
			log.Printf("[POLLING] CRITICAL: Audio URL not found in response keys for song %s: %v", p.job.SongID, conv.Keys())
			return p.finish(ctx, model.StatusPatch(model.SongStatusFailedNoAudio), ErrSchemaMismatch)
		}
		cover := conv.CoverImage().Or(p.cfg.DefaultCover)
		log.Printf("[POLLING] Generation COMPLETED for song %s (audio from %q)", p.job.SongID, audio.Field)
		return p.finish(ctx, model.ReadyPatch(audio.Value, cover), nil)

	case client.ConversionStatusFailed:
		log.Printf("[POLLING] Generation FAILED for song %s: %s", p.job.SongID, conv.StatusMessage())
		return p.finish(ctx, model.StatusPatch(model.SongStatusFailed), ErrGenerationFailed)
	}

	return false
}

func (p *Poller) transient(attempt int, reason string) {
	p.mu.Lock()
	p.result.TransientErrors++
	p.mu.Unlock()
	log.Printf("[POLLING] Error checking status (%d) for song %s: %s", attempt, p.job.SongID, reason)
}

// finish performs the single terminal transition and reports whether it was
// recorded. A failed store write rolls the poller back to Processing so the
// next tick queries again.
func (p *Poller) finish(ctx context.Context, patch model.SongPatch, reason error) bool {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return true
	}
	p.done = true
	p.result.Status = *patch.Status
	p.result.Err = reason
	if patch.AudioURL != nil {
		p.result.AudioURL = *patch.AudioURL
	}
	if patch.CoverImage != nil {
		p.result.CoverImage = *patch.CoverImage
	}
	p.mu.Unlock()

	// The store must still be written if the caller is shutting down.
	updateCtx := context.WithoutCancel(ctx)
	applied, err := p.updater.UpdateSong(updateCtx, p.job.Owner, p.job.SongID, patch)
	if err != nil {
		log.Printf("[POLLING] Failed to update song %s to %s, retrying on next tick: %v", p.job.SongID, *patch.Status, err)
		p.mu.Lock()
		p.done = false
		p.result.Status = model.SongStatusProcessing
		p.result.AudioURL = ""
		p.result.CoverImage = ""
		p.result.Err = err
		p.mu.Unlock()
		return false
	}
	if !applied {
		log.Printf("[POLLING] Song %s no longer processing; ignoring %s", p.job.SongID, *patch.Status)
	}
	return true
}
