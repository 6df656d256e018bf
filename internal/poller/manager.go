package poller

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrAlreadyPolling is returned when a job already has an active poller.
var ErrAlreadyPolling = errors.New("song is already being polled")

// Manager keeps at most one active poller per song.
type Manager struct {
	checker StatusChecker
	updater Updater
	cfg     Config
	clock   Clock

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager. Pollers started with Start are cancelled by
// Shutdown.
func NewManager(checker StatusChecker, updater Updater, cfg Config, clock Clock) *Manager {
	if clock == nil {
		clock = RealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		checker: checker,
		updater: updater,
		cfg:     cfg,
		clock:   clock,
		ctx:     ctx,
		cancel:  cancel,
		active:  make(map[string]context.CancelFunc),
	}
}

// Start polls job in the background.
func (m *Manager) Start(job Job) error {
	ctx, err := m.register(m.ctx, job)
	if err != nil {
		return err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(job)
		New(job, m.checker, m.updater, m.cfg).Run(ctx, m.clock)
	}()
	return nil
}

// Run polls job on the calling goroutine until it ends or ctx is cancelled.
func (m *Manager) Run(ctx context.Context, job Job) (Result, error) {
	pollCtx, err := m.register(ctx, job)
	if err != nil {
		return Result{}, err
	}
	defer m.release(job)

	return New(job, m.checker, m.updater, m.cfg).Run(pollCtx, m.clock), nil
}

// Active reports whether a poller is running for the song.
func (m *Manager) Active(owner, songID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[Job{Owner: owner, SongID: songID}.Key()]
	return ok
}

// StopOwner cancels every poller of owner.
func (m *Manager) StopOwner(owner string) {
	prefix := owner + "/"
	m.mu.Lock()
	for key, cancel := range m.active {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			cancel()
		}
	}
	m.mu.Unlock()
}

// Shutdown cancels all pollers and waits for them to return.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
	log.Printf("[POLLING] All pollers stopped")
}

func (m *Manager) register(parent context.Context, job Job) (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := job.Key()
	if _, ok := m.active[key]; ok {
		return nil, ErrAlreadyPolling
	}
	ctx, cancel := context.WithCancel(parent)
	m.active[key] = cancel
	return ctx, nil
}

func (m *Manager) release(job Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := job.Key()
	if cancel, ok := m.active[key]; ok {
		cancel()
		delete(m.active, key)
	}
}
