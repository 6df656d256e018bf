// Package store is the single writer of a user's credits, songs and orders.
// Every mutation persists the whole record and notifies listeners with a
// freshly derived dashboard view.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huggnote/api/internal/model"
)

const (
	stateKeyPrefix = "huggnote:data:"
	draftKeyPrefix = "huggnote:draft:"

	dateLayout = "1/2/2006"
)

var coverColors = []string{
	"linear-gradient(135deg, #a855f7, #ec4899)",
	"linear-gradient(135deg, #3b82f6, #06b6d4)",
	"linear-gradient(135deg, #f97316, #f59e0b)",
	"linear-gradient(135deg, #10b981, #14b8a6)",
}

// Backend persists opaque records by key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
}

// Listener is notified after each mutation.
type Listener interface {
	StateChanged(owner string, view model.DashboardView)
	SongFinished(owner string, song model.Song)
}

// Store serializes read-modify-write cycles on the backend.
type Store struct {
	backend Backend

	// mu serializes read-modify-write cycles; notifications are sent while
	// it is held so listeners observe views in mutation order.
	mu sync.Mutex

	lmu       sync.RWMutex
	listeners []Listener

	now       func() time.Time
	pickColor func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCoverPicker overrides the random cover color.
func WithCoverPicker(pick func() string) Option {
	return func(s *Store) { s.pickColor = pick }
}

// New creates a store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		pickColor: func() string {
			return coverColors[rand.Intn(len(coverColors))]
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BackendName returns the name of the configured backend.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// Subscribe registers a listener.
func (s *Store) Subscribe(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

// State returns a copy of the owner's record.
func (s *Store) State(ctx context.Context, owner string) (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, owner)
}

// View derives the dashboard for owner.
func (s *Store) View(ctx context.Context, owner string) (model.DashboardView, error) {
	state, err := s.State(ctx, owner)
	if err != nil {
		return model.DashboardView{}, err
	}
	return state.View(), nil
}

// Song returns one song.
func (s *Store) Song(ctx context.Context, owner, id string) (*model.Song, error) {
	state, err := s.State(ctx, owner)
	if err != nil {
		return nil, err
	}
	i := state.FindSong(id)
	if i < 0 {
		return nil, ErrSongNotFound
	}
	song := state.Songs[i]
	return &song, nil
}

// CreateSong reserves one credit and records a new Processing song at the
// front of the list.
func (s *Store) CreateSong(ctx context.Context, owner string, in model.SongInput) (*model.Song, error) {
	var created model.Song
	err := s.mutate(ctx, owner, func(state *model.State) error {
		if state.Credits <= 0 {
			return ErrInsufficientCredits
		}
		state.Credits--

		now := s.now()
		recipient := strings.TrimSpace(in.Recipient)
		title := "Song for " + recipient
		if recipient == "" {
			title = "Song for Someone"
			recipient = "Unknown"
		}
		vibe := strings.TrimSpace(in.Vibe)
		if vibe == "" {
			vibe = "Custom"
		}
		eta := in.ETA
		if eta <= 0 {
			eta = 120
		}

		created = model.Song{
			ID:            uuid.NewString(),
			Title:         title,
			Recipient:     recipient,
			Vibe:          vibe,
			Date:          now.Format(dateLayout),
			Status:        model.SongStatusProcessing,
			CoverColor:    s.pickColor(),
			Prompt:        in.Prompt,
			TaskID:        in.Handle.TaskID,
			ConversionID1: in.Handle.ConversionID1,
			ConversionID2: in.Handle.ConversionID2,
			ETA:           eta,
			CreatedAt:     now,
		}
		state.Songs = append([]model.Song{created}, state.Songs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[STORE] Created song %s for %s (credits reserved)", created.ID, owner)
	return &created, nil
}

// UpdateSong applies patch to a Processing song. It reports false without
// error when the song is missing or already terminal.
func (s *Store) UpdateSong(ctx context.Context, owner, id string, patch model.SongPatch) (bool, error) {
	var (
		applied  bool
		finished *model.Song
	)
	err := s.mutate(ctx, owner, func(state *model.State) error {
		i := state.FindSong(id)
		if i < 0 {
			return errNoop
		}
		song := &state.Songs[i]
		if song.Status.IsTerminal() {
			return errNoop
		}

		if patch.Status != nil {
			song.Status = *patch.Status
		}
		if song.Status == model.SongStatusReady {
			if patch.AudioURL != nil {
				song.AudioURL = *patch.AudioURL
			}
			if patch.CoverImage != nil {
				song.CoverImage = *patch.CoverImage
			}
		}
		if song.Status.IsTerminal() {
			now := s.now()
			song.CompletedAt = &now
			done := *song
			finished = &done
		}
		applied = true
		return nil
	})
	if errors.Is(err, errNoop) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if finished != nil {
		log.Printf("[STORE] Song %s for %s is now %s", id, owner, finished.Status)
		for _, l := range s.snapshotListeners() {
			l.SongFinished(owner, *finished)
		}
	}
	return applied, nil
}

// RecordOrder appends a paid order for plan and grants its credits.
func (s *Store) RecordOrder(ctx context.Context, owner string, planID model.PlanID) (*model.Order, error) {
	plan, ok := model.LookupPlan(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}

	var order model.Order
	err := s.mutate(ctx, owner, func(state *model.State) error {
		now := s.now()
		order = model.Order{
			ID:        "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
			Date:      now.Format(dateLayout),
			Package:   plan.Name,
			Amount:    plan.Amount,
			Status:    model.OrderStatusPaid,
			Plan:      plan.ID,
			Credits:   plan.Credits,
			CreatedAt: now,
		}
		state.Orders = append([]model.Order{order}, state.Orders...)
		state.Credits += plan.Credits
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[STORE] Recorded order %s (%s) for %s", order.ID, plan.Name, owner)
	return &order, nil
}

// Reset deletes the owner's record and draft.
func (s *Store) Reset(ctx context.Context, owner string) error {
	s.mu.Lock()
	if err := s.backend.Delete(ctx, stateKeyPrefix+owner); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to reset state: %w", err)
	}
	if err := s.backend.Delete(ctx, draftKeyPrefix+owner); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to reset draft: %w", err)
	}
	s.notify(owner, model.DefaultState())
	s.mu.Unlock()

	log.Printf("[STORE] Reset state for %s", owner)
	return nil
}

// SaveDraft stores the last submitted form and drafted prompt.
func (s *Store) SaveDraft(ctx context.Context, owner string, draft model.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Save(ctx, draftKeyPrefix+owner, data); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Draft returns the stored draft, or an empty one.
func (s *Store) Draft(ctx context.Context, owner string) (*model.Draft, error) {
	s.mu.Lock()
	data, err := s.backend.Load(ctx, draftKeyPrefix+owner)
	s.mu.Unlock()

	if errors.Is(err, ErrNotFound) {
		return &model.Draft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var draft model.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

var errNoop = errors.New("no change")

// mutate runs fn on the owner's record under the store lock and persists
// the result unless fn returns an error.
func (s *Store) mutate(ctx context.Context, owner string, fn func(*model.State) error) error {
	s.mu.Lock()
	state, err := s.load(ctx, owner)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := fn(state); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.save(ctx, owner, state); err != nil {
		s.mu.Unlock()
		return err
	}
	s.notify(owner, state)
	s.mu.Unlock()
	return nil
}

func (s *Store) load(ctx context.Context, owner string) (*model.State, error) {
	data, err := s.backend.Load(ctx, stateKeyPrefix+owner)
	if errors.Is(err, ErrNotFound) {
		return model.DefaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	state := model.DefaultState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if state.Songs == nil {
		state.Songs = []model.Song{}
	}
	if state.Orders == nil {
		state.Orders = []model.Order{}
	}
	return state, nil
}

func (s *Store) save(ctx context.Context, owner string, state *model.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := s.backend.Save(ctx, stateKeyPrefix+owner, data); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *Store) snapshotListeners() []Listener {
	s.lmu.RLock()
	defer s.lmu.RUnlock()
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

func (s *Store) notify(owner string, state *model.State) {
	view := state.View()
	for _, l := range s.snapshotListeners() {
		l.StateChanged(owner, view)
	}
}
