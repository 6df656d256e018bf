package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huggnote/api/internal/model"
)

const owner = "user-1"

type recordingListener struct {
	mu       sync.Mutex
	views    []model.DashboardView
	finished []model.Song
}

func (l *recordingListener) StateChanged(_ string, view model.DashboardView) {
	l.mu.Lock()
	l.views = append(l.views, view)
	l.mu.Unlock()
}

func (l *recordingListener) SongFinished(_ string, song model.Song) {
	l.mu.Lock()
	l.finished = append(l.finished, song)
	l.mu.Unlock()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	fixed := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	return New(NewMemoryBackend(),
		WithClock(func() time.Time { return fixed }),
		WithCoverPicker(func() string { return coverColors[0] }),
	)
}

func fund(t *testing.T, s *Store, plan model.PlanID) {
	t.Helper()
	if _, err := s.RecordOrder(context.Background(), owner, plan); err != nil {
		t.Fatalf("RecordOrder failed: %v", err)
	}
}

func testInput() model.SongInput {
	return model.SongInput{
		Recipient: "Maya",
		Vibe:      "Joyful",
		Prompt:    "upbeat birthday pop",
		Handle:    model.Handle{TaskID: "task-1", ConversionID1: "conv-1"},
		ETA:       90,
	}
}

func TestRecordOrderSingle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order, err := s.RecordOrder(ctx, owner, model.PlanSingle)
	if err != nil {
		t.Fatalf("RecordOrder failed: %v", err)
	}
	if order.Status != "Paid" || order.Package != "Single Pack" || order.Amount != "$79.00" {
		t.Errorf("unexpected order %+v", order)
	}
	if order.Date != "3/9/2024" {
		t.Errorf("unexpected date %q", order.Date)
	}

	state, _ := s.State(ctx, owner)
	if state.Credits != 1 {
		t.Errorf("expected 1 credit, got %d", state.Credits)
	}
	if len(state.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(state.Orders))
	}
}

func TestRecordOrderMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fund(t, s, model.PlanSingle)
	fund(t, s, model.PlanMulti)

	state, _ := s.State(ctx, owner)
	if state.Credits != 6 {
		t.Errorf("expected 6 credits, got %d", state.Credits)
	}
	if state.Orders[0].Plan != model.PlanMulti {
		t.Errorf("expected newest order first, got %s", state.Orders[0].Plan)
	}
}

func TestRecordOrderUnknownPlan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordOrder(ctx, owner, "platinum")
	if !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
	state, _ := s.State(ctx, owner)
	if state.Credits != 0 || len(state.Orders) != 0 {
		t.Errorf("state changed on unknown plan: %+v", state)
	}
}

func TestCreateSongInsufficientCredits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateSong(ctx, owner, testInput())
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	state, _ := s.State(ctx, owner)
	if state.Credits != 0 || len(state.Songs) != 0 {
		t.Errorf("state changed: %+v", state)
	}
}

func TestCreateSong(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanMulti)

	song, err := s.CreateSong(ctx, owner, testInput())
	if err != nil {
		t.Fatalf("CreateSong failed: %v", err)
	}
	if song.ID == "" {
		t.Error("expected an id")
	}
	if song.Status != model.SongStatusProcessing {
		t.Errorf("expected Processing, got %s", song.Status)
	}
	if song.Title != "Song for Maya" || song.Vibe != "Joyful" || song.ETA != 90 {
		t.Errorf("unexpected song %+v", song)
	}
	if song.ConversionID1 != "conv-1" || song.TaskID != "task-1" {
		t.Errorf("handle not recorded: %+v", song)
	}

	second, err := s.CreateSong(ctx, owner, model.SongInput{Handle: model.Handle{TaskID: "task-2"}})
	if err != nil {
		t.Fatalf("CreateSong failed: %v", err)
	}
	if second.Title != "Song for Someone" || second.Recipient != "Unknown" || second.Vibe != "Custom" || second.ETA != 120 {
		t.Errorf("defaults not applied: %+v", second)
	}

	state, _ := s.State(ctx, owner)
	if state.Credits != 3 {
		t.Errorf("expected 3 credits, got %d", state.Credits)
	}
	if state.Songs[0].ID != second.ID {
		t.Error("expected newest song first")
	}
}

func TestCreditsNotRefundedOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanSingle)

	song, _ := s.CreateSong(ctx, owner, testInput())
	if _, err := s.UpdateSong(ctx, owner, song.ID, model.StatusPatch(model.SongStatusFailedTimeout)); err != nil {
		t.Fatalf("UpdateSong failed: %v", err)
	}

	state, _ := s.State(ctx, owner)
	if state.Credits != 0 {
		t.Errorf("expected credits to stay spent, got %d", state.Credits)
	}
}

func TestUpdateSongReady(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanSingle)
	song, _ := s.CreateSong(ctx, owner, testInput())

	applied, err := s.UpdateSong(ctx, owner, song.ID, model.ReadyPatch("http://x/a.mp3", "assets/img/hero-bg.jpg"))
	if err != nil || !applied {
		t.Fatalf("expected patch applied, got %v %v", applied, err)
	}

	got, err := s.Song(ctx, owner, song.ID)
	if err != nil {
		t.Fatalf("Song failed: %v", err)
	}
	if got.Status != model.SongStatusReady || got.AudioURL != "http://x/a.mp3" {
		t.Errorf("unexpected song %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("expected completedAt")
	}
}

func TestUpdateSongTerminalIsFinal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanSingle)
	song, _ := s.CreateSong(ctx, owner, testInput())

	if _, err := s.UpdateSong(ctx, owner, song.ID, model.StatusPatch(model.SongStatusFailed)); err != nil {
		t.Fatal(err)
	}

	applied, err := s.UpdateSong(ctx, owner, song.ID, model.ReadyPatch("http://x/late.mp3", ""))
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Error("late patch must be ignored")
	}

	got, _ := s.Song(ctx, owner, song.ID)
	if got.Status != model.SongStatusFailed || got.AudioURL != "" {
		t.Errorf("terminal song mutated: %+v", got)
	}
}

func TestUpdateSongAudioOnlyOnReady(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanSingle)
	song, _ := s.CreateSong(ctx, owner, testInput())

	failed := model.SongStatusFailedNoAudio
	url := "http://x/a.mp3"
	s.UpdateSong(ctx, owner, song.ID, model.SongPatch{Status: &failed, AudioURL: &url})

	got, _ := s.Song(ctx, owner, song.ID)
	if got.AudioURL != "" {
		t.Errorf("audioUrl must only be set on Ready, got %q", got.AudioURL)
	}
}

func TestUpdateSongNotFound(t *testing.T) {
	s := newTestStore(t)
	applied, err := s.UpdateSong(context.Background(), owner, "missing", model.StatusPatch(model.SongStatusReady))
	if err != nil || applied {
		t.Errorf("expected silent no-op, got %v %v", applied, err)
	}
}

func TestSongNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Song(context.Background(), owner, "missing"); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound, got %v", err)
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanMulti)
	s.CreateSong(ctx, owner, testInput())
	s.SaveDraft(ctx, owner, model.Draft{Prompt: "p"})

	if err := s.Reset(ctx, owner); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	state, _ := s.State(ctx, owner)
	if state.Credits != 0 || len(state.Songs) != 0 || len(state.Orders) != 0 {
		t.Errorf("expected defaults, got %+v", state)
	}
	draft, _ := s.Draft(ctx, owner)
	if draft.Prompt != "" {
		t.Errorf("expected draft cleared, got %q", draft.Prompt)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanMulti)

	other, _ := s.State(ctx, "user-2")
	if other.Credits != 0 {
		t.Errorf("expected isolated state, got %d credits", other.Credits)
	}
}

func TestListenersSeeEveryMutation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	l := &recordingListener{}
	s.Subscribe(l)

	fund(t, s, model.PlanSingle)
	song, _ := s.CreateSong(ctx, owner, testInput())
	s.UpdateSong(ctx, owner, song.ID, model.ReadyPatch("http://x/a.mp3", "c.jpg"))

	if len(l.views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(l.views))
	}
	last := l.views[2]
	if last.CanCreate || last.Credits != 0 {
		t.Errorf("unexpected final view %+v", last)
	}
	if !last.Songs[0].Playable || last.Songs[0].Caption != "Joyful • 3/9/2024" {
		t.Errorf("unexpected card %+v", last.Songs[0])
	}
	if len(l.finished) != 1 || l.finished[0].ID != song.ID {
		t.Errorf("expected one finished song, got %+v", l.finished)
	}
}

func TestConcurrentUpdatesKeepEverySong(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fund(t, s, model.PlanMulti)

	var ids []string
	for i := 0; i < 5; i++ {
		song, err := s.CreateSong(ctx, owner, testInput())
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, song.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			s.UpdateSong(ctx, owner, id, model.ReadyPatch("http://x/"+id, ""))
		}(id)
	}
	wg.Wait()

	state, _ := s.State(ctx, owner)
	for _, song := range state.Songs {
		if song.Status != model.SongStatusReady {
			t.Errorf("song %s lost its update: %s", song.ID, song.Status)
		}
	}
}
