package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/poller"
	"github.com/huggnote/api/internal/store"
)

const defaultMusicStyle = "Pop"

// SongService submits generation jobs and hands them to a poller
type SongService struct {
	generator  client.MusicGenerator
	store      *store.Store
	dispatcher Dispatcher
	defaultETA int
}

// NewSongService creates a new song service
func NewSongService(generator client.MusicGenerator, st *store.Store, dispatcher Dispatcher, defaultETA int) *SongService {
	if defaultETA <= 0 {
		defaultETA = 120
	}
	return &SongService{
		generator:  generator,
		store:      st,
		dispatcher: dispatcher,
		defaultETA: defaultETA,
	}
}

// Finalize submits the drafted prompt, records the song and starts polling.
// The credit is spent once the service has accepted the job.
func (s *SongService) Finalize(ctx context.Context, owner string, req *model.FinalizeRequest) (*model.FinalizeResponse, error) {
	draft, err := s.store.Draft(ctx, owner)
	if err != nil {
		return nil, err
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = draft.Prompt
	}
	if prompt == "" {
		return nil, ErrNoPrompt
	}

	state, err := s.store.State(ctx, owner)
	if err != nil {
		return nil, err
	}
	if state.Credits <= 0 {
		return nil, store.ErrInsufficientCredits
	}

	style := req.MusicStyle
	if style == "" {
		style = draft.Form.Style
	}
	if style == "" {
		style = defaultMusicStyle
	}

	log.Printf("[SONGS] Submitting generation for %s (style: %s)", owner, style)

	result, err := s.generator.GenerateMusic(ctx, &client.GenerateRequest{
		Prompt:           prompt,
		MusicStyle:       style,
		MakeInstrumental: false,
		VocalOnly:        false,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Failed to start song generation"
		}
		return nil, &client.ExternalServiceError{
			Service: "MusicGPT",
			Status:  http.StatusBadGateway,
			Message: msg,
		}
	}

	eta := result.ETASeconds(s.defaultETA)
	handle := model.Handle{
		TaskID:        result.TaskID,
		ConversionID1: result.ConversionID1,
		ConversionID2: result.ConversionID2,
	}

	song, err := s.store.CreateSong(ctx, owner, model.SongInput{
		Recipient: draft.Form.RecipientName,
		Vibe:      draft.Form.Vibe,
		Prompt:    prompt,
		Handle:    handle,
		ETA:       eta,
	})
	if err != nil {
		// MusicGPT already accepted the job, usually because a concurrent
		// finalize spent the last credit after the check above.
		log.Printf("[SONGS] Orphaned MusicGPT task %s for %s (conversions %s, %s): %v",
			handle.TaskID, owner, handle.ConversionID1, handle.ConversionID2, err)
		return nil, fmt.Errorf("task %s accepted upstream but not recorded: %w", handle.TaskID, err)
	}

	if err := s.dispatch(ctx, owner, song); err != nil {
		return nil, fmt.Errorf("song %s was created but polling could not start: %w", song.ID, err)
	}

	return &model.FinalizeResponse{
		Success: true,
		Song:    *song,
		ETA:     eta,
		Message: fmt.Sprintf("Song creation started! It will take about %d seconds.", eta),
	}, nil
}

// Get returns one song of owner.
func (s *SongService) Get(ctx context.Context, owner, id string) (*model.Song, error) {
	return s.store.Song(ctx, owner, id)
}

// Resume starts a poller for a song still in Processing, e.g. after a
// restart. A song that is already being polled is left alone.
func (s *SongService) Resume(ctx context.Context, owner, id string) (*model.Song, error) {
	song, err := s.store.Song(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if song.Status.IsTerminal() {
		return nil, ErrSongNotProcessing
	}

	err = s.dispatch(ctx, owner, song)
	if errors.Is(err, poller.ErrAlreadyPolling) {
		log.Printf("[SONGS] Song %s is already being polled", id)
		return song, nil
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

func (s *SongService) dispatch(ctx context.Context, owner string, song *model.Song) error {
	return s.dispatcher.Dispatch(ctx, poller.Job{
		Owner:  owner,
		SongID: song.ID,
		Handle: song.Handle(),
		ETA:    song.ETA,
	})
}
