package service

import (
	"context"

	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/store"
)

// AccountService covers the dashboard, purchases and reset
type AccountService struct {
	store      *store.Store
	dispatcher Dispatcher
}

// NewAccountService creates a new account service
func NewAccountService(st *store.Store, dispatcher Dispatcher) *AccountService {
	return &AccountService{
		store:      st,
		dispatcher: dispatcher,
	}
}

// Dashboard derives the current view.
func (s *AccountService) Dashboard(ctx context.Context, owner string) (model.DashboardView, error) {
	return s.store.View(ctx, owner)
}

// Purchase records a paid order and grants its credits.
func (s *AccountService) Purchase(ctx context.Context, owner string, plan model.PlanID) (*model.Order, int, error) {
	order, err := s.store.RecordOrder(ctx, owner, plan)
	if err != nil {
		return nil, 0, err
	}
	state, err := s.store.State(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	return order, state.Credits, nil
}

// Draft returns the last form and prompt.
func (s *AccountService) Draft(ctx context.Context, owner string) (*model.Draft, error) {
	return s.store.Draft(ctx, owner)
}

// Reset stops the owner's pollers and clears all persisted state.
func (s *AccountService) Reset(ctx context.Context, owner string) error {
	if s.dispatcher != nil {
		s.dispatcher.CancelOwner(ctx, owner)
	}
	return s.store.Reset(ctx, owner)
}
