// Package service holds the bot's thin wrappers around Telegram and the
// conversation state store.
package service

import (
	"context"

	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/rs/zerolog"
)

// StateService reads and writes per-chat form state. Storage errors are
// logged and read as "no form in progress" so a broken store never wedges a
// chat.
type StateService struct {
	stateRepo domain.StateRepository
	log       zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, log zerolog.Logger) *StateService {
	return &StateService{stateRepo: stateRepo, log: log}
}

func (s *StateService) GetUserState(ctx context.Context, userID int64) *domain.UserState {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("chat_id", userID).Msg("failed to load user state")
		return nil
	}
	return state
}

// SetStep moves the chat to step, keeping data collected so far.
func (s *StateService) SetStep(ctx context.Context, userID int64, step string, data map[string]string) *domain.UserState {
	state := s.GetUserState(ctx, userID)
	if state == nil {
		state = domain.NewUserState(userID, step)
	}
	state.CurrentStep = step
	for k, v := range data {
		state.Set(k, v)
	}
	s.Save(ctx, state)
	return state
}

// StartForm replaces any state with a fresh one at step.
func (s *StateService) StartForm(ctx context.Context, userID int64, step string, data map[string]string) *domain.UserState {
	state := domain.NewUserState(userID, step)
	for k, v := range data {
		state.Set(k, v)
	}
	s.Save(ctx, state)
	return state
}

func (s *StateService) Save(ctx context.Context, state *domain.UserState) {
	if err := s.stateRepo.SetState(ctx, state); err != nil {
		s.log.Error().Err(err).Int64("chat_id", state.UserID).Str("step", state.CurrentStep).Msg("failed to save user state")
	}
}

func (s *StateService) ClearUserState(ctx context.Context, userID int64) {
	if err := s.stateRepo.ClearState(ctx, userID); err != nil {
		s.log.Error().Err(err).Int64("chat_id", userID).Msg("failed to clear user state")
	}
}
