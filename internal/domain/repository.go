package domain

import "context"

// StateRepository stores the per-chat form state. GetState returns nil when
// the chat has no form in progress.
type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*UserState, error)
	SetState(ctx context.Context, state *UserState) error
	ClearState(ctx context.Context, userID int64) error
}
