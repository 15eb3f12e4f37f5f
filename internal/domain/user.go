package domain

import (
	"strconv"
	"time"
)

// UserState is the step a chat is at in a multi-step form, plus the answers
// collected so far.
type UserState struct {
	UserID      int64             `json:"user_id"`
	CurrentStep string            `json:"current_step"`
	TempData    map[string]string `json:"temp_data"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func NewUserState(userID int64, step string) *UserState {
	return &UserState{UserID: userID, CurrentStep: step, TempData: make(map[string]string)}
}

func (s *UserState) Get(key string) string {
	if s == nil || s.TempData == nil {
		return ""
	}
	return s.TempData[key]
}

func (s *UserState) Set(key, value string) {
	if s.TempData == nil {
		s.TempData = make(map[string]string)
	}
	s.TempData[key] = value
}

func (s *UserState) GetFloat(key string) float64 {
	v, _ := strconv.ParseFloat(s.Get(key), 64)
	return v
}

func (s *UserState) GetInt(key string) int {
	v, _ := strconv.Atoi(s.Get(key))
	return v
}
