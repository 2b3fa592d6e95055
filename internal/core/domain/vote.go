package domain

import "github.com/google/uuid"

// Vote is one user's current choice of option within one poll. The
// (PollID, UserID) pair is unique; a revote overwrites SelectedOption in
// place instead of inserting a second row.
type Vote struct {
	ID             uuid.UUID `json:"id"`
	PollID         int64     `json:"poll_id"`
	UserID         int64     `json:"user_id"`
	SelectedOption int       `json:"selected_option"`
}
