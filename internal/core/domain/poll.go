package domain

import "time"

// Poll is a question with up to four labeled options. Option1 and Option2 are
// mandatory; Option3 and Option4 are absent when empty. The VoteCount fields
// hold raw per-option vote counts, re-derived from the vote table after every
// vote rather than maintained incrementally.
type Poll struct {
	ID         int64      `json:"id"`
	Question   string     `json:"question"`
	Option1    string     `json:"option1"`
	Option2    string     `json:"option2"`
	Option3    string     `json:"option3,omitempty"`
	Option4    string     `json:"option4,omitempty"`
	VoteCount1 int        `json:"vote_count1"`
	VoteCount2 int        `json:"vote_count2"`
	VoteCount3 int        `json:"vote_count3"`
	VoteCount4 int        `json:"vote_count4"`
	Active     bool       `json:"active"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// HasOption reports whether option number k is offered by this poll.
func (p *Poll) HasOption(k int) bool {
	switch k {
	case 1, 2:
		return true
	case 3:
		return p.Option3 != ""
	case 4:
		return p.Option4 != ""
	default:
		return false
	}
}
