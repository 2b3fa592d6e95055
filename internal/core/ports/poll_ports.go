package ports

import (
	"context"

	"github.com/fylt/catalog/internal/core/domain"
)

// PollTx is the set of poll and vote operations available inside one store
// transaction. Every write performed through it either commits as a whole or
// is rolled back as a whole.
type PollTx interface {
	// FindPollByID returns domain.ErrPollNotFound when no such poll exists.
	// Implementations backed by a shared store lock the returned row for the
	// duration of the transaction.
	FindPollByID(ctx context.Context, pollID int64) (*domain.Poll, error)
	// FindVote returns (nil, nil) when the user has no vote on the poll.
	FindVote(ctx context.Context, pollID, userID int64) (*domain.Vote, error)
	InsertVote(ctx context.Context, vote *domain.Vote) error
	UpdateVote(ctx context.Context, vote *domain.Vote) error
	ListVotesForPoll(ctx context.Context, pollID int64) ([]domain.Vote, error)
	// UpdatePollCounters persists counts[k-1] as the poll's counter for
	// option k.
	UpdatePollCounters(ctx context.Context, pollID int64, counts [4]int) error
}

type PollStore interface {
	WithinTx(ctx context.Context, fn func(tx PollTx) error) error
	CreatePoll(ctx context.Context, poll *domain.Poll) error
	GetPollByID(ctx context.Context, pollID int64) (*domain.Poll, error)
	ListPollIDs(ctx context.Context) ([]int64, error)
}

type CreatePollInput struct {
	Question string
	Option1  string
	Option2  string
	Option3  string
	Option4  string
}

type PollVoteService interface {
	CreatePoll(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, pollID int64) (*domain.Poll, error)
	CastVote(ctx context.Context, pollID, userID int64, selectedOption int) error
	RecountAll(ctx context.Context) error
}
