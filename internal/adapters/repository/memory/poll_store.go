package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

type pollState struct {
	nextPollID int64
	polls      map[int64]domain.Poll
	votes      map[uuid.UUID]domain.Vote
}

func (s *pollState) clone() *pollState {
	next := &pollState{
		nextPollID: s.nextPollID,
		polls:      make(map[int64]domain.Poll, len(s.polls)),
		votes:      make(map[uuid.UUID]domain.Vote, len(s.votes)),
	}
	for id, poll := range s.polls {
		if poll.CreatedAt != nil {
			createdAt := *poll.CreatedAt
			poll.CreatedAt = &createdAt
		}
		next.polls[id] = poll
	}
	for id, vote := range s.votes {
		next.votes[id] = vote
	}
	return next
}

// PollStore is an in-memory ports.PollStore. Transactions run against a deep
// copy of the state that replaces the live state only on success, so a failed
// transaction leaves no trace.
type PollStore struct {
	mu    sync.Mutex
	state *pollState

	// CounterUpdateErr, when set, is returned (and cleared) by the next
	// UpdatePollCounters call inside a transaction. Lets tests verify that
	// the vote write rolls back with the counter write.
	CounterUpdateErr error
}

func NewPollStore() *PollStore {
	return &PollStore{
		state: &pollState{
			nextPollID: 1,
			polls:      make(map[int64]domain.Poll),
			votes:      make(map[uuid.UUID]domain.Vote),
		},
	}
}

func (s *PollStore) WithinTx(_ context.Context, fn func(tx ports.PollTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&pollTx{store: s, state: next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *PollStore) CreatePoll(_ context.Context, poll *domain.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll.ID = s.state.nextPollID
	s.state.nextPollID++
	s.state.polls[poll.ID] = *poll
	return nil
}

func (s *PollStore) GetPollByID(_ context.Context, pollID int64) (*domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.state.polls[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return &poll, nil
}

func (s *PollStore) ListPollIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.state.polls))
	for id := range s.state.polls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// SetCounters overwrites a poll's counters directly, bypassing the vote
// table. Test helper for simulating counter drift.
func (s *PollStore) SetCounters(pollID int64, counts [4]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.state.polls[pollID]
	if !ok {
		return
	}
	poll.VoteCount1 = counts[0]
	poll.VoteCount2 = counts[1]
	poll.VoteCount3 = counts[2]
	poll.VoteCount4 = counts[3]
	s.state.polls[pollID] = poll
}

// VoteFor returns the user's current vote on a poll, or nil. Test helper.
func (s *PollStore) VoteFor(pollID, userID int64) *domain.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, vote := range s.state.votes {
		if vote.PollID == pollID && vote.UserID == userID {
			return &vote
		}
	}
	return nil
}

// VoteRows returns the number of vote rows stored for a poll. Test helper.
func (s *PollStore) VoteRows(pollID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, vote := range s.state.votes {
		if vote.PollID == pollID {
			count++
		}
	}
	return count
}

type pollTx struct {
	store *PollStore
	state *pollState
}

func (t *pollTx) FindPollByID(_ context.Context, pollID int64) (*domain.Poll, error) {
	poll, ok := t.state.polls[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return &poll, nil
}

func (t *pollTx) FindVote(_ context.Context, pollID, userID int64) (*domain.Vote, error) {
	for _, vote := range t.state.votes {
		if vote.PollID == pollID && vote.UserID == userID {
			return &vote, nil
		}
	}
	return nil, nil
}

func (t *pollTx) InsertVote(_ context.Context, vote *domain.Vote) error {
	for _, existing := range t.state.votes {
		if existing.PollID == vote.PollID && existing.UserID == vote.UserID {
			return domain.ErrVoteConflict
		}
	}
	t.state.votes[vote.ID] = *vote
	return nil
}

func (t *pollTx) UpdateVote(_ context.Context, vote *domain.Vote) error {
	t.state.votes[vote.ID] = *vote
	return nil
}

func (t *pollTx) ListVotesForPoll(_ context.Context, pollID int64) ([]domain.Vote, error) {
	var votes []domain.Vote
	for _, vote := range t.state.votes {
		if vote.PollID == pollID {
			votes = append(votes, vote)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].UserID < votes[j].UserID })
	return votes, nil
}

func (t *pollTx) UpdatePollCounters(_ context.Context, pollID int64, counts [4]int) error {
	if err := t.store.CounterUpdateErr; err != nil {
		t.store.CounterUpdateErr = nil
		return err
	}

	poll, ok := t.state.polls[pollID]
	if !ok {
		return domain.ErrPollNotFound
	}
	poll.VoteCount1 = counts[0]
	poll.VoteCount2 = counts[1]
	poll.VoteCount3 = counts[2]
	poll.VoteCount4 = counts[3]
	t.state.polls[pollID] = poll
	return nil
}

var _ ports.PollStore = (*PollStore)(nil)
