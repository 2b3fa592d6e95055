package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

type pollVoteService struct {
	store ports.PollStore
}

func NewPollVoteService(store ports.PollStore) ports.PollVoteService {
	return &pollVoteService{
		store: store,
	}
}

func (s *pollVoteService) CreatePoll(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, errors.New("question is required")
	}
	if input.Option1 == "" || input.Option2 == "" {
		return nil, errors.New("option1 and option2 are required")
	}
	if input.Option4 != "" && input.Option3 == "" {
		return nil, errors.New("option3 must be set before option4")
	}

	now := time.Now().UTC()
	poll := &domain.Poll{
		Question:  input.Question,
		Option1:   input.Option1,
		Option2:   input.Option2,
		Option3:   input.Option3,
		Option4:   input.Option4,
		Active:    true,
		CreatedAt: &now,
	}

	if err := s.store.CreatePoll(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollVoteService) GetPoll(ctx context.Context, pollID int64) (*domain.Poll, error) {
	return s.store.GetPollByID(ctx, pollID)
}

// CastVote records or changes a user's vote and re-derives the poll's four
// counters from the full vote set, all inside one store transaction. The
// user is assumed already authenticated; no user existence check is made.
func (s *pollVoteService) CastVote(ctx context.Context, pollID, userID int64, selectedOption int) error {
	return s.store.WithinTx(ctx, func(tx ports.PollTx) error {
		poll, err := tx.FindPollByID(ctx, pollID)
		if err != nil {
			return err
		}
		if !poll.HasOption(selectedOption) {
			return domain.ErrInvalidOption
		}

		existing, err := tx.FindVote(ctx, pollID, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			vote := &domain.Vote{
				ID:             uuid.New(),
				PollID:         pollID,
				UserID:         userID,
				SelectedOption: selectedOption,
			}
			if err := tx.InsertVote(ctx, vote); err != nil {
				return err
			}
		} else {
			existing.SelectedOption = selectedOption
			if err := tx.UpdateVote(ctx, existing); err != nil {
				return err
			}
		}

		return refreshCounters(ctx, tx, poll)
	})
}

// RecountAll re-derives the counters of every poll from the vote table, one
// transaction per poll. Used by the repair job to fix drifted counters.
func (s *pollVoteService) RecountAll(ctx context.Context) error {
	pollIDs, err := s.store.ListPollIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list polls: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(pollIDs))

	for _, pollID := range pollIDs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := s.store.WithinTx(ctx, func(tx ports.PollTx) error {
				poll, err := tx.FindPollByID(ctx, id)
				if err != nil {
					return err
				}
				return refreshCounters(ctx, tx, poll)
			})
			if err != nil {
				errChan <- fmt.Errorf("failed to recount poll %d: %w", id, err)
			}
		}(pollID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}

// refreshCounters reloads the poll's full vote set and writes back the four
// per-option counts. Counters for options the poll does not offer are forced
// to zero even if stray vote rows reference them.
func refreshCounters(ctx context.Context, tx ports.PollTx, poll *domain.Poll) error {
	votes, err := tx.ListVotesForPoll(ctx, poll.ID)
	if err != nil {
		return err
	}

	var counts [4]int
	for _, v := range votes {
		if v.SelectedOption >= 1 && v.SelectedOption <= 4 && poll.HasOption(v.SelectedOption) {
			counts[v.SelectedOption-1]++
		}
	}

	return tx.UpdatePollCounters(ctx, poll.ID, counts)
}
