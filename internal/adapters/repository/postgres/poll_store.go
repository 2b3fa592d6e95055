package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

type pollStore struct {
	db *sql.DB
}

func NewPollStore(db *sql.DB) ports.PollStore {
	return &pollStore{
		db: db,
	}
}

func (s *pollStore) WithinTx(ctx context.Context, fn func(tx ports.PollTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pollTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *pollStore) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	query := `
		INSERT INTO polls (question, option1, option2, option3, option4, active, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		poll.Question, poll.Option1, poll.Option2, poll.Option3, poll.Option4, poll.Active, poll.CreatedAt,
	).Scan(&poll.ID)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func (s *pollStore) GetPollByID(ctx context.Context, pollID int64) (*domain.Poll, error) {
	row := s.db.QueryRowContext(ctx, selectPollQuery+` WHERE id = $1`, pollID)
	return scanPoll(row)
}

func (s *pollStore) ListPollIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM polls ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return ids, nil
}

type pollTx struct {
	tx *sql.Tx
}

const selectPollQuery = `
	SELECT id, question, option1, option2,
	       COALESCE(option3, ''), COALESCE(option4, ''),
	       vote_count1, vote_count2, vote_count3, vote_count4,
	       active, created_at
	FROM polls
`

// FindPollByID locks the poll row for the duration of the transaction, which
// serializes concurrent votes on the same poll.
func (t *pollTx) FindPollByID(ctx context.Context, pollID int64) (*domain.Poll, error) {
	row := t.tx.QueryRowContext(ctx, selectPollQuery+` WHERE id = $1 FOR UPDATE`, pollID)
	return scanPoll(row)
}

func (t *pollTx) FindVote(ctx context.Context, pollID, userID int64) (*domain.Vote, error) {
	query := `
		SELECT id, poll_id, user_id, selected_option
		FROM poll_votes
		WHERE poll_id = $1 AND user_id = $2
	`
	var vote domain.Vote
	err := t.tx.QueryRowContext(ctx, query, pollID, userID).Scan(
		&vote.ID, &vote.PollID, &vote.UserID, &vote.SelectedOption,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return &vote, nil
}

func (t *pollTx) InsertVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO poll_votes (id, poll_id, user_id, selected_option)
		VALUES ($1, $2, $3, $4)
	`
	_, err := t.tx.ExecContext(ctx, query, vote.ID, vote.PollID, vote.UserID, vote.SelectedOption)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVoteConflict
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (t *pollTx) UpdateVote(ctx context.Context, vote *domain.Vote) error {
	query := `UPDATE poll_votes SET selected_option = $1 WHERE id = $2`
	_, err := t.tx.ExecContext(ctx, query, vote.SelectedOption, vote.ID)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return nil
}

func (t *pollTx) ListVotesForPoll(ctx context.Context, pollID int64) ([]domain.Vote, error) {
	query := `
		SELECT id, poll_id, user_id, selected_option
		FROM poll_votes
		WHERE poll_id = $1
	`
	rows, err := t.tx.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var vote domain.Vote
		if err := rows.Scan(&vote.ID, &vote.PollID, &vote.UserID, &vote.SelectedOption); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (t *pollTx) UpdatePollCounters(ctx context.Context, pollID int64, counts [4]int) error {
	query := `
		UPDATE polls
		SET vote_count1 = $1, vote_count2 = $2, vote_count3 = $3, vote_count4 = $4
		WHERE id = $5
	`
	_, err := t.tx.ExecContext(ctx, query, counts[0], counts[1], counts[2], counts[3], pollID)
	if err != nil {
		return fmt.Errorf("failed to update poll counters: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var poll domain.Poll
	var createdAt sql.NullTime
	err := row.Scan(
		&poll.ID, &poll.Question, &poll.Option1, &poll.Option2,
		&poll.Option3, &poll.Option4,
		&poll.VoteCount1, &poll.VoteCount2, &poll.VoteCount3, &poll.VoteCount4,
		&poll.Active, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	if createdAt.Valid {
		utc := createdAt.Time.UTC()
		poll.CreatedAt = &utc
	}
	return &poll, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
