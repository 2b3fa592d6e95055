package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

func TestCastVoteAndChangeVote(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	poll, err := app.PollSvc.CreatePoll(ctx, ports.CreatePollInput{
		Question: "¿Te gustó la película?",
		Option1:  "Sí",
		Option2:  "No",
	})
	require.NoError(t, err)

	// First vote by user 7.
	require.NoError(t, app.PollSvc.CastVote(ctx, poll.ID, 7, 1))

	got, err := app.PollSvc.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VoteCount1)
	assert.Equal(t, 0, got.VoteCount2)
	assert.Equal(t, 0, got.VoteCount3)
	assert.Equal(t, 0, got.VoteCount4)

	// User 7 changes their vote: same row updated, not a second row.
	require.NoError(t, app.PollSvc.CastVote(ctx, poll.ID, 7, 2))

	got, err = app.PollSvc.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.VoteCount1)
	assert.Equal(t, 1, got.VoteCount2)

	var rows int
	err = app.DB.QueryRow("SELECT COUNT(*) FROM poll_votes WHERE poll_id = $1", poll.ID).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	var selected int
	err = app.DB.QueryRow("SELECT selected_option FROM poll_votes WHERE poll_id = $1 AND user_id = 7", poll.ID).Scan(&selected)
	require.NoError(t, err)
	assert.Equal(t, 2, selected)
}

func TestCastVoteOptionValidity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	poll, err := app.PollSvc.CreatePoll(ctx, ports.CreatePollInput{
		Question: "Solo dos opciones",
		Option1:  "Uno",
		Option2:  "Dos",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, app.PollSvc.CastVote(ctx, poll.ID, 7, 3), domain.ErrInvalidOption)
	assert.ErrorIs(t, app.PollSvc.CastVote(ctx, poll.ID, 7, 4), domain.ErrInvalidOption)
	assert.ErrorIs(t, app.PollSvc.CastVote(ctx, poll.ID, 7, 0), domain.ErrInvalidOption)

	assert.ErrorIs(t, app.PollSvc.CastVote(ctx, 9999, 7, 1), domain.ErrPollNotFound)

	// A three-option poll accepts option 3 but still rejects option 4.
	threeOpt, err := app.PollSvc.CreatePoll(ctx, ports.CreatePollInput{
		Question: "Tres opciones",
		Option1:  "Uno",
		Option2:  "Dos",
		Option3:  "Tres",
	})
	require.NoError(t, err)
	require.NoError(t, app.PollSvc.CastVote(ctx, threeOpt.ID, 7, 3))
	assert.ErrorIs(t, app.PollSvc.CastVote(ctx, threeOpt.ID, 7, 4), domain.ErrInvalidOption)
}

func TestCountersMatchVoteRows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	poll, err := app.PollSvc.CreatePoll(ctx, ports.CreatePollInput{
		Question: "Mejor género",
		Option1:  "Drama",
		Option2:  "Comedia",
		Option3:  "Terror",
		Option4:  "Acción",
	})
	require.NoError(t, err)

	casts := []struct {
		userID int64
		option int
	}{
		{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 1}, {6, 3}, {2, 4},
	}
	for _, c := range casts {
		require.NoError(t, app.PollSvc.CastVote(ctx, poll.ID, c.userID, c.option))
	}

	got, err := app.PollSvc.GetPoll(ctx, poll.ID)
	require.NoError(t, err)

	for k, want := range map[int]int{1: got.VoteCount1, 2: got.VoteCount2, 3: got.VoteCount3, 4: got.VoteCount4} {
		var count int
		err := app.DB.QueryRow(
			"SELECT COUNT(*) FROM poll_votes WHERE poll_id = $1 AND selected_option = $2",
			poll.ID, k,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, count, want, "counter for option %d", k)
	}
}

func TestDeletingPollCascadesVotes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	poll, err := app.PollSvc.CreatePoll(ctx, ports.CreatePollInput{
		Question: "Temporal",
		Option1:  "Sí",
		Option2:  "No",
	})
	require.NoError(t, err)
	require.NoError(t, app.PollSvc.CastVote(ctx, poll.ID, 7, 1))

	_, err = app.DB.Exec("DELETE FROM polls WHERE id = $1", poll.ID)
	require.NoError(t, err)

	var rows int
	err = app.DB.QueryRow("SELECT COUNT(*) FROM poll_votes WHERE poll_id = $1", poll.ID).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestRecountAllAgainstDriftedCounters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	poll, err := app.PollSvc.CreatePoll(ctx, ports.CreatePollInput{
		Question: "Contadores",
		Option1:  "Sí",
		Option2:  "No",
	})
	require.NoError(t, err)
	require.NoError(t, app.PollSvc.CastVote(ctx, poll.ID, 1, 1))
	require.NoError(t, app.PollSvc.CastVote(ctx, poll.ID, 2, 1))
	require.NoError(t, app.PollSvc.CastVote(ctx, poll.ID, 3, 2))

	_, err = app.DB.Exec("UPDATE polls SET vote_count1 = 42, vote_count2 = 42 WHERE id = $1", poll.ID)
	require.NoError(t, err)

	require.NoError(t, app.PollSvc.RecountAll(ctx))

	got, err := app.PollSvc.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.VoteCount1)
	assert.Equal(t, 1, got.VoteCount2)
}
