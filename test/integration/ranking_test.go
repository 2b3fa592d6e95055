package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

func scoreOf(v float64) *float64 {
	return &v
}

func rankedMovieIDs(t *testing.T, app *TestApp, rankingID int64) []int64 {
	t.Helper()

	rows, err := app.DB.Query(
		"SELECT movie_id, position FROM ranking_items WHERE ranking_id = $1 ORDER BY position",
		rankingID,
	)
	require.NoError(t, err)
	defer rows.Close()

	var movieIDs []int64
	wantPos := 1
	for rows.Next() {
		var movieID int64
		var position int
		require.NoError(t, rows.Scan(&movieID, &position))
		assert.Equal(t, wantPos, position)
		wantPos++
		movieIDs = append(movieIDs, movieID)
	}
	require.NoError(t, rows.Err())
	return movieIDs
}

func TestRecalculateOrdersByScore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	rankingID := createRanking(t, app.DB, "Top 2024")
	movieA := createMovie(t, app.DB, "A")
	movieB := createMovie(t, app.DB, "B")
	movieC := createMovie(t, app.DB, "C")

	for _, add := range []struct {
		movieID int64
		score   float64
	}{
		{movieA, 10}, {movieB, 30}, {movieC, 20},
	} {
		_, err := app.RankingSvc.AddItem(ctx, ports.AddRankingItemInput{
			RankingID: rankingID,
			MovieID:   add.movieID,
			Score:     scoreOf(add.score),
		})
		require.NoError(t, err)
	}

	require.NoError(t, app.RankingSvc.RecalculatePositions(ctx, rankingID))

	// B (30) first, C (20) second, A (10) third, positions dense 1..3.
	assert.Equal(t, []int64{movieB, movieC, movieA}, rankedMovieIDs(t, app, rankingID))
}

func TestRecalculateSurvivesUniquePositionIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	rankingID := createRanking(t, app.DB, "Inverted")

	// Seed positions exactly inverse to score order, so every item has to
	// move through a position another item currently holds.
	for i := 1; i <= 5; i++ {
		movieID := createMovie(t, app.DB, "movie")
		_, err := app.DB.Exec(
			"INSERT INTO ranking_items (ranking_id, movie_id, position, score) VALUES ($1, $2, $3, $4)",
			rankingID, movieID, i, float64(i),
		)
		require.NoError(t, err)
	}

	require.NoError(t, app.RankingSvc.RecalculatePositions(ctx, rankingID))

	rows, err := app.DB.Query(
		"SELECT position, score FROM ranking_items WHERE ranking_id = $1 ORDER BY position",
		rankingID,
	)
	require.NoError(t, err)
	defer rows.Close()

	var lastScore float64 = 1 << 30
	wantPos := 1
	for rows.Next() {
		var position int
		var score float64
		require.NoError(t, rows.Scan(&position, &score))
		assert.Equal(t, wantPos, position)
		assert.Less(t, score, lastScore)
		lastScore = score
		wantPos++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 6, wantPos)
}

func TestRecalculateEmptyRanking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	rankingID := createRanking(t, app.DB, "Empty")
	require.NoError(t, app.RankingSvc.RecalculatePositions(context.Background(), rankingID))

	var count int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM ranking_items WHERE ranking_id = $1", rankingID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNullScoresSortLast(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	rankingID := createRanking(t, app.DB, "Mixed")
	scored := createMovie(t, app.DB, "scored")
	unscored := createMovie(t, app.DB, "unscored")

	_, err := app.RankingSvc.AddItem(ctx, ports.AddRankingItemInput{RankingID: rankingID, MovieID: unscored})
	require.NoError(t, err)
	_, err = app.RankingSvc.AddItem(ctx, ports.AddRankingItemInput{RankingID: rankingID, MovieID: scored, Score: scoreOf(1.0)})
	require.NoError(t, err)

	assert.Equal(t, []int64{scored, unscored}, rankedMovieIDs(t, app, rankingID))
}

func TestAddItemValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	rankingID := createRanking(t, app.DB, "Top 2024")
	movieID := createMovie(t, app.DB, "La Gran Película")

	_, err := app.RankingSvc.AddItem(ctx, ports.AddRankingItemInput{RankingID: 9999, MovieID: movieID})
	assert.ErrorIs(t, err, domain.ErrRankingNotFound)

	_, err = app.RankingSvc.AddItem(ctx, ports.AddRankingItemInput{RankingID: rankingID, MovieID: 9999})
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)

	item, err := app.RankingSvc.AddItem(ctx, ports.AddRankingItemInput{RankingID: rankingID, MovieID: movieID, Score: scoreOf(8.0)})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Position)
}

func TestRemoveItemRenumbers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	rankingID := createRanking(t, app.DB, "Top 2024")
	var middle int64
	for i, score := range []float64{30, 20, 10} {
		movieID := createMovie(t, app.DB, "movie")
		item, err := app.RankingSvc.AddItem(ctx, ports.AddRankingItemInput{
			RankingID: rankingID,
			MovieID:   movieID,
			Score:     scoreOf(score),
		})
		require.NoError(t, err)
		if i == 1 {
			middle = item.ID
		}
	}

	require.NoError(t, app.RankingSvc.RemoveItem(ctx, middle))

	movieIDs := rankedMovieIDs(t, app, rankingID)
	assert.Len(t, movieIDs, 2)
}
