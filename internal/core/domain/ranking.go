package domain

// RankingItem associates a movie with a position inside a named ranking.
// Positions within a ranking are unique, 1-based and contiguous after
// recalculation, assigned in descending order of Score. A nil Score sorts
// below every non-nil score.
type RankingItem struct {
	ID        int64    `json:"id"`
	RankingID int64    `json:"ranking_id"`
	MovieID   int64    `json:"movie_id"`
	Position  int      `json:"position"`
	Score     *float64 `json:"score,omitempty"`
}
