package ports

import (
	"context"

	"github.com/fylt/catalog/internal/core/domain"
)

// PositionUpdate assigns a new position to one ranking item.
type PositionUpdate struct {
	ItemID   int64
	Position int
}

// RankingTx is the set of ranking-item operations available inside one store
// transaction.
type RankingTx interface {
	RankingExists(ctx context.Context, rankingID int64) (bool, error)
	MovieExists(ctx context.Context, movieID int64) (bool, error)
	// ListRankingItems returns the ranking's items ordered by score
	// descending with nil scores last, ties broken by current position then
	// id.
	ListRankingItems(ctx context.Context, rankingID int64) ([]domain.RankingItem, error)
	InsertRankingItem(ctx context.Context, item *domain.RankingItem) error
	// FindRankingItemByID returns domain.ErrRankingItemNotFound when absent.
	FindRankingItemByID(ctx context.Context, itemID int64) (*domain.RankingItem, error)
	UpdateRankingItemScore(ctx context.Context, itemID int64, score *float64) error
	DeleteRankingItem(ctx context.Context, itemID int64) error
	BatchUpdatePositions(ctx context.Context, updates []PositionUpdate) error
}

type RankingStore interface {
	WithinTx(ctx context.Context, fn func(tx RankingTx) error) error
	ListRankingIDs(ctx context.Context) ([]int64, error)
}

type AddRankingItemInput struct {
	RankingID int64
	MovieID   int64
	Score     *float64
}

type RankingService interface {
	AddItem(ctx context.Context, input AddRankingItemInput) (*domain.RankingItem, error)
	SetScore(ctx context.Context, itemID int64, score *float64) error
	RemoveItem(ctx context.Context, itemID int64) error
	RecalculatePositions(ctx context.Context, rankingID int64) error
	RecalculateAll(ctx context.Context) error
}
