package services

import (
	"context"
	"fmt"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

// positionOffset is added to every position during the neutralize phase of a
// recalculation. It must exceed any plausible item count so the offset range
// never overlaps the final 1..N range under the (ranking_id, position)
// unique index.
const positionOffset = 100000

type rankingService struct {
	store ports.RankingStore
}

func NewRankingService(store ports.RankingStore) ports.RankingService {
	return &rankingService{
		store: store,
	}
}

// AddItem appends a movie to a ranking after validating that both exist,
// then renumbers the ranking in the same transaction.
func (s *rankingService) AddItem(ctx context.Context, input ports.AddRankingItemInput) (*domain.RankingItem, error) {
	var item *domain.RankingItem
	err := s.store.WithinTx(ctx, func(tx ports.RankingTx) error {
		ok, err := tx.RankingExists(ctx, input.RankingID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrRankingNotFound
		}

		ok, err = tx.MovieExists(ctx, input.MovieID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrMovieNotFound
		}

		items, err := tx.ListRankingItems(ctx, input.RankingID)
		if err != nil {
			return err
		}

		item = &domain.RankingItem{
			RankingID: input.RankingID,
			MovieID:   input.MovieID,
			Position:  len(items) + 1,
			Score:     input.Score,
		}
		if err := tx.InsertRankingItem(ctx, item); err != nil {
			return err
		}

		if err := recalculate(ctx, tx, input.RankingID); err != nil {
			return err
		}

		item, err = tx.FindRankingItemByID(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetScore updates an item's score and renumbers its ranking in the same
// transaction.
func (s *rankingService) SetScore(ctx context.Context, itemID int64, score *float64) error {
	return s.store.WithinTx(ctx, func(tx ports.RankingTx) error {
		item, err := tx.FindRankingItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if err := tx.UpdateRankingItemScore(ctx, itemID, score); err != nil {
			return err
		}
		return recalculate(ctx, tx, item.RankingID)
	})
}

// RemoveItem deletes an item and closes the position gap it leaves.
func (s *rankingService) RemoveItem(ctx context.Context, itemID int64) error {
	return s.store.WithinTx(ctx, func(tx ports.RankingTx) error {
		item, err := tx.FindRankingItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if err := tx.DeleteRankingItem(ctx, itemID); err != nil {
			return err
		}
		return recalculate(ctx, tx, item.RankingID)
	})
}

func (s *rankingService) RecalculatePositions(ctx context.Context, rankingID int64) error {
	return s.store.WithinTx(ctx, func(tx ports.RankingTx) error {
		return recalculate(ctx, tx, rankingID)
	})
}

// RecalculateAll renumbers every ranking, one transaction per ranking. Used
// by the repair job.
func (s *rankingService) RecalculateAll(ctx context.Context) error {
	rankingIDs, err := s.store.ListRankingIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rankings: %w", err)
	}

	for _, rankingID := range rankingIDs {
		if err := s.RecalculatePositions(ctx, rankingID); err != nil {
			return fmt.Errorf("failed to recalculate ranking %d: %w", rankingID, err)
		}
	}

	return nil
}

// recalculate reassigns a ranking's positions to a dense 1..N sequence in
// descending score order using two batched writes: first every position is
// shifted by positionOffset so no intermediate value can collide with a
// final one under the unique index, then 1..N is assigned over the ordering
// fixed by the initial load.
func recalculate(ctx context.Context, tx ports.RankingTx, rankingID int64) error {
	items, err := tx.ListRankingItems(ctx, rankingID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	neutralized := make([]ports.PositionUpdate, len(items))
	for i, item := range items {
		neutralized[i] = ports.PositionUpdate{ItemID: item.ID, Position: item.Position + positionOffset}
	}
	if err := tx.BatchUpdatePositions(ctx, neutralized); err != nil {
		return err
	}

	assigned := make([]ports.PositionUpdate, len(items))
	for i, item := range items {
		assigned[i] = ports.PositionUpdate{ItemID: item.ID, Position: i + 1}
	}
	return tx.BatchUpdatePositions(ctx, assigned)
}
