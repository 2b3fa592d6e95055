package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

type rankingStore struct {
	db *sql.DB
}

func NewRankingStore(db *sql.DB) ports.RankingStore {
	return &rankingStore{
		db: db,
	}
}

func (s *rankingStore) WithinTx(ctx context.Context, fn func(tx ports.RankingTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&rankingTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *rankingStore) ListRankingIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM rankings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ranking id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rankings: %w", err)
	}
	return ids, nil
}

type rankingTx struct {
	tx *sql.Tx
}

func (t *rankingTx) RankingExists(ctx context.Context, rankingID int64) (bool, error) {
	return t.exists(ctx, `SELECT 1 FROM rankings WHERE id = $1`, rankingID)
}

func (t *rankingTx) MovieExists(ctx context.Context, movieID int64) (bool, error) {
	return t.exists(ctx, `SELECT 1 FROM movies WHERE id = $1`, movieID)
}

func (t *rankingTx) exists(ctx context.Context, query string, id int64) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, query, id).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}

// ListRankingItems fixes the recalculation order: score descending with NULL
// scores last, ties broken by current position then id. FOR UPDATE locks the
// item rows so concurrent recalculations of the same ranking serialize.
func (t *rankingTx) ListRankingItems(ctx context.Context, rankingID int64) ([]domain.RankingItem, error) {
	query := `
		SELECT id, ranking_id, movie_id, position, score
		FROM ranking_items
		WHERE ranking_id = $1
		ORDER BY score DESC NULLS LAST, position ASC, id ASC
		FOR UPDATE
	`
	rows, err := t.tx.QueryContext(ctx, query, rankingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking items: %w", err)
	}
	defer rows.Close()

	var items []domain.RankingItem
	for rows.Next() {
		var item domain.RankingItem
		if err := rows.Scan(&item.ID, &item.RankingID, &item.MovieID, &item.Position, &item.Score); err != nil {
			return nil, fmt.Errorf("failed to scan ranking item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranking items: %w", err)
	}
	return items, nil
}

func (t *rankingTx) InsertRankingItem(ctx context.Context, item *domain.RankingItem) error {
	query := `
		INSERT INTO ranking_items (ranking_id, movie_id, position, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := t.tx.QueryRowContext(ctx, query, item.RankingID, item.MovieID, item.Position, item.Score).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert ranking item: %w", err)
	}
	return nil
}

func (t *rankingTx) FindRankingItemByID(ctx context.Context, itemID int64) (*domain.RankingItem, error) {
	query := `
		SELECT id, ranking_id, movie_id, position, score
		FROM ranking_items
		WHERE id = $1
	`
	var item domain.RankingItem
	err := t.tx.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID, &item.RankingID, &item.MovieID, &item.Position, &item.Score,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRankingItemNotFound
		}
		return nil, fmt.Errorf("failed to get ranking item: %w", err)
	}
	return &item, nil
}

func (t *rankingTx) UpdateRankingItemScore(ctx context.Context, itemID int64, score *float64) error {
	query := `UPDATE ranking_items SET score = $1 WHERE id = $2`
	_, err := t.tx.ExecContext(ctx, query, score, itemID)
	if err != nil {
		return fmt.Errorf("failed to update ranking item score: %w", err)
	}
	return nil
}

func (t *rankingTx) DeleteRankingItem(ctx context.Context, itemID int64) error {
	query := `DELETE FROM ranking_items WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, query, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete ranking item: %w", err)
	}
	return nil
}

func (t *rankingTx) BatchUpdatePositions(ctx context.Context, updates []ports.PositionUpdate) error {
	query := `UPDATE ranking_items SET position = $1 WHERE id = $2`
	stmt, err := t.tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare position statement: %w", err)
	}
	defer stmt.Close()

	for _, update := range updates {
		if _, err := stmt.ExecContext(ctx, update.Position, update.ItemID); err != nil {
			return fmt.Errorf("failed to update position: %w", err)
		}
	}
	return nil
}
