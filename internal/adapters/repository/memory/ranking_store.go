package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fylt/catalog/internal/core/domain"
	"github.com/fylt/catalog/internal/core/ports"
)

type rankingState struct {
	nextRankingID int64
	nextMovieID   int64
	nextItemID    int64
	rankings      map[int64]string
	movies        map[int64]string
	items         map[int64]domain.RankingItem
}

func (s *rankingState) clone() *rankingState {
	next := &rankingState{
		nextRankingID: s.nextRankingID,
		nextMovieID:   s.nextMovieID,
		nextItemID:    s.nextItemID,
		rankings:      make(map[int64]string, len(s.rankings)),
		movies:        make(map[int64]string, len(s.movies)),
		items:         make(map[int64]domain.RankingItem, len(s.items)),
	}
	for id, name := range s.rankings {
		next.rankings[id] = name
	}
	for id, title := range s.movies {
		next.movies[id] = title
	}
	for id, item := range s.items {
		if item.Score != nil {
			score := *item.Score
			item.Score = &score
		}
		next.items[id] = item
	}
	return next
}

// RankingStore is an in-memory ports.RankingStore with the same copy-on-write
// transaction semantics as PollStore. Position writes enforce the
// (ranking, position) uniqueness per call, mirroring a per-statement unique
// index check.
type RankingStore struct {
	mu    sync.Mutex
	state *rankingState

	// PositionUpdateErr, when set, is returned (and cleared) by the next
	// BatchUpdatePositions call inside a transaction.
	PositionUpdateErr error
}

func NewRankingStore() *RankingStore {
	return &RankingStore{
		state: &rankingState{
			nextRankingID: 1,
			nextMovieID:   1,
			nextItemID:    1,
			rankings:      make(map[int64]string),
			movies:        make(map[int64]string),
			items:         make(map[int64]domain.RankingItem),
		},
	}
}

// AddRanking seeds a ranking and returns its id. Test helper.
func (s *RankingStore) AddRanking(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.state.nextRankingID
	s.state.nextRankingID++
	s.state.rankings[id] = name
	return id
}

// AddMovie seeds a movie and returns its id. Test helper.
func (s *RankingStore) AddMovie(title string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.state.nextMovieID
	s.state.nextMovieID++
	s.state.movies[id] = title
	return id
}

// ItemsByPosition returns a ranking's items ordered by position. Test helper.
func (s *RankingStore) ItemsByPosition(rankingID int64) []domain.RankingItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.RankingItem
	for _, item := range s.state.items {
		if item.RankingID == rankingID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items
}

func (s *RankingStore) WithinTx(_ context.Context, fn func(tx ports.RankingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&rankingTx{store: s, state: next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *RankingStore) ListRankingIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.state.rankings))
	for id := range s.state.rankings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type rankingTx struct {
	store *RankingStore
	state *rankingState
}

func (t *rankingTx) RankingExists(_ context.Context, rankingID int64) (bool, error) {
	_, ok := t.state.rankings[rankingID]
	return ok, nil
}

func (t *rankingTx) MovieExists(_ context.Context, movieID int64) (bool, error) {
	_, ok := t.state.movies[movieID]
	return ok, nil
}

func (t *rankingTx) ListRankingItems(_ context.Context, rankingID int64) ([]domain.RankingItem, error) {
	var items []domain.RankingItem
	for _, item := range t.state.items {
		if item.RankingID == rankingID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Score != nil && b.Score == nil:
			return true
		case a.Score == nil && b.Score != nil:
			return false
		case a.Score != nil && b.Score != nil && *a.Score != *b.Score:
			return *a.Score > *b.Score
		case a.Position != b.Position:
			return a.Position < b.Position
		default:
			return a.ID < b.ID
		}
	})
	return items, nil
}

func (t *rankingTx) InsertRankingItem(_ context.Context, item *domain.RankingItem) error {
	if err := t.checkPositionFree(item.RankingID, item.Position, 0); err != nil {
		return err
	}
	item.ID = t.state.nextItemID
	t.state.nextItemID++
	t.state.items[item.ID] = *item
	return nil
}

func (t *rankingTx) FindRankingItemByID(_ context.Context, itemID int64) (*domain.RankingItem, error) {
	item, ok := t.state.items[itemID]
	if !ok {
		return nil, domain.ErrRankingItemNotFound
	}
	return &item, nil
}

func (t *rankingTx) UpdateRankingItemScore(_ context.Context, itemID int64, score *float64) error {
	item, ok := t.state.items[itemID]
	if !ok {
		return domain.ErrRankingItemNotFound
	}
	item.Score = score
	t.state.items[itemID] = item
	return nil
}

func (t *rankingTx) DeleteRankingItem(_ context.Context, itemID int64) error {
	delete(t.state.items, itemID)
	return nil
}

func (t *rankingTx) BatchUpdatePositions(_ context.Context, updates []ports.PositionUpdate) error {
	if err := t.store.PositionUpdateErr; err != nil {
		t.store.PositionUpdateErr = nil
		return err
	}

	for _, update := range updates {
		item, ok := t.state.items[update.ItemID]
		if !ok {
			return domain.ErrRankingItemNotFound
		}
		if err := t.checkPositionFree(item.RankingID, update.Position, item.ID); err != nil {
			return err
		}
		item.Position = update.Position
		t.state.items[update.ItemID] = item
	}
	return nil
}

// checkPositionFree mimics the store's per-statement check of the
// (ranking_id, position) unique index.
func (t *rankingTx) checkPositionFree(rankingID int64, position int, selfID int64) error {
	for _, other := range t.state.items {
		if other.RankingID == rankingID && other.Position == position && other.ID != selfID {
			return fmt.Errorf("duplicate position %d in ranking %d", position, rankingID)
		}
	}
	return nil
}

var _ ports.RankingStore = (*RankingStore)(nil)
