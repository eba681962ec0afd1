package marketplace

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store defines the state container backing the marketplace. The marketplace
// owns the listing map and the id counter exclusively.
type Store interface {
	// Listing operations
	CreateListing(ctx context.Context, listing Listing) (Listing, error)
	GetListing(ctx context.Context, id uint64) (Listing, error)
	UpdateListing(ctx context.Context, listing Listing) error
	DeleteListing(ctx context.Context, id uint64) error
	ListListings(ctx context.Context, limit int) ([]Listing, error)
	NextListingID(ctx context.Context) (uint64, error)

	// Trade operations
	AppendTrade(ctx context.Context, trade Trade) error
	ListTrades(ctx context.Context, limit int) ([]Trade, error)

	// Stats operations
	GetStats(ctx context.Context) (Stats, error)
}

// MemoryStore is the in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[uint64]Listing
	nextID   uint64
	trades   []Trade
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{listings: make(map[uint64]Listing)}
}

// CreateListing stores the listing under the next sequential id. The counter
// only ever moves forward; cancelled and purchased ids are never reissued.
func (s *MemoryStore) CreateListing(ctx context.Context, listing Listing) (Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing.ID = s.nextID
	s.nextID++
	s.listings[listing.ID] = listing
	return listing, nil
}

func (s *MemoryStore) GetListing(ctx context.Context, id uint64) (Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[id]
	if !ok {
		return Listing{}, fmt.Errorf("%w: %d", ErrListingNotFound, id)
	}
	return listing, nil
}

func (s *MemoryStore) UpdateListing(ctx context.Context, listing Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[listing.ID]; !ok {
		return fmt.Errorf("%w: %d", ErrListingNotFound, listing.ID)
	}
	s.listings[listing.ID] = listing
	return nil
}

func (s *MemoryStore) DeleteListing(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[id]; !ok {
		return fmt.Errorf("%w: %d", ErrListingNotFound, id)
	}
	delete(s.listings, id)
	return nil
}

func (s *MemoryStore) ListListings(ctx context.Context, limit int) ([]Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		result = append(result, listing)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStore) NextListingID(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nextID, nil
}

func (s *MemoryStore) AppendTrade(ctx context.Context, trade Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades = append(s.trades, trade)
	return nil
}

func (s *MemoryStore) ListTrades(ctx context.Context, limit int) ([]Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Trade, 0, len(s.trades))
	for i := len(s.trades) - 1; i >= 0; i-- {
		result = append(result, s.trades[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryStore) GetStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active int64
	for _, listing := range s.listings {
		if listing.Available {
			active++
		}
	}
	return Stats{
		ListingsCreated: s.nextID,
		ActiveListings:  active,
		Trades:          int64(len(s.trades)),
	}, nil
}
