package marketplace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/CarbonGrid-Network/carbon_layer/internal/metrics"
	"github.com/CarbonGrid-Network/carbon_layer/pkg/logger"
)

// Errors
var (
	// ErrListingNotFound covers missing, already-sold and already-cancelled
	// listings alike; the reference contract never distinguished them.
	ErrListingNotFound = errors.New("listing not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Service implements the offset marketplace operations. Preconditions are
// validated before any mutation; a purchase whose payment fails leaves the
// listing available and untouched.
type Service struct {
	mu       sync.RWMutex
	store    Store
	accounts AccountChecker
	credits  CreditTransferrer
	currency CurrencyLedger
	heights  HeightSource
	log      *logger.Logger
}

// New constructs a marketplace service over the given collaborators.
func New(accounts AccountChecker, credits CreditTransferrer, currency CurrencyLedger, store Store, heights HeightSource, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("marketplace")
	}
	return &Service{
		store:    store,
		accounts: accounts,
		credits:  credits,
		currency: currency,
		heights:  heights,
		log:      log,
	}
}

// CreateListing lists amount credits for sale at the given unit price and
// returns the stored listing with its assigned id.
func (s *Service) CreateListing(ctx context.Context, seller string, price, amount int64) (Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if price <= 0 {
		return Listing{}, fmt.Errorf("%w: non-positive price %d", ErrInvalidArgument, price)
	}
	if amount <= 0 {
		return Listing{}, fmt.Errorf("%w: non-positive amount %d", ErrInvalidArgument, amount)
	}
	if err := s.accounts.AccountExists(ctx, seller); err != nil {
		return Listing{}, fmt.Errorf("create listing: %w", err)
	}

	listing, err := s.store.CreateListing(ctx, Listing{
		Seller:    seller,
		Price:     price,
		Amount:    amount,
		Available: true,
		CreatedAt: s.heights.CurrentHeight(),
	})
	if err != nil {
		return Listing{}, fmt.Errorf("create listing: %w", err)
	}

	metrics.RecordListingEvent("created")
	s.log.WithField("listing_id", listing.ID).WithField("seller", seller).WithField("price", price).WithField("amount", amount).Info("listing created")
	return listing, nil
}

// PurchaseOffset buys the listing for buyer. The external-currency payment
// must complete before any credits move; if the subsequent credit transfer
// fails the payment is refunded and the listing stays available. A sold
// listing never becomes available again, so a second purchase always fails.
func (s *Service) PurchaseOffset(ctx context.Context, listingID uint64, buyer string) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return Trade{}, fmt.Errorf("purchase: %w", err)
	}
	if !listing.Available {
		return Trade{}, fmt.Errorf("%w: listing %d already sold", ErrListingNotFound, listingID)
	}
	if err := s.accounts.AccountExists(ctx, buyer); err != nil {
		return Trade{}, fmt.Errorf("purchase: %w", err)
	}

	if err := s.currency.Pay(ctx, buyer, listing.Seller, listing.Price); err != nil {
		return Trade{}, fmt.Errorf("purchase payment: %w", err)
	}

	if err := s.credits.TransferCredits(ctx, listing.Seller, buyer, listing.Amount); err != nil {
		// Payment already settled; hand it back before reporting failure.
		if refundErr := s.currency.Pay(ctx, listing.Seller, buyer, listing.Price); refundErr != nil {
			s.log.WithError(refundErr).WithField("listing_id", listingID).WithField("buyer", buyer).Error("refund after failed credit transfer did not settle")
		}
		return Trade{}, fmt.Errorf("purchase credit transfer: %w", err)
	}

	listing.Available = false
	if err := s.store.UpdateListing(ctx, listing); err != nil {
		return Trade{}, fmt.Errorf("purchase: %w", err)
	}

	trade := Trade{
		ID:        uuid.New().String(),
		ListingID: listing.ID,
		Seller:    listing.Seller,
		Buyer:     buyer,
		Price:     listing.Price,
		Amount:    listing.Amount,
		Height:    s.heights.CurrentHeight(),
	}
	if err := s.store.AppendTrade(ctx, trade); err != nil {
		return Trade{}, fmt.Errorf("purchase: %w", err)
	}

	metrics.RecordListingEvent("purchased")
	s.log.WithField("listing_id", listing.ID).WithField("seller", listing.Seller).WithField("buyer", buyer).Info("offset purchased")
	return trade, nil
}

// CancelListing removes the caller's own still-available listing entirely.
// The id is never reissued.
func (s *Service) CancelListing(ctx context.Context, listingID uint64, caller string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("cancel listing: %w", err)
	}
	if !listing.Available {
		return fmt.Errorf("%w: listing %d already sold", ErrListingNotFound, listingID)
	}
	if listing.Seller != caller {
		return fmt.Errorf("%w: %s is not the seller of listing %d", ErrNotAuthorized, caller, listingID)
	}

	if err := s.store.DeleteListing(ctx, listingID); err != nil {
		return fmt.Errorf("cancel listing: %w", err)
	}

	metrics.RecordListingEvent("cancelled")
	s.log.WithField("listing_id", listingID).WithField("seller", caller).Info("listing cancelled")
	return nil
}

// GetListing returns the listing with the given id.
func (s *Service) GetListing(ctx context.Context, listingID uint64) (Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.GetListing(ctx, listingID)
}

// NextListingID returns the id the next created listing will receive, which
// equals the count of listings ever created.
func (s *Service) NextListingID(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.NextListingID(ctx)
}

// ListListings returns listings ordered by id.
func (s *Service) ListListings(ctx context.Context, limit int) ([]Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.ListListings(ctx, limit)
}

// ListTrades returns trade receipts, most recent first.
func (s *Service) ListTrades(ctx context.Context, limit int) ([]Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.ListTrades(ctx, limit)
}

// GetStats returns marketplace-wide statistics.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.GetStats(ctx)
}
