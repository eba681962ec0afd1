// Package marketplace provides the carbon offset marketplace: sellers list
// credits for an external-currency price, buyers purchase them, sellers can
// cancel. Credit movement is delegated to the ledger's transfer primitive and
// payment to an external currency ledger.
package marketplace

import "context"

// Listing is an offer to sell a fixed amount of credits for a fixed
// external-currency price. IDs are assigned sequentially from 0 and never
// reused, even after cancellation.
type Listing struct {
	ID        uint64 `json:"id"`
	Seller    string `json:"seller"`
	Price     int64  `json:"price"`  // external-currency unit price
	Amount    int64  `json:"amount"` // credits represented
	Available bool   `json:"available"`
	CreatedAt uint64 `json:"created_at"` // height at creation
}

// Trade is the receipt journaled for every completed purchase.
type Trade struct {
	ID        string `json:"id"`
	ListingID uint64 `json:"listing_id"`
	Seller    string `json:"seller"`
	Buyer     string `json:"buyer"`
	Price     int64  `json:"price"`
	Amount    int64  `json:"amount"`
	Height    uint64 `json:"height"`
}

// Stats summarizes marketplace state. ListingsCreated counts every listing
// ever created, including purchased and cancelled ones.
type Stats struct {
	ListingsCreated uint64 `json:"listings_created"`
	ActiveListings  int64  `json:"active_listings"`
	Trades          int64  `json:"trades"`
}

// HeightSource supplies the external logical clock.
type HeightSource interface {
	CurrentHeight() uint64
}

// AccountChecker validates that a ledger account exists.
type AccountChecker interface {
	AccountExists(ctx context.Context, owner string) error
}

// CreditTransferrer moves credits between ledger accounts. The marketplace
// holds no reference into the ledger's state; this is its only write path.
type CreditTransferrer interface {
	TransferCredits(ctx context.Context, sender, recipient string, amount int64) error
}

// CurrencyLedger moves external currency between identities. Implemented by
// the surrounding application; a purchase only completes once Pay succeeds.
type CurrencyLedger interface {
	Pay(ctx context.Context, from, to string, amount int64) error
}
