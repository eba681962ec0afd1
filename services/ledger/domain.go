// Package ledger provides the carbon credit ledger: accounts, IoT devices,
// sensor-driven scores, time-gated credit issuance and peer-to-peer transfer.
package ledger

// Default economics. Claim eligibility and issuance are driven by these
// values unless overridden through Economics.
const (
	DefaultBaseCreditRate   = 1000 // flat credits per claim
	DefaultCreditMultiplier = 100  // percent applied to each score
	DefaultClaimInterval    = 144  // heights between claims (~one day at 10-minute blocks)
	DefaultReadingMin       = 0
	DefaultReadingMax       = 100
)

// DeviceType identifies which score a device feeds.
type DeviceType string

const (
	DeviceTypeEnergy    DeviceType = "energy"
	DeviceTypeTransport DeviceType = "transport"
)

// Valid reports whether the device type is one of the known kinds.
func (t DeviceType) Valid() bool {
	return t == DeviceTypeEnergy || t == DeviceTypeTransport
}

// Account holds a participant's credit balance and latest sensor scores.
type Account struct {
	Owner          string `json:"owner"`           // externally authenticated identity
	Balance        int64  `json:"balance"`         // credits owned, never negative
	LastClaim      uint64 `json:"last_claim"`      // height of the last issuance
	EnergyScore    int64  `json:"energy_score"`    // latest energy reading, 0-100
	TransportScore int64  `json:"transport_score"` // latest transport reading, 0-100
	RegisteredAt   uint64 `json:"registered_at"`   // height of registration
}

// Device is an IoT sensor registered by an account. Device IDs are only
// unique per owner, so the store keys devices by the (ID, Owner) pair.
type Device struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Type        DeviceType `json:"type"`
	Active      bool       `json:"active"`
	LastReading int64      `json:"last_reading"`
}

// TxType classifies a journal record.
type TxType string

const (
	TxTypeIssue       TxType = "issue"
	TxTypeTransferIn  TxType = "transfer_in"
	TxTypeTransferOut TxType = "transfer_out"
)

// Transaction is a journal record of a balance movement. Issuance produces a
// single record; a transfer produces one record per side.
type Transaction struct {
	ID           string `json:"id"`
	Type         TxType `json:"type"`
	Owner        string `json:"owner"`
	Counterparty string `json:"counterparty,omitempty"` // empty for issuance
	Amount       int64  `json:"amount"`                 // signed: negative on the debit side
	BalanceAfter int64  `json:"balance_after"`
	Height       uint64 `json:"height"`
}

// Economics collects the tunable issuance parameters.
type Economics struct {
	BaseCreditRate   int64  `json:"base_credit_rate" yaml:"base_credit_rate"`
	CreditMultiplier int64  `json:"credit_multiplier" yaml:"credit_multiplier"`
	ClaimInterval    uint64 `json:"claim_interval" yaml:"claim_interval"`
	ReadingMin       int64  `json:"reading_min" yaml:"reading_min"`
	ReadingMax       int64  `json:"reading_max" yaml:"reading_max"`
}

// DefaultEconomics returns the stock parameters.
func DefaultEconomics() Economics {
	return Economics{
		BaseCreditRate:   DefaultBaseCreditRate,
		CreditMultiplier: DefaultCreditMultiplier,
		ClaimInterval:    DefaultClaimInterval,
		ReadingMin:       DefaultReadingMin,
		ReadingMax:       DefaultReadingMax,
	}
}

// Issuance computes the credits a claim yields for the given scores using
// integer arithmetic only.
func (e Economics) Issuance(energyScore, transportScore int64) int64 {
	energyBonus := energyScore * e.CreditMultiplier / 100
	transportBonus := transportScore * e.CreditMultiplier / 100
	return e.BaseCreditRate + energyBonus + transportBonus
}

// Stats summarizes ledger state.
type Stats struct {
	Accounts     int64 `json:"accounts"`
	Devices      int64 `json:"devices"`
	TotalSupply  int64 `json:"total_supply"`
	Transactions int64 `json:"transactions"`
}

// HeightSource supplies the external logical clock. The ledger never
// advances it.
type HeightSource interface {
	CurrentHeight() uint64
}
