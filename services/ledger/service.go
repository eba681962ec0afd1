package ledger

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
	ErrUserNotFound        = errors.New("user not found")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrAlreadyRegistered   = errors.New("already registered")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// Service implements the credit ledger operations. Every operation validates
// all preconditions before mutating anything, so a failure leaves the store
// untouched. Operations are serialized by the service mutex; the external
// sequencer is expected to deliver them one at a time anyway.
type Service struct {
	mu        sync.RWMutex
	store     Store
	heights   HeightSource
	economics Economics
	log       *logger.Logger
}

// New constructs a ledger service over the given store and height source.
func New(store Store, heights HeightSource, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("ledger")
	}
	return &Service{
		store:     store,
		heights:   heights,
		economics: DefaultEconomics(),
		log:       log,
	}
}

// WithEconomics overrides the issuance parameters.
func (s *Service) WithEconomics(e Economics) *Service {
	s.economics = e
	return s
}

// Economics returns the active issuance parameters.
func (s *Service) Economics() Economics {
	return s.economics
}

// RegisterUser creates an account for owner with a zero balance and default
// scores. Re-registration fails rather than overwriting the prior state.
func (s *Service) RegisterUser(ctx context.Context, owner string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner == "" {
		return Account{}, fmt.Errorf("%w: empty owner", ErrInvalidArgument)
	}

	height := s.heights.CurrentHeight()
	account := Account{
		Owner:          owner,
		Balance:        0,
		LastClaim:      height,
		EnergyScore:    s.economics.ReadingMax,
		TransportScore: s.economics.ReadingMax,
		RegisteredAt:   height,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return Account{}, fmt.Errorf("register user: %w", err)
	}

	metrics.RecordRegistration()
	s.log.WithField("owner", owner).WithField("height", height).Info("user registered")
	return account, nil
}

// RegisterDevice creates an IoT device owned by an existing account. The
// device starts active with a zero reading.
func (s *Service) RegisterDevice(ctx context.Context, deviceID string, deviceType DeviceType, owner string) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deviceID == "" {
		return Device{}, fmt.Errorf("%w: empty device id", ErrInvalidArgument)
	}
	if !deviceType.Valid() {
		return Device{}, fmt.Errorf("%w: unknown device type %q", ErrInvalidArgument, deviceType)
	}
	if _, err := s.store.GetAccount(ctx, owner); err != nil {
		return Device{}, fmt.Errorf("register device: %w", err)
	}

	device := Device{
		ID:     deviceID,
		Owner:  owner,
		Type:   deviceType,
		Active: true,
	}
	if err := s.store.CreateDevice(ctx, device); err != nil {
		return Device{}, fmt.Errorf("register device: %w", err)
	}

	s.log.WithField("device_id", deviceID).WithField("owner", owner).WithField("type", deviceType).Info("device registered")
	return device, nil
}

// UpdateDeviceReading records a sensor reading and overwrites the owner's
// matching score. The latest reading wins; no averaging.
func (s *Service) UpdateDeviceReading(ctx context.Context, deviceID string, reading int64, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reading < s.economics.ReadingMin || reading > s.economics.ReadingMax {
		return fmt.Errorf("%w: reading %d out of range [%d, %d]",
			ErrInvalidArgument, reading, s.economics.ReadingMin, s.economics.ReadingMax)
	}

	device, err := s.store.GetDevice(ctx, deviceID, owner)
	if err != nil {
		return fmt.Errorf("update reading: %w", err)
	}
	account, err := s.store.GetAccount(ctx, owner)
	if err != nil {
		return fmt.Errorf("update reading: %w", err)
	}

	device.LastReading = reading
	switch device.Type {
	case DeviceTypeEnergy:
		account.EnergyScore = reading
	case DeviceTypeTransport:
		account.TransportScore = reading
	}

	if err := s.store.UpdateDevice(ctx, device); err != nil {
		return fmt.Errorf("update reading: %w", err)
	}
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("update reading: %w", err)
	}

	metrics.RecordReading(string(device.Type))
	s.log.WithField("device_id", deviceID).WithField("owner", owner).WithField("reading", reading).Debug("device reading updated")
	return nil
}

// ClaimCredits issues credits to owner when the claim interval has elapsed
// since the last issuance, and resets the claim height. Returns the journal
// record of the issuance.
func (s *Service) ClaimCredits(ctx context.Context, owner string) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.store.GetAccount(ctx, owner)
	if err != nil {
		return Transaction{}, fmt.Errorf("claim credits: %w", err)
	}

	height := s.heights.CurrentHeight()
	if height-account.LastClaim < s.economics.ClaimInterval {
		return Transaction{}, fmt.Errorf("%w: claim interval not elapsed (last claim at %d, height %d)",
			ErrNotAuthorized, account.LastClaim, height)
	}

	issued := s.economics.Issuance(account.EnergyScore, account.TransportScore)
	account.Balance += issued
	account.LastClaim = height

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return Transaction{}, fmt.Errorf("claim credits: %w", err)
	}

	tx := Transaction{
		ID:           uuid.New().String(),
		Type:         TxTypeIssue,
		Owner:        owner,
		Amount:       issued,
		BalanceAfter: account.Balance,
		Height:       height,
	}
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		return Transaction{}, fmt.Errorf("claim credits: %w", err)
	}

	metrics.RecordClaim(issued)
	s.log.WithField("owner", owner).WithField("credits", issued).WithField("height", height).Info("credits claimed")
	return tx, nil
}

// TransferCredits moves amount from sender to recipient. All preconditions
// are checked before either balance changes, so a failure is side-effect
// free. A self-transfer validates normally and leaves the balance unchanged.
func (s *Service) TransferCredits(ctx context.Context, sender, recipient string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidArgument, amount)
	}

	senderAccount, err := s.store.GetAccount(ctx, sender)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	recipientAccount, err := s.store.GetAccount(ctx, recipient)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if senderAccount.Balance < amount {
		return fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientCredits, senderAccount.Balance, amount)
	}

	if sender == recipient {
		s.log.WithField("owner", sender).WithField("amount", amount).Debug("self transfer, balance unchanged")
		return nil
	}

	height := s.heights.CurrentHeight()
	senderAccount.Balance -= amount
	recipientAccount.Balance += amount

	if err := s.store.UpdateAccount(ctx, senderAccount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := s.store.UpdateAccount(ctx, recipientAccount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	outTx := Transaction{
		ID:           uuid.New().String(),
		Type:         TxTypeTransferOut,
		Owner:        sender,
		Counterparty: recipient,
		Amount:       -amount,
		BalanceAfter: senderAccount.Balance,
		Height:       height,
	}
	inTx := Transaction{
		ID:           uuid.New().String(),
		Type:         TxTypeTransferIn,
		Owner:        recipient,
		Counterparty: sender,
		Amount:       amount,
		BalanceAfter: recipientAccount.Balance,
		Height:       height,
	}
	if err := s.store.AppendTransaction(ctx, outTx); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := s.store.AppendTransaction(ctx, inTx); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	metrics.RecordTransfer(amount)
	s.log.WithField("sender", sender).WithField("recipient", recipient).WithField("amount", amount).Info("credits transferred")
	return nil
}

// GetAccount returns the account for owner.
func (s *Service) GetAccount(ctx context.Context, owner string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.GetAccount(ctx, owner)
}

// AccountExists reports whether owner is registered. Collaborating services
// depend on this rather than on the ledger's state directly.
func (s *Service) AccountExists(ctx context.Context, owner string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.store.GetAccount(ctx, owner); err != nil {
		return err
	}
	return nil
}

// GetDevice returns the device registered by owner under deviceID.
func (s *Service) GetDevice(ctx context.Context, deviceID, owner string) (Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.GetDevice(ctx, deviceID, owner)
}

// ListDevices returns owner's devices ordered by id.
func (s *Service) ListDevices(ctx context.Context, owner string) ([]Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.ListDevices(ctx, owner)
}

// ListTransactions returns owner's journal records, most recent first.
func (s *Service) ListTransactions(ctx context.Context, owner string, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.ListTransactions(ctx, owner, limit)
}

// GetStats returns ledger-wide statistics.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.GetStats(ctx)
}
