package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store defines the state container backing the ledger. The ledger owns its
// accounts and devices exclusively; other components reach them only through
// the service operations.
type Store interface {
	// Account operations
	CreateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, owner string) (Account, error)
	UpdateAccount(ctx context.Context, account Account) error
	ListAccounts(ctx context.Context) ([]Account, error)

	// Device operations
	CreateDevice(ctx context.Context, device Device) error
	GetDevice(ctx context.Context, deviceID, owner string) (Device, error)
	UpdateDevice(ctx context.Context, device Device) error
	ListDevices(ctx context.Context, owner string) ([]Device, error)

	// Journal operations
	AppendTransaction(ctx context.Context, tx Transaction) error
	ListTransactions(ctx context.Context, owner string, limit int) ([]Transaction, error)

	// Stats operations
	GetStats(ctx context.Context) (Stats, error)
}

// MemoryStore is the in-memory Store implementation. Persistence is owned by
// the surrounding application, so this is the store the core runs on.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]Account
	devices      map[string]Device
	transactions []Transaction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		devices:  make(map[string]Device),
	}
}

func deviceKey(deviceID, owner string) string {
	return deviceID + "/" + owner
}

func (s *MemoryStore) CreateAccount(ctx context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Owner]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, account.Owner)
	}
	s.accounts[account.Owner] = account
	return nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, owner string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[owner]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrUserNotFound, owner)
	}
	return account, nil
}

func (s *MemoryStore) UpdateAccount(ctx context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Owner]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, account.Owner)
	}
	s.accounts[account.Owner] = account
	return nil
}

func (s *MemoryStore) ListAccounts(ctx context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Owner < result[j].Owner })
	return result, nil
}

func (s *MemoryStore) CreateDevice(ctx context.Context, device Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := deviceKey(device.ID, device.Owner)
	if _, ok := s.devices[key]; ok {
		return fmt.Errorf("%w: device %s", ErrAlreadyRegistered, device.ID)
	}
	s.devices[key] = device
	return nil
}

func (s *MemoryStore) GetDevice(ctx context.Context, deviceID, owner string) (Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	device, ok := s.devices[deviceKey(deviceID, owner)]
	if !ok {
		return Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	return device, nil
}

func (s *MemoryStore) UpdateDevice(ctx context.Context, device Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := deviceKey(device.ID, device.Owner)
	if _, ok := s.devices[key]; !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, device.ID)
	}
	s.devices[key] = device
	return nil
}

func (s *MemoryStore) ListDevices(ctx context.Context, owner string) ([]Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Device
	for _, device := range s.devices {
		if device.Owner == owner {
			result = append(result, device)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemoryStore) AppendTransaction(ctx context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, owner string, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].Owner == owner {
			result = append(result, s.transactions[i])
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (s *MemoryStore) GetStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var supply int64
	for _, account := range s.accounts {
		supply += account.Balance
	}
	return Stats{
		Accounts:     int64(len(s.accounts)),
		Devices:      int64(len(s.devices)),
		TotalSupply:  supply,
		Transactions: int64(len(s.transactions)),
	}, nil
}
