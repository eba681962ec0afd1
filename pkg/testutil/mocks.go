// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockHeightSource is a settable logical clock for tests.
type MockHeightSource struct {
	mu     sync.RWMutex
	height uint64
}

// NewMockHeightSource creates a height source starting at the given height.
func NewMockHeightSource(height uint64) *MockHeightSource {
	return &MockHeightSource{height: height}
}

// CurrentHeight returns the current height.
func (m *MockHeightSource) CurrentHeight() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.height
}

// Advance moves the clock forward by blocks.
func (m *MockHeightSource) Advance(blocks uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height += blocks
}

// Set pins the clock to an absolute height.
func (m *MockHeightSource) Set(height uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height = height
}

// Payment records one external-currency movement seen by the mock ledger.
type Payment struct {
	From   string
	To     string
	Amount int64
}

// MockCurrencyLedger is a test implementation of the external currency
// ledger. It records every payment and can be told to fail.
type MockCurrencyLedger struct {
	mu       sync.Mutex
	payments []Payment
	failNext error
	failAll  error
}

// NewMockCurrencyLedger creates a currency ledger that accepts everything.
func NewMockCurrencyLedger() *MockCurrencyLedger {
	return &MockCurrencyLedger{}
}

// Pay records the payment, or fails if a failure has been injected.
func (m *MockCurrencyLedger) Pay(_ context.Context, from, to string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return m.failAll
	}
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if amount < 0 {
		return fmt.Errorf("negative payment amount %d", amount)
	}
	m.payments = append(m.payments, Payment{From: from, To: to, Amount: amount})
	return nil
}

// FailNext makes the next Pay call return err, then recover.
func (m *MockCurrencyLedger) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// FailAll makes every Pay call return err until reset with nil.
func (m *MockCurrencyLedger) FailAll(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = err
}

// Payments returns a copy of the recorded payments in order.
func (m *MockCurrencyLedger) Payments() []Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Payment, len(m.payments))
	copy(out, m.payments)
	return out
}
