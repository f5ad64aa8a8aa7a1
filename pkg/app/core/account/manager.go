package account

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrInsufficientBalance is returned when a debit or settlement leg would
// drive a balance negative.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Manager manages all user accounts in a thread-safe manner.
// Handles credits, debits, and trade settlement transfers.
type Manager struct {
	mu       sync.RWMutex
	accounts map[string]*Account // user id -> account
}

// NewManager creates an empty account manager
func NewManager() *Manager {
	return &Manager{
		accounts: make(map[string]*Account),
	}
}

// getLocked gets or creates an account (assumes lock is held)
func (m *Manager) getLocked(id string) *Account {
	acc, exists := m.accounts[id]
	if !exists {
		acc = NewAccount(id)
		m.accounts[id] = acc
	}
	return acc
}

// Credit adds amount of asset to a user's balance.
// Creates the account if it doesn't exist.
func (m *Manager) Credit(id string, asset Asset, amount decimal.Decimal) error {
	if !asset.Valid() {
		return fmt.Errorf("unknown asset: %s", asset)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("credit amount must be positive: %s", amount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acc := m.getLocked(id)
	acc.Balances[asset] = acc.Balance(asset).Add(amount)
	return nil
}

// Debit removes amount of asset from a user's balance.
// Returns ErrInsufficientBalance if the balance would go negative.
func (m *Manager) Debit(id string, asset Asset, amount decimal.Decimal) error {
	if !asset.Valid() {
		return fmt.Errorf("unknown asset: %s", asset)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("debit amount must be positive: %s", amount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acc := m.getLocked(id)
	held := acc.Balance(asset)
	if held.LessThan(amount) {
		return fmt.Errorf("%w: %s have %s, need %s", ErrInsufficientBalance, asset, held, amount)
	}

	acc.Balances[asset] = held.Sub(amount)
	return nil
}

// Balance returns one asset balance for a user (zero for unknown users).
func (m *Manager) Balance(id string, asset Asset) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, exists := m.accounts[id]
	if !exists {
		return decimal.Zero
	}
	return acc.Balance(asset)
}

// Balances returns a snapshot of every supported asset balance for a user.
// Unknown users get all-zero balances.
func (m *Manager) Balances(id string) map[Asset]decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[Asset]decimal.Decimal, len(Assets))
	acc := m.accounts[id]
	for _, asset := range Assets {
		if acc != nil {
			out[asset] = acc.Balance(asset)
		} else {
			out[asset] = decimal.Zero
		}
	}
	return out
}

// SettleTrade applies the four balance legs of one fill atomically: the buyer
// pays qty*price of the quote asset and receives qty of the base asset, the
// seller moves inversely. Both parties are re-validated under the lock first;
// if either cannot pay, nothing moves and false is returned so the matcher
// can skip the candidate. Resting orders may have been placed against a
// balance that other trades have since reduced, so this check is mandatory
// even when the caller pre-checked.
func (m *Manager) SettleTrade(buyer, seller string, base, quote Asset, qty, price decimal.Decimal) bool {
	cost := qty.Mul(price)

	m.mu.Lock()
	defer m.mu.Unlock()

	buyerAcc := m.getLocked(buyer)
	sellerAcc := m.getLocked(seller)

	if buyerAcc.Balance(quote).LessThan(cost) {
		return false
	}
	if sellerAcc.Balance(base).LessThan(qty) {
		return false
	}

	buyerAcc.Balances[base] = buyerAcc.Balance(base).Add(qty)
	buyerAcc.Balances[quote] = buyerAcc.Balance(quote).Sub(cost)
	sellerAcc.Balances[base] = sellerAcc.Balance(base).Sub(qty)
	sellerAcc.Balances[quote] = sellerAcc.Balance(quote).Add(cost)

	return true
}

// Count returns the total number of accounts
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}
