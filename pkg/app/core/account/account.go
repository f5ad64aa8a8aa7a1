package account

import (
	"github.com/shopspring/decimal"
)

// Asset identifies a balance currency held by an account.
type Asset string

const (
	CPO Asset = "CPO" // base asset of the CPO-OGN pair
	OGN Asset = "OGN" // quote asset of the CPO-OGN pair
	TOR Asset = "TOR" // held and transferred only, never traded
)

// Assets lists every supported asset in display order.
var Assets = []Asset{CPO, OGN, TOR}

// Valid reports whether the asset is one the platform supports.
func (a Asset) Valid() bool {
	switch a {
	case CPO, OGN, TOR:
		return true
	}
	return false
}

// Account tracks one user's balances. Balances are mutated only by
// settlement and by the funding credit/debit primitives, and never
// go negative.
type Account struct {
	ID       string
	Balances map[Asset]decimal.Decimal
}

// NewAccount creates an account with zero balances
func NewAccount(id string) *Account {
	return &Account{
		ID:       id,
		Balances: make(map[Asset]decimal.Decimal),
	}
}

// Balance returns the held amount of one asset (zero if never credited).
func (a *Account) Balance(asset Asset) decimal.Decimal {
	return a.Balances[asset]
}
