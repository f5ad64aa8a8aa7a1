package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PairStatus defines the trading status of a pair
type PairStatus int8

const (
	Active PairStatus = iota // Trading enabled
	Paused                   // Trading halted (emergency)
)

func (ps PairStatus) String() string {
	switch ps {
	case Active:
		return "Active"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Pair defines all parameters for a trading pair (e.g., CPO-OGN spot)
type Pair struct {
	// Identity
	Symbol     string // "CPO-OGN"
	BaseAsset  string // "CPO"
	QuoteAsset string // "OGN"
	Status     PairStatus

	// Order limits
	// MaxPrice: upper bound for a limit price (prices are quoted in the
	// quote asset and must be strictly positive).
	MaxPrice decimal.Decimal

	// MaxOrderQty: maximum quantity of a single order, in base asset units.
	MaxOrderQty decimal.Decimal
}

// PairParams is a helper struct for creating pairs with all parameters
type PairParams struct {
	MaxPrice    decimal.Decimal
	MaxOrderQty decimal.Decimal
}

// DefaultCPOOGN returns the default parameters for the CPO-OGN spot pair.
var DefaultCPOOGN = PairParams{
	MaxPrice:    decimal.NewFromInt(100),
	MaxOrderQty: decimal.NewFromInt(1_000_000),
}

// NewPair creates a new pair with validation
func NewPair(symbol, baseAsset, quoteAsset string, params PairParams) (*Pair, error) {
	p := &Pair{
		Symbol:      symbol,
		BaseAsset:   baseAsset,
		QuoteAsset:  quoteAsset,
		Status:      Active,
		MaxPrice:    params.MaxPrice,
		MaxOrderQty: params.MaxOrderQty,
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pair params: %w", err)
	}

	return p, nil
}

// NewPairWithDefaults creates a pair using the default CPO-OGN parameters
func NewPairWithDefaults(symbol, baseAsset, quoteAsset string) (*Pair, error) {
	return NewPair(symbol, baseAsset, quoteAsset, DefaultCPOOGN)
}

// Validate checks pair parameter sanity
func (p *Pair) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if p.BaseAsset == "" || p.QuoteAsset == "" {
		return fmt.Errorf("base and quote assets must be specified")
	}
	if p.BaseAsset == p.QuoteAsset {
		return fmt.Errorf("base and quote assets must differ")
	}
	if !p.MaxPrice.IsPositive() {
		return fmt.Errorf("max price must be positive")
	}
	if !p.MaxOrderQty.IsPositive() {
		return fmt.Errorf("max order quantity must be positive")
	}
	return nil
}

// ValidateOrder checks an incoming order's price and quantity against the
// pair's bounds. Violations reject the order before any book mutation.
func (p *Pair) ValidateOrder(price, qty decimal.Decimal) error {
	if p.Status != Active {
		return fmt.Errorf("pair %s is not active (status: %s)", p.Symbol, p.Status)
	}
	if !qty.IsPositive() {
		return fmt.Errorf("quantity must be positive")
	}
	if qty.GreaterThan(p.MaxOrderQty) {
		return fmt.Errorf("quantity %s exceeds maximum %s", qty, p.MaxOrderQty)
	}
	if !price.IsPositive() {
		return fmt.Errorf("price must be positive")
	}
	if price.GreaterThan(p.MaxPrice) {
		return fmt.Errorf("price %s exceeds maximum %s", price, p.MaxPrice)
	}
	return nil
}
