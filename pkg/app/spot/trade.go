package spot

import (
	"github.com/shopspring/decimal"

	"github.com/AnDev002/cpotrade/pkg/app/core/orderbook"
)

// Trade is one executed fill between a buyer and a seller. Trades are
// created by settlement and never mutated afterwards.
type Trade struct {
	ID        string
	Pair      string
	Buyer     string // buyer user id
	Seller    string // seller user id
	Quantity  decimal.Decimal
	Price     decimal.Decimal // the resting order's price
	Timestamp int64           // Unix milliseconds
}

// SubmitResult is what a caller gets back from SubmitOrder: the fills that
// executed, in execution order, and the id of the resting remainder order
// (empty when the incoming order filled completely).
type SubmitResult struct {
	Trades         []Trade
	RestingOrderID string
}

// BookSnapshot is a point-in-time view of one pair's book, both sides in
// priority order. It carries no consistency guarantee across time; it is
// for display only.
type BookSnapshot struct {
	Pair string
	Bids []orderbook.Order
	Asks []orderbook.Order
}
