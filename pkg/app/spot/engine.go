// Package spot ties the order books, pair registry, and account balances
// into the order submission engine. Matching and settlement for a pair run
// as one critical section: no submission observes a partially updated book
// or a half-applied trade.
package spot

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AnDev002/cpotrade/pkg/app/core/account"
	"github.com/AnDev002/cpotrade/pkg/app/core/market"
	"github.com/AnDev002/cpotrade/pkg/app/core/orderbook"
	"github.com/AnDev002/cpotrade/pkg/util"
)

// DefaultHistoryLimit caps how many executed trades a pair retains for the
// trade-history API.
const DefaultHistoryLimit = 1000

// Engine owns all mutable trading state. Submissions for one pair are
// serialized through the pair's lock; independent pairs run in parallel.
type Engine struct {
	pairs    *market.Registry
	accounts *account.Manager
	clock    util.Clock
	log      *zap.SugaredLogger

	// HistoryLimit bounds the per-pair trade history. Set before use.
	HistoryLimit int

	// OnTrade, when set, is invoked for every executed trade after the
	// submission's critical section has been released.
	OnTrade func(Trade)

	mu    sync.RWMutex
	state map[string]*pairState // symbol -> book + history + lock
}

// pairState is the unit of serialization: matching, settlement, book updates,
// and history append for one pair all happen under mu.
type pairState struct {
	mu     sync.Mutex
	pair   *market.Pair
	book   *orderbook.Book
	trades []Trade
}

// NewEngine creates an engine over the given pair registry and accounts.
func NewEngine(pairs *market.Registry, accounts *account.Manager, clock util.Clock, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	e := &Engine{
		pairs:        pairs,
		accounts:     accounts,
		clock:        clock,
		log:          logger,
		HistoryLimit: DefaultHistoryLimit,
		state:        make(map[string]*pairState),
	}
	for _, p := range pairs.List() {
		e.state[p.Symbol] = &pairState{pair: p, book: orderbook.NewBook()}
	}
	return e
}

// Accounts exposes the account manager for the funding workflow.
func (e *Engine) Accounts() *account.Manager { return e.accounts }

// Pairs returns the registered trading pairs.
func (e *Engine) Pairs() []*market.Pair { return e.pairs.List() }

// pairState returns the book state for a symbol, creating it when the pair
// was registered after the engine was built.
func (e *Engine) pairState(symbol string) (*pairState, error) {
	e.mu.RLock()
	ps, ok := e.state[symbol]
	e.mu.RUnlock()
	if ok {
		return ps, nil
	}

	p, err := e.pairs.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPair, symbol)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ps, ok := e.state[symbol]; ok {
		return ps, nil
	}
	ps = &pairState{pair: p, book: orderbook.NewBook()}
	e.state[symbol] = ps
	return ps, nil
}

// SubmitOrder validates an incoming limit order, matches it against the
// resting book with price-time priority, settles the fills, and rests any
// unfilled remainder. Once the order itself passes validation the call
// cannot fail: underfunded counter-orders are skipped, not fatal.
func (e *Engine) SubmitOrder(symbol string, side orderbook.Side, qty, price decimal.Decimal, owner string) (SubmitResult, error) {
	ps, err := e.pairState(symbol)
	if err != nil {
		return SubmitResult{}, err
	}

	if side != orderbook.Buy && side != orderbook.Sell {
		return SubmitResult{}, fmt.Errorf("%w: bad side %d", ErrInvalidOrder, side)
	}
	if owner == "" {
		return SubmitResult{}, fmt.Errorf("%w: owner must be specified", ErrInvalidOrder)
	}
	if err := ps.pair.ValidateOrder(price, qty); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	// Courtesy pre-check on the submitter's own balance. Counter-orders are
	// re-validated per fill regardless; this only saves the caller a
	// round-trip for an order that could never settle at submission time.
	base := account.Asset(ps.pair.BaseAsset)
	quote := account.Asset(ps.pair.QuoteAsset)
	if side == orderbook.Sell {
		if e.accounts.Balance(owner, base).LessThan(qty) {
			return SubmitResult{}, fmt.Errorf("%w: selling %s %s", ErrInsufficientBalance, qty, base)
		}
	} else {
		cost := qty.Mul(price)
		if e.accounts.Balance(owner, quote).LessThan(cost) {
			return SubmitResult{}, fmt.Errorf("%w: buying for %s %s", ErrInsufficientBalance, cost, quote)
		}
	}

	incoming := &orderbook.Order{
		ID:        uuid.NewString(),
		Pair:      symbol,
		Side:      side,
		Owner:     owner,
		Price:     price,
		Quantity:  qty,
		CreatedAt: e.clock.Now().UnixMilli(),
	}

	result := e.matchAndSettle(ps, incoming)

	for _, t := range result.Trades {
		e.log.Infow("trade_executed",
			"pair", t.Pair, "buyer", t.Buyer, "seller", t.Seller,
			"qty", t.Quantity, "price", t.Price)
		if e.OnTrade != nil {
			e.OnTrade(t)
		}
	}

	return result, nil
}

// matchAndSettle is the critical section: candidate selection, ranking,
// fills, balance transfers, and book updates as one atomic unit per pair.
func (e *Engine) matchAndSettle(ps *pairState, incoming *orderbook.Order) SubmitResult {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	base := account.Asset(ps.pair.BaseAsset)
	quote := account.Asset(ps.pair.QuoteAsset)

	var trades []Trade

	candidates := ps.book.CandidatesFor(incoming)
	for _, cand := range candidates {
		if !incoming.Quantity.IsPositive() {
			break
		}

		fillQty := decimal.Min(incoming.Quantity, cand.Quantity)
		fillPrice := cand.Price // the resting order always sets the price

		buyer, seller := incoming.Owner, cand.Owner
		if incoming.Side == orderbook.Sell {
			buyer, seller = cand.Owner, incoming.Owner
		}

		if !e.accounts.SettleTrade(buyer, seller, base, quote, fillQty, fillPrice) {
			// The candidate's owner can no longer cover the fill; skip it
			// and keep walking the remaining candidates.
			e.log.Debugw("fill_skipped_insufficient_balance",
				"pair", incoming.Pair, "order", cand.ID, "owner", cand.Owner)
			continue
		}

		cand.Quantity = cand.Quantity.Sub(fillQty)
		if cand.Quantity.IsZero() {
			cand.Status = orderbook.Filled
			ps.book.Remove(cand.ID)
		}

		incoming.Quantity = incoming.Quantity.Sub(fillQty)

		trades = append(trades, Trade{
			ID:        uuid.NewString(),
			Pair:      incoming.Pair,
			Buyer:     buyer,
			Seller:    seller,
			Quantity:  fillQty,
			Price:     fillPrice,
			Timestamp: e.clock.Now().UnixMilli(),
		})
	}

	result := SubmitResult{Trades: trades}

	if incoming.Quantity.IsPositive() {
		// Rest the remainder. Insert stamps a fresh submission sequence, so
		// the remainder queues behind orders already at its price.
		incoming.CreatedAt = e.clock.Now().UnixMilli()
		ps.book.Insert(incoming)
		result.RestingOrderID = incoming.ID
	} else {
		incoming.Status = orderbook.Filled
	}

	if len(trades) > 0 {
		ps.trades = append(ps.trades, trades...)
		if limit := e.HistoryLimit; limit > 0 && len(ps.trades) > limit {
			ps.trades = append([]Trade(nil), ps.trades[len(ps.trades)-limit:]...)
		}
	}

	return result
}

// CancelOrder removes a resting order. Cancelling an unknown id is a no-op
// returning (false, nil); a caller that does not own the order gets
// ErrNotOwner and the order stays on the book.
func (e *Engine) CancelOrder(orderID, owner string) (bool, error) {
	e.mu.RLock()
	states := make([]*pairState, 0, len(e.state))
	for _, ps := range e.state {
		states = append(states, ps)
	}
	e.mu.RUnlock()

	for _, ps := range states {
		ps.mu.Lock()
		o, ok := ps.book.Get(orderID)
		if !ok {
			ps.mu.Unlock()
			continue
		}
		if o.Owner != owner {
			ps.mu.Unlock()
			return false, fmt.Errorf("%w: order %s", ErrNotOwner, orderID)
		}
		o.Status = orderbook.Cancelled
		ps.book.Remove(orderID)
		ps.mu.Unlock()

		e.log.Infow("order_cancelled", "pair", o.Pair, "order", orderID, "owner", owner)
		return true, nil
	}

	return false, nil
}

// OrderBook returns a display snapshot of one pair's book, both sides in
// priority order.
func (e *Engine) OrderBook(symbol string) (BookSnapshot, error) {
	ps, err := e.pairState(symbol)
	if err != nil {
		return BookSnapshot{}, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	return BookSnapshot{
		Pair: symbol,
		Bids: ps.book.Bids(),
		Asks: ps.book.Asks(),
	}, nil
}

// Trades returns the retained trade history for a pair, oldest first.
func (e *Engine) Trades(symbol string) ([]Trade, error) {
	ps, err := e.pairState(symbol)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]Trade, len(ps.trades))
	copy(out, ps.trades)
	return out, nil
}

// Balances returns a user's balances across all supported assets.
func (e *Engine) Balances(user string) map[account.Asset]decimal.Decimal {
	return e.accounts.Balances(user)
}

// CreditBalance is the out-of-band balance mutation primitive used by the
// deposit/withdraw approval flow.
func (e *Engine) CreditBalance(user string, asset account.Asset, amount decimal.Decimal) error {
	return e.accounts.Credit(user, asset, amount)
}

// DebitBalance is the out-of-band counterpart of CreditBalance. It fails
// with ErrInsufficientBalance rather than letting a balance go negative.
func (e *Engine) DebitBalance(user string, asset account.Asset, amount decimal.Decimal) error {
	return e.accounts.Debit(user, asset, amount)
}
