package orderbook

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the counter side
func (s Side) Opposite() Side { return -s }

// OrderStatus represents the lifecycle state of an order.
// A partially filled order stays Pending with a reduced quantity.
type OrderStatus int8

const (
	Pending OrderStatus = iota
	Filled
	Cancelled
)

func (s OrderStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Order is a limit order. Quantity is the unfilled remainder; it is reduced
// in place as fills execute and must stay positive while the order is Pending.
type Order struct {
	ID    string
	Pair  string // e.g. "CPO-OGN"
	Side  Side
	Owner string // opaque user id

	Price    decimal.Decimal // limit price in quote asset
	Quantity decimal.Decimal // remaining quantity in base asset

	Status    OrderStatus
	CreatedAt int64 // Unix milliseconds, for display

	// Seq is the book's monotonic submission sequence, assigned on Insert.
	// It is the time component of price-time priority: within a price level
	// the lower Seq rests earlier and fills first.
	Seq uint64
}

// Book holds the resting Pending orders of one pair, one collection per side.
// It does no locking of its own: the engine serializes every submission,
// cancellation, and snapshot for a pair through the pair's critical section.
type Book struct {
	bids []*Order
	asks []*Order

	index map[string]*Order // id -> order, for O(1) cancellation lookups

	nextSeq uint64
}

func NewBook() *Book {
	return &Book{
		index: make(map[string]*Order),
	}
}

// Insert adds a Pending order to its side and stamps its submission sequence.
func (b *Book) Insert(o *Order) {
	b.nextSeq++
	o.Seq = b.nextSeq
	o.Status = Pending

	if o.Side == Buy {
		b.bids = append(b.bids, o)
	} else {
		b.asks = append(b.asks, o)
	}
	b.index[o.ID] = o
}

// Get returns the resting order with the given id, if present.
func (b *Book) Get(id string) (*Order, bool) {
	o, ok := b.index[id]
	return o, ok
}

// Remove deletes an order from the book. Removing an absent id is a no-op
// and returns false; callers treat that as "not found", never as an error.
func (b *Book) Remove(id string) bool {
	o, ok := b.index[id]
	if !ok {
		return false
	}

	side := &b.bids
	if o.Side == Sell {
		side = &b.asks
	}
	for i, resting := range *side {
		if resting.ID == id {
			*side = append((*side)[:i], (*side)[i+1:]...)
			break
		}
	}

	delete(b.index, id)
	return true
}

// CandidatesFor returns the resting orders on the opposite side that cross
// the incoming order's limit price, excluding the incoming owner's own orders
// (self-trade prevention). The result is ranked by price-time priority:
// best price first, earliest submission first within a price.
func (b *Book) CandidatesFor(incoming *Order) []*Order {
	resting := b.asks
	if incoming.Side == Sell {
		resting = b.bids
	}

	var out []*Order
	for _, o := range resting {
		if o.Owner == incoming.Owner {
			continue
		}
		if !crosses(incoming, o) {
			continue
		}
		out = append(out, o)
	}

	rank(incoming.Side, out)
	return out
}

// crosses reports whether a resting order is price-compatible with the
// incoming order: a resting sell crosses a buy iff buy.Price >= sell.Price,
// and symmetrically for a resting buy against an incoming sell.
func crosses(incoming, resting *Order) bool {
	if incoming.Side == Buy {
		return incoming.Price.GreaterThanOrEqual(resting.Price)
	}
	return incoming.Price.LessThanOrEqual(resting.Price)
}

// rank orders candidates for the given incoming side: ascending price for an
// incoming buy (lowest ask first), descending price for an incoming sell
// (highest bid first), ties broken by earliest submission.
func rank(incoming Side, orders []*Order) {
	sort.Slice(orders, func(i, j int) bool {
		cmp := orders[i].Price.Cmp(orders[j].Price)
		if cmp != 0 {
			if incoming == Buy {
				return cmp < 0
			}
			return cmp > 0
		}
		return orders[i].Seq < orders[j].Seq
	})
}

// Bids returns a copy of the resting buy orders in priority order
// (highest price first, earliest first within a price).
func (b *Book) Bids() []Order {
	return snapshot(Sell, b.bids)
}

// Asks returns a copy of the resting sell orders in priority order
// (lowest price first, earliest first within a price).
func (b *Book) Asks() []Order {
	return snapshot(Buy, b.asks)
}

// snapshot ranks one side and returns value copies so callers can hold the
// result without observing later book mutations. Ranking a side reuses the
// candidate comparator: bids rank the way an incoming sell would see them.
func snapshot(viewer Side, orders []*Order) []Order {
	ranked := make([]*Order, len(orders))
	copy(ranked, orders)
	rank(viewer, ranked)

	out := make([]Order, len(ranked))
	for i, o := range ranked {
		out[i] = *o
	}
	return out
}

// Len returns the total number of resting orders on both sides.
func (b *Book) Len() int {
	return len(b.bids) + len(b.asks)
}
