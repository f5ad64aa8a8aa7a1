package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sell(id, owner, price, qty string) *Order {
	return &Order{ID: id, Pair: "CPO-OGN", Side: Sell, Owner: owner, Price: dec(price), Quantity: dec(qty)}
}

func buy(id, owner, price, qty string) *Order {
	return &Order{ID: id, Pair: "CPO-OGN", Side: Buy, Owner: owner, Price: dec(price), Quantity: dec(qty)}
}

// TestInsertRemove tests basic book mutations and id lookups
func TestInsertRemove(t *testing.T) {
	book := NewBook()

	o := sell("s1", "alice", "16.5", "100")
	book.Insert(o)

	if book.Len() != 1 {
		t.Fatalf("len = %d, want 1", book.Len())
	}
	if got, ok := book.Get("s1"); !ok || got.ID != "s1" {
		t.Errorf("Get(s1) = %v, %v", got, ok)
	}
	if o.Status != Pending {
		t.Errorf("status = %s, want pending", o.Status)
	}
	if o.Seq == 0 {
		t.Error("expected nonzero submission sequence")
	}

	if !book.Remove("s1") {
		t.Error("Remove(s1) = false, want true")
	}
	if book.Len() != 0 {
		t.Errorf("len after remove = %d, want 0", book.Len())
	}
}

// TestRemoveAbsentIsNoop tests that removing an unknown id returns false
// without disturbing the book
func TestRemoveAbsentIsNoop(t *testing.T) {
	book := NewBook()
	book.Insert(sell("s1", "alice", "16.5", "100"))

	if book.Remove("missing") {
		t.Error("Remove(missing) = true, want false")
	}
	if book.Len() != 1 {
		t.Errorf("len = %d, want 1", book.Len())
	}
}

// TestCandidatesPriceTimePriority tests that candidates come back best price
// first, earliest submission first within a price level
func TestCandidatesPriceTimePriority(t *testing.T) {
	book := NewBook()
	book.Insert(sell("s1", "alice", "17.0", "50"))
	book.Insert(sell("s2", "bob", "16.5", "100")) // better price, later submission
	book.Insert(sell("s3", "dave", "17.0", "70")) // same price as s1, later

	cands := book.CandidatesFor(buy("b1", "carol", "17.0", "300"))

	wantOrder := []string{"s2", "s1", "s3"}
	if len(cands) != len(wantOrder) {
		t.Fatalf("candidates = %d, want %d", len(cands), len(wantOrder))
	}
	for i, want := range wantOrder {
		if cands[i].ID != want {
			t.Errorf("candidate[%d] = %s, want %s", i, cands[i].ID, want)
		}
	}
}

// TestCandidatesCrossingOnly tests that only price-compatible orders match
func TestCandidatesCrossingOnly(t *testing.T) {
	book := NewBook()
	book.Insert(sell("s1", "alice", "16.5", "100"))
	book.Insert(sell("s2", "bob", "18.0", "100")) // above the buy limit

	cands := book.CandidatesFor(buy("b1", "carol", "17.0", "100"))
	if len(cands) != 1 || cands[0].ID != "s1" {
		t.Fatalf("candidates = %v, want only s1", ids(cands))
	}

	// Symmetric check for an incoming sell against resting bids
	book2 := NewBook()
	book2.Insert(buy("b1", "alice", "17.0", "100"))
	book2.Insert(buy("b2", "bob", "16.0", "100")) // below the sell limit

	cands = book2.CandidatesFor(sell("s1", "carol", "16.5", "100"))
	if len(cands) != 1 || cands[0].ID != "b1" {
		t.Fatalf("candidates = %v, want only b1", ids(cands))
	}
}

// TestCandidatesExcludeOwn tests self-trade prevention at candidate selection
func TestCandidatesExcludeOwn(t *testing.T) {
	book := NewBook()
	book.Insert(sell("s1", "alice", "16.5", "100"))
	book.Insert(sell("s2", "bob", "16.5", "100"))

	cands := book.CandidatesFor(buy("b1", "alice", "17.0", "200"))
	if len(cands) != 1 || cands[0].ID != "s2" {
		t.Fatalf("candidates = %v, want only s2 (own order excluded)", ids(cands))
	}
}

// TestBidsAsksSnapshots tests display ordering and copy semantics
func TestBidsAsksSnapshots(t *testing.T) {
	book := NewBook()
	book.Insert(buy("b1", "alice", "16.0", "10"))
	book.Insert(buy("b2", "bob", "17.0", "10"))
	book.Insert(sell("s1", "carol", "18.0", "10"))
	book.Insert(sell("s2", "dave", "17.5", "10"))

	bids := book.Bids()
	if len(bids) != 2 || bids[0].ID != "b2" || bids[1].ID != "b1" {
		t.Errorf("bids not sorted high to low: %v", orderIDs(bids))
	}

	asks := book.Asks()
	if len(asks) != 2 || asks[0].ID != "s2" || asks[1].ID != "s1" {
		t.Errorf("asks not sorted low to high: %v", orderIDs(asks))
	}

	// Snapshot is a copy: mutating it must not touch the book
	bids[0].Quantity = dec("999")
	if got, _ := book.Get("b2"); !got.Quantity.Equal(dec("10")) {
		t.Errorf("book mutated through snapshot: qty = %s", got.Quantity)
	}
}

// TestSequenceMonotonic tests that later inserts always get higher sequences,
// including re-inserted remainders
func TestSequenceMonotonic(t *testing.T) {
	book := NewBook()

	a := sell("s1", "alice", "16.5", "100")
	book.Insert(a)
	b := sell("s2", "bob", "16.5", "100")
	book.Insert(b)

	if a.Seq >= b.Seq {
		t.Fatalf("seq not monotonic: %d >= %d", a.Seq, b.Seq)
	}

	// Remove and re-insert: the order goes to the back of its price level
	book.Remove("s1")
	book.Insert(a)
	if a.Seq <= b.Seq {
		t.Errorf("re-inserted order kept old priority: %d <= %d", a.Seq, b.Seq)
	}
}

func ids(orders []*Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func orderIDs(orders []Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}
