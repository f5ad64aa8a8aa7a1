package tests

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/AnDev002/cpotrade/pkg/app/core/account"
	"github.com/AnDev002/cpotrade/pkg/app/core/funding"
	"github.com/AnDev002/cpotrade/pkg/app/core/market"
	"github.com/AnDev002/cpotrade/pkg/app/core/orderbook"
	"github.com/AnDev002/cpotrade/pkg/app/spot"
	"github.com/AnDev002/cpotrade/pkg/util"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TestFullTradingFlow walks the whole platform lifecycle: deposits through
// the funding desk, a resting order, a crossing order that fills partially
// across two price levels, a cancellation, and a fee-charged withdrawal.
func TestFullTradingFlow(t *testing.T) {
	pairs := market.NewRegistry()
	pair, err := market.NewPairWithDefaults("CPO-OGN", "CPO", "OGN")
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if err := pairs.Register(pair); err != nil {
		t.Fatalf("register: %v", err)
	}

	accounts := account.NewManager()
	clock := util.RealClock{}
	engine := spot.NewEngine(pairs, accounts, clock, nil)
	desk := funding.NewDesk(accounts, dec("1"), clock)

	// ---- Fund accounts via the approval workflow ----
	deposits := []struct {
		user   string
		asset  account.Asset
		amount string
	}{
		{"alice", account.CPO, "100"},
		{"bob", account.CPO, "200"},
		{"carol", account.OGN, "10000"},
	}
	for _, d := range deposits {
		req, err := desk.SubmitDeposit(d.user, d.asset, dec(d.amount))
		if err != nil {
			t.Fatalf("deposit %s: %v", d.user, err)
		}
		if err := desk.Approve(req.ID); err != nil {
			t.Fatalf("approve %s: %v", d.user, err)
		}
	}

	// ---- Build the book and cross it ----
	if _, err := engine.SubmitOrder("CPO-OGN", orderbook.Sell, dec("100"), dec("16.5"), "alice"); err != nil {
		t.Fatalf("alice sell: %v", err)
	}
	if _, err := engine.SubmitOrder("CPO-OGN", orderbook.Sell, dec("200"), dec("17.0"), "bob"); err != nil {
		t.Fatalf("bob sell: %v", err)
	}

	res, err := engine.SubmitOrder("CPO-OGN", orderbook.Buy, dec("150"), dec("17.0"), "carol")
	if err != nil {
		t.Fatalf("carol buy: %v", err)
	}
	if len(res.Trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(res.Trades))
	}

	// Carol: +150 CPO, -2500 OGN (100*16.5 + 50*17)
	if got := engine.Balances("carol")[account.CPO]; !got.Equal(dec("150")) {
		t.Errorf("carol CPO = %s, want 150", got)
	}
	if got := engine.Balances("carol")[account.OGN]; !got.Equal(dec("7500")) {
		t.Errorf("carol OGN = %s, want 7500", got)
	}

	// ---- Bob cancels his 150 remainder ----
	snap, err := engine.OrderBook("CPO-OGN")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Asks) != 1 {
		t.Fatalf("asks = %d, want bob's remainder only", len(snap.Asks))
	}
	ok, err := engine.CancelOrder(snap.Asks[0].ID, "bob")
	if err != nil || !ok {
		t.Fatalf("cancel = %v, %v, want true, nil", ok, err)
	}

	// ---- Alice withdraws her OGN proceeds, paying the flat fee ----
	wd, err := desk.SubmitWithdrawal("alice", account.OGN, dec("1000"))
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if err := desk.Approve(wd.ID); err != nil {
		t.Fatalf("approve withdrawal: %v", err)
	}
	// 1650 proceeds - 1000 - 1 fee = 649
	if got := engine.Balances("alice")[account.OGN]; !got.Equal(dec("649")) {
		t.Errorf("alice OGN = %s, want 649", got)
	}

	// ---- Trade history survives ----
	trades, err := engine.Trades("CPO-OGN")
	if err != nil {
		t.Fatalf("trades: %v", err)
	}
	if len(trades) != 2 {
		t.Errorf("history = %d, want 2", len(trades))
	}
}

// TestConcurrentSubmissions hammers one pair from several goroutines and
// checks conservation: total CPO and OGN across all users never changes.
func TestConcurrentSubmissions(t *testing.T) {
	pairs := market.NewRegistry()
	pair, _ := market.NewPairWithDefaults("CPO-OGN", "CPO", "OGN")
	pairs.Register(pair)

	accounts := account.NewManager()
	engine := spot.NewEngine(pairs, accounts, util.RealClock{}, nil)

	users := []string{"u1", "u2", "u3", "u4"}
	for _, u := range users {
		accounts.Credit(u, account.CPO, dec("1000"))
		accounts.Credit(u, account.OGN, dec("10000"))
	}

	done := make(chan struct{})
	for i, u := range users {
		go func(user string, odd bool) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				side := orderbook.Buy
				if odd {
					side = orderbook.Sell
				}
				engine.SubmitOrder("CPO-OGN", side, dec("10"), dec("16.5"), user)
			}
		}(u, i%2 == 1)
	}
	for range users {
		<-done
	}

	totalCPO := decimal.Zero
	totalOGN := decimal.Zero
	for _, u := range users {
		balances := engine.Balances(u)
		totalCPO = totalCPO.Add(balances[account.CPO])
		totalOGN = totalOGN.Add(balances[account.OGN])
	}
	if !totalCPO.Equal(dec("4000")) {
		t.Errorf("total CPO = %s, want 4000 (conservation violated)", totalCPO)
	}
	if !totalOGN.Equal(dec("40000")) {
		t.Errorf("total OGN = %s, want 40000 (conservation violated)", totalOGN)
	}
}
