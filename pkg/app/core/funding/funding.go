// Package funding implements the out-of-band balance mutation workflow:
// users file deposit and withdrawal requests, an operator approves or
// rejects them, and approvals apply the credit/debit primitives on the
// account manager. Trading settlement never goes through here.
package funding

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AnDev002/cpotrade/pkg/app/core/account"
	"github.com/AnDev002/cpotrade/pkg/util"
)

type Kind string

const (
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
)

type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

var (
	ErrRequestNotFound = errors.New("funding request not found")
	ErrNotPending      = errors.New("funding request is not pending")
)

// Request is one deposit or withdrawal awaiting operator review.
type Request struct {
	ID        string
	User      string
	Asset     account.Asset
	Kind      Kind
	Amount    decimal.Decimal
	Status    Status
	CreatedAt int64 // Unix milliseconds
}

// Desk queues funding requests FIFO and applies approved ones to accounts.
// Withdrawals are charged a flat fee in the withdrawn asset on approval.
type Desk struct {
	mu       sync.Mutex
	accounts *account.Manager
	clock    util.Clock

	withdrawFee decimal.Decimal

	queue []*Request          // admission order, all statuses
	byID  map[string]*Request // id -> request
}

// NewDesk creates a funding desk over the given account manager.
func NewDesk(accounts *account.Manager, withdrawFee decimal.Decimal, clock util.Clock) *Desk {
	return &Desk{
		accounts:    accounts,
		clock:       clock,
		withdrawFee: withdrawFee,
		byID:        make(map[string]*Request),
	}
}

// SubmitDeposit files a deposit request. The balance is credited only when
// an operator approves it.
func (d *Desk) SubmitDeposit(user string, asset account.Asset, amount decimal.Decimal) (*Request, error) {
	return d.submit(user, asset, Deposit, amount)
}

// SubmitWithdrawal files a withdrawal request. The held balance must cover
// amount plus the flat fee at submission time; the debit itself happens on
// approval and is re-validated then.
func (d *Desk) SubmitWithdrawal(user string, asset account.Asset, amount decimal.Decimal) (*Request, error) {
	if amount.IsPositive() {
		total := amount.Add(d.withdrawFee)
		if d.accounts.Balance(user, asset).LessThan(total) {
			return nil, fmt.Errorf("%w: withdrawal of %s %s plus fee %s",
				account.ErrInsufficientBalance, amount, asset, d.withdrawFee)
		}
	}
	return d.submit(user, asset, Withdrawal, amount)
}

func (d *Desk) submit(user string, asset account.Asset, kind Kind, amount decimal.Decimal) (*Request, error) {
	if user == "" {
		return nil, fmt.Errorf("user must be specified")
	}
	if !asset.Valid() {
		return nil, fmt.Errorf("unknown asset: %s", asset)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%s amount must be positive: %s", kind, amount)
	}

	req := &Request{
		ID:        uuid.NewString(),
		User:      user,
		Asset:     asset,
		Kind:      kind,
		Amount:    amount,
		Status:    Pending,
		CreatedAt: d.clock.Now().UnixMilli(),
	}

	d.mu.Lock()
	d.queue = append(d.queue, req)
	d.byID[req.ID] = req
	d.mu.Unlock()

	return req, nil
}

// Approve applies a pending request: deposits credit the account, withdrawals
// debit amount plus the flat fee in one debit. A withdrawal whose balance no
// longer covers the total is marked rejected and the error is returned; the
// balance is left untouched.
func (d *Desk) Approve(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, ok := d.byID[id]
	if !ok {
		return ErrRequestNotFound
	}
	if req.Status != Pending {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, id, req.Status)
	}

	switch req.Kind {
	case Deposit:
		if err := d.accounts.Credit(req.User, req.Asset, req.Amount); err != nil {
			return err
		}
	case Withdrawal:
		total := req.Amount.Add(d.withdrawFee)
		if err := d.accounts.Debit(req.User, req.Asset, total); err != nil {
			req.Status = Rejected
			return err
		}
	default:
		return fmt.Errorf("unknown request kind: %s", req.Kind)
	}

	req.Status = Approved
	return nil
}

// Reject marks a pending request rejected without touching balances.
func (d *Desk) Reject(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, ok := d.byID[id]
	if !ok {
		return ErrRequestNotFound
	}
	if req.Status != Pending {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, id, req.Status)
	}

	req.Status = Rejected
	return nil
}

// Get returns a copy of one request.
func (d *Desk) Get(id string) (Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, ok := d.byID[id]
	if !ok {
		return Request{}, false
	}
	return *req, true
}

// PendingRequests returns copies of the pending requests in admission order.
func (d *Desk) PendingRequests() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Request
	for _, req := range d.queue {
		if req.Status == Pending {
			out = append(out, *req)
		}
	}
	return out
}

// Requests returns copies of all requests in admission order.
func (d *Desk) Requests() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Request, 0, len(d.queue))
	for _, req := range d.queue {
		out = append(out, *req)
	}
	return out
}
