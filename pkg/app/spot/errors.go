package spot

import (
	"errors"

	"github.com/AnDev002/cpotrade/pkg/app/core/account"
)

var (
	// ErrInvalidOrder rejects malformed input (bad quantity or price bounds,
	// missing owner) before any book mutation.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientBalance is the submission-time courtesy check on the
	// incoming order's own required balance. During settlement an
	// underfunded counter-order is skipped, never surfaced as an error.
	ErrInsufficientBalance = account.ErrInsufficientBalance

	// ErrNotOwner rejects a cancellation attempted by a non-owner.
	ErrNotOwner = errors.New("not order owner")

	// ErrUnknownPair rejects operations on an unregistered pair.
	ErrUnknownPair = errors.New("unknown pair")
)
