// Package backends holds the closed set of payment backends a payment type
// may point at. The scheduler never depends on a concrete type: it resolves
// the backend address registered for a payment type at call time.
package backends

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PaymentBackend receives funds the scheduler forwards on behalf of an owner.
// Both calls must take custody of amount from the scheduler's token balance or
// fail; the scheduler verifies custody afterwards.
type PaymentBackend interface {
	AcceptCreation(ctx context.Context, owner common.Address, data []byte, amount *big.Int) error
	AcceptRecurring(ctx context.Context, owner common.Address, amount *big.Int) error
}

// TokenMover is the subset of the token ledger a backend needs.
type TokenMover interface {
	Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount *big.Int) error
}

// custody pulls amount of token from payer into the backend using the
// allowance the registry granted.
func custody(ctx context.Context, tokens TokenMover, token, backend, payer common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	return tokens.TransferFrom(ctx, token, backend, payer, backend, amount)
}
