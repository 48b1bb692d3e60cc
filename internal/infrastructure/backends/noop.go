package backends

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NoopBackend takes custody of whatever it is sent and credits nobody.
type NoopBackend struct {
	address common.Address
	token   common.Address
	payer   common.Address
	tokens  TokenMover
}

func NewNoopBackend(address, token, payer common.Address, tokens TokenMover) *NoopBackend {
	return &NoopBackend{address: address, token: token, payer: payer, tokens: tokens}
}

func (b *NoopBackend) AcceptCreation(ctx context.Context, _ common.Address, _ []byte, amount *big.Int) error {
	return custody(ctx, b.tokens, b.token, b.address, b.payer, amount)
}

func (b *NoopBackend) AcceptRecurring(ctx context.Context, _ common.Address, amount *big.Int) error {
	return custody(ctx, b.tokens, b.token, b.address, b.payer, amount)
}
