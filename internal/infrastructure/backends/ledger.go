package backends

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/pkg/logger"
)

// LedgerBackend is a deposit ledger: tokens sit in the backend and each
// account holds a credit against them. Its three verbs are Deposit
// (credit-self), DepositFor (credit-other) and Pull (debit-by-collector).
type LedgerBackend struct {
	address   common.Address
	token     common.Address
	payer     common.Address
	collector common.Address
	tokens    TokenMover
	balances  repositories.LedgerBalanceRepository
}

func NewLedgerBackend(
	address, token, payer, collector common.Address,
	tokens TokenMover,
	balances repositories.LedgerBalanceRepository,
) *LedgerBackend {
	return &LedgerBackend{
		address:   address,
		token:     token,
		payer:     payer,
		collector: collector,
		tokens:    tokens,
		balances:  balances,
	}
}

// AcceptCreation credits the owner; the creation data is not interpreted.
func (b *LedgerBackend) AcceptCreation(ctx context.Context, owner common.Address, _ []byte, amount *big.Int) error {
	return b.DepositFor(ctx, b.payer, owner, amount)
}

func (b *LedgerBackend) AcceptRecurring(ctx context.Context, owner common.Address, amount *big.Int) error {
	return b.DepositFor(ctx, b.payer, owner, amount)
}

// Deposit pulls amount from caller and credits caller.
func (b *LedgerBackend) Deposit(ctx context.Context, caller common.Address, amount *big.Int) error {
	return b.DepositFor(ctx, caller, caller, amount)
}

// DepositFor pulls amount from caller and credits account.
func (b *LedgerBackend) DepositFor(ctx context.Context, caller, account common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if err := custody(ctx, b.tokens, b.token, b.address, caller, amount); err != nil {
		return err
	}
	bal, err := b.balances.BalanceOf(ctx, b.address, account)
	if err != nil {
		return err
	}
	return b.balances.SetBalance(ctx, b.address, account, new(big.Int).Add(bal, amount))
}

// Pull debits account's credit and pays the tokens out to the collector.
func (b *LedgerBackend) Pull(ctx context.Context, caller, account common.Address, amount *big.Int) error {
	if caller != b.collector {
		return domainerrors.ErrNotCollector
	}
	if amount == nil || amount.Sign() == 0 {
		return domainerrors.ErrZeroAmount
	}
	bal, err := b.balances.BalanceOf(ctx, b.address, account)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return domainerrors.ErrInsufficientBalance
	}
	if err := b.balances.SetBalance(ctx, b.address, account, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	if err := b.tokens.Transfer(ctx, b.token, b.address, b.collector, amount); err != nil {
		return err
	}
	logger.Info(ctx, "Ledger credit pulled",
		logger.Address("backend", b.address),
		logger.Address("account", account),
		logger.Amount("amount", amount),
		logger.Address("collector", b.collector),
	)
	return nil
}

// BalanceOf returns the credit held for account.
func (b *LedgerBackend) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := b.balances.BalanceOf(ctx, b.address, account)
	if err != nil {
		return nil, err
	}
	return entities.CloneAmount(bal), nil
}
