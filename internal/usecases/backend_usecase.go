package usecases

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/internal/infrastructure/backends"
)

// BackendDirectory hands out the concrete backends behind an address.
type BackendDirectory interface {
	Ledger(ctx context.Context, address, token common.Address) (*backends.LedgerBackend, error)
	Stream(ctx context.Context, address, token common.Address) (*backends.StreamBackend, error)
}

// BackendUsecase exposes the ledger and stream backends' own verbs, the
// ones the scheduler itself never calls.
type BackendUsecase struct {
	uow          repositories.UnitOfWork
	directory    BackendDirectory
	paymentTypes repositories.PaymentTypeRepository
}

// NewBackendUsecase creates a new backend usecase
func NewBackendUsecase(uow repositories.UnitOfWork, directory BackendDirectory, paymentTypes repositories.PaymentTypeRepository) *BackendUsecase {
	return &BackendUsecase{uow: uow, directory: directory, paymentTypes: paymentTypes}
}

// LedgerBalance returns account's credit on the ledger backend.
func (u *BackendUsecase) LedgerBalance(ctx context.Context, backend, account common.Address) (*entities.LedgerBalance, error) {
	ledger, err := u.directory.Ledger(ctx, backend, common.Address{})
	if err != nil {
		return nil, err
	}
	bal, err := ledger.BalanceOf(ctx, account)
	if err != nil {
		return nil, err
	}
	return &entities.LedgerBalance{Backend: backend.Hex(), Account: account.Hex(), Balance: bal}, nil
}

// LedgerDeposit pulls caller's tokens into the ledger and credits caller.
func (u *BackendUsecase) LedgerDeposit(ctx context.Context, caller, backend common.Address, input *entities.LedgerDepositInput) (*entities.LedgerBalance, error) {
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, domainerrors.ErrZeroAmount
	}

	var bal *big.Int
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		ledger, err := u.ledgerFor(txCtx, backend)
		if err != nil {
			return err
		}
		if err := ledger.Deposit(txCtx, caller, amount); err != nil {
			return err
		}
		bal, err = ledger.BalanceOf(txCtx, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &entities.LedgerBalance{Backend: backend.Hex(), Account: caller.Hex(), Balance: bal}, nil
}

// LedgerPull debits account's credit to the collector; collector only.
func (u *BackendUsecase) LedgerPull(ctx context.Context, caller, backend common.Address, input *entities.LedgerPullInput) (*entities.LedgerBalance, error) {
	account, err := parseNonZeroAddress(input.Account)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	var bal *big.Int
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		ledger, err := u.ledgerFor(txCtx, backend)
		if err != nil {
			return err
		}
		if err := ledger.Pull(txCtx, caller, account, amount); err != nil {
			return err
		}
		bal, err = ledger.BalanceOf(txCtx, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &entities.LedgerBalance{Backend: backend.Hex(), Account: account.Hex(), Balance: bal}, nil
}

// Stream returns owner's stream on the stream backend.
func (u *BackendUsecase) Stream(ctx context.Context, backend, owner common.Address) (*entities.Stream, error) {
	stream, err := u.directory.Stream(ctx, backend, common.Address{})
	if err != nil {
		return nil, err
	}
	return stream.Stream(ctx, owner)
}

// WithdrawStream pays the stream's recipient what has accrued. Anyone may
// trigger it; the funds only ever go to the recipient.
func (u *BackendUsecase) WithdrawStream(ctx context.Context, backend, owner common.Address) (*big.Int, error) {
	var amount *big.Int
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		stream, err := u.directory.Stream(txCtx, backend, common.Address{})
		if err != nil {
			return err
		}
		amount, err = stream.Withdraw(txCtx, owner)
		return err
	})
	return amount, err
}

// ledgerFor binds the ledger to the token of the payment type that points
// at it.
func (u *BackendUsecase) ledgerFor(ctx context.Context, backend common.Address) (*backends.LedgerBackend, error) {
	types, err := u.paymentTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, pt := range types {
		if pt.BackendAddress == backend {
			return u.directory.Ledger(ctx, backend, pt.TokenAddress)
		}
	}
	return nil, domainerrors.ErrPaymentTypeNotFound
}
