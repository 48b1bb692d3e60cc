package usecases

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/pkg/logger"
)

// TokenUsecase exposes the settlement token ledger to accounts.
type TokenUsecase struct {
	uow      repositories.UnitOfWork
	tokens   repositories.TokenLedger
	settings repositories.SchedulerSettingsRepository
}

// NewTokenUsecase creates a new token usecase
func NewTokenUsecase(uow repositories.UnitOfWork, tokens repositories.TokenLedger, settings repositories.SchedulerSettingsRepository) *TokenUsecase {
	return &TokenUsecase{uow: uow, tokens: tokens, settings: settings}
}

func (u *TokenUsecase) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	return u.tokens.BalanceOf(ctx, token, account)
}

func (u *TokenUsecase) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return u.tokens.Allowance(ctx, token, owner, spender)
}

// Approve sets caller's allowance for spender. Owners approve the scheduler
// before creating a recurring payment.
func (u *TokenUsecase) Approve(ctx context.Context, caller, token common.Address, input *entities.ApproveInput) error {
	spender, err := parseNonZeroAddress(input.Spender)
	if err != nil {
		return err
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return err
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.tokens.Approve(txCtx, token, caller, spender, amount)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "Token allowance set",
		logger.Address("token", token),
		logger.Address("owner", caller),
		logger.Address("spender", spender),
		logger.Amount("amount", amount),
	)
	return nil
}

// Transfer moves caller's tokens.
func (u *TokenUsecase) Transfer(ctx context.Context, caller, token common.Address, input *entities.TokenAmountInput) error {
	to, amount, err := parseTokenAmount(input)
	if err != nil {
		return err
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.tokens.Transfer(txCtx, token, caller, to, amount)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "Token transferred",
		logger.Address("token", token),
		logger.Address("from", caller),
		logger.Address("to", to),
		logger.Amount("amount", amount),
	)
	return nil
}

// Mint issues new tokens; governor only.
func (u *TokenUsecase) Mint(ctx context.Context, caller, token common.Address, input *entities.TokenAmountInput) error {
	if token == (common.Address{}) {
		return domainerrors.ErrZeroAddress
	}
	to, amount, err := parseTokenAmount(input)
	if err != nil {
		return err
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		return u.tokens.Mint(txCtx, token, to, amount)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "Token minted", logger.Address("token", token), logger.Address("to", to), logger.Amount("amount", amount))
	return nil
}

func parseTokenAmount(input *entities.TokenAmountInput) (common.Address, *big.Int, error) {
	to, err := parseNonZeroAddress(input.To)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return common.Address{}, nil, err
	}
	if amount.Sign() == 0 {
		return common.Address{}, nil, domainerrors.ErrZeroAmount
	}
	return to, amount, nil
}
