package repositories

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/models"
)

// TokenLedgerRepository keeps settlement token balances and allowances.
type TokenLedgerRepository struct {
	db *gorm.DB
}

func NewTokenLedgerRepository(db *gorm.DB) *TokenLedgerRepository {
	return &TokenLedgerRepository{db: db}
}

func (r *TokenLedgerRepository) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	var m models.TokenBalance
	err := GetDB(ctx, r.db).
		Where("token = ? AND account = ?", addressKey(token), addressKey(account)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return amountFromString(m.Amount), nil
}

func (r *TokenLedgerRepository) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	var m models.TokenAllowance
	err := GetDB(ctx, r.db).
		Where("token = ? AND owner = ? AND spender = ?", addressKey(token), addressKey(owner), addressKey(spender)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return amountFromString(m.Amount), nil
}

func (r *TokenLedgerRepository) Approve(ctx context.Context, token, owner, spender common.Address, amount *big.Int) error {
	m := &models.TokenAllowance{
		Token:   addressKey(token),
		Owner:   addressKey(owner),
		Spender: addressKey(spender),
		Amount:  amountToString(amount),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}

func (r *TokenLedgerRepository) Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	fromBal, err := r.BalanceOf(ctx, token, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return domainerrors.ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toBal, err := r.BalanceOf(ctx, token, to)
	if err != nil {
		return err
	}
	if err := r.setBalance(ctx, token, from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return r.setBalance(ctx, token, to, new(big.Int).Add(toBal, amount))
}

// TransferFrom moves tokens on behalf of from. Unlimited allowances are not
// decremented.
func (r *TokenLedgerRepository) TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if spender != from {
		allowance, err := r.Allowance(ctx, token, from, spender)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return domainerrors.ErrInsufficientAllowance
		}
		if !entities.IsUnlimited(allowance) {
			if err := r.Approve(ctx, token, from, spender, new(big.Int).Sub(allowance, amount)); err != nil {
				return err
			}
		}
	}
	return r.Transfer(ctx, token, from, to, amount)
}

func (r *TokenLedgerRepository) Mint(ctx context.Context, token, to common.Address, amount *big.Int) error {
	bal, err := r.BalanceOf(ctx, token, to)
	if err != nil {
		return err
	}
	return r.setBalance(ctx, token, to, new(big.Int).Add(bal, entities.CloneAmount(amount)))
}

func (r *TokenLedgerRepository) setBalance(ctx context.Context, token, account common.Address, amount *big.Int) error {
	m := &models.TokenBalance{
		Token:   addressKey(token),
		Account: addressKey(account),
		Amount:  amountToString(amount),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}
