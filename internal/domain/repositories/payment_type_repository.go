package repositories

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
)

// PaymentTypeRepository defines payment type registry storage
type PaymentTypeRepository interface {
	Create(ctx context.Context, paymentType *entities.PaymentType) error
	GetByName(ctx context.Context, name string) (*entities.PaymentType, error)
	GetByID(ctx context.Context, id common.Hash) (*entities.PaymentType, error)
	List(ctx context.Context) ([]*entities.PaymentType, error)
	UpdateMinimumRecurringAmount(ctx context.Context, name string, amount *big.Int) error
	Delete(ctx context.Context, name string) error
}
