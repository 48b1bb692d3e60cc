package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
)

// RecurringPaymentRepository stores the one active record per owner
type RecurringPaymentRepository interface {
	Create(ctx context.Context, payment *entities.RecurringPayment) error
	GetByOwner(ctx context.Context, owner common.Address) (*entities.RecurringPayment, error)
	UpdateLastExecutedAt(ctx context.Context, owner common.Address, at uint64) error
	Delete(ctx context.Context, owner common.Address) error
	ListOwners(ctx context.Context, limit, offset int) ([]common.Address, error)
	Count(ctx context.Context) (int64, error)
}
