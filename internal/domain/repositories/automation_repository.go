package repositories

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
)

// AutomationTaskRepository stores keeper task registrations
type AutomationTaskRepository interface {
	Create(ctx context.Context, task *entities.AutomationTask) error
	GetByID(ctx context.Context, id common.Hash) (*entities.AutomationTask, error)
	Deactivate(ctx context.Context, id common.Hash, at uint64) error
	Count(ctx context.Context) (int64, error)
}

// TreasuryRepository stores the native balance that pays keeper fees
type TreasuryRepository interface {
	Balance(ctx context.Context) (*big.Int, error)
	SetBalance(ctx context.Context, balance *big.Int) error
}
