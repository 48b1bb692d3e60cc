package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
)

// SchedulerEventRepository defines scheduler event data operations
type SchedulerEventRepository interface {
	Create(ctx context.Context, event *entities.SchedulerEvent) error
	ListByOwner(ctx context.Context, owner common.Address, limit int) ([]*entities.SchedulerEvent, error)
	List(ctx context.Context, limit int) ([]*entities.SchedulerEvent, error)
}
