package repositories

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/infrastructure/models"
	"recurpay.backend/pkg/utils"
)

// SchedulerEventRepository implements scheduler event data operations
type SchedulerEventRepository struct {
	db *gorm.DB
}

// NewSchedulerEventRepository creates a new scheduler event repository
func NewSchedulerEventRepository(db *gorm.DB) *SchedulerEventRepository {
	return &SchedulerEventRepository{db: db}
}

// Create persists an event; a missing ID is filled with a UUIDv7.
func (r *SchedulerEventRepository) Create(ctx context.Context, event *entities.SchedulerEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	if event.Payload == nil {
		payload = []byte("{}")
	}
	if event.ID == uuid.Nil {
		event.ID = utils.GenerateUUIDv7()
	}

	m := &models.SchedulerEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		Owner:     addressKey(event.Owner),
		Payload:   string(payload),
		CreatedAt: event.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// ListByOwner returns the newest events for an owner first
func (r *SchedulerEventRepository) ListByOwner(ctx context.Context, owner common.Address, limit int) ([]*entities.SchedulerEvent, error) {
	var ms []models.SchedulerEvent
	if err := GetDB(ctx, r.db).
		Where("owner = ?", addressKey(owner)).
		Order("created_at DESC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// List returns the newest events first
func (r *SchedulerEventRepository) List(ctx context.Context, limit int) ([]*entities.SchedulerEvent, error) {
	var ms []models.SchedulerEvent
	if err := GetDB(ctx, r.db).Order("created_at DESC").Limit(limit).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *SchedulerEventRepository) toEntities(ms []models.SchedulerEvent) []*entities.SchedulerEvent {
	events := make([]*entities.SchedulerEvent, 0, len(ms))
	for _, m := range ms {
		payload := map[string]interface{}{}
		_ = json.Unmarshal([]byte(m.Payload), &payload)
		events = append(events, &entities.SchedulerEvent{
			ID:        m.ID,
			Type:      entities.SchedulerEventType(m.Type),
			Owner:     common.HexToAddress(m.Owner),
			Payload:   payload,
			CreatedAt: m.CreatedAt,
		})
	}
	return events
}
