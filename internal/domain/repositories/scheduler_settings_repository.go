package repositories

import (
	"context"

	"recurpay.backend/internal/domain/entities"
)

// SchedulerSettingsRepository stores the singleton scheduler configuration
type SchedulerSettingsRepository interface {
	// Get returns ErrNotFound until the settings are seeded.
	Get(ctx context.Context) (*entities.SchedulerSettings, error)
	Save(ctx context.Context, settings *entities.SchedulerSettings) error
}
