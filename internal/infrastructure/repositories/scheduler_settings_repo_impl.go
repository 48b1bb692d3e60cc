package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/models"
)

const settingsRowID = 1

// SchedulerSettingsRepository stores the single settings row
type SchedulerSettingsRepository struct {
	db *gorm.DB
}

func NewSchedulerSettingsRepository(db *gorm.DB) *SchedulerSettingsRepository {
	return &SchedulerSettingsRepository{db: db}
}

func (r *SchedulerSettingsRepository) Get(ctx context.Context) (*entities.SchedulerSettings, error) {
	var m models.SchedulerSettings
	if err := GetDB(ctx, r.db).Where("id = ?", settingsRowID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	settings := &entities.SchedulerSettings{
		ExecutionInterval:  m.ExecutionInterval,
		ExpirationInterval: m.ExpirationInterval,
		MaxGasPrice:        amountFromString(m.MaxGasPrice),
		Governor:           common.HexToAddress(m.Governor),
	}
	if m.PendingGovernor != "" {
		settings.PendingGovernor = common.HexToAddress(m.PendingGovernor)
	}
	return settings, nil
}

func (r *SchedulerSettingsRepository) Save(ctx context.Context, settings *entities.SchedulerSettings) error {
	m := &models.SchedulerSettings{
		ID:                 settingsRowID,
		ExecutionInterval:  settings.ExecutionInterval,
		ExpirationInterval: settings.ExpirationInterval,
		MaxGasPrice:        amountToString(settings.MaxGasPrice),
		Governor:           addressKey(settings.Governor),
		UpdatedAt:          time.Now(),
	}
	if settings.PendingGovernor != (common.Address{}) {
		m.PendingGovernor = addressKey(settings.PendingGovernor)
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}
