package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/models"
)

// RecurringPaymentRepository implements per-owner recurring payment storage
type RecurringPaymentRepository struct {
	db *gorm.DB
}

// NewRecurringPaymentRepository creates a new recurring payment repository
func NewRecurringPaymentRepository(db *gorm.DB) *RecurringPaymentRepository {
	return &RecurringPaymentRepository{db: db}
}

// Create persists a new record. The owner is the primary key, so a second
// record for the same owner is rejected.
func (r *RecurringPaymentRepository) Create(ctx context.Context, payment *entities.RecurringPayment) error {
	db := GetDB(ctx, r.db)

	var count int64
	if err := db.Model(&models.RecurringPayment{}).Where("owner = ?", addressKey(payment.Owner)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domainerrors.ErrRecurringPaymentExists
	}

	now := time.Now()
	pt := payment.PaymentType
	m := &models.RecurringPayment{
		Owner:                  addressKey(payment.Owner),
		PaymentTypeID:          pt.ID.Hex(),
		PaymentTypeName:        pt.Name,
		MinimumRecurringAmount: amountToString(pt.MinimumRecurringAmount),
		BackendAddress:         addressKey(pt.BackendAddress),
		TokenAddress:           addressKey(pt.TokenAddress),
		RequiresInitialization: pt.RequiresInitialization,
		RecurringAmount:        amountToString(payment.RecurringAmount),
		CreatedAtBlock:         payment.CreatedAt,
		LastExecutedAt:         payment.LastExecutedAt,
		TaskID:                 payment.TaskID.Hex(),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	return db.Create(m).Error
}

// GetByOwner gets the active record of an owner
func (r *RecurringPaymentRepository) GetByOwner(ctx context.Context, owner common.Address) (*entities.RecurringPayment, error) {
	var m models.RecurringPayment
	if err := GetDB(ctx, r.db).Where("owner = ?", addressKey(owner)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrRecurringPaymentNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *RecurringPaymentRepository) UpdateLastExecutedAt(ctx context.Context, owner common.Address, at uint64) error {
	result := GetDB(ctx, r.db).Model(&models.RecurringPayment{}).
		Where("owner = ?", addressKey(owner)).
		Updates(map[string]interface{}{
			"last_executed_at": at,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRecurringPaymentNotFound
	}
	return nil
}

// Delete removes the record entirely; there is no soft-delete for schedules.
func (r *RecurringPaymentRepository) Delete(ctx context.Context, owner common.Address) error {
	result := GetDB(ctx, r.db).Where("owner = ?", addressKey(owner)).Delete(&models.RecurringPayment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRecurringPaymentNotFound
	}
	return nil
}

// ListOwners pages through owners with an active record
func (r *RecurringPaymentRepository) ListOwners(ctx context.Context, limit, offset int) ([]common.Address, error) {
	var owners []string
	if err := GetDB(ctx, r.db).Model(&models.RecurringPayment{}).
		Order("owner ASC").
		Limit(limit).Offset(offset).
		Pluck("owner", &owners).Error; err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(owners))
	for _, o := range owners {
		out = append(out, common.HexToAddress(o))
	}
	return out, nil
}

func (r *RecurringPaymentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.RecurringPayment{}).Count(&count).Error
	return count, err
}

func (r *RecurringPaymentRepository) toEntity(m *models.RecurringPayment) *entities.RecurringPayment {
	return &entities.RecurringPayment{
		Owner: common.HexToAddress(m.Owner),
		PaymentType: entities.PaymentType{
			ID:                     common.HexToHash(m.PaymentTypeID),
			Name:                   m.PaymentTypeName,
			MinimumRecurringAmount: amountFromString(m.MinimumRecurringAmount),
			BackendAddress:         common.HexToAddress(m.BackendAddress),
			TokenAddress:           common.HexToAddress(m.TokenAddress),
			RequiresInitialization: m.RequiresInitialization,
		},
		RecurringAmount: amountFromString(m.RecurringAmount),
		CreatedAt:       m.CreatedAtBlock,
		LastExecutedAt:  m.LastExecutedAt,
		TaskID:          common.HexToHash(m.TaskID),
	}
}
