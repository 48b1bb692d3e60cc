package repositories

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/models"
)

// PaymentTypeRepository implements the payment type registry storage
type PaymentTypeRepository struct {
	db *gorm.DB
}

// NewPaymentTypeRepository creates a new payment type repository
func NewPaymentTypeRepository(db *gorm.DB) *PaymentTypeRepository {
	return &PaymentTypeRepository{db: db}
}

// Create stores a new payment type; a taken name yields ErrPaymentTypeExists.
func (r *PaymentTypeRepository) Create(ctx context.Context, paymentType *entities.PaymentType) error {
	db := GetDB(ctx, r.db)

	var count int64
	if err := db.Model(&models.PaymentType{}).Where("name = ?", paymentType.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domainerrors.ErrPaymentTypeExists
	}

	now := time.Now()
	m := &models.PaymentType{
		ID:                     paymentType.ID.Hex(),
		Name:                   paymentType.Name,
		MinimumRecurringAmount: amountToString(paymentType.MinimumRecurringAmount),
		BackendAddress:         addressKey(paymentType.BackendAddress),
		TokenAddress:           addressKey(paymentType.TokenAddress),
		RequiresInitialization: paymentType.RequiresInitialization,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	return db.Create(m).Error
}

// GetByName gets a payment type by its registered name
func (r *PaymentTypeRepository) GetByName(ctx context.Context, name string) (*entities.PaymentType, error) {
	var m models.PaymentType
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrPaymentTypeNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByID gets a payment type by its name hash
func (r *PaymentTypeRepository) GetByID(ctx context.Context, id common.Hash) (*entities.PaymentType, error) {
	var m models.PaymentType
	if err := GetDB(ctx, r.db).Where("id = ?", id.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrPaymentTypeNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List returns every registered payment type ordered by name
func (r *PaymentTypeRepository) List(ctx context.Context) ([]*entities.PaymentType, error) {
	var ms []models.PaymentType
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.PaymentType, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, nil
}

func (r *PaymentTypeRepository) UpdateMinimumRecurringAmount(ctx context.Context, name string, amount *big.Int) error {
	result := GetDB(ctx, r.db).Model(&models.PaymentType{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"minimum_recurring_amount": amountToString(amount),
			"updated_at":               time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPaymentTypeNotFound
	}
	return nil
}

func (r *PaymentTypeRepository) Delete(ctx context.Context, name string) error {
	result := GetDB(ctx, r.db).Where("name = ?", name).Delete(&models.PaymentType{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPaymentTypeNotFound
	}
	return nil
}

func (r *PaymentTypeRepository) toEntity(m *models.PaymentType) *entities.PaymentType {
	return &entities.PaymentType{
		ID:                     common.HexToHash(m.ID),
		Name:                   m.Name,
		MinimumRecurringAmount: amountFromString(m.MinimumRecurringAmount),
		BackendAddress:         common.HexToAddress(m.BackendAddress),
		TokenAddress:           common.HexToAddress(m.TokenAddress),
		RequiresInitialization: m.RequiresInitialization,
	}
}
