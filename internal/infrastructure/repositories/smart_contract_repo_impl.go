package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/models"
)

// SmartContractRepository implements the deployed-contract registry
type SmartContractRepository struct {
	db *gorm.DB
}

// NewSmartContractRepository creates a new smart contract repository
func NewSmartContractRepository(db *gorm.DB) *SmartContractRepository {
	return &SmartContractRepository{db: db}
}

// Create records a deployment. Re-deploying a soft-deleted address revives it.
func (r *SmartContractRepository) Create(ctx context.Context, contract *entities.SmartContract) error {
	db := GetDB(ctx, r.db)

	var existing models.SmartContract
	err := db.Unscoped().Where("address = ?", addressKey(contract.Address)).First(&existing).Error
	if err == nil {
		if !existing.DeletedAt.Valid {
			return domainerrors.ErrAlreadyExists
		}
		return db.Unscoped().Model(&existing).Updates(map[string]interface{}{
			"name":       contract.Name,
			"kind":       string(contract.Kind),
			"deleted_at": nil,
			"updated_at": time.Now(),
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now()
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = now
	}
	m := &models.SmartContract{
		Address:   addressKey(contract.Address),
		Name:      contract.Name,
		Kind:      string(contract.Kind),
		CreatedAt: contract.CreatedAt,
		UpdatedAt: now,
	}
	return db.Create(m).Error
}

// GetByAddress gets a live contract by address
func (r *SmartContractRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.SmartContract, error) {
	var m models.SmartContract
	if err := GetDB(ctx, r.db).Where("address = ?", addressKey(address)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List returns live contracts ordered by creation
func (r *SmartContractRepository) List(ctx context.Context) ([]*entities.SmartContract, error) {
	var ms []models.SmartContract
	if err := GetDB(ctx, r.db).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.SmartContract, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, nil
}

// SoftDelete marks a contract as self-destructed
func (r *SmartContractRepository) SoftDelete(ctx context.Context, address common.Address) error {
	result := GetDB(ctx, r.db).Where("address = ?", addressKey(address)).Delete(&models.SmartContract{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// IsContract reports whether address has a live deployment on record.
func (r *SmartContractRepository) IsContract(ctx context.Context, address common.Address) (bool, error) {
	if address == (common.Address{}) {
		return false, nil
	}
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.SmartContract{}).Where("address = ?", addressKey(address)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SmartContractRepository) toEntity(m *models.SmartContract) *entities.SmartContract {
	c := &entities.SmartContract{
		Address:   common.HexToAddress(m.Address),
		Name:      m.Name,
		Kind:      entities.SmartContractKind(m.Kind),
		CreatedAt: m.CreatedAt,
	}
	if m.DeletedAt.Valid {
		c.DeletedAt = null.TimeFrom(m.DeletedAt.Time)
	}
	return c
}
