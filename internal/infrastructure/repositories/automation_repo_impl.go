package repositories

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/models"
)

// AutomationTaskRepository implements keeper task storage
type AutomationTaskRepository struct {
	db *gorm.DB
}

func NewAutomationTaskRepository(db *gorm.DB) *AutomationTaskRepository {
	return &AutomationTaskRepository{db: db}
}

func (r *AutomationTaskRepository) Create(ctx context.Context, task *entities.AutomationTask) error {
	m := &models.AutomationTask{
		ID:        task.ID.Hex(),
		Owner:     addressKey(task.Owner),
		Target:    addressKey(task.Target),
		Selector:  "0x" + hex.EncodeToString(task.Selector[:]),
		Active:    task.Active,
		CreatedAt: task.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *AutomationTaskRepository) GetByID(ctx context.Context, id common.Hash) (*entities.AutomationTask, error) {
	var m models.AutomationTask
	if err := GetDB(ctx, r.db).Where("id = ?", id.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrTaskNotFound
		}
		return nil, err
	}
	task := &entities.AutomationTask{
		ID:          common.HexToHash(m.ID),
		Owner:       common.HexToAddress(m.Owner),
		Target:      common.HexToAddress(m.Target),
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		CancelledAt: null.Uint64FromPtr(m.CancelledAt),
	}
	if raw, err := hex.DecodeString(strings.TrimPrefix(m.Selector, "0x")); err == nil {
		copy(task.Selector[:], raw)
	}
	return task, nil
}

func (r *AutomationTaskRepository) Deactivate(ctx context.Context, id common.Hash, at uint64) error {
	result := GetDB(ctx, r.db).Model(&models.AutomationTask{}).
		Where("id = ? AND active = ?", id.Hex(), true).
		Updates(map[string]interface{}{
			"active":       false,
			"cancelled_at": at,
		})
	return result.Error
}

func (r *AutomationTaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.AutomationTask{}).Count(&count).Error
	return count, err
}

const treasuryRowID = 1

// TreasuryRepository stores the keeper treasury balance
type TreasuryRepository struct {
	db *gorm.DB
}

func NewTreasuryRepository(db *gorm.DB) *TreasuryRepository {
	return &TreasuryRepository{db: db}
}

func (r *TreasuryRepository) Balance(ctx context.Context) (*big.Int, error) {
	var m models.TreasuryBalance
	if err := GetDB(ctx, r.db).Where("id = ?", treasuryRowID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return amountFromString(m.Balance), nil
}

func (r *TreasuryRepository) SetBalance(ctx context.Context, balance *big.Int) error {
	m := &models.TreasuryBalance{ID: treasuryRowID, Balance: amountToString(balance), UpdatedAt: time.Now()}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}
