package repositories

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/models"
)

// LedgerBalanceRepository stores credits held by ledger backends
type LedgerBalanceRepository struct {
	db *gorm.DB
}

func NewLedgerBalanceRepository(db *gorm.DB) *LedgerBalanceRepository {
	return &LedgerBalanceRepository{db: db}
}

func (r *LedgerBalanceRepository) BalanceOf(ctx context.Context, backend, account common.Address) (*big.Int, error) {
	var m models.LedgerBalance
	err := GetDB(ctx, r.db).
		Where("backend = ? AND account = ?", addressKey(backend), addressKey(account)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return amountFromString(m.Amount), nil
}

func (r *LedgerBalanceRepository) SetBalance(ctx context.Context, backend, account common.Address, amount *big.Int) error {
	m := &models.LedgerBalance{
		Backend: addressKey(backend),
		Account: addressKey(account),
		Amount:  amountToString(amount),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}

// StreamRepository stores rate streams
type StreamRepository struct {
	db *gorm.DB
}

func NewStreamRepository(db *gorm.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

func (r *StreamRepository) Get(ctx context.Context, backend, owner common.Address) (*entities.Stream, error) {
	var m models.Stream
	err := GetDB(ctx, r.db).
		Where("backend = ? AND owner = ?", addressKey(backend), addressKey(owner)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrStreamNotFound
		}
		return nil, err
	}
	return &entities.Stream{
		Backend:       common.HexToAddress(m.Backend),
		Owner:         common.HexToAddress(m.Owner),
		Recipient:     common.HexToAddress(m.Recipient),
		Token:         common.HexToAddress(m.Token),
		RatePerSecond: amountFromString(m.RatePerSecond),
		Deposit:       amountFromString(m.Deposit),
		Withdrawn:     amountFromString(m.Withdrawn),
		StartTime:     m.StartTime,
	}, nil
}

func (r *StreamRepository) Save(ctx context.Context, stream *entities.Stream) error {
	m := &models.Stream{
		Backend:       addressKey(stream.Backend),
		Owner:         addressKey(stream.Owner),
		Recipient:     addressKey(stream.Recipient),
		Token:         addressKey(stream.Token),
		RatePerSecond: amountToString(stream.RatePerSecond),
		Deposit:       amountToString(stream.Deposit),
		Withdrawn:     amountToString(stream.Withdrawn),
		StartTime:     stream.StartTime,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}
