package repositories

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
)

// LedgerBalanceRepository stores per-account credit kept by a ledger backend
type LedgerBalanceRepository interface {
	BalanceOf(ctx context.Context, backend, account common.Address) (*big.Int, error)
	SetBalance(ctx context.Context, backend, account common.Address, amount *big.Int) error
}

// StreamRepository stores rate streams opened through a stream backend
type StreamRepository interface {
	Get(ctx context.Context, backend, owner common.Address) (*entities.Stream, error)
	Save(ctx context.Context, stream *entities.Stream) error
}
