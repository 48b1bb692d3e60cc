package usecases

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
)

// Clock returns the current block time in unix seconds.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

type serializedKey struct{}

// SerializedUnitOfWork runs every state-changing call alone and inside one
// transaction, so each call either applies fully or not at all. Nested calls
// on the same context join the outer call.
type SerializedUnitOfWork struct {
	mu    chan struct{}
	inner repositories.UnitOfWork
}

func NewSerializedUnitOfWork(inner repositories.UnitOfWork) *SerializedUnitOfWork {
	return &SerializedUnitOfWork{mu: make(chan struct{}, 1), inner: inner}
}

func (s *SerializedUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(serializedKey{}) != nil {
		return s.inner.Do(ctx, fn)
	}
	select {
	case s.mu <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.mu }()
	return s.inner.Do(context.WithValue(ctx, serializedKey{}, true), fn)
}

func parseAddress(raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, domainerrors.ErrInvalidAddress
	}
	return common.HexToAddress(raw), nil
}

func parseNonZeroAddress(raw string) (common.Address, error) {
	addr, err := parseAddress(raw)
	if err != nil {
		return addr, err
	}
	if addr == (common.Address{}) {
		return addr, domainerrors.ErrZeroAddress
	}
	return addr, nil
}

func parseAmount(raw string) (*big.Int, error) {
	v, ok := entities.ParseAmount(raw)
	if !ok {
		return nil, domainerrors.ErrInvalidAmount
	}
	return v, nil
}

// parseOptionalAmount treats an empty string as zero.
func parseOptionalAmount(raw string) (*big.Int, error) {
	if strings.TrimSpace(raw) == "" {
		return big.NewInt(0), nil
	}
	return parseAmount(raw)
}

func parseCreationData(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "0x") {
		raw = "0x" + raw
	}
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, domainerrors.ErrInvalidCreationData
	}
	return data, nil
}

func normalizeEventLimit(limit int) int {
	if limit <= 0 {
		return defaultEventListLimit
	}
	if limit > maxEventListLimit {
		return maxEventListLimit
	}
	return limit
}
