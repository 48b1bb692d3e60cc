package usecases

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "recurpay.backend/internal/domain/errors"
)

type passthroughUnitOfWork struct{ calls int32 }

func (p *passthroughUnitOfWork) Do(ctx context.Context, fn func(context.Context) error) error {
	atomic.AddInt32(&p.calls, 1)
	return fn(ctx)
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress(" 0x0000000000000000000000000000000000000b01 ")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xb01"), addr)

	_, err = parseAddress("0x1234")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAddress)

	_, err = parseNonZeroAddress("0x0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, domainerrors.ErrZeroAddress)
}

func TestParseAmounts(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"integer", "100", "100", false},
		{"zero", "0", "0", false},
		{"padded", " 7 ", "7", false},
		{"negative", "-1", "", true},
		{"fraction", "1.5", "", true},
		{"hex", "0x10", "", true},
		{"blank", "", "", true},
		{"too large", "115792089237316195423570985008687907853269984665640564039457584007913129639936", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	zero, err := parseOptionalAmount("  ")
	require.NoError(t, err)
	assert.Zero(t, zero.Sign())
}

func TestParseCreationData(t *testing.T) {
	data, err := parseCreationData("")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = parseCreationData("0x")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = parseCreationData("abcd")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab, 0xcd}, data)

	_, err = parseCreationData("0xabc")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCreationData)
}

func TestNormalizeEventLimit(t *testing.T) {
	assert.Equal(t, defaultEventListLimit, normalizeEventLimit(0))
	assert.Equal(t, defaultEventListLimit, normalizeEventLimit(-3))
	assert.Equal(t, 10, normalizeEventLimit(10))
	assert.Equal(t, maxEventListLimit, normalizeEventLimit(maxEventListLimit+1))
}

func TestSerializedUnitOfWork_RunsOneCallAtATime(t *testing.T) {
	inner := &passthroughUnitOfWork{}
	uow := NewSerializedUnitOfWork(inner)

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = uow.Do(context.Background(), func(context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					m := atomic.LoadInt32(&maxRunning)
					if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxRunning)
	assert.Equal(t, int32(8), inner.calls)
}

func TestSerializedUnitOfWork_NestedCallJoins(t *testing.T) {
	uow := NewSerializedUnitOfWork(&passthroughUnitOfWork{})
	boom := errors.New("boom")

	err := uow.Do(context.Background(), func(ctx context.Context) error {
		return uow.Do(ctx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
}

func TestSerializedUnitOfWork_HonoursCancellation(t *testing.T) {
	uow := NewSerializedUnitOfWork(&passthroughUnitOfWork{})
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = uow.Do(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := uow.Do(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}
