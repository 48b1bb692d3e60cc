package repositories

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
)

func TestTokenLedger_TransferAndBalances(t *testing.T) {
	ctx := context.Background()
	ledger := NewTokenLedgerRepository(newTestDB(t))

	require.NoError(t, ledger.Mint(ctx, testToken, testAlice, big.NewInt(100)))
	require.NoError(t, ledger.Transfer(ctx, testToken, testAlice, testBob, big.NewInt(40)))

	alice, err := ledger.BalanceOf(ctx, testToken, testAlice)
	require.NoError(t, err)
	bob, err := ledger.BalanceOf(ctx, testToken, testBob)
	require.NoError(t, err)
	require.Equal(t, int64(60), alice.Int64())
	require.Equal(t, int64(40), bob.Int64())

	err = ledger.Transfer(ctx, testToken, testBob, testAlice, big.NewInt(41))
	require.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	require.NoError(t, ledger.Transfer(ctx, testToken, testBob, testAlice, big.NewInt(0)))
}

func TestTokenLedger_TransferFromConsumesAllowance(t *testing.T) {
	ctx := context.Background()
	ledger := NewTokenLedgerRepository(newTestDB(t))
	spender := testBob

	require.NoError(t, ledger.Mint(ctx, testToken, testAlice, big.NewInt(100)))

	err := ledger.TransferFrom(ctx, testToken, spender, testAlice, spender, big.NewInt(10))
	require.ErrorIs(t, err, domainerrors.ErrInsufficientAllowance)

	require.NoError(t, ledger.Approve(ctx, testToken, testAlice, spender, big.NewInt(30)))
	require.NoError(t, ledger.TransferFrom(ctx, testToken, spender, testAlice, spender, big.NewInt(10)))

	left, err := ledger.Allowance(ctx, testToken, testAlice, spender)
	require.NoError(t, err)
	require.Equal(t, int64(20), left.Int64())
}

func TestTokenLedger_UnlimitedAllowanceIsNotDecremented(t *testing.T) {
	ctx := context.Background()
	ledger := NewTokenLedgerRepository(newTestDB(t))

	require.NoError(t, ledger.Mint(ctx, testToken, testAlice, big.NewInt(100)))
	require.NoError(t, ledger.Approve(ctx, testToken, testAlice, testBob, entities.MaxUint256))
	require.NoError(t, ledger.TransferFrom(ctx, testToken, testBob, testAlice, testBob, big.NewInt(99)))

	left, err := ledger.Allowance(ctx, testToken, testAlice, testBob)
	require.NoError(t, err)
	require.True(t, entities.IsUnlimited(left))
}
