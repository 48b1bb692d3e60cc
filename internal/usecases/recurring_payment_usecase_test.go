package usecases_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/infrastructure/backends"
	"recurpay.backend/internal/usecases"
)

func TestRecurringPaymentUsecase_Create(t *testing.T) {
	e := newTestEnv(t)
	pt := e.registerType("ledger", ledgerAt, 10, false)
	e.fund(alice, 1_000)

	record, err := e.recurring.Create(e.ctx, alice, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: "ledger",
		InitialAmount:   "250",
		RecurringAmount: "100",
	})
	require.NoError(t, err)
	assert.Equal(t, alice, record.Owner)
	assert.Equal(t, pt.ID, record.PaymentType.ID)
	assert.Equal(t, startTime, record.CreatedAt)
	assert.Zero(t, record.LastExecutedAt)
	assert.NotEqual(t, common.Hash{}, record.TaskID)

	// the initial amount went through the scheduler into alice's ledger credit
	assert.Equal(t, int64(750), e.balance(settlementToken, alice))
	assert.Equal(t, int64(0), e.balance(settlementToken, scheduler))
	assert.Equal(t, int64(250), e.balance(settlementToken, ledgerAt))
	credit, err := e.backendUC.LedgerBalance(e.ctx, ledgerAt, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(250), credit.Balance.Int64())

	task, err := e.automation.GetTask(e.ctx, record.TaskID)
	require.NoError(t, err)
	assert.True(t, task.Active)
	assert.Equal(t, alice, task.Owner)
	assert.Equal(t, scheduler, task.Target)
	assert.Equal(t, usecases.ExecuteSelector, task.Selector)

	stored, err := e.recurring.Get(e.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, record.TaskID, stored.TaskID)
	assert.Equal(t, int64(100), stored.RecurringAmount.Int64())

	created := e.publisher.last()
	require.NotNil(t, created)
	assert.Equal(t, entities.EventRecurringPaymentCreated, created.Type)
	assert.Equal(t, alice, created.Owner)
	assert.Equal(t, "100", created.Payload["recurringAmount"])
	assert.Equal(t, "250", created.Payload["initialAmount"])
}

func TestRecurringPaymentUsecase_Create_AtMostOneRecordPerOwner(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	_, err = e.create(alice, "noop", 100)
	assert.ErrorIs(t, err, domainerrors.ErrRecurringPaymentExists)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	require.NoError(t, e.recurring.Cancel(e.ctx, alice))
	_, err = e.create(alice, "noop", 100)
	assert.NoError(t, err)
}

func TestRecurringPaymentUsecase_Create_Validation(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "missing", 100)
	assert.ErrorIs(t, err, domainerrors.ErrPaymentTypeNotFound)

	_, err = e.create(alice, "noop", 0)
	assert.ErrorIs(t, err, domainerrors.ErrZeroAmount)

	_, err = e.recurring.Create(e.ctx, alice, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: "noop",
		RecurringAmount: "-5",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)

	_, err = e.recurring.Create(e.ctx, alice, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: "noop",
		RecurringAmount: "100",
		CreationAmount:  "5",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnusedCreationFunds)

	_, err = e.recurring.Create(e.ctx, alice, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: "noop",
		RecurringAmount: "100",
		CreationData:    "0xzz",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCreationData)

	count, err := e.recurring.CountActive(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecurringPaymentUsecase_Create_MinimumBoundary(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 100, false)
	e.fund(alice, 1_000)
	e.fund(bob, 1_000)

	_, err := e.create(alice, "noop", 99)
	assert.ErrorIs(t, err, domainerrors.ErrBelowMinimum)

	_, err = e.create(bob, "noop", 100)
	assert.NoError(t, err)
}

func TestRecurringPaymentUsecase_Create_RollsBackOnInsufficientFunds(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 50)

	_, err := e.recurring.Create(e.ctx, alice, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: "noop",
		InitialAmount:   "100",
		RecurringAmount: "100",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	_, err = e.recurring.Get(e.ctx, alice)
	assert.ErrorIs(t, err, domainerrors.ErrRecurringPaymentNotFound)
	nonce, err := e.tasks.Count(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, nonce)
	assert.Equal(t, int64(50), e.balance(settlementToken, alice))
}

func TestRecurringPaymentUsecase_Create_StreamInitialization(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("stream", streamAt, 10, true)
	e.fund(alice, 1_000)

	data, err := backends.EncodeStreamCreationData(carol, big.NewInt(2))
	require.NoError(t, err)

	_, err = e.recurring.Create(e.ctx, alice, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: "stream",
		InitialAmount:   "40",
		RecurringAmount: "100",
		CreationAmount:  "60",
		CreationData:    common.Bytes2Hex(data),
	})
	require.NoError(t, err)

	stream, err := e.backendUC.Stream(e.ctx, streamAt, alice)
	require.NoError(t, err)
	assert.Equal(t, carol, stream.Recipient)
	assert.Equal(t, int64(100), stream.Deposit.Int64())
	assert.Equal(t, int64(100), e.balance(settlementToken, streamAt))
	assert.Equal(t, int64(900), e.balance(settlementToken, alice))

	e.advance(10)
	paid, err := e.backendUC.WithdrawStream(e.ctx, streamAt, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(20), paid.Int64())
	assert.Equal(t, int64(20), e.balance(settlementToken, carol))
}

func TestRecurringPaymentUsecase_Create_StreamRejectsBadCreationData(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("stream", streamAt, 10, true)
	e.fund(alice, 1_000)

	_, err := e.recurring.Create(e.ctx, alice, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: "stream",
		RecurringAmount: "100",
		CreationAmount:  "60",
		CreationData:    "0x1234",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCreationData)
	assert.Equal(t, int64(1_000), e.balance(settlementToken, alice))
}

// Owner creates at day 0 with a 2 day interval and 13 day expiry.
func TestRecurringPaymentUsecase_ExecuteScenario(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)
	e.fundTreasury(100_000_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	// day 0: the owner goes first
	res, err := e.recurring.Execute(e.ctx, alice, alice, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, entities.ExecutionOutcomeExecuted, res.Outcome)
	assert.Equal(t, startTime, res.LastExecutedAt)
	assert.Equal(t, int64(900), e.balance(settlementToken, alice))
	assert.Equal(t, int64(100), e.balance(settlementToken, noopAt))

	// day 1: third party is still in cooldown
	e.advance(day)
	_, err = e.recurring.Execute(e.ctx, keeper, alice, big.NewInt(10))
	assert.ErrorIs(t, err, domainerrors.ErrInCooldown)

	// day 2: owner again
	e.advance(day)
	res, err = e.recurring.Execute(e.ctx, alice, alice, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, startTime+2*day, res.LastExecutedAt)
	assert.Equal(t, int64(800), e.balance(settlementToken, alice))

	// day 16: past expiry, the keeper's call cancels instead of pulling
	e.advance(14 * day)
	treasuryBefore, err := e.automation.TreasuryBalance(e.ctx)
	require.NoError(t, err)
	res, err = e.recurring.Execute(e.ctx, keeper, alice, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, entities.ExecutionOutcomeCancelled, res.Outcome)
	assert.Equal(t, int64(800), e.balance(settlementToken, alice))

	_, err = e.recurring.Get(e.ctx, alice)
	assert.ErrorIs(t, err, domainerrors.ErrRecurringPaymentNotFound)

	// no fee for a cancellation
	treasuryAfter, err := e.automation.TreasuryBalance(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, treasuryBefore.Balance, treasuryAfter.Balance)

	cancelled := e.publisher.last()
	require.NotNil(t, cancelled)
	assert.Equal(t, entities.EventRecurringPaymentCancelled, cancelled.Type)
	assert.Equal(t, true, cancelled.Payload["expired"])
}

func TestRecurringPaymentUsecase_Execute_ThirdPartyWaitsSinceCreation(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	_, err = e.recurring.Execute(e.ctx, bob, alice, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrInCooldown)

	e.advance(2*day - 1)
	_, err = e.recurring.Execute(e.ctx, bob, alice, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrInCooldown)

	e.advance(1)
	res, err := e.recurring.Execute(e.ctx, bob, alice, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, entities.ExecutionOutcomeExecuted, res.Outcome)
}

func TestRecurringPaymentUsecase_Execute_OwnerRevivesExpiredSchedule(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	e.advance(30 * day)
	res, err := e.recurring.Execute(e.ctx, alice, alice, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, entities.ExecutionOutcomeExecuted, res.Outcome)

	record, err := e.recurring.Get(e.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, e.now, record.LastExecutedAt)
}

func TestRecurringPaymentUsecase_Execute_GasPriceTooHighRegardlessOfCooldown(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	tooHigh := new(big.Int).Add(defaultMaxGasPrice, big.NewInt(1))

	// ready for the owner
	_, err = e.recurring.Execute(e.ctx, alice, alice, tooHigh)
	assert.ErrorIs(t, err, domainerrors.ErrGasPriceTooHigh)

	// in cooldown for the keeper
	_, err = e.recurring.Execute(e.ctx, keeper, alice, tooHigh)
	assert.ErrorIs(t, err, domainerrors.ErrGasPriceTooHigh)

	// expired: still refused before the forced cancel
	e.advance(20 * day)
	_, err = e.recurring.Execute(e.ctx, keeper, alice, tooHigh)
	assert.ErrorIs(t, err, domainerrors.ErrGasPriceTooHigh)
	_, err = e.recurring.Get(e.ctx, alice)
	assert.NoError(t, err)

	// exactly the ceiling is allowed
	_, err = e.recurring.Execute(e.ctx, alice, alice, defaultMaxGasPrice)
	assert.NoError(t, err)
}

func TestRecurringPaymentUsecase_Execute_IntegrityGuard(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("siphon", siphonAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "siphon", 100)
	require.NoError(t, err)

	_, err = e.recurring.Execute(e.ctx, alice, alice, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrBalanceMismatch)
	assert.ErrorIs(t, err, domainerrors.ErrIntegrity)

	record, err := e.recurring.Get(e.ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, record.LastExecutedAt)
	assert.Equal(t, int64(1_000), e.balance(settlementToken, alice))
	assert.Equal(t, int64(0), e.balance(settlementToken, scheduler))
}

func TestRecurringPaymentUsecase_Execute_KeeperFee(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)
	e.fundTreasury(5_000_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)
	e.advance(2 * day)

	res, err := e.recurring.Execute(e.ctx, keeper, alice, big.NewInt(20))
	require.NoError(t, err)
	assert.Equal(t, entities.ExecutionOutcomeExecuted, res.Outcome)

	fee := int64(gasPerExecution) * 20
	assert.Equal(t, fee, e.balance(entities.NativeCurrency, keeper))
	status, err := e.automation.TreasuryBalance(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5_000_000-fee, status.Balance.Int64())
}

func TestRecurringPaymentUsecase_Execute_UnderfundedTreasuryFailsKeeper(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)
	e.advance(2 * day)

	_, err = e.recurring.Execute(e.ctx, keeper, alice, big.NewInt(20))
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientTreasury)
	assert.Equal(t, int64(1_000), e.balance(settlementToken, alice))

	// anyone else pays their own gas
	_, err = e.recurring.Execute(e.ctx, bob, alice, big.NewInt(20))
	assert.NoError(t, err)
}

func TestRecurringPaymentUsecase_Execute_NotFound(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.recurring.Execute(e.ctx, keeper, alice, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrRecurringPaymentNotFound)
}

func TestRecurringPaymentUsecase_Execute_AfterUnregisterFails(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	record, err := e.create(alice, "noop", 100)
	require.NoError(t, err)
	require.NoError(t, e.paymentTypes.Unregister(e.ctx, governor, "noop"))

	// the snapshot survives, the revoked allowance stops the pull
	stored, err := e.recurring.Get(e.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, record.PaymentType.ID, stored.PaymentType.ID)

	_, err = e.recurring.Execute(e.ctx, alice, alice, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientAllowance)
	assert.Equal(t, int64(1_000), e.balance(settlementToken, alice))
}

func TestRecurringPaymentUsecase_Cancel(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	record, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	require.NoError(t, e.recurring.Cancel(e.ctx, alice))

	task, err := e.automation.GetTask(e.ctx, record.TaskID)
	require.NoError(t, err)
	assert.False(t, task.Active)
	assert.True(t, task.CancelledAt.Valid)

	cancelled := e.publisher.last()
	require.NotNil(t, cancelled)
	assert.Equal(t, entities.EventRecurringPaymentCancelled, cancelled.Type)
	assert.Equal(t, false, cancelled.Payload["expired"])
	assert.Equal(t, usecases.CancelReasonSelf, cancelled.Payload["reason"])

	// cancelling an absent owner is always not-found
	for i := 0; i < 2; i++ {
		err = e.recurring.Cancel(e.ctx, alice)
		assert.ErrorIs(t, err, domainerrors.ErrRecurringPaymentNotFound)
	}
	assert.ErrorIs(t, e.recurring.Cancel(e.ctx, bob), domainerrors.ErrNotFound)
}

func TestRecurringPaymentUsecase_CancelFor(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	_, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	err = e.recurring.CancelFor(e.ctx, bob, alice)
	assert.ErrorIs(t, err, domainerrors.ErrNotGovernor)

	require.NoError(t, e.recurring.CancelFor(e.ctx, governor, alice))

	// owner racing the governor simply finds nothing
	assert.ErrorIs(t, e.recurring.Cancel(e.ctx, alice), domainerrors.ErrRecurringPaymentNotFound)
	assert.ErrorIs(t, e.recurring.CancelFor(e.ctx, governor, alice), domainerrors.ErrRecurringPaymentNotFound)
}

func TestRecurringPaymentUsecase_TaskIDsAreUnique(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	first, err := e.create(alice, "noop", 100)
	require.NoError(t, err)
	require.NoError(t, e.recurring.Cancel(e.ctx, alice))
	second, err := e.create(alice, "noop", 100)
	require.NoError(t, err)

	assert.NotEqual(t, first.TaskID, second.TaskID)
}

func TestRecurringPaymentUsecase_Check(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	e.fund(alice, 1_000)

	res, err := e.recurring.Check(e.ctx, alice)
	require.NoError(t, err)
	assert.False(t, res.CanExec)
	assert.Equal(t, usecases.CheckReasonNoRecord, res.Reason)
	assert.Empty(t, res.Payload)

	_, err = e.create(alice, "noop", 100)
	require.NoError(t, err)

	res, err = e.recurring.Check(e.ctx, alice)
	require.NoError(t, err)
	assert.False(t, res.CanExec)
	assert.Equal(t, usecases.CheckReasonCooldown, res.Reason)

	e.advance(2 * day)
	res, err = e.recurring.Check(e.ctx, alice)
	require.NoError(t, err)
	assert.True(t, res.CanExec)
	assert.Equal(t, usecases.CheckReasonReady, res.Reason)
	owner, err := e.recurring.DecodeExecutePayload(res.Payload)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	e.advance(13 * day)
	res, err = e.recurring.Check(e.ctx, alice)
	require.NoError(t, err)
	assert.True(t, res.CanExec)
	assert.Equal(t, usecases.CheckReasonExpired, res.Reason)

	require.NoError(t, e.recurring.Cancel(e.ctx, alice))
	res, err = e.recurring.Check(e.ctx, alice)
	require.NoError(t, err)
	assert.False(t, res.CanExec)
}

func TestRecurringPaymentUsecase_ListActive(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 10, false)
	for _, owner := range []common.Address{alice, bob, carol} {
		e.fund(owner, 1_000)
		_, err := e.create(owner, "noop", 100)
		require.NoError(t, err)
	}

	owners, err := e.recurring.ListActive(e.ctx, 10, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []common.Address{alice, bob, carol}, owners)

	page, err := e.recurring.ListActive(e.ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	count, err := e.recurring.CountActive(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRecurringPaymentUsecase_Check_PropagatesStorageErrors(t *testing.T) {
	payments := new(MockRecurringPaymentRepository)
	uc := usecases.NewRecurringPaymentUsecase(new(MockUnitOfWork), payments, nil, nil, nil, nil, nil, nil, scheduler)

	boom := assert.AnError
	payments.On("GetByOwner", context.Background(), alice).Return(nil, boom).Once()

	_, err := uc.Check(context.Background(), alice)
	assert.ErrorIs(t, err, boom)
	payments.AssertExpectations(t)
}
