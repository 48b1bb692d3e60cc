package usecases

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/internal/infrastructure/backends"
	"recurpay.backend/pkg/logger"
	"recurpay.backend/pkg/metrics"
)

// BackendResolver finds the implementation behind a backend address.
type BackendResolver interface {
	Resolve(ctx context.Context, backend, token common.Address) (backends.PaymentBackend, error)
}

// RecurringPaymentUsecase is the per-owner state machine:
// Absent -> Active on create, Active -> Absent on cancel or forced expiry.
type RecurringPaymentUsecase struct {
	uow          repositories.UnitOfWork
	payments     repositories.RecurringPaymentRepository
	paymentTypes repositories.PaymentTypeRepository
	settings     repositories.SchedulerSettingsRepository
	tokens       repositories.TokenLedger
	backends     BackendResolver
	gateway      *AutomationUsecase
	events       *EventRecorder
	metrics      *metrics.SchedulerMetrics
	scheduler    common.Address
	nowFn        Clock
}

// NewRecurringPaymentUsecase creates a new recurring payment usecase
func NewRecurringPaymentUsecase(
	uow repositories.UnitOfWork,
	payments repositories.RecurringPaymentRepository,
	paymentTypes repositories.PaymentTypeRepository,
	settings repositories.SchedulerSettingsRepository,
	tokens repositories.TokenLedger,
	resolver BackendResolver,
	gateway *AutomationUsecase,
	events *EventRecorder,
	scheduler common.Address,
) *RecurringPaymentUsecase {
	return &RecurringPaymentUsecase{
		uow:          uow,
		payments:     payments,
		paymentTypes: paymentTypes,
		settings:     settings,
		tokens:       tokens,
		backends:     resolver,
		gateway:      gateway,
		events:       events,
		metrics:      metrics.Scheduler(),
		scheduler:    scheduler,
		nowFn:        SystemClock,
	}
}

// SetNowFunc overrides the clock, for tests.
func (u *RecurringPaymentUsecase) SetNowFunc(now Clock) {
	if now != nil {
		u.nowFn = now
	}
}

// Create opens the caller's recurring payment.
func (u *RecurringPaymentUsecase) Create(ctx context.Context, caller common.Address, input *entities.CreateRecurringPaymentInput) (*entities.RecurringPayment, error) {
	initialAmount, err := parseOptionalAmount(input.InitialAmount)
	if err != nil {
		return nil, err
	}
	recurringAmount, err := parseAmount(input.RecurringAmount)
	if err != nil {
		return nil, err
	}
	creationAmount, err := parseOptionalAmount(input.CreationAmount)
	if err != nil {
		return nil, err
	}
	creationData, err := parseCreationData(input.CreationData)
	if err != nil {
		return nil, err
	}

	var (
		record *entities.RecurringPayment
		event  *entities.SchedulerEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		_, err := u.payments.GetByOwner(txCtx, caller)
		if err == nil {
			return domainerrors.ErrRecurringPaymentExists
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		paymentType, err := u.paymentTypes.GetByName(txCtx, input.PaymentTypeName)
		if err != nil {
			return err
		}
		if recurringAmount.Sign() == 0 {
			return domainerrors.ErrZeroAmount
		}
		if recurringAmount.Cmp(paymentType.MinimumRecurringAmount) < 0 {
			return domainerrors.ErrBelowMinimum
		}
		if creationAmount.Sign() > 0 && !paymentType.RequiresInitialization {
			return domainerrors.ErrUnusedCreationFunds
		}

		pull := new(big.Int).Add(initialAmount, creationAmount)
		if err := u.tokens.TransferFrom(txCtx, paymentType.TokenAddress, u.scheduler, caller, u.scheduler, pull); err != nil {
			return err
		}

		backend, err := u.backends.Resolve(txCtx, paymentType.BackendAddress, paymentType.TokenAddress)
		if err != nil {
			return err
		}
		// Initialization first: the stream backend only tops up an open stream.
		if paymentType.RequiresInitialization {
			if err := backend.AcceptCreation(txCtx, caller, creationData, creationAmount); err != nil {
				return err
			}
		}
		if initialAmount.Sign() > 0 {
			if err := backend.AcceptRecurring(txCtx, caller, initialAmount); err != nil {
				return err
			}
		}

		taskID, err := u.gateway.RegisterTask(txCtx, caller)
		if err != nil {
			return err
		}

		record = &entities.RecurringPayment{
			Owner:           caller,
			PaymentType:     paymentType.Clone(),
			RecurringAmount: recurringAmount,
			CreatedAt:       u.nowFn(),
			LastExecutedAt:  0,
			TaskID:          taskID,
		}
		if err := u.payments.Create(txCtx, record); err != nil {
			return err
		}

		payload := recurringPaymentPayload(record)
		payload["initialAmount"] = initialAmount.String()
		payload["creationAmount"] = creationAmount.String()
		event, err = u.events.Record(txCtx, entities.EventRecurringPaymentCreated, caller, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	u.events.Publish(ctx, event)
	logger.Info(ctx, "Recurring payment created",
		logger.Address("owner", caller),
		zap.String("payment_type", record.PaymentType.Name),
		logger.Amount("recurring_amount", recurringAmount),
		logger.Amount("initial_amount", initialAmount),
		zap.String("task_id", record.TaskID.Hex()),
	)
	return record, nil
}

// Execute pulls the owner's recurring amount into their backend, or
// cancels the record when a third party finds it expired.
func (u *RecurringPaymentUsecase) Execute(ctx context.Context, caller, owner common.Address, gasPrice *big.Int) (*entities.ExecutionResult, error) {
	var (
		result *entities.ExecutionResult
		event  *entities.SchedulerEvent
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		record, err := u.payments.GetByOwner(txCtx, owner)
		if err != nil {
			return err
		}
		settings, err := u.settings.Get(txCtx)
		if err != nil {
			return err
		}
		if err := checkGasPrice(settings, gasPrice); err != nil {
			return err
		}

		now := u.nowFn()
		callerIsOwner := caller == owner

		if !callerIsOwner && isExpired(record, settings, now) {
			event, err = u.cancelRecord(txCtx, record, CancelReasonExpired)
			if err != nil {
				return err
			}
			result = &entities.ExecutionResult{Outcome: entities.ExecutionOutcomeCancelled, Owner: owner}
			return nil
		}

		if now < nextExecutionTime(record, settings, callerIsOwner) {
			return domainerrors.ErrInCooldown
		}

		if caller == u.gateway.Keeper() {
			if _, err := u.gateway.ChargeKeeperFee(txCtx, record.TaskID, gasPrice); err != nil {
				return err
			}
		}

		if err := u.pullIntoBackend(txCtx, record); err != nil {
			return err
		}

		if err := u.payments.UpdateLastExecutedAt(txCtx, owner, now); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventRecurringPaymentExecuted, owner, map[string]interface{}{
			"owner":          owner.Hex(),
			"caller":         caller.Hex(),
			"amount":         record.RecurringAmount.String(),
			"lastExecutedAt": now,
		})
		result = &entities.ExecutionResult{
			Outcome:        entities.ExecutionOutcomeExecuted,
			Owner:          owner,
			Amount:         entities.CloneAmount(record.RecurringAmount),
			LastExecutedAt: now,
		}
		return err
	})
	if err != nil {
		u.metrics.ObserveExecution(executionFailureLabel(err))
		return nil, err
	}

	u.events.Publish(ctx, event)
	switch result.Outcome {
	case entities.ExecutionOutcomeCancelled:
		u.metrics.ObserveExecution("cancelled")
		u.metrics.ObserveCancellation(CancelReasonExpired)
		logger.Info(ctx, "Recurring payment expired and cancelled", logger.Address("owner", owner), logger.Address("caller", caller))
	default:
		u.metrics.ObserveExecution("executed")
		logger.Info(ctx, "Recurring payment executed",
			logger.Address("owner", owner),
			logger.Address("caller", caller),
			logger.Amount("amount", result.Amount),
		)
	}
	return result, nil
}

// pullIntoBackend moves the recurring amount from the owner through the
// scheduler into the backend and verifies the scheduler's own balance is
// unchanged afterwards.
func (u *RecurringPaymentUsecase) pullIntoBackend(ctx context.Context, record *entities.RecurringPayment) error {
	token := record.PaymentType.TokenAddress

	before, err := u.tokens.BalanceOf(ctx, token, u.scheduler)
	if err != nil {
		return err
	}
	if err := u.tokens.TransferFrom(ctx, token, u.scheduler, record.Owner, u.scheduler, record.RecurringAmount); err != nil {
		return err
	}
	backend, err := u.backends.Resolve(ctx, record.PaymentType.BackendAddress, token)
	if err != nil {
		return err
	}
	if err := backend.AcceptRecurring(ctx, record.Owner, entities.CloneAmount(record.RecurringAmount)); err != nil {
		return err
	}
	after, err := u.tokens.BalanceOf(ctx, token, u.scheduler)
	if err != nil {
		return err
	}
	if before.Cmp(after) != 0 {
		logger.Error(ctx, "Scheduler balance changed across backend call",
			logger.Address("owner", record.Owner),
			logger.Address("backend", record.PaymentType.BackendAddress),
			logger.Amount("before", before),
			logger.Amount("after", after),
		)
		return domainerrors.ErrBalanceMismatch
	}
	return nil
}

// Cancel closes the caller's own recurring payment.
func (u *RecurringPaymentUsecase) Cancel(ctx context.Context, caller common.Address) error {
	return u.cancel(ctx, caller, CancelReasonSelf, nil)
}

// CancelFor closes owner's recurring payment; governor only.
func (u *RecurringPaymentUsecase) CancelFor(ctx context.Context, caller, owner common.Address) error {
	return u.cancel(ctx, owner, CancelReasonGovernor, func(txCtx context.Context) error {
		_, err := requireGovernor(txCtx, u.settings, caller)
		return err
	})
}

func (u *RecurringPaymentUsecase) cancel(ctx context.Context, owner common.Address, reason string, authorize func(context.Context) error) error {
	var event *entities.SchedulerEvent
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if authorize != nil {
			if err := authorize(txCtx); err != nil {
				return err
			}
		}
		record, err := u.payments.GetByOwner(txCtx, owner)
		if err != nil {
			return err
		}
		event, err = u.cancelRecord(txCtx, record, reason)
		return err
	})
	if err != nil {
		return err
	}
	u.events.Publish(ctx, event)
	u.metrics.ObserveCancellation(reason)
	logger.Info(ctx, "Recurring payment cancelled", logger.Address("owner", owner), zap.String("reason", reason))
	return nil
}

func (u *RecurringPaymentUsecase) cancelRecord(ctx context.Context, record *entities.RecurringPayment, reason string) (*entities.SchedulerEvent, error) {
	if err := u.payments.Delete(ctx, record.Owner); err != nil {
		return nil, err
	}
	if err := u.gateway.CancelTask(ctx, record.TaskID); err != nil {
		return nil, err
	}
	return u.events.Record(ctx, entities.EventRecurringPaymentCancelled, record.Owner, map[string]interface{}{
		"owner":   record.Owner.Hex(),
		"taskId":  record.TaskID.Hex(),
		"reason":  reason,
		"expired": reason == CancelReasonExpired,
	})
}

// Check reports, from the keeper's point of view, whether execute(owner)
// would go through now and the calldata to submit. A missing record is
// reported as not executable.
func (u *RecurringPaymentUsecase) Check(ctx context.Context, owner common.Address) (*entities.CheckResult, error) {
	record, err := u.payments.GetByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return &entities.CheckResult{CanExec: false, Reason: CheckReasonNoRecord}, nil
		}
		return nil, err
	}
	settings, err := u.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := u.nowFn()
	payload := EncodeExecuteCall(owner)
	switch {
	case isExpired(record, settings, now):
		return &entities.CheckResult{CanExec: true, Reason: CheckReasonExpired, Payload: payload}, nil
	case now < nextExecutionTime(record, settings, false):
		return &entities.CheckResult{CanExec: false, Reason: CheckReasonCooldown}, nil
	}
	return &entities.CheckResult{CanExec: true, Reason: CheckReasonReady, Payload: payload}, nil
}

// Get returns the owner's active recurring payment
func (u *RecurringPaymentUsecase) Get(ctx context.Context, owner common.Address) (*entities.RecurringPayment, error) {
	return u.payments.GetByOwner(ctx, owner)
}

// ListActive pages through owners with an active recurring payment
func (u *RecurringPaymentUsecase) ListActive(ctx context.Context, limit, offset int) ([]common.Address, error) {
	return u.payments.ListOwners(ctx, limit, offset)
}

// CountActive returns how many recurring payments are active
func (u *RecurringPaymentUsecase) CountActive(ctx context.Context) (int64, error) {
	return u.payments.Count(ctx)
}

// DecodeExecutePayload returns the owner targeted by a Check payload.
func (u *RecurringPaymentUsecase) DecodeExecutePayload(payload []byte) (common.Address, error) {
	return DecodeExecuteCall(payload)
}

// nextExecutionTime is the earliest time caller may execute record. The
// owner counts from the last execution alone, so a never-executed record is
// immediately executable by its owner; everyone else also waits out the
// period since creation.
func nextExecutionTime(record *entities.RecurringPayment, settings *entities.SchedulerSettings, callerIsOwner bool) uint64 {
	reference := record.LastExecutedAt
	if !callerIsOwner {
		reference = record.ReferenceTime()
	}
	return reference + settings.ExecutionInterval
}

func isExpired(record *entities.RecurringPayment, settings *entities.SchedulerSettings, now uint64) bool {
	return record.ReferenceTime()+settings.ExpirationInterval <= now
}

func executionFailureLabel(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrInCooldown):
		return "cooldown"
	case errors.Is(err, domainerrors.ErrGasPriceTooHigh):
		return "gas_too_high"
	case errors.Is(err, domainerrors.ErrBalanceMismatch):
		return "integrity"
	case errors.Is(err, domainerrors.ErrNotFound):
		return "not_found"
	}
	return "error"
}

func recurringPaymentPayload(r *entities.RecurringPayment) map[string]interface{} {
	return map[string]interface{}{
		"owner":           r.Owner.Hex(),
		"paymentType":     paymentTypePayload(&r.PaymentType),
		"recurringAmount": r.RecurringAmount.String(),
		"createdAt":       r.CreatedAt,
		"lastExecutedAt":  r.LastExecutedAt,
		"taskId":          r.TaskID.Hex(),
	}
}
