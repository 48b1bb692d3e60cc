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
	"recurpay.backend/pkg/logger"
)

// GovernanceUsecase owns the scheduler-wide settings, the two-step governor
// handover and the token rescue hatch.
type GovernanceUsecase struct {
	uow       repositories.UnitOfWork
	settings  repositories.SchedulerSettingsRepository
	tokens    repositories.TokenLedger
	events    *EventRecorder
	scheduler common.Address
}

// NewGovernanceUsecase creates a new governance usecase
func NewGovernanceUsecase(
	uow repositories.UnitOfWork,
	settings repositories.SchedulerSettingsRepository,
	tokens repositories.TokenLedger,
	events *EventRecorder,
	scheduler common.Address,
) *GovernanceUsecase {
	return &GovernanceUsecase{
		uow:       uow,
		settings:  settings,
		tokens:    tokens,
		events:    events,
		scheduler: scheduler,
	}
}

// requireGovernor loads the settings and fails unless caller is the governor.
func requireGovernor(ctx context.Context, repo repositories.SchedulerSettingsRepository, caller common.Address) (*entities.SchedulerSettings, error) {
	settings, err := repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if caller != settings.Governor {
		return nil, domainerrors.ErrNotGovernor
	}
	return settings, nil
}

// EnsureSettings seeds the settings row on first start. Existing settings are
// left untouched so governor changes survive restarts.
func (u *GovernanceUsecase) EnsureSettings(ctx context.Context, defaults *entities.SchedulerSettings) (*entities.SchedulerSettings, error) {
	var out *entities.SchedulerSettings
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		existing, err := u.settings.Get(txCtx)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		if defaults.Governor == (common.Address{}) {
			return domainerrors.ErrZeroAddress
		}
		if defaults.ExecutionInterval == 0 || defaults.ExecutionInterval >= defaults.ExpirationInterval {
			return domainerrors.ErrInvalidIntervals
		}
		if defaults.MaxGasPrice == nil || defaults.MaxGasPrice.Sign() == 0 {
			return domainerrors.ErrZeroAmount
		}
		seeded := *defaults
		seeded.MaxGasPrice = entities.CloneAmount(defaults.MaxGasPrice)
		seeded.PendingGovernor = common.Address{}
		if err := u.settings.Save(txCtx, &seeded); err != nil {
			return err
		}
		out = &seeded
		logger.Info(txCtx, "Scheduler settings seeded",
			logger.Address("governor", seeded.Governor),
			zap.Uint64("execution_interval", seeded.ExecutionInterval),
			zap.Uint64("expiration_interval", seeded.ExpirationInterval),
			logger.Amount("max_gas_price", seeded.MaxGasPrice),
		)
		return nil
	})
	return out, err
}

// Settings returns the current scheduler settings
func (u *GovernanceUsecase) Settings(ctx context.Context) (*entities.SchedulerSettings, error) {
	return u.settings.Get(ctx)
}

// SetExecutionInterval changes the minimum spacing between executions.
func (u *GovernanceUsecase) SetExecutionInterval(ctx context.Context, caller common.Address, seconds uint64) (*entities.SchedulerSettings, error) {
	return u.updateSettings(ctx, caller, entities.EventExecutionIntervalSet, func(s *entities.SchedulerSettings) (map[string]interface{}, error) {
		if seconds == 0 || seconds >= s.ExpirationInterval {
			return nil, domainerrors.ErrInvalidIntervals
		}
		s.ExecutionInterval = seconds
		return map[string]interface{}{"executionInterval": seconds}, nil
	})
}

// SetExpirationInterval changes how long a record may go unexecuted.
func (u *GovernanceUsecase) SetExpirationInterval(ctx context.Context, caller common.Address, seconds uint64) (*entities.SchedulerSettings, error) {
	return u.updateSettings(ctx, caller, entities.EventExpirationIntervalSet, func(s *entities.SchedulerSettings) (map[string]interface{}, error) {
		if seconds <= s.ExecutionInterval {
			return nil, domainerrors.ErrInvalidIntervals
		}
		s.ExpirationInterval = seconds
		return map[string]interface{}{"expirationInterval": seconds}, nil
	})
}

// TransferGovernance proposes newGovernor; the handover completes when they accept.
func (u *GovernanceUsecase) TransferGovernance(ctx context.Context, caller common.Address, input *entities.TransferGovernanceInput) (*entities.SchedulerSettings, error) {
	newGovernor, err := parseNonZeroAddress(input.NewGovernor)
	if err != nil {
		return nil, err
	}
	return u.updateSettings(ctx, caller, entities.EventGovernanceTransferProposed, func(s *entities.SchedulerSettings) (map[string]interface{}, error) {
		s.PendingGovernor = newGovernor
		return map[string]interface{}{
			"governor":        s.Governor.Hex(),
			"pendingGovernor": newGovernor.Hex(),
		}, nil
	})
}

// AcceptGovernance completes a handover; only the pending governor may call it.
func (u *GovernanceUsecase) AcceptGovernance(ctx context.Context, caller common.Address) (*entities.SchedulerSettings, error) {
	var (
		out   *entities.SchedulerSettings
		event *entities.SchedulerEvent
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		s, err := u.settings.Get(txCtx)
		if err != nil {
			return err
		}
		if s.PendingGovernor == (common.Address{}) || caller != s.PendingGovernor {
			return domainerrors.ErrNotPendingGovernor
		}
		previous := s.Governor
		s.Governor = caller
		s.PendingGovernor = common.Address{}
		if err := u.settings.Save(txCtx, s); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventGovernanceAccepted, common.Address{}, map[string]interface{}{
			"previousGovernor": previous.Hex(),
			"governor":         caller.Hex(),
		})
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Governance accepted", logger.Address("governor", caller))
	return out, nil
}

// RescueTokens moves any token held by the scheduler to `to`.
func (u *GovernanceUsecase) RescueTokens(ctx context.Context, caller common.Address, input *entities.RescueTokensInput) error {
	to, err := parseNonZeroAddress(input.To)
	if err != nil {
		return err
	}
	token, err := parseNonZeroAddress(input.Token)
	if err != nil {
		return err
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return domainerrors.ErrZeroAmount
	}

	var event *entities.SchedulerEvent
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		if err := u.tokens.Transfer(txCtx, token, u.scheduler, to, amount); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventTokensRescued, common.Address{}, map[string]interface{}{
			"to":     to.Hex(),
			"token":  token.Hex(),
			"amount": amount.String(),
		})
		return err
	})
	if err != nil {
		return err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Tokens rescued",
		logger.Address("to", to),
		logger.Address("token", token),
		logger.Amount("amount", amount),
	)
	return nil
}

// SchedulerBalance returns what the scheduler account holds of token.
func (u *GovernanceUsecase) SchedulerBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	return u.tokens.BalanceOf(ctx, token, u.scheduler)
}

func (u *GovernanceUsecase) updateSettings(
	ctx context.Context,
	caller common.Address,
	eventType entities.SchedulerEventType,
	mutate func(s *entities.SchedulerSettings) (map[string]interface{}, error),
) (*entities.SchedulerSettings, error) {
	var (
		out   *entities.SchedulerSettings
		event *entities.SchedulerEvent
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		s, err := requireGovernor(txCtx, u.settings, caller)
		if err != nil {
			return err
		}
		payload, err := mutate(s)
		if err != nil {
			return err
		}
		if err := u.settings.Save(txCtx, s); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, eventType, common.Address{}, payload)
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Scheduler settings updated", zap.String("event", string(eventType)))
	return out, nil
}
