package usecases

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/pkg/logger"
)

// AutomationUsecase is the gateway to the keeper network: task registration,
// the gas price ceiling and the native-currency treasury that pays keepers.
//
// RegisterTask, CancelTask and ChargeKeeperFee join the caller's transaction
// and must be called from inside a unit of work.
type AutomationUsecase struct {
	uow             repositories.UnitOfWork
	tasks           repositories.AutomationTaskRepository
	treasury        repositories.TreasuryRepository
	settings        repositories.SchedulerSettingsRepository
	tokens          repositories.TokenLedger
	events          *EventRecorder
	scheduler       common.Address
	treasuryAccount common.Address
	keeper          common.Address
	gasPerExecution uint64
	nowFn           Clock
}

// NewAutomationUsecase creates a new automation gateway
func NewAutomationUsecase(
	uow repositories.UnitOfWork,
	tasks repositories.AutomationTaskRepository,
	treasury repositories.TreasuryRepository,
	settings repositories.SchedulerSettingsRepository,
	tokens repositories.TokenLedger,
	events *EventRecorder,
	scheduler, treasuryAccount, keeper common.Address,
	gasPerExecution uint64,
) *AutomationUsecase {
	return &AutomationUsecase{
		uow:             uow,
		tasks:           tasks,
		treasury:        treasury,
		settings:        settings,
		tokens:          tokens,
		events:          events,
		scheduler:       scheduler,
		treasuryAccount: treasuryAccount,
		keeper:          keeper,
		gasPerExecution: gasPerExecution,
		nowFn:           SystemClock,
	}
}

// SetNowFunc overrides the clock, for tests.
func (u *AutomationUsecase) SetNowFunc(now Clock) {
	if now != nil {
		u.nowFn = now
	}
}

// Keeper returns the account allowed to collect execution fees.
func (u *AutomationUsecase) Keeper() common.Address {
	return u.keeper
}

// RegisterTask registers execute(owner) on the scheduler with the keeper
// network and returns the task id.
func (u *AutomationUsecase) RegisterTask(ctx context.Context, owner common.Address) (common.Hash, error) {
	nonce, err := u.tasks.Count(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	id, err := computeTaskID(u.scheduler, ExecuteSelector, owner, uint64(nonce))
	if err != nil {
		return common.Hash{}, err
	}
	task := &entities.AutomationTask{
		ID:        id,
		Owner:     owner,
		Target:    u.scheduler,
		Selector:  ExecuteSelector,
		Active:    true,
		CreatedAt: u.nowFn(),
	}
	if err := u.tasks.Create(ctx, task); err != nil {
		return common.Hash{}, err
	}
	logger.Debug(ctx, "Automation task registered", zap.String("task_id", id.Hex()), logger.Address("owner", owner))
	return id, nil
}

// CancelTask deactivates a task. Cancelling an already cancelled task is a
// no-op; an id that was never issued is not-found.
func (u *AutomationUsecase) CancelTask(ctx context.Context, id common.Hash) error {
	if _, err := u.tasks.GetByID(ctx, id); err != nil {
		return err
	}
	return u.tasks.Deactivate(ctx, id, u.nowFn())
}

// GetTask returns a task by id
func (u *AutomationUsecase) GetTask(ctx context.Context, id common.Hash) (*entities.AutomationTask, error) {
	return u.tasks.GetByID(ctx, id)
}

// SetMaxGasPrice sets the gas price ceiling execute() enforces.
func (u *AutomationUsecase) SetMaxGasPrice(ctx context.Context, caller common.Address, input *entities.MaxGasPriceInput) (*entities.SchedulerSettings, error) {
	price, err := parseAmount(input.MaxGasPrice)
	if err != nil {
		return nil, err
	}
	if price.Sign() == 0 {
		return nil, domainerrors.ErrZeroAmount
	}

	var (
		out   *entities.SchedulerSettings
		event *entities.SchedulerEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		s, err := requireGovernor(txCtx, u.settings, caller)
		if err != nil {
			return err
		}
		s.MaxGasPrice = price
		if err := u.settings.Save(txCtx, s); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventMaxGasPriceSet, common.Address{}, map[string]interface{}{
			"maxGasPrice": price.String(),
		})
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Max gas price set", logger.Amount("max_gas_price", price))
	return out, nil
}

// CheckGasPrice fails with ErrGasPriceTooHigh when gasPrice exceeds the ceiling.
func (u *AutomationUsecase) CheckGasPrice(ctx context.Context, gasPrice *big.Int) error {
	s, err := u.settings.Get(ctx)
	if err != nil {
		return err
	}
	return checkGasPrice(s, gasPrice)
}

func checkGasPrice(s *entities.SchedulerSettings, gasPrice *big.Int) error {
	if entities.CloneAmount(gasPrice).Cmp(s.MaxGasPrice) > 0 {
		return domainerrors.ErrGasPriceTooHigh
	}
	return nil
}

// DepositTreasury moves native currency from caller into the keeper treasury.
func (u *AutomationUsecase) DepositTreasury(ctx context.Context, caller common.Address, input *entities.TreasuryDepositInput) (*entities.TreasuryStatus, error) {
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, domainerrors.ErrZeroAmount
	}

	var (
		balance *big.Int
		event   *entities.SchedulerEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.tokens.Transfer(txCtx, entities.NativeCurrency, caller, u.treasuryAccount, amount); err != nil {
			return err
		}
		current, err := u.treasury.Balance(txCtx)
		if err != nil {
			return err
		}
		balance = new(big.Int).Add(current, amount)
		if err := u.treasury.SetBalance(txCtx, balance); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventTreasuryDeposited, caller, map[string]interface{}{
			"from":    caller.Hex(),
			"amount":  amount.String(),
			"balance": balance.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Treasury deposited", logger.Address("from", caller), logger.Amount("amount", amount))
	return &entities.TreasuryStatus{Balance: balance}, nil
}

// WithdrawTreasury pays native currency out of the treasury; governor only.
func (u *AutomationUsecase) WithdrawTreasury(ctx context.Context, caller common.Address, input *entities.TreasuryWithdrawInput) (*entities.TreasuryStatus, error) {
	to, err := parseNonZeroAddress(input.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, domainerrors.ErrZeroAmount
	}

	var (
		balance *big.Int
		event   *entities.SchedulerEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		balance, err = u.debitTreasury(txCtx, to, amount)
		if err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventTreasuryWithdrawn, common.Address{}, map[string]interface{}{
			"to":      to.Hex(),
			"amount":  amount.String(),
			"balance": balance.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Treasury withdrawn", logger.Address("to", to), logger.Amount("amount", amount))
	return &entities.TreasuryStatus{Balance: balance}, nil
}

// TreasuryBalance returns the native balance available for keeper fees
func (u *AutomationUsecase) TreasuryBalance(ctx context.Context) (*entities.TreasuryStatus, error) {
	balance, err := u.treasury.Balance(ctx)
	if err != nil {
		return nil, err
	}
	return &entities.TreasuryStatus{Balance: balance}, nil
}

// ChargeKeeperFee pays the keeper gasPerExecution * gasPrice for running
// task. An underfunded treasury fails the execution.
func (u *AutomationUsecase) ChargeKeeperFee(ctx context.Context, taskID common.Hash, gasPrice *big.Int) (*big.Int, error) {
	fee := new(big.Int).Mul(new(big.Int).SetUint64(u.gasPerExecution), entities.CloneAmount(gasPrice))
	if fee.Sign() == 0 {
		return fee, nil
	}
	if _, err := u.debitTreasury(ctx, u.keeper, fee); err != nil {
		return nil, err
	}
	logger.Debug(ctx, "Keeper fee charged", zap.String("task_id", taskID.Hex()), logger.Amount("fee", fee))
	return fee, nil
}

func (u *AutomationUsecase) debitTreasury(ctx context.Context, to common.Address, amount *big.Int) (*big.Int, error) {
	current, err := u.treasury.Balance(ctx)
	if err != nil {
		return nil, err
	}
	if current.Cmp(amount) < 0 {
		return nil, domainerrors.ErrInsufficientTreasury
	}
	if err := u.tokens.Transfer(ctx, entities.NativeCurrency, u.treasuryAccount, to, amount); err != nil {
		return nil, err
	}
	balance := new(big.Int).Sub(current, amount)
	if err := u.treasury.SetBalance(ctx, balance); err != nil {
		return nil, err
	}
	return balance, nil
}
