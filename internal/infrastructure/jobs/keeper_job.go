package jobs

import (
	"context"
	"fmt"
	"math/big"
	"runtime/debug"

	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/pkg/logger"
	"recurpay.backend/pkg/metrics"
)

// DefaultKeeperSpec polls every 30 seconds.
const DefaultKeeperSpec = "@every 30s"

const defaultKeeperBatchSize = 100

// RecurringPayments is the part of the scheduler the keeper drives.
type RecurringPayments interface {
	ListActive(ctx context.Context, limit, offset int) ([]common.Address, error)
	CountActive(ctx context.Context) (int64, error)
	Check(ctx context.Context, owner common.Address) (*entities.CheckResult, error)
	Execute(ctx context.Context, caller, owner common.Address, gasPrice *big.Int) (*entities.ExecutionResult, error)
	DecodeExecutePayload(payload []byte) (common.Address, error)
}

// GasGuard is the gateway's off-chain gas price check.
type GasGuard interface {
	CheckGasPrice(ctx context.Context, gasPrice *big.Int) error
}

// GasPriceOracle reports the network gas price.
type GasPriceOracle interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// KeeperRound summarises one poll.
type KeeperRound struct {
	Polled    int
	Executed  int
	Cancelled int
	Failed    int
	Skipped   bool
}

// KeeperJob plays the automation network: on every tick it polls check()
// for each active owner and submits execute() for those that are due.
type KeeperJob struct {
	payments        RecurringPayments
	gas             GasGuard
	oracle          GasPriceOracle
	keeper          common.Address
	defaultGasPrice *big.Int
	spec            string
	batchSize       int
	metrics         *metrics.SchedulerMetrics
	stop            chan struct{}
}

// NewKeeperJob creates the keeper poller. oracle may be nil, in which case
// defaultGasPrice is always used.
func NewKeeperJob(
	payments RecurringPayments,
	gas GasGuard,
	oracle GasPriceOracle,
	keeper common.Address,
	defaultGasPrice *big.Int,
	spec string,
) *KeeperJob {
	if spec == "" {
		spec = DefaultKeeperSpec
	}
	return &KeeperJob{
		payments:        payments,
		gas:             gas,
		oracle:          oracle,
		keeper:          keeper,
		defaultGasPrice: entities.CloneAmount(defaultGasPrice),
		spec:            spec,
		batchSize:       defaultKeeperBatchSize,
		metrics:         metrics.Scheduler(),
		stop:            make(chan struct{}),
	}
}

// Start runs the poller until ctx is cancelled or Stop is called. A round
// still in progress when the next tick fires is not overlapped.
func (j *KeeperJob) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(j.spec, func() { j.ProcessRound(ctx) }); err != nil {
		return fmt.Errorf("invalid keeper schedule %q: %w", j.spec, err)
	}

	logger.Info(ctx, "Starting keeper job", zap.String("schedule", j.spec), logger.Address("keeper", j.keeper))
	c.Start()
	defer func() { <-c.Stop().Done() }()

	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "Keeper job stopped (context cancelled)")
	case <-j.stop:
		logger.Info(ctx, "Keeper job stopped")
	}
	return nil
}

func (j *KeeperJob) Stop() {
	close(j.stop)
}

// ProcessRound runs a single poll over every active recurring payment.
func (j *KeeperJob) ProcessRound(ctx context.Context) (round KeeperRound) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Keeper round panicked", zap.Any("panic", r), zap.String("stack", string(debug.Stack())))
		}
	}()
	j.metrics.ObserveKeeperPoll()

	if count, err := j.payments.CountActive(ctx); err == nil {
		j.metrics.SetActivePayments(count)
	}

	gasPrice := j.gasPrice(ctx)
	if err := j.gas.CheckGasPrice(ctx, gasPrice); err != nil {
		logger.Warn(ctx, "Keeper round skipped", logger.Amount("gas_price", gasPrice), zap.Error(err))
		round.Skipped = true
		return round
	}

	// Snapshot first: executions may cancel records and shift later pages.
	owners, err := j.activeOwners(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to list active recurring payments", zap.Error(err))
		return round
	}

	for _, owner := range owners {
		if ctx.Err() != nil {
			return round
		}
		round.Polled++

		check, err := j.payments.Check(ctx, owner)
		if err != nil {
			logger.Warn(ctx, "Keeper check failed", logger.Address("owner", owner), zap.Error(err))
			round.Failed++
			continue
		}
		if !check.CanExec {
			continue
		}
		target, err := j.payments.DecodeExecutePayload(check.Payload)
		if err != nil {
			logger.Warn(ctx, "Keeper got a malformed payload", logger.Address("owner", owner), zap.Error(err))
			round.Failed++
			continue
		}

		res, err := j.payments.Execute(ctx, j.keeper, target, gasPrice)
		if err != nil {
			logger.Warn(ctx, "Keeper execution failed", logger.Address("owner", target), zap.Error(err))
			round.Failed++
			continue
		}
		if res.Outcome == entities.ExecutionOutcomeCancelled {
			round.Cancelled++
		} else {
			round.Executed++
		}
	}

	if round.Executed+round.Cancelled+round.Failed > 0 {
		logger.Info(ctx, "Keeper round finished",
			zap.Int("polled", round.Polled),
			zap.Int("executed", round.Executed),
			zap.Int("cancelled", round.Cancelled),
			zap.Int("failed", round.Failed),
		)
	}
	return round
}

func (j *KeeperJob) activeOwners(ctx context.Context) ([]common.Address, error) {
	var owners []common.Address
	for offset := 0; ; offset += j.batchSize {
		page, err := j.payments.ListActive(ctx, j.batchSize, offset)
		if err != nil {
			return nil, err
		}
		owners = append(owners, page...)
		if len(page) < j.batchSize {
			return owners, nil
		}
	}
}

func (j *KeeperJob) gasPrice(ctx context.Context) *big.Int {
	if j.oracle == nil {
		return entities.CloneAmount(j.defaultGasPrice)
	}
	price, err := j.oracle.SuggestGasPrice(ctx)
	if err != nil || price == nil {
		logger.Warn(ctx, "Gas price oracle unavailable, using default", logger.Amount("default", j.defaultGasPrice), zap.Error(err))
		return entities.CloneAmount(j.defaultGasPrice)
	}
	return price
}
