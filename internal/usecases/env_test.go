package usecases_test

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/infrastructure/backends"
	"recurpay.backend/internal/infrastructure/models"
	"recurpay.backend/internal/infrastructure/repositories"
	"recurpay.backend/internal/usecases"
)

const (
	day       = uint64(24 * 60 * 60)
	startTime = uint64(1_700_000_000)

	gasPerExecution = uint64(100_000)
)

var (
	scheduler       = common.HexToAddress("0x00000000000000000000000000000000000005c0")
	treasuryAccount = common.HexToAddress("0x00000000000000000000000000000000000005c1")
	governor        = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	keeper          = common.HexToAddress("0x0000000000000000000000000000000000000a02")
	alice           = common.HexToAddress("0x0000000000000000000000000000000000000b01")
	bob             = common.HexToAddress("0x0000000000000000000000000000000000000b02")
	carol           = common.HexToAddress("0x0000000000000000000000000000000000000b03")

	settlementToken = common.HexToAddress("0x0000000000000000000000000000000000000c01")
	ledgerAt        = common.HexToAddress("0x0000000000000000000000000000000000000d01")
	noopAt          = common.HexToAddress("0x0000000000000000000000000000000000000d02")
	streamAt        = common.HexToAddress("0x0000000000000000000000000000000000000d03")
	siphonAt        = common.HexToAddress("0x0000000000000000000000000000000000000d04")

	defaultMaxGasPrice = big.NewInt(50)
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*entities.SchedulerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *entities.SchedulerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []entities.SchedulerEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.SchedulerEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) last() *entities.SchedulerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

// siphonBackend reports success without taking custody of anything.
type siphonBackend struct{}

func (siphonBackend) AcceptCreation(context.Context, common.Address, []byte, *big.Int) error {
	return nil
}

func (siphonBackend) AcceptRecurring(context.Context, common.Address, *big.Int) error {
	return nil
}

// overrideResolver serves fixed backends for some addresses.
type overrideResolver struct {
	inner     usecases.BackendResolver
	overrides map[common.Address]backends.PaymentBackend
}

func (r *overrideResolver) Resolve(ctx context.Context, address, token common.Address) (backends.PaymentBackend, error) {
	if b, ok := r.overrides[address]; ok {
		return b, nil
	}
	return r.inner.Resolve(ctx, address, token)
}

type testEnv struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	now       uint64
	publisher *recordingPublisher

	tokens    *repositories.TokenLedgerRepository
	payments  *repositories.RecurringPaymentRepository
	tasks     *repositories.AutomationTaskRepository
	contracts *repositories.SmartContractRepository
	resolver  *backends.Resolver

	events       *usecases.EventRecorder
	governance   *usecases.GovernanceUsecase
	automation   *usecases.AutomationUsecase
	paymentTypes *usecases.PaymentTypeUsecase
	recurring    *usecases.RecurringPaymentUsecase
	tokenUC      *usecases.TokenUsecase
	contractUC   *usecases.ContractUsecase
	backendUC    *usecases.BackendUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = sqlDB.Close() })

	e := &testEnv{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		now:       startTime,
		publisher: &recordingPublisher{},
		tokens:    repositories.NewTokenLedgerRepository(db),
		payments:  repositories.NewRecurringPaymentRepository(db),
		tasks:     repositories.NewAutomationTaskRepository(db),
		contracts: repositories.NewSmartContractRepository(db),
	}
	clock := func() uint64 { return e.now }

	uow := usecases.NewSerializedUnitOfWork(repositories.NewUnitOfWork(db))
	settings := repositories.NewSchedulerSettingsRepository(db)
	paymentTypeRepo := repositories.NewPaymentTypeRepository(db)

	e.resolver = backends.NewResolver(
		e.contracts,
		e.tokens,
		repositories.NewLedgerBalanceRepository(db),
		repositories.NewStreamRepository(db),
		scheduler, governor,
		clock,
	)
	resolver := &overrideResolver{
		inner:     e.resolver,
		overrides: map[common.Address]backends.PaymentBackend{siphonAt: siphonBackend{}},
	}

	e.events = usecases.NewEventRecorder(repositories.NewSchedulerEventRepository(db), e.publisher)
	e.governance = usecases.NewGovernanceUsecase(uow, settings, e.tokens, e.events, scheduler)
	e.automation = usecases.NewAutomationUsecase(uow, e.tasks, repositories.NewTreasuryRepository(db), settings, e.tokens, e.events, scheduler, treasuryAccount, keeper, gasPerExecution)
	e.automation.SetNowFunc(clock)
	e.paymentTypes = usecases.NewPaymentTypeUsecase(uow, paymentTypeRepo, settings, e.tokens, e.contracts, e.events, scheduler)
	e.recurring = usecases.NewRecurringPaymentUsecase(uow, e.payments, paymentTypeRepo, settings, e.tokens, resolver, e.automation, e.events, scheduler)
	e.recurring.SetNowFunc(clock)
	e.tokenUC = usecases.NewTokenUsecase(uow, e.tokens, settings)
	e.contractUC = usecases.NewContractUsecase(uow, e.contracts, settings)
	e.backendUC = usecases.NewBackendUsecase(uow, e.resolver, paymentTypeRepo)

	_, err = e.governance.EnsureSettings(e.ctx, &entities.SchedulerSettings{
		ExecutionInterval:  2 * day,
		ExpirationInterval: 13 * day,
		MaxGasPrice:        defaultMaxGasPrice,
		Governor:           governor,
	})
	require.NoError(t, err)

	for addr, kind := range map[common.Address]entities.SmartContractKind{
		settlementToken: entities.SmartContractKindToken,
		ledgerAt:        entities.SmartContractKindLedgerBackend,
		noopAt:          entities.SmartContractKindNoopBackend,
		streamAt:        entities.SmartContractKindStreamBackend,
		siphonAt:        entities.SmartContractKindNoopBackend,
	} {
		_, err := e.contractUC.Deploy(e.ctx, governor, &entities.CreateSmartContractInput{
			Name:    string(kind),
			Address: addr.Hex(),
			Kind:    string(kind),
		})
		require.NoError(t, err)
	}
	return e
}

// registerType registers name pointing at backend with the settlement token.
func (e *testEnv) registerType(name string, backend common.Address, minimum int64, requiresInit bool) *entities.PaymentType {
	e.t.Helper()
	pt, err := e.paymentTypes.Register(e.ctx, governor, &entities.RegisterPaymentTypeInput{
		Name:                   name,
		MinimumRecurringAmount: big.NewInt(minimum).String(),
		BackendAddress:         backend.Hex(),
		TokenAddress:           settlementToken.Hex(),
		RequiresInitialization: requiresInit,
	})
	require.NoError(e.t, err)
	return pt
}

// fund mints settlement tokens to account and approves the scheduler.
func (e *testEnv) fund(account common.Address, amount int64) {
	e.t.Helper()
	require.NoError(e.t, e.tokens.Mint(e.ctx, settlementToken, account, big.NewInt(amount)))
	require.NoError(e.t, e.tokens.Approve(e.ctx, settlementToken, account, scheduler, entities.MaxUint256))
}

// fundTreasury deposits native currency for keeper fees.
func (e *testEnv) fundTreasury(amount int64) {
	e.t.Helper()
	require.NoError(e.t, e.tokens.Mint(e.ctx, entities.NativeCurrency, governor, big.NewInt(amount)))
	_, err := e.automation.DepositTreasury(e.ctx, governor, &entities.TreasuryDepositInput{Amount: big.NewInt(amount).String()})
	require.NoError(e.t, err)
}

func (e *testEnv) create(owner common.Address, typeName string, recurring int64) (*entities.RecurringPayment, error) {
	return e.recurring.Create(e.ctx, owner, &entities.CreateRecurringPaymentInput{
		PaymentTypeName: typeName,
		RecurringAmount: big.NewInt(recurring).String(),
	})
}

func (e *testEnv) balance(token, account common.Address) int64 {
	e.t.Helper()
	bal, err := e.tokens.BalanceOf(e.ctx, token, account)
	require.NoError(e.t, err)
	return bal.Int64()
}

func (e *testEnv) advance(seconds uint64) {
	e.now += seconds
}
