package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"recurpay.backend/internal/config"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/infrastructure/backends"
	"recurpay.backend/internal/infrastructure/blockchain"
	"recurpay.backend/internal/infrastructure/jobs"
	"recurpay.backend/internal/infrastructure/models"
	"recurpay.backend/internal/infrastructure/repositories"
	"recurpay.backend/internal/interfaces/http/handlers"
	"recurpay.backend/internal/interfaces/http/middleware"
	"recurpay.backend/internal/usecases"
	"recurpay.backend/pkg/jwt"
	"recurpay.backend/pkg/logger"
	"recurpay.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		if cfg.Driver == "sqlite" {
			return gorm.Open(sqlite.Open(cfg.URL()), &gorm.Config{})
		}
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL(),
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	getStdDB = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	dialEVM  = func(f *blockchain.ClientFactory, rpcURL string) (*blockchain.EVMClient, error) {
		return f.GetEVMClient(rpcURL)
	}
	runServer    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownWait = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(ctx, "Database ready", zap.String("driver", cfg.Database.Driver))

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Repositories
	uow := usecases.NewSerializedUnitOfWork(repositories.NewUnitOfWork(db))
	settingsRepo := repositories.NewSchedulerSettingsRepository(db)
	paymentTypeRepo := repositories.NewPaymentTypeRepository(db)
	recurringRepo := repositories.NewRecurringPaymentRepository(db)
	taskRepo := repositories.NewAutomationTaskRepository(db)
	treasuryRepo := repositories.NewTreasuryRepository(db)
	tokenLedger := repositories.NewTokenLedgerRepository(db)
	contractRepo := repositories.NewSmartContractRepository(db)
	eventRepo := repositories.NewSchedulerEventRepository(db)

	// Chain access
	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()

	var verifier usecases.ContractVerifier = contractRepo
	var gasOracle jobs.GasPriceOracle
	evmClient, err := dialEVM(clientFactory, cfg.Blockchain.RPCURL)
	switch {
	case err == nil:
		gasOracle = evmClient
		if cfg.Blockchain.ContractVerifier == config.VerifierEVM {
			verifier = evmClient
		}
	case cfg.Blockchain.ContractVerifier == config.VerifierEVM:
		return fmt.Errorf("contract verifier %q needs an RPC endpoint: %w", config.VerifierEVM, err)
	default:
		logger.Warn(ctx, "EVM RPC unavailable, keeper uses the default gas price", zap.Error(err))
	}

	resolver := backends.NewResolver(
		contractRepo,
		tokenLedger,
		repositories.NewLedgerBalanceRepository(db),
		repositories.NewStreamRepository(db),
		cfg.Scheduler.Address,
		cfg.Ledger.Collector,
		usecases.SystemClock,
	)

	// Usecases
	events := usecases.NewEventRecorder(eventRepo, redis.NewEventPublisher(cfg.Redis.EventChannel))
	governanceUsecase := usecases.NewGovernanceUsecase(uow, settingsRepo, tokenLedger, events, cfg.Scheduler.Address)
	automationUsecase := usecases.NewAutomationUsecase(
		uow, taskRepo, treasuryRepo, settingsRepo, tokenLedger, events,
		cfg.Scheduler.Address, cfg.Keeper.TreasuryAddress, cfg.Keeper.Address,
		cfg.Keeper.GasPerExecution,
	)
	paymentTypeUsecase := usecases.NewPaymentTypeUsecase(uow, paymentTypeRepo, settingsRepo, tokenLedger, verifier, events, cfg.Scheduler.Address)
	recurringUsecase := usecases.NewRecurringPaymentUsecase(
		uow, recurringRepo, paymentTypeRepo, settingsRepo, tokenLedger,
		resolver, automationUsecase, events, cfg.Scheduler.Address,
	)
	tokenUsecase := usecases.NewTokenUsecase(uow, tokenLedger, settingsRepo)
	contractUsecase := usecases.NewContractUsecase(uow, contractRepo, settingsRepo)
	backendUsecase := usecases.NewBackendUsecase(uow, resolver, paymentTypeRepo)

	if _, err := governanceUsecase.EnsureSettings(ctx, &entities.SchedulerSettings{
		ExecutionInterval:  cfg.Scheduler.ExecutionInterval,
		ExpirationInterval: cfg.Scheduler.ExpirationInterval,
		MaxGasPrice:        cfg.Scheduler.MaxGasPrice,
		Governor:           cfg.Scheduler.Governor,
	}); err != nil {
		return fmt.Errorf("failed to seed scheduler settings: %w", err)
	}

	// Background keeper
	jobCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var keeperJob *jobs.KeeperJob
	if cfg.Keeper.Enabled {
		keeperJob = jobs.NewKeeperJob(recurringUsecase, automationUsecase, gasOracle, cfg.Keeper.Address, cfg.Keeper.DefaultGasPrice, cfg.Keeper.PollSpec)
		go func() {
			if err := keeperJob.Start(jobCtx); err != nil {
				logger.Error(jobCtx, "Keeper job failed to start", zap.Error(err))
			}
		}()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		paymentTypeHandler:      handlers.NewPaymentTypeHandler(paymentTypeUsecase),
		recurringPaymentHandler: handlers.NewRecurringPaymentHandler(recurringUsecase),
		automationHandler:       handlers.NewAutomationHandler(automationUsecase),
		governanceHandler:       handlers.NewGovernanceHandler(governanceUsecase),
		tokenHandler:            handlers.NewTokenHandler(tokenUsecase),
		smartContractHandler:    handlers.NewSmartContractHandler(contractUsecase),
		backendHandler:          handlers.NewBackendHandler(backendUsecase),
		eventHandler:            handlers.NewEventHandler(events),
		authMiddleware:          middleware.AuthMiddleware(jwtService),
		idempotencyMiddleware:   middleware.IdempotencyMiddleware(),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-shutdownWait()
		logger.Info(ctx, "Shutting down server")
		if keeperJob != nil {
			keeperJob.Stop()
		}
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "Recurpay backend starting",
		zap.String("port", cfg.Server.Port),
		logger.Address("scheduler", cfg.Scheduler.Address),
		zap.Bool("keeper", cfg.Keeper.Enabled),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
