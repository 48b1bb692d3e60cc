package usecases

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/pkg/logger"
)

// ContractUsecase maintains the registry of deployed contracts: tokens and
// the payment backends a payment type can point at.
type ContractUsecase struct {
	uow       repositories.UnitOfWork
	contracts repositories.SmartContractRepository
	settings  repositories.SchedulerSettingsRepository
}

// NewContractUsecase creates a new contract usecase
func NewContractUsecase(uow repositories.UnitOfWork, contracts repositories.SmartContractRepository, settings repositories.SchedulerSettingsRepository) *ContractUsecase {
	return &ContractUsecase{uow: uow, contracts: contracts, settings: settings}
}

// Deploy records a contract deployment; governor only.
func (u *ContractUsecase) Deploy(ctx context.Context, caller common.Address, input *entities.CreateSmartContractInput) (*entities.SmartContract, error) {
	address, err := parseNonZeroAddress(input.Address)
	if err != nil {
		return nil, err
	}
	kind := entities.SmartContractKind(strings.ToUpper(strings.TrimSpace(input.Kind)))
	if !kind.Valid() {
		return nil, domainerrors.BadRequest("unknown contract kind")
	}
	contract := &entities.SmartContract{
		Address: address,
		Name:    strings.TrimSpace(input.Name),
		Kind:    kind,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		return u.contracts.Create(txCtx, contract)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Contract deployed",
		logger.Address("address", address),
		zap.String("name", contract.Name),
		zap.String("kind", string(kind)),
	)
	return contract, nil
}

// Remove marks a contract as gone; payment types pointing at it stop resolving.
func (u *ContractUsecase) Remove(ctx context.Context, caller, address common.Address) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		return u.contracts.SoftDelete(txCtx, address)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "Contract removed", logger.Address("address", address))
	return nil
}

func (u *ContractUsecase) Get(ctx context.Context, address common.Address) (*entities.SmartContract, error) {
	return u.contracts.GetByAddress(ctx, address)
}

func (u *ContractUsecase) List(ctx context.Context) ([]*entities.SmartContract, error) {
	return u.contracts.List(ctx)
}
