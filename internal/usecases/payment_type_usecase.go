package usecases

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/pkg/logger"
)

// ContractVerifier answers whether an address holds a live contract.
type ContractVerifier interface {
	IsContract(ctx context.Context, address common.Address) (bool, error)
}

// PaymentTypeUsecase is the registry mapping a payment type name to its
// backend, settlement token and minimum recurring amount.
type PaymentTypeUsecase struct {
	uow          repositories.UnitOfWork
	paymentTypes repositories.PaymentTypeRepository
	settings     repositories.SchedulerSettingsRepository
	tokens       repositories.TokenLedger
	verifier     ContractVerifier
	events       *EventRecorder
	scheduler    common.Address
}

// NewPaymentTypeUsecase creates a new payment type registry
func NewPaymentTypeUsecase(
	uow repositories.UnitOfWork,
	paymentTypes repositories.PaymentTypeRepository,
	settings repositories.SchedulerSettingsRepository,
	tokens repositories.TokenLedger,
	verifier ContractVerifier,
	events *EventRecorder,
	scheduler common.Address,
) *PaymentTypeUsecase {
	return &PaymentTypeUsecase{
		uow:          uow,
		paymentTypes: paymentTypes,
		settings:     settings,
		tokens:       tokens,
		verifier:     verifier,
		events:       events,
		scheduler:    scheduler,
	}
}

// Register adds a payment type and grants its backend an unlimited
// allowance over the scheduler's settlement token balance.
func (u *PaymentTypeUsecase) Register(ctx context.Context, caller common.Address, input *entities.RegisterPaymentTypeInput) (*entities.PaymentType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	minimum, err := parseAmount(input.MinimumRecurringAmount)
	if err != nil {
		return nil, err
	}
	backend, err := parseNonZeroAddress(input.BackendAddress)
	if err != nil {
		return nil, err
	}
	token, err := parseNonZeroAddress(input.TokenAddress)
	if err != nil {
		return nil, err
	}

	paymentType := &entities.PaymentType{
		ID:                     entities.PaymentTypeID(name),
		Name:                   name,
		MinimumRecurringAmount: minimum,
		BackendAddress:         backend,
		TokenAddress:           token,
		RequiresInitialization: input.RequiresInitialization,
	}

	var event *entities.SchedulerEvent
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		for _, addr := range []common.Address{backend, token} {
			ok, err := u.verifier.IsContract(txCtx, addr)
			if err != nil {
				return err
			}
			if !ok {
				return domainerrors.ErrNotAContract
			}
		}
		if err := u.paymentTypes.Create(txCtx, paymentType); err != nil {
			return err
		}
		if err := u.tokens.Approve(txCtx, token, u.scheduler, backend, entities.MaxUint256); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventPaymentTypeRegistered, common.Address{}, paymentTypePayload(paymentType))
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Payment type registered",
		zap.String("name", name),
		zap.String("id", paymentType.ID.Hex()),
		logger.Address("backend", backend),
		logger.Address("token", token),
	)
	return paymentType, nil
}

// Unregister removes a payment type and revokes its backend's allowance.
// Existing recurring payments keep their snapshot of the type.
func (u *PaymentTypeUsecase) Unregister(ctx context.Context, caller common.Address, name string) error {
	var event *entities.SchedulerEvent
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		paymentType, err := u.paymentTypes.GetByName(txCtx, name)
		if err != nil {
			return err
		}
		if err := u.paymentTypes.Delete(txCtx, name); err != nil {
			return err
		}
		if err := u.tokens.Approve(txCtx, paymentType.TokenAddress, u.scheduler, paymentType.BackendAddress, big.NewInt(0)); err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventPaymentTypeUnregistered, common.Address{}, map[string]interface{}{
			"id":   paymentType.ID.Hex(),
			"name": paymentType.Name,
		})
		return err
	})
	if err != nil {
		return err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Payment type unregistered", zap.String("name", name))
	return nil
}

// SetMinimumRecurringAmount changes the floor for payments created from now on.
func (u *PaymentTypeUsecase) SetMinimumRecurringAmount(ctx context.Context, caller common.Address, name string, input *entities.UpdateMinimumAmountInput) (*entities.PaymentType, error) {
	minimum, err := parseAmount(input.MinimumRecurringAmount)
	if err != nil {
		return nil, err
	}

	var (
		out   *entities.PaymentType
		event *entities.SchedulerEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := requireGovernor(txCtx, u.settings, caller); err != nil {
			return err
		}
		if err := u.paymentTypes.UpdateMinimumRecurringAmount(txCtx, name, minimum); err != nil {
			return err
		}
		out, err = u.paymentTypes.GetByName(txCtx, name)
		if err != nil {
			return err
		}
		event, err = u.events.Record(txCtx, entities.EventPaymentTypeUpdated, common.Address{}, paymentTypePayload(out))
		return err
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, event)
	logger.Info(ctx, "Payment type minimum updated", zap.String("name", name), logger.Amount("minimum", minimum))
	return out, nil
}

// Get looks a payment type up by name. Absence is the zero record.
func (u *PaymentTypeUsecase) Get(ctx context.Context, name string) (*entities.PaymentType, error) {
	return zeroIfMissing(u.paymentTypes.GetByName(ctx, name))
}

// GetByID looks a payment type up by id. Absence is the zero record.
func (u *PaymentTypeUsecase) GetByID(ctx context.Context, id common.Hash) (*entities.PaymentType, error) {
	return zeroIfMissing(u.paymentTypes.GetByID(ctx, id))
}

// List returns every registered payment type
func (u *PaymentTypeUsecase) List(ctx context.Context) ([]*entities.PaymentType, error) {
	return u.paymentTypes.List(ctx)
}

func zeroIfMissing(paymentType *entities.PaymentType, err error) (*entities.PaymentType, error) {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return &entities.PaymentType{}, nil
	}
	return paymentType, err
}

func paymentTypePayload(pt *entities.PaymentType) map[string]interface{} {
	return map[string]interface{}{
		"id":                     pt.ID.Hex(),
		"name":                   pt.Name,
		"minimumRecurringAmount": entities.CloneAmount(pt.MinimumRecurringAmount).String(),
		"backendAddress":         pt.BackendAddress.Hex(),
		"tokenAddress":           pt.TokenAddress.Hex(),
		"requiresInitialization": pt.RequiresInitialization,
	}
}
