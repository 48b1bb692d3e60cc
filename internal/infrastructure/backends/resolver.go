package backends

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
)

// ContractLookup resolves a deployed address to its registry entry.
type ContractLookup interface {
	GetByAddress(ctx context.Context, address common.Address) (*entities.SmartContract, error)
}

// Resolver maps a backend address to an implementation by the kind recorded
// at deployment. Resolution happens on every call so a redeployed or removed
// backend takes effect immediately.
type Resolver struct {
	contracts ContractLookup
	tokens    TokenMover
	balances  repositories.LedgerBalanceRepository
	streams   repositories.StreamRepository
	payer     common.Address
	collector common.Address
	nowFn     func() uint64
}

// NewResolver wires the backends. payer is the scheduler account funds are
// forwarded from; collector is the account allowed to pull ledger credit.
func NewResolver(
	contracts ContractLookup,
	tokens TokenMover,
	balances repositories.LedgerBalanceRepository,
	streams repositories.StreamRepository,
	payer, collector common.Address,
	nowFn func() uint64,
) *Resolver {
	return &Resolver{
		contracts: contracts,
		tokens:    tokens,
		balances:  balances,
		streams:   streams,
		payer:     payer,
		collector: collector,
		nowFn:     nowFn,
	}
}

// Resolve returns the backend deployed at address, bound to token.
func (r *Resolver) Resolve(ctx context.Context, address, token common.Address) (PaymentBackend, error) {
	kind, err := r.kindOf(ctx, address)
	if err != nil {
		return nil, err
	}
	switch kind {
	case entities.SmartContractKindLedgerBackend:
		return NewLedgerBackend(address, token, r.payer, r.collector, r.tokens, r.balances), nil
	case entities.SmartContractKindNoopBackend:
		return NewNoopBackend(address, token, r.payer, r.tokens), nil
	case entities.SmartContractKindStreamBackend:
		return NewStreamBackend(address, token, r.payer, r.tokens, r.streams, r.nowFn), nil
	}
	return nil, domainerrors.ErrBackendNotDeployed
}

// Ledger returns the ledger backend at address; any other kind is not-found.
func (r *Resolver) Ledger(ctx context.Context, address, token common.Address) (*LedgerBackend, error) {
	backend, err := r.Resolve(ctx, address, token)
	if err != nil {
		return nil, err
	}
	ledger, ok := backend.(*LedgerBackend)
	if !ok {
		return nil, domainerrors.ErrBackendNotDeployed
	}
	return ledger, nil
}

// Stream returns the stream backend at address; any other kind is not-found.
func (r *Resolver) Stream(ctx context.Context, address, token common.Address) (*StreamBackend, error) {
	backend, err := r.Resolve(ctx, address, token)
	if err != nil {
		return nil, err
	}
	stream, ok := backend.(*StreamBackend)
	if !ok {
		return nil, domainerrors.ErrBackendNotDeployed
	}
	return stream, nil
}

func (r *Resolver) kindOf(ctx context.Context, address common.Address) (entities.SmartContractKind, error) {
	contract, err := r.contracts.GetByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.ErrBackendNotDeployed
		}
		return "", err
	}
	return contract.Kind, nil
}
