package backends

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/pkg/logger"
)

var streamCreationArgs = func() abi.Arguments {
	addressT, _ := abi.NewType("address", "", nil)
	uint256T, _ := abi.NewType("uint256", "", nil)
	return abi.Arguments{{Type: addressT}, {Type: uint256T}}
}()

// EncodeStreamCreationData builds the creation blob the stream backend
// expects: abi.encode(address recipient, uint256 ratePerSecond).
func EncodeStreamCreationData(recipient common.Address, ratePerSecond *big.Int) ([]byte, error) {
	return streamCreationArgs.Pack(recipient, entities.CloneAmount(ratePerSecond))
}

// DecodeStreamCreationData is the inverse of EncodeStreamCreationData.
func DecodeStreamCreationData(data []byte) (common.Address, *big.Int, error) {
	values, err := streamCreationArgs.Unpack(data)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidCreationData, err)
	}
	recipient, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, domainerrors.ErrInvalidCreationData
	}
	rate, ok := values[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, domainerrors.ErrInvalidCreationData
	}
	return recipient, rate, nil
}

// StreamBackend pays a recipient at a fixed rate per second out of a deposit
// the owner keeps topping up.
type StreamBackend struct {
	address common.Address
	token   common.Address
	payer   common.Address
	tokens  TokenMover
	streams repositories.StreamRepository
	nowFn   func() uint64
}

func NewStreamBackend(
	address, token, payer common.Address,
	tokens TokenMover,
	streams repositories.StreamRepository,
	nowFn func() uint64,
) *StreamBackend {
	return &StreamBackend{
		address: address,
		token:   token,
		payer:   payer,
		tokens:  tokens,
		streams: streams,
		nowFn:   nowFn,
	}
}

// AcceptCreation opens a stream for owner funded with amount. Re-opening
// settles what already accrued to the previous recipient and carries the
// unstreamed remainder into the new stream.
func (b *StreamBackend) AcceptCreation(ctx context.Context, owner common.Address, data []byte, amount *big.Int) error {
	recipient, rate, err := DecodeStreamCreationData(data)
	if err != nil {
		return err
	}
	if recipient == (common.Address{}) {
		return domainerrors.ErrZeroAddress
	}
	if rate.Sign() == 0 {
		return domainerrors.ErrZeroAmount
	}
	if err := custody(ctx, b.tokens, b.token, b.address, b.payer, amount); err != nil {
		return err
	}

	now := b.nowFn()
	deposit := entities.CloneAmount(amount)

	existing, err := b.streams.Get(ctx, b.address, owner)
	switch {
	case err == nil:
		if err := b.settle(ctx, existing, now); err != nil {
			return err
		}
		deposit.Add(deposit, new(big.Int).Sub(existing.Deposit, existing.Streamed(now)))
	case !errors.Is(err, domainerrors.ErrStreamNotFound):
		return err
	}

	return b.streams.Save(ctx, &entities.Stream{
		Backend:       b.address,
		Owner:         owner,
		Recipient:     recipient,
		Token:         b.token,
		RatePerSecond: rate,
		Deposit:       deposit,
		Withdrawn:     big.NewInt(0),
		StartTime:     now,
	})
}

// AcceptRecurring tops up the owner's open stream.
func (b *StreamBackend) AcceptRecurring(ctx context.Context, owner common.Address, amount *big.Int) error {
	stream, err := b.streams.Get(ctx, b.address, owner)
	if err != nil {
		return err
	}
	if err := custody(ctx, b.tokens, b.token, b.address, b.payer, amount); err != nil {
		return err
	}
	stream.Deposit = new(big.Int).Add(stream.Deposit, entities.CloneAmount(amount))
	return b.streams.Save(ctx, stream)
}

// Withdraw pays the recipient everything accrued so far.
func (b *StreamBackend) Withdraw(ctx context.Context, owner common.Address) (*big.Int, error) {
	stream, err := b.streams.Get(ctx, b.address, owner)
	if err != nil {
		return nil, err
	}
	amount := stream.Withdrawable(b.nowFn())
	if amount.Sign() == 0 {
		return amount, nil
	}
	if err := b.tokens.Transfer(ctx, stream.Token, b.address, stream.Recipient, amount); err != nil {
		return nil, err
	}
	stream.Withdrawn = new(big.Int).Add(stream.Withdrawn, amount)
	if err := b.streams.Save(ctx, stream); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Stream withdrawn",
		logger.Address("backend", b.address),
		logger.Address("owner", owner),
		logger.Address("recipient", stream.Recipient),
		logger.Amount("amount", amount),
	)
	return amount, nil
}

// Stream returns the owner's stream.
func (b *StreamBackend) Stream(ctx context.Context, owner common.Address) (*entities.Stream, error) {
	return b.streams.Get(ctx, b.address, owner)
}

func (b *StreamBackend) settle(ctx context.Context, stream *entities.Stream, now uint64) error {
	owed := stream.Withdrawable(now)
	if owed.Sign() == 0 {
		return nil
	}
	return b.tokens.Transfer(ctx, stream.Token, b.address, stream.Recipient, owed)
}
