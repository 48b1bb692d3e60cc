package usecases

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	domainerrors "recurpay.backend/internal/domain/errors"
)

var (
	addressArgs = func() abi.Arguments {
		addressT, _ := abi.NewType("address", "", nil)
		return abi.Arguments{{Type: addressT}}
	}()

	taskIDArgs = func() abi.Arguments {
		addressT, _ := abi.NewType("address", "", nil)
		bytes4T, _ := abi.NewType("bytes4", "", nil)
		uint256T, _ := abi.NewType("uint256", "", nil)
		return abi.Arguments{{Type: addressT}, {Type: bytes4T}, {Type: addressT}, {Type: uint256T}}
	}()
)

// EncodeExecuteCall builds the execute(address) calldata the keeper submits.
func EncodeExecuteCall(owner common.Address) []byte {
	args, _ := addressArgs.Pack(owner)
	return append(append([]byte{}, ExecuteSelector[:]...), args...)
}

// DecodeExecuteCall returns the owner encoded in execute(address) calldata.
func DecodeExecuteCall(payload []byte) (common.Address, error) {
	if len(payload) != 4+32 || !bytes.Equal(payload[:4], ExecuteSelector[:]) {
		return common.Address{}, fmt.Errorf("%w: not an execute(address) call", domainerrors.ErrInvalidInput)
	}
	values, err := addressArgs.Unpack(payload[4:])
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, domainerrors.ErrInvalidInput
	}
	return owner, nil
}

// computeTaskID derives keccak256(abi.encode(target, selector, owner, nonce)).
func computeTaskID(target common.Address, selector [4]byte, owner common.Address, nonce uint64) (common.Hash, error) {
	packed, err := taskIDArgs.Pack(target, selector, owner, new(big.Int).SetUint64(nonce))
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}
