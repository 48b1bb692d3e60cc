package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"recurpay.backend/internal/domain/entities"
)

// SmartContractRepository defines smart contract data operations
type SmartContractRepository interface {
	Create(ctx context.Context, contract *entities.SmartContract) error
	GetByAddress(ctx context.Context, address common.Address) (*entities.SmartContract, error)
	List(ctx context.Context) ([]*entities.SmartContract, error)
	SoftDelete(ctx context.Context, address common.Address) error
}
