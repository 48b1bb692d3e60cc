package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PaymentType describes a backend that recurring payments can be pointed at.
// The zero value (ID == 0) means "not registered".
type PaymentType struct {
	ID                     common.Hash    `json:"id"`
	Name                   string         `json:"name"`
	MinimumRecurringAmount *big.Int       `json:"minimumRecurringAmount"`
	BackendAddress         common.Address `json:"backendAddress"`
	TokenAddress           common.Address `json:"tokenAddress"`
	RequiresInitialization bool           `json:"requiresInitialization"`
}

// PaymentTypeID derives the stable identifier of a payment type from its name.
func PaymentTypeID(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// Exists reports whether the record refers to a registered payment type.
func (p *PaymentType) Exists() bool {
	return p != nil && p.ID != (common.Hash{})
}

// Clone returns a deep copy so snapshots do not share big.Int storage.
func (p PaymentType) Clone() PaymentType {
	p.MinimumRecurringAmount = CloneAmount(p.MinimumRecurringAmount)
	return p
}

// RegisterPaymentTypeInput is the governor request to register a backend.
type RegisterPaymentTypeInput struct {
	Name                   string `json:"name" binding:"required,min=1,max=100"`
	MinimumRecurringAmount string `json:"minimumRecurringAmount" binding:"required"`
	BackendAddress         string `json:"backendAddress" binding:"required"`
	TokenAddress           string `json:"tokenAddress" binding:"required"`
	RequiresInitialization bool   `json:"requiresInitialization"`
}

// UpdateMinimumAmountInput adjusts the floor of an existing payment type.
type UpdateMinimumAmountInput struct {
	MinimumRecurringAmount string `json:"minimumRecurringAmount" binding:"required"`
}
