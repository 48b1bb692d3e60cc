package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

// AutomationTask is a registration with the keeper network.
type AutomationTask struct {
	ID          common.Hash    `json:"id"`
	Owner       common.Address `json:"owner"`
	Target      common.Address `json:"target"`
	Selector    [4]byte        `json:"selector"`
	Active      bool           `json:"active"`
	CreatedAt   uint64         `json:"createdAt"`
	CancelledAt null.Uint64    `json:"cancelledAt"`
}

// TreasuryDepositInput funds the keeper treasury.
type TreasuryDepositInput struct {
	Amount string `json:"amount" binding:"required"`
}

// TreasuryWithdrawInput drains the keeper treasury.
type TreasuryWithdrawInput struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// TreasuryStatus is the native balance available for keeper fees.
type TreasuryStatus struct {
	Balance *big.Int `json:"balance"`
}
