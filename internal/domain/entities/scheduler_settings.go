package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SchedulerSettings holds the scheduler-wide configuration and roles.
type SchedulerSettings struct {
	ExecutionInterval  uint64         `json:"executionInterval"`
	ExpirationInterval uint64         `json:"expirationInterval"`
	MaxGasPrice        *big.Int       `json:"maxGasPrice"`
	Governor           common.Address `json:"governor"`
	PendingGovernor    common.Address `json:"pendingGovernor"`
}

// IntervalInput sets one of the scheduler intervals, in seconds.
type IntervalInput struct {
	Seconds uint64 `json:"seconds" binding:"required"`
}

// MaxGasPriceInput sets the gas price ceiling in wei.
type MaxGasPriceInput struct {
	MaxGasPrice string `json:"maxGasPrice" binding:"required"`
}

// TransferGovernanceInput proposes a new governor.
type TransferGovernanceInput struct {
	NewGovernor string `json:"newGovernor" binding:"required"`
}

// RescueTokensInput moves tokens accidentally sent to the scheduler.
type RescueTokensInput struct {
	To     string `json:"to" binding:"required"`
	Token  string `json:"token" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}
