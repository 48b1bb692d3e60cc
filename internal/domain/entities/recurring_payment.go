package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RecurringPayment is the single active schedule an owner may hold.
type RecurringPayment struct {
	Owner           common.Address `json:"owner"`
	PaymentType     PaymentType    `json:"paymentType"`
	RecurringAmount *big.Int       `json:"recurringAmount"`
	CreatedAt       uint64         `json:"createdAt"`
	// LastExecutedAt is zero until the first execution.
	LastExecutedAt uint64      `json:"lastExecutedAt"`
	TaskID         common.Hash `json:"taskId"`
}

// ReferenceTime is the later of creation and last execution.
func (r *RecurringPayment) ReferenceTime() uint64 {
	if r.LastExecutedAt > r.CreatedAt {
		return r.LastExecutedAt
	}
	return r.CreatedAt
}

// CreateRecurringPaymentInput carries the owner's create request.
type CreateRecurringPaymentInput struct {
	PaymentTypeName string `json:"paymentTypeName" binding:"required"`
	InitialAmount   string `json:"initialAmount"`
	RecurringAmount string `json:"recurringAmount" binding:"required"`
	CreationAmount  string `json:"creationAmount"`
	// CreationData is an opaque hex blob handed to the backend untouched.
	CreationData string `json:"creationData"`
}

// ExecuteRecurringPaymentInput carries the gas price the caller is paying.
type ExecuteRecurringPaymentInput struct {
	GasPrice string `json:"gasPrice" binding:"required"`
}

// ExecutionOutcome tells the caller which transition execute() took.
type ExecutionOutcome string

const (
	ExecutionOutcomeExecuted  ExecutionOutcome = "EXECUTED"
	ExecutionOutcomeCancelled ExecutionOutcome = "CANCELLED"
)

// ExecutionResult is returned by a successful execute() call.
type ExecutionResult struct {
	Outcome        ExecutionOutcome `json:"outcome"`
	Owner          common.Address   `json:"owner"`
	Amount         *big.Int         `json:"amount,omitempty"`
	LastExecutedAt uint64           `json:"lastExecutedAt,omitempty"`
}

// CheckResult is what the keeper polls before submitting execute().
type CheckResult struct {
	CanExec bool   `json:"canExec"`
	Reason  string `json:"reason,omitempty"`
	// Payload is the ABI-encoded execute(address) calldata.
	Payload []byte `json:"payload,omitempty"`
}
