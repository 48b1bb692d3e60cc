package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

// SmartContractKind is the role a deployed contract plays for the scheduler.
type SmartContractKind string

const (
	SmartContractKindToken         SmartContractKind = "TOKEN"
	SmartContractKindLedgerBackend SmartContractKind = "LEDGER_BACKEND"
	SmartContractKindNoopBackend   SmartContractKind = "NOOP_BACKEND"
	SmartContractKindStreamBackend SmartContractKind = "STREAM_BACKEND"
)

// Valid reports whether k is a known kind.
func (k SmartContractKind) Valid() bool {
	switch k {
	case SmartContractKindToken, SmartContractKindLedgerBackend, SmartContractKindNoopBackend, SmartContractKindStreamBackend:
		return true
	}
	return false
}

// SmartContract represents a deployed contract known to the scheduler
type SmartContract struct {
	Address   common.Address    `json:"address"`
	Name      string            `json:"name"`
	Kind      SmartContractKind `json:"kind"`
	CreatedAt time.Time         `json:"createdAt"`
	DeletedAt null.Time         `json:"-"`
}

// CreateSmartContractInput represents input for recording a deployment
type CreateSmartContractInput struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Address string `json:"address" binding:"required"`
	Kind    string `json:"kind" binding:"required"`
}
