package entities

import "math/big"

// LedgerDepositInput credits the caller on a ledger backend.
type LedgerDepositInput struct {
	Amount string `json:"amount" binding:"required"`
}

// LedgerPullInput debits an account's credit to the collector.
type LedgerPullInput struct {
	Account string `json:"account" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// LedgerBalance is an account's credit on a ledger backend.
type LedgerBalance struct {
	Backend string   `json:"backend"`
	Account string   `json:"account"`
	Balance *big.Int `json:"balance"`
}
