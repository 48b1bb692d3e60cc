package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Stream is a time-rate subscription funded through the stream backend.
type Stream struct {
	Backend       common.Address `json:"backend"`
	Owner         common.Address `json:"owner"`
	Recipient     common.Address `json:"recipient"`
	Token         common.Address `json:"token"`
	RatePerSecond *big.Int       `json:"ratePerSecond"`
	Deposit       *big.Int       `json:"deposit"`
	Withdrawn     *big.Int       `json:"withdrawn"`
	StartTime     uint64         `json:"startTime"`
}

// Streamed is the amount accrued to the recipient by now, capped by the deposit.
func (s *Stream) Streamed(now uint64) *big.Int {
	if now <= s.StartTime || s.RatePerSecond == nil {
		return big.NewInt(0)
	}
	elapsed := new(big.Int).SetUint64(now - s.StartTime)
	accrued := new(big.Int).Mul(elapsed, s.RatePerSecond)
	deposit := CloneAmount(s.Deposit)
	if accrued.Cmp(deposit) > 0 {
		return deposit
	}
	return accrued
}

// Withdrawable is what the recipient can still take out.
func (s *Stream) Withdrawable(now uint64) *big.Int {
	out := new(big.Int).Sub(s.Streamed(now), CloneAmount(s.Withdrawn))
	if out.Sign() < 0 {
		return big.NewInt(0)
	}
	return out
}
