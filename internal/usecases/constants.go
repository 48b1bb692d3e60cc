package usecases

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
)

// computeSelectorHex computes the 4-byte EVM function selector from a canonical
// function signature and returns it as a "0x"-prefixed hex string.
func computeSelectorHex(sig string) string {
	return "0x" + hex.EncodeToString(crypto.Keccak256([]byte(sig))[:4])
}

func computeSelector(sig string) [4]byte {
	var out [4]byte
	copy(out[:], crypto.Keccak256([]byte(sig))[:4])
	return out
}

// ExecuteSignature is the entry point the keeper calls on the scheduler.
const ExecuteSignature = "execute(address)"

var (
	// execute(address)
	ExecuteSelector    = computeSelector(ExecuteSignature)
	ExecuteSelectorHex = computeSelectorHex(ExecuteSignature)
)

// Check() reasons reported to the keeper.
const (
	CheckReasonNoRecord = "no recurring payment"
	CheckReasonCooldown = "in cooldown"
	CheckReasonExpired  = "expired, execution cancels"
	CheckReasonReady    = "ready"
)

// Cancellation reasons, used for events and metrics.
const (
	CancelReasonSelf     = "self"
	CancelReasonGovernor = "governor"
	CancelReasonExpired  = "expired"
)

const (
	defaultEventListLimit = 50
	maxEventListLimit     = 500
)
