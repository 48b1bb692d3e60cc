package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// SchedulerEventType names a state change worth indexing off-chain.
type SchedulerEventType string

const (
	EventPaymentTypeRegistered      SchedulerEventType = "PAYMENT_TYPE_REGISTERED"
	EventPaymentTypeUnregistered    SchedulerEventType = "PAYMENT_TYPE_UNREGISTERED"
	EventPaymentTypeUpdated         SchedulerEventType = "PAYMENT_TYPE_UPDATED"
	EventRecurringPaymentCreated    SchedulerEventType = "RECURRING_PAYMENT_CREATED"
	EventRecurringPaymentExecuted   SchedulerEventType = "RECURRING_PAYMENT_EXECUTED"
	EventRecurringPaymentCancelled  SchedulerEventType = "RECURRING_PAYMENT_CANCELLED"
	EventExecutionIntervalSet       SchedulerEventType = "EXECUTION_INTERVAL_SET"
	EventExpirationIntervalSet      SchedulerEventType = "EXPIRATION_INTERVAL_SET"
	EventMaxGasPriceSet             SchedulerEventType = "MAX_GAS_PRICE_SET"
	EventGovernanceTransferProposed SchedulerEventType = "GOVERNANCE_TRANSFER_PROPOSED"
	EventGovernanceAccepted         SchedulerEventType = "GOVERNANCE_ACCEPTED"
	EventTokensRescued              SchedulerEventType = "TOKENS_RESCUED"
	EventTreasuryDeposited          SchedulerEventType = "TREASURY_DEPOSITED"
	EventTreasuryWithdrawn          SchedulerEventType = "TREASURY_WITHDRAWN"
)

// SchedulerEvent is a persisted, published state change.
type SchedulerEvent struct {
	ID        uuid.UUID              `json:"id"`
	Type      SchedulerEventType     `json:"type"`
	Owner     common.Address         `json:"owner"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"createdAt"`
}
