package handlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/interfaces/http/response"
	"recurpay.backend/pkg/utils"
)

const defaultOwnerPageSize = 50

type RecurringPaymentService interface {
	Create(ctx context.Context, caller common.Address, input *entities.CreateRecurringPaymentInput) (*entities.RecurringPayment, error)
	Execute(ctx context.Context, caller, owner common.Address, gasPrice *big.Int) (*entities.ExecutionResult, error)
	Cancel(ctx context.Context, caller common.Address) error
	CancelFor(ctx context.Context, caller, owner common.Address) error
	Check(ctx context.Context, owner common.Address) (*entities.CheckResult, error)
	Get(ctx context.Context, owner common.Address) (*entities.RecurringPayment, error)
	ListActive(ctx context.Context, limit, offset int) ([]common.Address, error)
	CountActive(ctx context.Context) (int64, error)
}

// RecurringPaymentHandler serves the recurring payment lifecycle
type RecurringPaymentHandler struct {
	service RecurringPaymentService
}

func NewRecurringPaymentHandler(service RecurringPaymentService) *RecurringPaymentHandler {
	return &RecurringPaymentHandler{service: service}
}

// CreateRecurringPayment opens the caller's recurring payment
// POST /api/v1/recurring-payments
func (h *RecurringPaymentHandler) CreateRecurringPayment(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.CreateRecurringPaymentInput
	if !bindJSON(c, &input) {
		return
	}

	payment, err := h.service.Create(c.Request.Context(), from, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"recurringPayment": payment})
}

// ListRecurringPayments pages through owners with an active payment
// GET /api/v1/recurring-payments?page=&limit=
func (h *RecurringPaymentHandler) ListRecurringPayments(c *gin.Context) {
	pagination := utils.GetPaginationParams(queryInt(c, "page", 1), queryInt(c, "limit", defaultOwnerPageSize))

	total, err := h.service.CountActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	owners, err := h.service.ListActive(c.Request.Context(), pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"owners": owners,
		"meta":   utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}

// GetRecurringPayment returns the owner's record
// GET /api/v1/recurring-payments/:owner
func (h *RecurringPaymentHandler) GetRecurringPayment(c *gin.Context) {
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	payment, err := h.service.Get(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recurringPayment": payment})
}

// ExecuteRecurringPayment executes or expires the owner's payment
// POST /api/v1/recurring-payments/:owner/execute
func (h *RecurringPaymentHandler) ExecuteRecurringPayment(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	var input entities.ExecuteRecurringPaymentInput
	if !bindJSON(c, &input) {
		return
	}
	gasPrice, ok := parseGasPrice(c, input.GasPrice)
	if !ok {
		return
	}

	result, err := h.service.Execute(c.Request.Context(), from, owner, gasPrice)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// CancelRecurringPayment cancels the caller's own payment
// DELETE /api/v1/recurring-payments
func (h *RecurringPaymentHandler) CancelRecurringPayment(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), from); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Recurring payment cancelled"})
}

// CancelRecurringPaymentFor cancels another owner's payment
// DELETE /api/v1/admin/recurring-payments/:owner
func (h *RecurringPaymentHandler) CancelRecurringPaymentFor(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	if err := h.service.CancelFor(c.Request.Context(), from, owner); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Recurring payment cancelled"})
}

// CheckRecurringPayment reports whether the keeper may execute now
// GET /api/v1/recurring-payments/:owner/check
func (h *RecurringPaymentHandler) CheckRecurringPayment(c *gin.Context) {
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	result, err := h.service.Check(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"canExec": result.CanExec, "reason": result.Reason}
	if len(result.Payload) > 0 {
		body["payload"] = hexutil.Encode(result.Payload)
	}
	response.Success(c, http.StatusOK, body)
}
