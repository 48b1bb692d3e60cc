package handlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/interfaces/http/response"
)

type AutomationService interface {
	SetMaxGasPrice(ctx context.Context, caller common.Address, input *entities.MaxGasPriceInput) (*entities.SchedulerSettings, error)
	CheckGasPrice(ctx context.Context, gasPrice *big.Int) error
	DepositTreasury(ctx context.Context, caller common.Address, input *entities.TreasuryDepositInput) (*entities.TreasuryStatus, error)
	WithdrawTreasury(ctx context.Context, caller common.Address, input *entities.TreasuryWithdrawInput) (*entities.TreasuryStatus, error)
	TreasuryBalance(ctx context.Context) (*entities.TreasuryStatus, error)
}

// AutomationHandler serves the automation gateway and keeper treasury
type AutomationHandler struct {
	service AutomationService
}

func NewAutomationHandler(service AutomationService) *AutomationHandler {
	return &AutomationHandler{service: service}
}

// CheckGasPrice tells whether a gas price is under the ceiling
// GET /api/v1/automation/gas-price/check?gasPrice=
func (h *AutomationHandler) CheckGasPrice(c *gin.Context) {
	gasPrice, ok := parseGasPrice(c, c.Query("gasPrice"))
	if !ok {
		return
	}
	if err := h.service.CheckGasPrice(c.Request.Context(), gasPrice); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

// SetMaxGasPrice updates the gas price ceiling
// PUT /api/v1/admin/automation/max-gas-price
func (h *AutomationHandler) SetMaxGasPrice(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.MaxGasPriceInput
	if !bindJSON(c, &input) {
		return
	}
	settings, err := h.service.SetMaxGasPrice(c.Request.Context(), from, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// DepositTreasury funds keeper fees
// POST /api/v1/automation/treasury/deposit
func (h *AutomationHandler) DepositTreasury(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.TreasuryDepositInput
	if !bindJSON(c, &input) {
		return
	}
	status, err := h.service.DepositTreasury(c.Request.Context(), from, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"treasury": status})
}

// WithdrawTreasury drains keeper funds
// POST /api/v1/admin/automation/treasury/withdraw
func (h *AutomationHandler) WithdrawTreasury(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.TreasuryWithdrawInput
	if !bindJSON(c, &input) {
		return
	}
	status, err := h.service.WithdrawTreasury(c.Request.Context(), from, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"treasury": status})
}

// GetTreasury returns the treasury balance
// GET /api/v1/automation/treasury
func (h *AutomationHandler) GetTreasury(c *gin.Context) {
	status, err := h.service.TreasuryBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"treasury": status})
}
