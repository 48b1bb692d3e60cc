package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/interfaces/http/response"
)

type GovernanceService interface {
	Settings(ctx context.Context) (*entities.SchedulerSettings, error)
	SetExecutionInterval(ctx context.Context, caller common.Address, seconds uint64) (*entities.SchedulerSettings, error)
	SetExpirationInterval(ctx context.Context, caller common.Address, seconds uint64) (*entities.SchedulerSettings, error)
	TransferGovernance(ctx context.Context, caller common.Address, input *entities.TransferGovernanceInput) (*entities.SchedulerSettings, error)
	AcceptGovernance(ctx context.Context, caller common.Address) (*entities.SchedulerSettings, error)
	RescueTokens(ctx context.Context, caller common.Address, input *entities.RescueTokensInput) error
}

// GovernanceHandler serves scheduler settings, governance and rescue
type GovernanceHandler struct {
	service GovernanceService
}

func NewGovernanceHandler(service GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{service: service}
}

// GetSettings GET /api/v1/admin/settings
func (h *GovernanceHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.Settings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// SetExecutionInterval PUT /api/v1/admin/settings/execution-interval
func (h *GovernanceHandler) SetExecutionInterval(c *gin.Context) {
	h.setInterval(c, h.service.SetExecutionInterval)
}

// SetExpirationInterval PUT /api/v1/admin/settings/expiration-interval
func (h *GovernanceHandler) SetExpirationInterval(c *gin.Context) {
	h.setInterval(c, h.service.SetExpirationInterval)
}

func (h *GovernanceHandler) setInterval(c *gin.Context, set func(context.Context, common.Address, uint64) (*entities.SchedulerSettings, error)) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.IntervalInput
	if !bindJSON(c, &input) {
		return
	}
	settings, err := set(c.Request.Context(), from, input.Seconds)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// TransferGovernance POST /api/v1/admin/governance/transfer
func (h *GovernanceHandler) TransferGovernance(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.TransferGovernanceInput
	if !bindJSON(c, &input) {
		return
	}
	settings, err := h.service.TransferGovernance(c.Request.Context(), from, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// AcceptGovernance POST /api/v1/governance/accept
func (h *GovernanceHandler) AcceptGovernance(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	settings, err := h.service.AcceptGovernance(c.Request.Context(), from)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// RescueTokens POST /api/v1/admin/rescue
func (h *GovernanceHandler) RescueTokens(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.RescueTokensInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.service.RescueTokens(c.Request.Context(), from, &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Tokens rescued"})
}
