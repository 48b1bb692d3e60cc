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

type BackendService interface {
	LedgerBalance(ctx context.Context, backend, account common.Address) (*entities.LedgerBalance, error)
	LedgerDeposit(ctx context.Context, caller, backend common.Address, input *entities.LedgerDepositInput) (*entities.LedgerBalance, error)
	LedgerPull(ctx context.Context, caller, backend common.Address, input *entities.LedgerPullInput) (*entities.LedgerBalance, error)
	Stream(ctx context.Context, backend, owner common.Address) (*entities.Stream, error)
	WithdrawStream(ctx context.Context, backend, owner common.Address) (*big.Int, error)
}

// BackendHandler exposes the ledger and stream backends
type BackendHandler struct {
	service BackendService
}

func NewBackendHandler(service BackendService) *BackendHandler {
	return &BackendHandler{service: service}
}

// LedgerBalance GET /api/v1/backends/ledger/:backend/balance/:account
func (h *BackendHandler) LedgerBalance(c *gin.Context) {
	backend, ok := addressParam(c, "backend")
	if !ok {
		return
	}
	account, ok := addressParam(c, "account")
	if !ok {
		return
	}
	balance, err := h.service.LedgerBalance(c.Request.Context(), backend, account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ledger": balance})
}

// LedgerDeposit POST /api/v1/backends/ledger/:backend/deposit
func (h *BackendHandler) LedgerDeposit(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	backend, ok := addressParam(c, "backend")
	if !ok {
		return
	}
	var input entities.LedgerDepositInput
	if !bindJSON(c, &input) {
		return
	}
	balance, err := h.service.LedgerDeposit(c.Request.Context(), from, backend, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ledger": balance})
}

// LedgerPull POST /api/v1/backends/ledger/:backend/pull
func (h *BackendHandler) LedgerPull(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	backend, ok := addressParam(c, "backend")
	if !ok {
		return
	}
	var input entities.LedgerPullInput
	if !bindJSON(c, &input) {
		return
	}
	balance, err := h.service.LedgerPull(c.Request.Context(), from, backend, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ledger": balance})
}

// GetStream GET /api/v1/backends/stream/:backend/:owner
func (h *BackendHandler) GetStream(c *gin.Context) {
	backend, ok := addressParam(c, "backend")
	if !ok {
		return
	}
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	stream, err := h.service.Stream(c.Request.Context(), backend, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stream": stream})
}

// WithdrawStream POST /api/v1/backends/stream/:backend/:owner/withdraw
func (h *BackendHandler) WithdrawStream(c *gin.Context) {
	backend, ok := addressParam(c, "backend")
	if !ok {
		return
	}
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	amount, err := h.service.WithdrawStream(c.Request.Context(), backend, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawn": amount})
}
