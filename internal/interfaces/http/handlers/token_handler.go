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

type TokenService interface {
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, caller, token common.Address, input *entities.ApproveInput) error
	Transfer(ctx context.Context, caller, token common.Address, input *entities.TokenAmountInput) error
	Mint(ctx context.Context, caller, token common.Address, input *entities.TokenAmountInput) error
}

// TokenHandler serves the token ledger
type TokenHandler struct {
	service TokenService
}

func NewTokenHandler(service TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

// GetBalance GET /api/v1/tokens/:token/balance/:account
func (h *TokenHandler) GetBalance(c *gin.Context) {
	token, ok := addressParam(c, "token")
	if !ok {
		return
	}
	account, ok := addressParam(c, "account")
	if !ok {
		return
	}
	balance, err := h.service.BalanceOf(c.Request.Context(), token, account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "account": account, "balance": balance})
}

// GetAllowance GET /api/v1/tokens/:token/allowance/:owner/:spender
func (h *TokenHandler) GetAllowance(c *gin.Context) {
	token, ok := addressParam(c, "token")
	if !ok {
		return
	}
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	spender, ok := addressParam(c, "spender")
	if !ok {
		return
	}
	allowance, err := h.service.Allowance(c.Request.Context(), token, owner, spender)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "owner": owner, "spender": spender, "allowance": allowance})
}

// Approve POST /api/v1/tokens/:token/approve
func (h *TokenHandler) Approve(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	token, ok := addressParam(c, "token")
	if !ok {
		return
	}
	var input entities.ApproveInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.service.Approve(c.Request.Context(), from, token, &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Approved"})
}

// Transfer POST /api/v1/tokens/:token/transfer
func (h *TokenHandler) Transfer(c *gin.Context) {
	h.move(c, h.service.Transfer, "Transferred")
}

// Mint POST /api/v1/admin/tokens/:token/mint
func (h *TokenHandler) Mint(c *gin.Context) {
	h.move(c, h.service.Mint, "Minted")
}

func (h *TokenHandler) move(c *gin.Context, op func(context.Context, common.Address, common.Address, *entities.TokenAmountInput) error, message string) {
	from, ok := caller(c)
	if !ok {
		return
	}
	token, ok := addressParam(c, "token")
	if !ok {
		return
	}
	var input entities.TokenAmountInput
	if !bindJSON(c, &input) {
		return
	}
	if err := op(c.Request.Context(), from, token, &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": message})
}
