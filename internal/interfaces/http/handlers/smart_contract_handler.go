package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/interfaces/http/response"
)

type ContractService interface {
	Deploy(ctx context.Context, caller common.Address, input *entities.CreateSmartContractInput) (*entities.SmartContract, error)
	Remove(ctx context.Context, caller, address common.Address) error
	Get(ctx context.Context, address common.Address) (*entities.SmartContract, error)
	List(ctx context.Context) ([]*entities.SmartContract, error)
}

// SmartContractHandler handles smart contract endpoints
type SmartContractHandler struct {
	service ContractService
}

// NewSmartContractHandler creates a new smart contract handler
func NewSmartContractHandler(service ContractService) *SmartContractHandler {
	return &SmartContractHandler{service: service}
}

// CreateSmartContract records a deployed backend contract
// POST /api/v1/admin/contracts
func (h *SmartContractHandler) CreateSmartContract(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.CreateSmartContractInput
	if !bindJSON(c, &input) {
		return
	}

	contract, err := h.service.Deploy(c.Request.Context(), from, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"contract": contract})
}

// GetSmartContract gets a smart contract by address
// GET /api/v1/contracts/:address
func (h *SmartContractHandler) GetSmartContract(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	contract, err := h.service.Get(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contract": contract})
}

// ListSmartContracts lists all smart contracts
// GET /api/v1/contracts
func (h *SmartContractHandler) ListSmartContracts(c *gin.Context) {
	contracts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": contracts})
}

// DeleteSmartContract soft-deletes a contract
// DELETE /api/v1/admin/contracts/:address
func (h *SmartContractHandler) DeleteSmartContract(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), from, address); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Contract deleted successfully"})
}
