package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/interfaces/http/response"
)

type PaymentTypeService interface {
	Register(ctx context.Context, caller common.Address, input *entities.RegisterPaymentTypeInput) (*entities.PaymentType, error)
	Unregister(ctx context.Context, caller common.Address, name string) error
	SetMinimumRecurringAmount(ctx context.Context, caller common.Address, name string, input *entities.UpdateMinimumAmountInput) (*entities.PaymentType, error)
	Get(ctx context.Context, name string) (*entities.PaymentType, error)
	List(ctx context.Context) ([]*entities.PaymentType, error)
}

// PaymentTypeHandler serves the payment type registry
type PaymentTypeHandler struct {
	service PaymentTypeService
}

func NewPaymentTypeHandler(service PaymentTypeService) *PaymentTypeHandler {
	return &PaymentTypeHandler{service: service}
}

// RegisterPaymentType registers a new payment type
// POST /api/v1/admin/payment-types
func (h *PaymentTypeHandler) RegisterPaymentType(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.RegisterPaymentTypeInput
	if !bindJSON(c, &input) {
		return
	}

	paymentType, err := h.service.Register(c.Request.Context(), from, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"paymentType": paymentType})
}

// UnregisterPaymentType removes a payment type by name
// DELETE /api/v1/admin/payment-types/:name
func (h *PaymentTypeHandler) UnregisterPaymentType(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	if err := h.service.Unregister(c.Request.Context(), from, c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Payment type unregistered"})
}

// UpdateMinimumAmount changes the minimum recurring amount
// PUT /api/v1/admin/payment-types/:name/minimum
func (h *PaymentTypeHandler) UpdateMinimumAmount(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	var input entities.UpdateMinimumAmountInput
	if !bindJSON(c, &input) {
		return
	}

	paymentType, err := h.service.SetMinimumRecurringAmount(c.Request.Context(), from, c.Param("name"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paymentType": paymentType})
}

// GetPaymentType returns a payment type by name
// GET /api/v1/payment-types/:name
func (h *PaymentTypeHandler) GetPaymentType(c *gin.Context) {
	paymentType, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paymentType": paymentType})
}

// ListPaymentTypes lists registered payment types
// GET /api/v1/payment-types
func (h *PaymentTypeHandler) ListPaymentTypes(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}
