package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/interfaces/http/response"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

type EventService interface {
	List(ctx context.Context, owner *common.Address, limit int) ([]*entities.SchedulerEvent, error)
}

// EventHandler lists recorded scheduler events
type EventHandler struct {
	service EventService
}

func NewEventHandler(service EventService) *EventHandler {
	return &EventHandler{service: service}
}

// ListEvents GET /api/v1/events?owner=&limit=
func (h *EventHandler) ListEvents(c *gin.Context) {
	var owner *common.Address
	if raw := c.Query("owner"); raw != "" {
		if !common.IsHexAddress(raw) {
			response.Error(c, domainerrors.BadRequest("Invalid owner address"))
			return
		}
		addr := common.HexToAddress(raw)
		owner = &addr
	}
	limit := queryInt(c, "limit", defaultEventLimit)
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.service.List(c.Request.Context(), owner, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": events})
}
