package handlers

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/domain/entities"
	domainerrors "recurpay.backend/internal/domain/errors"
	"recurpay.backend/internal/interfaces/http/middleware"
	"recurpay.backend/internal/interfaces/http/response"
)

// caller returns the authenticated account or writes 401.
func caller(c *gin.Context) (common.Address, bool) {
	addr, ok := middleware.GetCaller(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return common.Address{}, false
	}
	return addr, true
}

// addressParam parses a hex address path parameter or writes 400.
func addressParam(c *gin.Context, name string) (common.Address, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if !common.IsHexAddress(raw) {
		response.Error(c, domainerrors.BadRequest("Invalid "+name+" address"))
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// bindJSON binds the request body or writes 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return false
	}
	return true
}

func parseGasPrice(c *gin.Context, raw string) (*big.Int, bool) {
	v, ok := entities.ParseAmount(raw)
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid gas price"))
		return nil, false
	}
	return v, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
