package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"recurpay.backend/internal/interfaces/http/middleware"
)

var (
	governor = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	token    = common.HexToAddress("0x0000000000000000000000000000000000000c01")
	backend  = common.HexToAddress("0x0000000000000000000000000000000000000d01")
)

func newRouter(as *common.Address) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if as != nil {
		addr := *as
		r.Use(func(c *gin.Context) {
			c.Set(middleware.CallerKey, addr)
			c.Next()
		})
	}
	return r
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
