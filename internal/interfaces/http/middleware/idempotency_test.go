package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redispkg "recurpay.backend/pkg/redis"
)

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })
	return srv
}

func idempotentRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CallerKey, alice)
		c.Next()
	})
	r.Use(IdempotencyMiddleware())
	r.POST("/x", handler)
	return r
}

func post(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_NoHeaderPassthrough(t *testing.T) {
	calls := 0
	r := idempotentRouter(func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	post(r, "")
	post(r, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	srv := startMiniRedis(t)
	calls := 0
	r := idempotentRouter(func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	first := post(r, "k1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := post(r, "k1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.Equal(t, 1, calls)

	assert.True(t, srv.Exists("idempotency:"+alice.Hex()+":k1"))
	assert.Greater(t, srv.TTL("idempotency:"+alice.Hex()+":k1"), time.Hour)

	post(r, "k2")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_FailureReleasesKey(t *testing.T) {
	srv := startMiniRedis(t)
	r := idempotentRouter(func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := post(r, "k1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, srv.Exists("idempotency:"+alice.Hex()+":k1"))
}

func TestIdempotencyMiddleware_ProcessingConflict(t *testing.T) {
	srv := startMiniRedis(t)
	require.NoError(t, srv.Set("idempotency:"+alice.Hex()+":busy", processingMarker))
	r := idempotentRouter(func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := post(r, "busy")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIdempotencyMiddleware_UnreadableEntryIsReplaced(t *testing.T) {
	srv := startMiniRedis(t)
	require.NoError(t, srv.Set("idempotency:"+alice.Hex()+":bad", "{not json"))
	calls := 0
	r := idempotentRouter(func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	w := post(r, "bad")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyMiddleware_StoreErrorPassthrough(t *testing.T) {
	origGet := redisGet
	t.Cleanup(func() { redisGet = origGet })
	redisGet = func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	}

	calls := 0
	r := idempotentRouter(func(c *gin.Context) {
		calls++
		c.Status(http.StatusAccepted)
	})

	assert.Equal(t, http.StatusAccepted, post(r, "k").Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyMiddleware_LockLost(t *testing.T) {
	origGet, origSetNX := redisGet, redisSetNX
	t.Cleanup(func() { redisGet, redisSetNX = origGet, origSetNX })
	redisGet = func(context.Context, string) (string, error) { return "", redisv9.Nil }
	redisSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) { return false, nil }

	r := idempotentRouter(func(c *gin.Context) { c.Status(http.StatusCreated) })
	assert.Equal(t, http.StatusConflict, post(r, "k").Code)
}
