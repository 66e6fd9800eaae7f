package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]string

func (s stubVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	uid, ok := s[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: uid}, nil
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(1) // burst 2
	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, do(r, "").Code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(5)
	rl.getLimiter("a")
	rl.getLimiter("b")

	assert.Equal(t, 0, rl.cleanup(time.Now().Add(-time.Minute)))
	assert.Equal(t, 2, rl.cleanup(time.Now().Add(time.Second)))
	assert.Empty(t, rl.limiters)
}

func TestAuthenticate(t *testing.T) {
	am := NewAuthMiddlewareWithVerifier(stubVerifier{"good": "user-1"})
	r := gin.New()
	r.GET("/", am.Authenticate(), func(c *gin.Context) {
		c.String(http.StatusOK, GetFirebaseUID(c))
	})

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer nope").Code)

	w := do(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestIdentify(t *testing.T) {
	am := NewAuthMiddlewareWithVerifier(stubVerifier{"good": "user-1"})
	r := gin.New()
	r.GET("/", am.Identify(), func(c *gin.Context) {
		c.String(http.StatusOK, "uid=%s", GetFirebaseUID(c))
	})

	assert.Equal(t, "uid=", do(r, "").Body.String())
	assert.Equal(t, "uid=", do(r, "Bearer nope").Body.String())
	assert.Equal(t, "uid=user-1", do(r, "Bearer good").Body.String())
}

func TestNewAuthMiddleware_RequiresProjectID(t *testing.T) {
	am, err := NewAuthMiddleware(context.Background(), "", "")
	assert.Nil(t, am)
	assert.EqualError(t, err, "firebase project ID is required")
}
