package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	verify := func(_ context.Context, idToken string) (*auth.Token, error) {
		if idToken != "good" {
			return nil, errors.New("token expired")
		}
		return &auth.Token{UID: "operator-1"}, nil
	}

	router := gin.New()
	router.POST("/run", VerifyAuthTokenWith(verify), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CallerUidKey))
	})
	return router
}

func post(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestVerifyAuthToken(t *testing.T) {
	router := newRouter()

	w := post(router, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operator-1", w.Body.String())

	w = post(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), accessTokenRequired)

	w = post(router, "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}
