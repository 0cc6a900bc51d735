package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/pkg/helpers"
)

func setupAuthRouter(jwt *helpers.JWTManager, reached *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(jwt))
	r.GET("/test", func(c *gin.Context) {
		*reached = true
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	jwtm := helpers.NewJWTManager("test-secret-key", time.Hour)
	token, _, err := jwtm.Generate(42)
	require.NoError(t, err)

	var reached bool
	r := setupAuthRouter(jwtm, &reached)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reached)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
}

func TestAuth_NoHeader(t *testing.T) {
	jwtm := helpers.NewJWTManager("test-secret-key", time.Hour)

	var reached bool
	r := setupAuthRouter(jwtm, &reached)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
	assert.Contains(t, w.Body.String(), "missing bearer token")
}

func TestAuth_WrongScheme(t *testing.T) {
	jwtm := helpers.NewJWTManager("test-secret-key", time.Hour)

	cases := []string{
		"Basic xyz",
		"bearer sometoken", // prefix is case-sensitive
		"Bearer",
		"Bearer ",
		"Bearer  doublespace",
	}
	for _, header := range cases {
		var reached bool
		r := setupAuthRouter(jwtm, &reached)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.False(t, reached, "header %q must not reach the handler", header)
		assert.Contains(t, w.Body.String(), "missing bearer token", "header %q", header)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	jwtm := helpers.NewJWTManager("test-secret-key", time.Hour)

	var reached bool
	r := setupAuthRouter(jwtm, &reached)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
	assert.Contains(t, w.Body.String(), "invalid access token")
}

func TestAuth_WrongSecret(t *testing.T) {
	issuer := helpers.NewJWTManager("other-secret", time.Hour)
	jwtm := helpers.NewJWTManager("test-secret-key", time.Hour)
	token, _, err := issuer.Generate(42)
	require.NoError(t, err)

	var reached bool
	r := setupAuthRouter(jwtm, &reached)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
	assert.Contains(t, w.Body.String(), "token signature invalid")
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtm := helpers.NewJWTManager("test-secret-key", -time.Minute)
	token, _, err := jwtm.Generate(42)
	require.NoError(t, err)

	var reached bool
	r := setupAuthRouter(jwtm, &reached)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
	assert.Contains(t, w.Body.String(), "token expired")
}
