package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EternisAI/datacollect/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupAuth(apiKey, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger(), Auth(apiKey, secret), RequireRole("admin"))
	engine.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func request(engine *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthDisabled(t *testing.T) {
	engine := gin.New()
	engine.Use(Auth("", ""))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := request(engine, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthAPIKey(t *testing.T) {
	hashed, err := auth.HashAPIKey("secret-key")
	require.NoError(t, err)

	for name, configured := range map[string]string{"plain": "secret-key", "bcrypt": hashed} {
		t.Run(name, func(t *testing.T) {
			engine := setupAuth(configured, "")

			assert.Equal(t, http.StatusOK, request(engine, map[string]string{"X-API-Key": "secret-key"}).Code)
			assert.Equal(t, http.StatusUnauthorized, request(engine, map[string]string{"X-API-Key": "wrong"}).Code)
			assert.Equal(t, http.StatusUnauthorized, request(engine, nil).Code)
		})
	}
}

func TestAuthBearerToken(t *testing.T) {
	engine := setupAuth("", testSecret)

	admin, err := auth.GenerateToken(auth.Config{JWTSecret: testSecret}, "ops", "admin")
	require.NoError(t, err)
	viewer, err := auth.GenerateToken(auth.Config{JWTSecret: testSecret}, "ops", "viewer")
	require.NoError(t, err)
	foreign, err := auth.GenerateToken(auth.Config{JWTSecret: "other"}, "ops", "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, request(engine, map[string]string{"Authorization": "Bearer " + admin}).Code)
	assert.Equal(t, http.StatusForbidden, request(engine, map[string]string{"Authorization": "Bearer " + viewer}).Code)
	assert.Equal(t, http.StatusUnauthorized, request(engine, map[string]string{"Authorization": "Bearer " + foreign}).Code)
	assert.Equal(t, http.StatusUnauthorized, request(engine, map[string]string{"Authorization": "Basic abc"}).Code)
}

func TestRequireRoleIgnoresTokenSubject(t *testing.T) {
	engine := setupAuth("", testSecret)

	for _, subject := range []string{"api-key", "api_key", "someone"} {
		token, err := auth.GenerateToken(auth.Config{JWTSecret: testSecret}, subject, "viewer")
		require.NoError(t, err)

		w := request(engine, map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusForbidden, w.Code, subject)
	}
}

func TestAuthEitherCredential(t *testing.T) {
	engine := setupAuth("secret-key", testSecret)

	token, err := auth.GenerateToken(auth.Config{JWTSecret: testSecret}, "ops", "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, request(engine, map[string]string{"X-API-Key": "secret-key"}).Code)
	assert.Equal(t, http.StatusOK, request(engine, map[string]string{"Authorization": "Bearer " + token}).Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	engine := setupAuth("", "")

	w := request(engine, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = request(engine, map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
