package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EternisAI/datacollect/internal/api/http/dto"
	"github.com/EternisAI/datacollect/internal/datacollect"
	"github.com/EternisAI/datacollect/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDataCollect struct {
	agreed bool
}

func (s *stubDataCollect) Get(ctx context.Context) (datacollect.Info, error) {
	return datacollect.Info{Agreed: s.agreed}, nil
}

func (s *stubDataCollect) Set(ctx context.Context, agreed bool) (bool, error) {
	s.agreed = agreed
	return true, nil
}

func (s *stubDataCollect) GetHoneypots(ctx context.Context) (datacollect.HoneypotConfig, error) {
	return datacollect.HoneypotConfig{}, nil
}

func (s *stubDataCollect) SetHoneypots(ctx context.Context, cfg datacollect.HoneypotConfig) (bool, error) {
	return true, nil
}

func (s *stubDataCollect) GetRegistered(ctx context.Context, email, language string) (datacollect.RegistrationStatus, error) {
	return datacollect.RegistrationStatus{Status: datacollect.RegistrationUnknown}, nil
}

func TestSetupRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	hub := notify.NewHub()
	defer hub.Close()
	SetupRoute(engine, &Services{DataCollect: &stubDataCollect{}, Hub: hub, AdminAPIKey: "key"})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "data_collect", health.Module)

	body := `{"module":"data_collect","action":"set","kind":"request","data":{"agreed":true}}`
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/rpc", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rpc", bytes.NewBufferString(body))
	req.Header.Set("X-API-Key", "key")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var reply map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "data_collect", reply["module"])
	assert.Equal(t, "set", reply["action"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/notifications/recent", nil)
	req.Header.Set("X-API-Key", "key")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
