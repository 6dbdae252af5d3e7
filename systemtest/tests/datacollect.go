package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EternisAI/datacollect/internal/api/http/dto"
	"github.com/EternisAI/datacollect/internal/datacollect"
	"github.com/EternisAI/datacollect/internal/notify"
	"github.com/EternisAI/datacollect/systemtest/device"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T, router *gin.Engine) {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, datacollect.ModuleName, resp.Module)
}

func TestAgreement(t *testing.T, router *gin.Engine, dev *device.Device, hub *notify.Hub) {
	t.Run("default is not agreed", func(t *testing.T) {
		data := call(t, router, "get", nil, http.StatusOK)
		assert.Equal(t, false, data["agreed"])
	})

	t.Run("agree enables collector", func(t *testing.T) {
		data := call(t, router, "set", map[string]any{"agreed": true}, http.StatusOK)
		assert.Equal(t, true, data["result"])
		assert.Equal(t, []string{"ucollect enable", "ucollect restart"}, dev.Actions(t))
		assert.Contains(t, dev.ReadConfig(t, "foris"), "option agreed_collect '1'")

		data = call(t, router, "get", nil, http.StatusOK)
		assert.Equal(t, true, data["agreed"])

		recent := hub.Recent()
		require.NotEmpty(t, recent)
		assert.Equal(t, "set", recent[len(recent)-1].Action)
	})

	t.Run("disagree stops collector", func(t *testing.T) {
		call(t, router, "set", map[string]any{"agreed": false}, http.StatusOK)
		actions := dev.Actions(t)
		assert.Equal(t, []string{"ucollect disable", "ucollect stop"}, actions[len(actions)-2:])
	})

	t.Run("invalid input", func(t *testing.T) {
		errs := callError(t, router, "set", map[string]any{"agreed": 1}, http.StatusBadRequest)
		assert.Equal(t, "Incorrect input.", errs)
	})
}

func TestSendingInfo(t *testing.T, router *gin.Engine, dev *device.Device) {
	t.Run("missing files", func(t *testing.T) {
		data := call(t, router, "get", nil, http.StatusOK)
		assert.Equal(t, map[string]any{"state": "unknown", "last_check": float64(0)}, data["firewall_status"])
		assert.Equal(t, map[string]any{"state": "unknown", "last_check": float64(0)}, data["collector_status"])
	})

	t.Run("online", func(t *testing.T) {
		dev.WriteFile(t, dev.Config.FirewallStatusPath,
			"turris firewall working: yes\nlast working timestamp: 1508846312\n")
		dev.WriteFile(t, dev.Config.CollectorStatusPath, "online 1508846300\n")

		data := call(t, router, "get", nil, http.StatusOK)
		assert.Equal(t, map[string]any{"state": "online", "last_check": float64(1508846312)}, data["firewall_status"])
		assert.Equal(t, map[string]any{"state": "online", "last_check": float64(1508846300)}, data["collector_status"])
	})

	t.Run("offline and malformed", func(t *testing.T) {
		dev.WriteFile(t, dev.Config.FirewallStatusPath, "turris firewall working: no\n")
		dev.WriteFile(t, dev.Config.CollectorStatusPath, "garbage")

		data := call(t, router, "get", nil, http.StatusOK)
		assert.Equal(t, "offline", data["firewall_status"].(map[string]any)["state"])
		assert.Equal(t, "unknown", data["collector_status"].(map[string]any)["state"])
	})
}

func TestHoneypots(t *testing.T, router *gin.Engine, dev *device.Device, hub *notify.Hub) {
	t.Run("defaults", func(t *testing.T) {
		data := call(t, router, "get_honeypots", nil, http.StatusOK)
		assert.Equal(t, false, data["log_credentials"])
		minipots := data["minipots"].(map[string]any)
		assert.Len(t, minipots, 6)
		for _, enabled := range minipots {
			assert.Equal(t, true, enabled)
		}
	})

	t.Run("disable some", func(t *testing.T) {
		data := call(t, router, "set_honeypots", map[string]any{
			"minipots":        map[string]bool{"23tcp": false, "80tcp": false, "3128tcp": true},
			"log_credentials": true,
		}, http.StatusOK)
		assert.Equal(t, true, data["result"])
		assert.Contains(t, dev.Actions(t), "ucollect restart")

		data = call(t, router, "get_honeypots", nil, http.StatusOK)
		assert.Equal(t, true, data["log_credentials"])
		minipots := data["minipots"].(map[string]any)
		assert.Equal(t, false, minipots["23tcp"])
		assert.Equal(t, false, minipots["80tcp"])
		assert.Equal(t, true, minipots["2323tcp"])

		config := dev.ReadConfig(t, "ucollect")
		assert.Contains(t, config, "list disable '23tcp'")
		assert.Contains(t, config, "list disable '80tcp'")

		recent := hub.Recent()
		require.NotEmpty(t, recent)
		assert.Equal(t, "set_honeypots", recent[len(recent)-1].Action)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		errs := callError(t, router, "set_honeypots", map[string]any{
			"minipots":        map[string]bool{"22tcp": false},
			"log_credentials": false,
		}, http.StatusBadRequest)
		assert.Equal(t, "Incorrect input.", errs)
	})
}

func TestRegistration(t *testing.T, router *gin.Engine, dev *device.Device) {
	args := map[string]any{"email": "test@test.test", "language": "cs"}

	t.Run("free", func(t *testing.T) {
		data := call(t, router, "get_registered", args, http.StatusOK)
		assert.Equal(t, "free", data["status"])
		assert.Equal(t, "https://some.page/cs/data?email=test@test.test", data["url"])
		assert.Equal(t, device.RegistrationCode, data["registration_number"])
	})

	t.Run("owned", func(t *testing.T) {
		dev.SetRegistration(t, 200, "owned")
		data := call(t, router, "get_registered", args, http.StatusOK)
		assert.Equal(t, map[string]any{"status": "owned"}, data)
	})

	t.Run("not found", func(t *testing.T) {
		dev.SetRegistration(t, 404, "not_found")
		data := call(t, router, "get_registered", args, http.StatusOK)
		assert.Equal(t, map[string]any{"status": "not_found"}, data)
	})
}

func call(t *testing.T, router *gin.Engine, action string, data any, expected int) map[string]any {
	t.Helper()
	rr := doRPC(t, router, action, data)
	require.Equal(t, expected, rr.Code, rr.Body.String())

	var reply struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	return reply.Data
}

func callError(t *testing.T, router *gin.Engine, action string, data any, expected int) string {
	t.Helper()
	rr := doRPC(t, router, action, data)
	require.Equal(t, expected, rr.Code, rr.Body.String())

	var reply dto.ErrorReply
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	require.Len(t, reply.Errors, 1)
	return reply.Errors[0].Description
}

func doRPC(t *testing.T, router *gin.Engine, action string, data any) *httptest.ResponseRecorder {
	t.Helper()
	msg := map[string]any{"module": "data_collect", "action": action, "kind": "request"}
	if data != nil {
		msg["data"] = data
	}
	b, err := json.Marshal(msg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rpc", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
