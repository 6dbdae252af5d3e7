package handler

import (
	"net/http"
	"time"

	"github.com/EternisAI/datacollect/internal/api/http/dto"
	"github.com/EternisAI/datacollect/internal/datacollect"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports that the daemon is serving, which build it runs
// and for how long.
type HealthHandler struct {
	version string
	started time.Time
	now     func() time.Time
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now(), now: time.Now}
}

func (h *HealthHandler) Check(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{
		Status:        "ok",
		Module:        datacollect.ModuleName,
		Version:       h.version,
		UptimeSeconds: int64(h.now().Sub(h.started).Seconds()),
	})
}
