package handler

import (
	"net/http"

	"github.com/EternisAI/datacollect/internal/notify"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	hub *notify.Hub
}

func NewNotificationHandler(hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

func (h *NotificationHandler) Subscribe(ctx *gin.Context) {
	h.hub.ServeWS(ctx.Writer, ctx.Request)
}

func (h *NotificationHandler) Recent(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"notifications": h.hub.Recent(),
		"clients":       h.hub.ClientCount(),
	})
}
