package http

import (
	"github.com/EternisAI/datacollect/internal/api/http/handler"
	"github.com/EternisAI/datacollect/internal/api/http/middleware"
	"github.com/EternisAI/datacollect/internal/notify"
	"github.com/gin-gonic/gin"
)

const AdminRole = "admin"

type Services struct {
	DataCollect handler.DataCollect
	Hub         *notify.Hub
	AdminAPIKey string
	JWTSecret   string
	Version     string
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.Version)
	engine.GET("/health", healthHandler.Check)

	api := engine.Group("/api/v1")
	if srvs.AdminAPIKey != "" || srvs.JWTSecret != "" {
		api.Use(middleware.Auth(srvs.AdminAPIKey, srvs.JWTSecret), middleware.RequireRole(AdminRole))
	}

	rpcHandler := handler.NewRPCHandler(srvs.DataCollect)
	api.POST("/rpc", rpcHandler.Handle)

	if srvs.Hub != nil {
		notificationHandler := handler.NewNotificationHandler(srvs.Hub)
		api.GET("/notifications", notificationHandler.Subscribe)
		api.GET("/notifications/recent", notificationHandler.Recent)
	}
}
