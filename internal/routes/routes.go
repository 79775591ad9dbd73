package routes

import (
	"net/http"

	"realty_backend/internal/handlers"
	"realty_backend/internal/middleware"
	"realty_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers every HTTP and websocket route.
func RegisterRoutes(router *gin.Engine, appHandlers *handlers.AppHandlers, wsHandler *ws.Handler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.ListingHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
		appHandlers.SavedHandler.RegisterRoutes(api)
		appHandlers.ChatHandler.RegisterRoutes(api)
		appHandlers.BillingHandler.RegisterRoutes(api)
		appHandlers.UploadHandler.RegisterRoutes(api)
	}

	wsGroup := router.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware())
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
}
