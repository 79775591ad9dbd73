package ws

import (
	"net/http"

	"realty_backend/internal/logger"
	"realty_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth rides in the bearer token checked by middleware; origin is
		// not a trust boundary here.
		return true
	},
}

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// ServeWS upgrades an authenticated request to a websocket connection.
// The route must sit behind AuthMiddleware.
func (h *Handler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err.Error())
		return
	}

	role, _ := middleware.GetRole(c)
	client := &Client{
		UserID:  userID,
		Role:    role,
		Conn:    conn,
		Send:    make(chan any, 256),
		Manager: h.manager,
	}

	h.manager.register <- client

	go client.readPump()
	go client.writePump()
}
