package controller

import (
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/websocket"
)

// FeedController upgrades staff connections to the live event feed.
type FeedController struct {
	hub      *websocket.Hub
	upgrader gorilla.Upgrader
}

func NewFeedController(hub *websocket.Hub, allowedOrigins []string) *FeedController {
	return &FeedController{
		hub:      hub,
		upgrader: websocket.NewUpgrader(allowedOrigins),
	}
}

// Connect streams {type, data} events until the client goes away
// GET /api/v1/staff/feed?token=
func (ctrl *FeedController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ws, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	client := websocket.NewClient(ctrl.hub, &websocket.Conn{Conn: ws}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
