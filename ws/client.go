package ws

import (
	"encoding/json"
	"time"

	"realty_backend/internal/logger"
	"realty_backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	maxMsgSize = 4096
)

// IncomingFrame is what clients send: subscribe/unsubscribe to a
// conversation. Messages themselves go through the REST surface.
type IncomingFrame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type subscribePayload struct {
	ConversationID string `json:"conversationId"`
}

type Client struct {
	UserID  string
	Role    models.UserRole
	Conn    *websocket.Conn
	Send    chan any
	Manager *Manager
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMsgSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.UserID, "error", err.Error())
			}
			return
		}

		var frame IncomingFrame
		if err := json.Unmarshal(msgBytes, &frame); err != nil {
			logger.Debug("ws bad frame", "user_id", c.UserID, "error", err.Error())
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleFrame(frame IncomingFrame) {
	switch frame.Action {
	case "subscribe":
		var payload subscribePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.ConversationID == "" {
			return
		}
		if !c.Manager.allowSubscribe(c.UserID, c.Role, payload.ConversationID) {
			logger.Debug("ws subscribe rejected", "user_id", c.UserID, "conversation_id", payload.ConversationID)
			return
		}
		c.Manager.Subscribe(c.UserID, payload.ConversationID)

	case "unsubscribe":
		var payload subscribePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.ConversationID == "" {
			return
		}
		c.Manager.Unsubscribe(c.UserID, payload.ConversationID)

	default:
		logger.Debug("ws unhandled action", "action", frame.Action)
	}
}
