package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler owns the hub of connected clients and implements
// services.Broadcaster for the game handlers.
type WebSocketHandler struct {
	economyService *services.EconomyService
	hub            *WebSocketHub
}

type WebSocketHub struct {
	clients    map[int64]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
}

// Message is the wire envelope for every websocket event. A zero
// UserID broadcasts to every connected client.
type Message struct {
	Type   string      `json:"type"`
	UserID int64       `json:"user_id,omitempty"`
	Game   string      `json:"game,omitempty"`
	Data   interface{} `json:"data"`
}

func NewWebSocketHandler(economyService *services.EconomyService) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[int64]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		economyService: economyService,
		hub:            hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendBalance(client)

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		h.sendPong(client)
	}
}

func (h *WebSocketHandler) sendBalance(client *Client) {
	// The socket outlives the upgrade request, so its context is not
	// usable here.
	wallet, err := h.economyService.GetWallet(context.Background(), client.UserID)
	if err != nil {
		log.Printf("Failed to load wallet for WS: %v", err)
		return
	}

	msg := Message{
		Type:   "BALANCE_UPDATE",
		UserID: client.UserID,
		Data: gin.H{
			"balance":   wallet.Balance,
			"timestamp": time.Now().Unix(),
		},
	}

	client.Conn.WriteJSON(msg)
}

func (h *WebSocketHandler) sendPong(client *Client) {
	msg := Message{
		Type: "PONG",
		Data: gin.H{
			"timestamp": time.Now().Unix(),
		},
	}

	client.Conn.WriteJSON(msg)
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.UserID] = client.Conn
			log.Printf("Client registered: %d", client.UserID)

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.UserID]; ok {
				delete(hub.clients, client.UserID)
				log.Printf("Client unregistered: %d", client.UserID)
			}

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	if message.UserID != 0 {
		if conn, ok := hub.clients[message.UserID]; ok {
			conn.WriteJSON(message)
		}
	} else {
		for _, conn := range hub.clients {
			conn.WriteJSON(message)
		}
	}
}

// BroadcastBalance pushes a fresh balance to one user.
func (h *WebSocketHandler) BroadcastBalance(userID int64, balance int64) {
	msg := &Message{
		Type:   "BALANCE_UPDATE",
		UserID: userID,
		Data: gin.H{
			"balance":   balance,
			"timestamp": time.Now().Unix(),
		},
	}

	h.hub.broadcast <- msg
}

// BroadcastRound pushes a settled round to the user who played it.
func (h *WebSocketHandler) BroadcastRound(userID int64, round *models.GameRound, display string) {
	msg := &Message{
		Type:   "ROUND_RESULT",
		UserID: userID,
		Game:   round.Game,
		Data: gin.H{
			"round":   round,
			"display": display,
		},
	}

	h.hub.broadcast <- msg
}

// BroadcastBigWin announces an outsized payout to every connected
// client.
func (h *WebSocketHandler) BroadcastBigWin(username, game string, payout int64) {
	msg := &Message{
		Type: "BIG_WIN",
		Game: game,
		Data: gin.H{
			"username":  username,
			"game":      game,
			"payout":    payout,
			"timestamp": time.Now().Unix(),
		},
	}

	h.hub.broadcast <- msg
}
