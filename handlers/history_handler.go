// handlers/history_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"assetmgt/models"
	"assetmgt/utils"
)

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.Mutex
}

type Client struct {
	userID   string
	userRole string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

var hub = &Hub{
	clients:    make(map[*Client]bool),
	broadcast:  make(chan []byte),
	register:   make(chan *Client),
	unregister: make(chan *Client),
}

func GetHub() *Hub {
	return hub
}

func (h *Hub) Run() {
	logger.Info("websocket hub started")
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastHistory pushes a freshly recorded history entry to every
// connected dashboard client. Safe to call from any goroutine.
func BroadcastHistory(entry *models.AssetHistory) {
	payload := map[string]interface{}{
		"type":           "HISTORY_RECORDED",
		"id":             entry.ID,
		"assetId":        entry.AssetID,
		"actionType":     entry.ActionType,
		"previousStatus": entry.PreviousStatus,
		"newStatus":      entry.NewStatus,
		"performedBy":    entry.PerformedBy,
		"performedAt":    entry.PerformedAt,
		"details":        entry.Details,
		"notes":          entry.Notes,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal history entry for broadcast", zap.Error(err))
		return
	}
	hub.broadcast <- data
}

// HandleWebSocket upgrades the connection after validating the token
// passed either as a query parameter or a bearer header.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")

	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		http.Error(w, "Authentication token required", http.StatusUnauthorized)
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	if claims.UserID == "" {
		http.Error(w, "Invalid token claims", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	client := &Client{
		userID:   claims.UserID,
		userRole: claims.Role,
		conn:     conn,
		send:     make(chan []byte, 256),
		hub:      hub,
	}

	client.hub.register <- client

	// Write pump
	go func() {
		defer func() {
			client.hub.unregister <- client
			conn.Close()
		}()
		for message := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	// Read pump
	go func() {
		defer func() {
			client.hub.unregister <- client
			conn.Close()
		}()

		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		go func() {
			for range ticker.C {
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}()

		for {
			messageType, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if messageType == websocket.CloseMessage {
				break
			}
		}
	}()

	welcome := map[string]interface{}{
		"type":      "welcome",
		"message":   "Connected to asset activity stream",
		"userID":    claims.UserID,
		"role":      claims.Role,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	welcomeBytes, _ := json.Marshal(welcome)
	conn.WriteMessage(websocket.TextMessage, welcomeBytes)
}

// ListRecentHistory returns the latest history entries across all assets,
// newest first. Admin only; the per-asset trail lives under /assets/{id}/history.
func ListRecentHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > 200 {
			n = 50
		}
		limit = n
	}

	entries, err := st.History.List(r.Context(), int64(limit))
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AssetHistory{}
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}
