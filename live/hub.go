package live

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Типы событий, рассылаемых в комнату турнира.
const (
	EventCompetitorRegistered = "COMPETITOR_REGISTERED"
	EventCompetitorWithdrawn  = "COMPETITOR_WITHDRAWN"
	EventMatchScoreUpdated    = "MATCH_SCORE_UPDATED"
	EventNewsPublished        = "NEWS_PUBLISHED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Message — кадр, уходящий подписчикам комнаты.
type Message struct {
	Type    string      `json:"type"`
	RoomID  string      `json:"room_id,omitempty"`
	Payload interface{} `json:"payload"`
}

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	isClosed bool
	mu       sync.Mutex
}

// Hub держит подписчиков, сгруппированных по комнатам (одна комната на турнир).
// Входящие сообщения от клиентов игнорируются: лента только на чтение.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// TournamentRoom возвращает идентификатор комнаты для турнира.
func TournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.mu.Lock()
					if !client.isClosed {
						close(client.Send)
						client.isClosed = true
					}
					client.mu.Unlock()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToTournament отправляет событие всем подписчикам комнаты турнира.
// Медленные клиенты пропускаются, чтобы не блокировать отправителя.
func (h *Hub) BroadcastToTournament(tournamentID int, eventType string, payload interface{}) {
	roomID := TournamentRoom(tournamentID)

	messageBytes, err := json.Marshal(Message{
		Type:    eventType,
		RoomID:  roomID,
		Payload: payload,
	})
	if err != nil {
		log.Printf("live: failed to marshal %s event for room %s: %v", eventType, roomID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Канал клиента переполнен; ReadPump закроет его позже.
		}
		client.mu.Unlock()
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("live: unexpected close in room %s: %v", c.Room, err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
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
