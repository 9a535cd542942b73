package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/minhkhoa23/npcnpm-final-sub001/live"
	"github.com/minhkhoa23/npcnpm-final-sub001/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub               *live.Hub
	tournamentService services.TournamentService
}

func NewWebSocketHandler(hub *live.Hub, tournamentService services.TournamentService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: tournamentService,
	}
}

// ServeWs godoc
// @Summary Подписка на живую ленту турнира (WebSocket)
// @Tags live
// @Description Соединение апгрейдится до WebSocket; сервер шлёт события COMPETITOR_REGISTERED, COMPETITOR_WITHDRAWN, MATCH_SCORE_UPDATED, NEWS_PUBLISHED.
// @Param tournamentID path int true "Tournament ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 404 {object} map[string]interface{} "Турнир не найден"
// @Router /ws/tournaments/{tournamentID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	// Комнату открываем только для существующего турнира.
	if _, err := h.tournamentService.GetByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		log.Printf("failed to upgrade connection for tournament %d: %v", tournamentID, err)
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.TournamentRoom(tournamentID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
