package handler

import (
	"net/http"

	"github.com/vdsasi/NoteSharingApp/internal/config"
	"github.com/vdsasi/NoteSharingApp/internal/service"
	"github.com/vdsasi/NoteSharingApp/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	manager     *websocket.Manager
	authService *service.AuthService
	cookieName  string
	upgrader    ws.Upgrader
	logger      *zap.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, authService *service.AuthService, cfg config.Config, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager:     manager,
		authService: authService,
		cookieName:  cfg.Session.CookieName,
		upgrader: ws.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleConnection authenticates the session (query token or cookie),
// upgrades and registers the connection with the event hub.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("token")
	if sessionID == "" {
		if cookie, err := r.Cookie(h.cookieName); err == nil {
			sessionID = cookie.Value
		}
	}

	if sessionID == "" {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.ResolveCurrentUser(r.Context(), sessionID)
	if err != nil {
		h.logger.Warn("websocket auth failed", zap.Error(err))
		http.Error(w, "invalid session", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(uuid.New().String(), user.ID, conn, h.manager)
	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
