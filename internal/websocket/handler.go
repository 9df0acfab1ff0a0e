package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"giftboard/internal/auth"
	"giftboard/internal/config"
	"giftboard/pkg/logger"
)

type Handler struct {
	hub      *Hub
	tokens   *auth.JWTManager
	cfg      config.WSConfig
	log      logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, tokens *auth.JWTManager, cfg config.WSConfig, allowedOrigins []string, log logger.Logger) *Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return &Handler{
		hub:    hub,
		tokens: tokens,
		cfg:    cfg,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// ServeHTTP upgrades the connection. Browsers cannot set an Authorization
// header on WebSocket requests, so the token travels as a query parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.Validate(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws: upgrade failed", "err", err)
		return
	}

	client := newClient(h.hub, conn, claims.UserID, h.cfg)
	h.hub.Register(client)
	h.log.Debug("ws: client connected", "user_id", claims.UserID)

	go client.writePump()
	go client.readPump()
}
