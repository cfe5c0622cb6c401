package handlers

import (
	"net/http"
	"net/url"

	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// RealtimeHandler upgrades signed-in clients to a push connection
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeHandler accepts websocket handshakes from allowedOrigins ("*" allows any)
func NewRealtimeHandler(hub *realtime.Hub, allowedOrigins []string) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *RealtimeHandler) RegisterRealtimeRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect streams global messages and the caller's own events until the
// client disconnects.
func (h *RealtimeHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the handshake error.
		return nil
	}

	metrics.WebsocketConnections.Inc()
	defer metrics.WebsocketConnections.Dec()

	sub := h.hub.Subscribe(realtime.TopicGlobal, realtime.UserTopic(middleware.CurrentUserID(c)))
	realtime.Serve(conn, h.hub, sub)
	return nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
