package presence

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/arijitchhatui/swiftsend-service/internal/config"
	"github.com/arijitchhatui/swiftsend-service/pkg/auth"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

// WSHandler upgrades presence connections. The connection carries no
// payload of its own: its lifetime is the presence signal. Connect
// marks the user online, pongs refresh the TTL, and any exit marks
// them offline.
type WSHandler struct {
	tracker  Tracker
	verifier *auth.Verifier
	cfg      config.PresenceConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new presence WebSocket handler.
func NewWSHandler(tracker Tracker, verifier *auth.Verifier, cfg config.PresenceConfig) *WSHandler {
	return &WSHandler{
		tracker:  tracker,
		verifier: verifier,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

// Handle handles GET /ws/presence. The token arrives as a query
// parameter because browsers cannot set headers on websocket upgrades.
func (h *WSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	token := auth.TokenFromRequest(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := h.verifier.Verify(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	userID := claims.UserID
	if err := h.tracker.SetOnline(ctx, userID); err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to mark user online")
		conn.Close()
		return
	}

	l.Info().Str(pkglog.FieldUserID, userID).Msg("presence connection established")

	go h.pingLoop(conn)
	go h.readLoop(conn, userID)
}

func (h *WSHandler) readLoop(conn *websocket.Conn, userID string) {
	defer func() {
		conn.Close()
		// The request context is gone once the handler returns.
		ctx, cancel := contextWithTimeout(h.cfg.WriteWait)
		defer cancel()
		if err := h.tracker.SetOffline(ctx, userID); err != nil {
			l := pkglog.L()
			l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to mark user offline")
		}
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		ctx, cancel := contextWithTimeout(h.cfg.WriteWait)
		defer cancel()
		return h.tracker.Refresh(ctx, userID)
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for range ticker.C {
		conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
