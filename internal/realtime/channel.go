package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// ackMessage is the reply to every inbound client frame. Inbound frames
// carry no state change today; acking keeps the channel visibly alive to
// intermediaries and reserves the frame path for future subscription
// updates.
var ackMessage = []byte(`{"type":"ack","payload":{}}`)

// ChannelHandler owns the push-channel lifecycle: handshake (the single
// authentication point for the channel's lifetime), inbound frames, and
// teardown.
type ChannelHandler struct {
	store    ConnectionStore
	hub      *HubGateway
	verifier *auth.Verifier
	ttl      time.Duration
	clock    clockwork.Clock
	logger   zerolog.Logger
	upgrader gorillawebsocket.Upgrader
}

// NewChannelHandler creates a handler bound to the given store and hub.
func NewChannelHandler(
	store ConnectionStore,
	hub *HubGateway,
	verifier *auth.Verifier,
	ttl time.Duration,
	clock clockwork.Clock,
	logger zerolog.Logger,
) *ChannelHandler {
	return &ChannelHandler{
		store:    store,
		hub:      hub,
		verifier: verifier,
		ttl:      ttl,
		clock:    clock,
		logger:   logger.With().Str("component", "channel").Logger(),
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins; tighten in production.
			},
		},
	}
}

// RegisterRoutes registers the push-channel endpoint. The route does its
// own authentication because browsers cannot set headers on the WebSocket
// handshake; the credential may arrive in a query parameter instead.
func (h *ChannelHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/realtime/ws", h.HandleConnect)
}

// HandleConnect runs the handshake: validate the bearer credential, derive
// the routing scope from the validated identity, persist the connection
// record, then upgrade and start the read loop. An invalid credential
// rejects the handshake before the channel opens; a store failure fails the
// handshake hard, because an unregistered channel would never receive a
// broadcast.
func (h *ChannelHandler) HandleConnect(c echo.Context) error {
	token := bearerToken(c)
	claims, err := h.verifier.Verify(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credential")
	}

	connectionID := uuid.NewString()
	now := h.clock.Now()
	rec := ConnectionRecord{
		ConnectionID:  connectionID,
		Scope:         scopeForClaims(claims),
		EstablishedAt: now,
		ExpiresAt:     now.Add(h.ttl),
	}

	// Persist before upgrading: after a successful handshake the
	// connection must be eligible for the very next publish.
	if err := h.store.Put(c.Request().Context(), rec); err != nil {
		h.logger.Error().Err(err).Str("connection_id", connectionID).Msg("handshake failed to persist connection record")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "connection registry unavailable")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		if delErr := h.store.Delete(c.Request().Context(), connectionID); delErr != nil {
			h.logger.Error().Err(delErr).Str("connection_id", connectionID).Msg("failed to delete record after upgrade failure")
		}
		return err
	}

	h.hub.Bind(connectionID, &gorillaConnAdapter{ws})
	h.logger.Info().
		Str("connection_id", connectionID).
		Str("user_id", claims.Subject).
		Str("scope", string(rec.Scope)).
		Msg("push channel opened")

	go h.readLoop(connectionID, rec, ws)

	return nil
}

// scopeForClaims derives routing attributes from a validated identity:
// doctors listen to their own queue, everyone else is a clinic-wide
// listener.
func scopeForClaims(claims *auth.Claims) Scope {
	if claims.Role == auth.RoleDoctor {
		return ScopeDoctor(claims.DoctorID)
	}
	return ScopeClinic
}

// bearerToken extracts the credential from the Authorization header or,
// failing that, the token query parameter.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return c.QueryParam("token")
}

// readLoop services inbound frames until the peer goes away, then tears the
// channel down. Every inbound frame is acked and renews the record's TTL
// lease, so a client that keeps pinging never expires out of the registry.
func (h *ChannelHandler) readLoop(connectionID string, rec ConnectionRecord, ws *gorillawebsocket.Conn) {
	defer h.teardown(connectionID, ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}

		ctx := context.Background()
		if err := h.hub.Deliver(ctx, connectionID, ackMessage); err != nil {
			return
		}

		rec.ExpiresAt = h.clock.Now().Add(h.ttl)
		if err := h.store.Put(ctx, rec); err != nil {
			h.logger.Error().Err(err).Str("connection_id", connectionID).Msg("failed to renew connection lease")
		}
	}
}

// teardown handles disconnect: release the socket and delete the record.
// Store errors are logged but never block teardown; the TTL backstop
// reclaims the orphaned record.
func (h *ChannelHandler) teardown(connectionID string, ws *gorillawebsocket.Conn) {
	h.hub.Release(connectionID)
	if err := ws.Close(); err != nil {
		h.logger.Debug().Err(err).Str("connection_id", connectionID).Msg("error closing connection")
	}

	if err := h.store.Delete(context.Background(), connectionID); err != nil {
		h.logger.Error().Err(err).Str("connection_id", connectionID).Msg("failed to delete connection record on disconnect")
	}

	h.logger.Info().Str("connection_id", connectionID).Msg("push channel closed")
}
