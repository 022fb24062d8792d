package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"agora/contexts/governance/election-engine/application/commands"
	"agora/contexts/governance/election-engine/application/queries"
	wstransport "agora/contexts/governance/election-engine/transport/ws"
	"agora/internal/shared/events"
)

// Subscriber taps the broadcast hub; the cancel func detaches the session.
type Subscriber interface {
	Subscribe(buffer int) (<-chan events.Envelope, func())
}

// Handler upgrades HTTP requests into election sessions. Each session
// receives every broadcast envelope and answers the closed inbound command
// set; a client that reconnects pulls full state with the fetch commands
// rather than relying on missed broadcasts.
type Handler struct {
	Engine   *commands.Engine
	Queries  queries.Queries
	Hub      Subscriber
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(engine *commands.Engine, q queries.Queries, hub Subscriber, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Engine:  engine,
		Queries: q,
		Hub:     hub,
		Logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed",
			"event", "election_ws_upgrade_failed",
			"module", "governance/election-engine",
			"layer", "adapters/ws",
			"error", err.Error(),
		)
		return
	}
	session := &session{handler: h, conn: conn}
	session.run(r.Context())
}

type session struct {
	handler *Handler
	conn    *websocket.Conn
	actor   string
	writeMu sync.Mutex
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()

	if s.handler.Hub != nil {
		broadcasts, cancel := s.handler.Hub.Subscribe(32)
		defer cancel()
		go s.forward(ctx, broadcasts)
	}

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame wstransport.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.write(errorFrame(wstransport.RespError, "malformed frame"))
			continue
		}
		for _, reply := range s.dispatch(ctx, frame) {
			s.write(reply)
		}
	}
}

// forward pumps hub envelopes to the socket as frames. A write error ends the
// pump; the read loop notices the dead connection on its own.
func (s *session) forward(ctx context.Context, broadcasts <-chan events.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case envelope, ok := <-broadcasts:
			if !ok {
				return
			}
			if !s.write(payloadFrame(envelope.EventType, envelope.Payload)) {
				return
			}
		}
	}
}

func (s *session) write(frame wstransport.Frame) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(frame) == nil
}

func payloadFrame(event string, payload any) wstransport.Frame {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorFrame(wstransport.RespError, "unencodable payload")
	}
	return wstransport.Frame{Event: event, Data: data}
}

func errorFrame(event string, message string) wstransport.Frame {
	data, _ := json.Marshal(wstransport.ErrorResponse{Message: message})
	return wstransport.Frame{Event: event, Data: data}
}
