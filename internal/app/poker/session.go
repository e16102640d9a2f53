/*
Package poker contains the room synchronization core for the planning poker
server.

This file is the connection lifecycle manager. A Session covers one
WebSocket connection from admission through the inbound read loop to
retirement, plus the write pump that drains the connection's outbox to the
wire. Producers enqueue into the outbox and never touch the socket, so a
slow client can only delay its own delivery.
*/
package poker

import (
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"scrumpoker/internal/pkg/logx"
)

const (
	// timeout for a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size of an inbound frame.
	maxMessageSize = 8192
)

// Session is one participant's connection to a room.
type Session struct {
	registry    *Registry
	conn        *websocket.Conn
	roomToken   RoomToken
	userToken   UserToken
	voteOptions []float64

	// publicID is assigned during admission and stable across reconnects
	// with the same user token.
	publicID PublicUserID

	outbox *Outbox
	logger zerolog.Logger
}

// NewSession prepares a session for an accepted connection. Nothing is
// registered until Run (or admit) executes.
func NewSession(registry *Registry, conn *websocket.Conn, roomToken RoomToken, userToken UserToken, voteOptions []float64) *Session {
	return &Session{
		registry:    registry,
		conn:        conn,
		roomToken:   roomToken,
		userToken:   userToken,
		voteOptions: voteOptions,
		outbox:      NewOutbox(),
		logger: logx.Logger().With().
			Str("room_token", string(roomToken)).
			Str("user_token", string(userToken)).
			Logger(),
	}
}

// Run drives the whole lifecycle: admission, the write pump, the blocking
// read loop, and retirement once the stream ends.
func (s *Session) Run() {
	s.admit()

	go s.writePump()
	s.readLoop()

	s.retire()
}

// admit registers the user in the room under the registry write lock:
// get-or-create the room and the user record, attach this connection's
// outbox, then perform the initial sync (config to this connection, roster
// and stories to the whole room).
func (s *Session) admit() {
	s.registry.UpdateOrCreate(s.roomToken, func(r *Room) {
		u := r.admit(s.userToken)
		u.sender = s.outbox
		s.publicID = u.PublicID

		r.sendConfig(u, s.voteOptions)
		r.broadcastRoster()
		r.broadcastStories()
	})

	s.logger.Info().Str("public_id", string(s.publicID)).Msg("Participant connected")
}

// readLoop consumes inbound frames in arrival order until the stream
// terminates. Only valid UTF-8 text frames reach the dispatcher; everything
// else is dropped silently.
func (s *Session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Connection read ended")
			}
			return
		}

		if messageType != websocket.TextMessage || !utf8.Valid(data) {
			continue
		}

		s.handleFrame(data)
	}
}

// retire marks the user inactive, detaches the outbox, and broadcasts the
// updated roster. The user record stays in the room, so reconnecting with
// the same token resumes the same public identity and vote history.
func (s *Session) retire() {
	s.registry.Update(s.roomToken, func(r *Room) {
		u, ok := r.Users[s.userToken]
		if !ok {
			return
		}

		// A reconnect may already have replaced the outbox; in that case
		// this connection is stale and must not deactivate the user.
		if u.sender != s.outbox {
			s.logger.Info().Msg("Stale connection retired without deactivating user")
			return
		}

		u.Active = false
		u.sender = nil
		r.broadcastRoster()
	})

	s.outbox.Close()
	s.logger.Info().Str("public_id", string(s.publicID)).Msg("Participant disconnected")
}

// writePump drains the outbox to the wire and keeps the heartbeat going.
// It owns all writes to the connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Connection close in write pump")
		}
	}()

	for {
		select {
		case frame, ok := <-s.outbox.Deliveries():
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				// Outbox closed at retirement; say goodbye properly.
				if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					s.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Warn().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
