package connection

import (
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Session is one websocket client bound to the match it plays.
type Session struct {
	id        string
	conn      *websocket.Conn
	matchUuid string
	createdAt time.Time
}

func NewSession(id string, conn *websocket.Conn, matchUuid string) *Session {
	return &Session{
		id:        id,
		conn:      conn,
		matchUuid: matchUuid,
		createdAt: time.Now(),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

func (s *Session) MatchUuid() string {
	return s.matchUuid
}

func (s *Session) remoteAddr() string {
	return s.conn.RemoteAddr().String()
}

// gorilla/websocket keeps the first read or write error and returns it
// on every later call, so a failed connection is never retried.
func (s *Session) onConnErr(err error) {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Warn().Err(err).Str("session", s.id).Str("addr", s.remoteAddr()).Msg("timeout error")

	case websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure):
		log.Info().Err(err).Str("session", s.id).Msg("connection closed")

	default:
		// protocol level failures or a client that is not ours (binary
		// frames, bad utf-8)
		log.Error().Err(err).Str("session", s.id).Str("addr", s.remoteAddr()).Msg("unexpected connection error")
	}
}

func (s *Session) WriteJSON(msg interface{}) error {
	if err := s.conn.WriteJSON(msg); err != nil {
		s.onConnErr(err)
		return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop due to: " + err.Error())
	}
	return nil
}

// ReadMessage returns the next text frame payload.
func (s *Session) ReadMessage() ([]byte, error) {
	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		s.onConnErr(err)
		return nil, NewConnErr(ConnLoopBreak).AddDesc(err.Error())
	}
	return payload, nil
}

func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) Age() time.Duration {
	return time.Since(s.createdAt)
}
