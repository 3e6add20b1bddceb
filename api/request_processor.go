package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
	"github.com/sqlc-dev/pqtype"
)

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("could not upgrade to websocket")
		return
	}

	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.NewString()))
	tokenQuery := r.URL.Query().Get(URLQueryTokenKeyword)

	switch tokenQuery {
	case "":
		match := s.MatchManager.CreateMatch(s.matchOptions()...)
		session := mc.NewSession(sessionId, conn, match.Uuid())
		log.Info().Str("session", sessionId).Str("match", match.Uuid()).Str("addr", conn.RemoteAddr().String()).Msg("new match created")

		s.recordGameCreated()

		token, err := s.issueMatchToken(match.Uuid())
		if err != nil {
			log.Error().Err(err).Msg("failed to sign match token")
			_ = session.Close()
			s.MatchManager.TerminateMatch(match.Uuid())
			return
		}

		resp := mc.NewMessage[mc.RespMatchToken](mc.CodeMatchToken)
		resp.AddPayload(mc.RespMatchToken{MatchUuid: match.Uuid(), Token: token})
		if err := session.WriteJSON(resp); err != nil {
			_ = session.Close()
			return
		}
		s.processSessionRequests(session)

	default:
		matchUuid, err := s.parseMatchToken(tokenQuery)
		if err == nil {
			err = s.MatchManager.WithMatch(matchUuid, func(*mb.Match) error { return nil })
		}
		if err != nil {
			// This either means an expired token or a match that was cleaned up
			msg := mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidToken)
			msg.AddError(err.Error(), "could not resume match")
			_ = conn.WriteJSON(msg)
			_ = conn.Close()
			return
		}

		session := mc.NewSession(sessionId, conn, matchUuid)
		log.Info().Str("session", sessionId).Str("match", matchUuid).Msg("match resumed")
		s.processSessionRequests(session)
	}
}

func (s *Server) matchOptions() []mb.MatchOption {
	opts := make([]mb.MatchOption, 0, len(s.matchOpts)+1)
	if s.randSeed != 0 {
		opts = append(opts, mb.WithRand(mb.NewRand(s.randSeed)))
	}
	return append(opts, s.matchOpts...)
}

func (s *Server) serverInet() pqtype.Inet {
	return pqtype.Inet{IPNet: s.ipnet, Valid: true}
}

func (s *Server) recordGameCreated() {
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	// for now not killing the game for it
	if err := s.DbManager.Analytics.IncrementGamesCreatedCount(ctx, s.serverInet()); err != nil {
		log.Error().Err(err).Msg("failed to record created game")
	}
}

func (s *Server) recordMatchConcluded(humanWon bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	if err := s.DbManager.Analytics.IncrementMatchConcludedCount(ctx, s.serverInet(), humanWon); err != nil {
		log.Error().Err(err).Msg("failed to record concluded match")
	}
}

// processSessionRequests reads frames until the connection drops. The
// match stays registered afterwards so the token holder can resume it.
func (s *Server) processSessionRequests(session *mc.Session) {
	defer func() {
		_ = session.Close()
		log.Info().Str("session", session.Id()).Dur("age", session.Age()).Msg("session closed")
	}()

	// A new connection always starts from the current state of the match
	var initial []interface{}
	if err := s.MatchManager.WithMatch(session.MatchUuid(), func(match *mb.Match) error {
		initial = []interface{}{NewSnapshotMessage(mc.CodeSnapshot, match)}
		return nil
	}); err != nil {
		return
	}
	if err := writeFrames(session, initial); err != nil {
		return
	}

sessionLoop:
	for {
		payload, err := session.ReadMessage()
		if err != nil {
			break sessionLoop
		}

		var signal mc.Signal
		if err := json.Unmarshal(payload, &signal); err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err := session.WriteJSON(msg); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		var (
			frames   []interface{}
			ended    bool
			humanWon bool
			gameNew  bool
		)
		req := NewRequest(payload)

		err = s.MatchManager.WithMatch(session.MatchUuid(), func(match *mb.Match) error {
			wasConcluded := match.Phase() == mb.MatchPhaseConcluded

			switch signal.Code {
			case mc.CodeBeginMatch, mc.CodeRematch:
				msg := req.HandleBeginMatch(match, signal.Code)
				gameNew = msg.Error == nil
				frames = []interface{}{msg}

			case mc.CodePlaceShip:
				frames = []interface{}{req.HandlePlaceShip(match)}

			case mc.CodeQuickFill:
				frames = []interface{}{req.HandleQuickFill(match)}

			case mc.CodeAttack:
				frames = req.HandleAttack(match)

			case mc.CodeConcede:
				frames = req.HandleConcede(match)

			case mc.CodeSnapshot:
				frames = []interface{}{NewSnapshotMessage(mc.CodeSnapshot, match)}

			default:
				msg := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
				msg.AddError("", "invalid code in the incoming payload")
				frames = []interface{}{msg}
			}

			if !wasConcluded && match.Phase() == mb.MatchPhaseConcluded {
				ended = true
				humanWon = !match.Victor().IsScripted()
			}
			return nil
		})
		if err != nil {
			// the match was cleaned up underneath this session
			msg := mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidToken)
			msg.AddError(err.Error(), "match no longer exists")
			_ = session.WriteJSON(msg)
			break sessionLoop
		}

		if gameNew && signal.Code == mc.CodeRematch {
			s.recordGameCreated()
		}
		if ended {
			log.Info().Str("match", session.MatchUuid()).Bool("human_won", humanWon).Msg("match concluded")
			s.recordMatchConcluded(humanWon)
		}

		if err := writeFrames(session, frames); err != nil {
			break sessionLoop
		}
	}
}

func writeFrames(session *mc.Session, frames []interface{}) error {
	for _, frame := range frames {
		if err := session.WriteJSON(frame); err != nil {
			return err
		}
	}
	return nil
}
