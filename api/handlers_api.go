package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

// Every incoming valid request will have this structure.
// Handlers run while the caller holds the match, so they only
// build the frames to send and never write to the connection.
type Request struct {
	payload []byte
}

func NewRequest(payload ...[]byte) Request {
	var req Request
	if len(payload) != 0 {
		req.payload = payload[0]
	}
	return req
}

func decodePayload[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg.Payload, errors.Join(cerr.ErrNilPayload(), err)
	}
	return msg.Payload, nil
}

func NewSnapshotMessage(code uint8, match *mb.Match) mc.Message[mb.Snapshot] {
	msg := mc.NewMessage[mb.Snapshot](code)
	msg.AddPayload(match.Snapshot())
	return msg
}

func NewEndMatchMessage(match *mb.Match) mc.Message[mc.RespEndMatch] {
	victor := match.Victor()
	msg := mc.NewMessage[mc.RespEndMatch](mc.CodeEndMatch)
	msg.AddPayload(mc.RespEndMatch{
		Victor:     victor.Name,
		VictorKind: victor.Kind.String(),
		Stats:      match.Stats(),
	})
	return msg
}

// HandleBeginMatch restarts the match. A rematch is only valid once
// the current match has concluded.
func (r Request) HandleBeginMatch(match *mb.Match, code uint8) mc.Message[mb.Snapshot] {
	if code == mc.CodeRematch && match.Phase() != mb.MatchPhaseConcluded {
		msg := mc.NewMessage[mb.Snapshot](code)
		err := cerr.ErrPhaseMismatch(mb.MatchPhaseConcluded.String(), match.Phase().String())
		msg.AddError(err.Error(), "rematch is only possible after the match ends")
		return msg
	}

	match.Begin()
	return NewSnapshotMessage(code, match)
}

func (r Request) HandlePlaceShip(match *mb.Match) mc.Message[mc.RespPlaceShip] {
	msg := mc.NewMessage[mc.RespPlaceShip](mc.CodePlaceShip)

	req, err := decodePayload[mc.ReqPlaceShip](r.payload)
	if err != nil {
		msg.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return msg
	}

	result, err := match.PlaceOwnShip(req.ClassIndex, req.Row, req.Col, req.Horizontal)
	if err != nil {
		msg.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return msg
	}

	msg.AddPayload(mc.NewRespPlaceShip(result))
	return msg
}

func (r Request) HandleQuickFill(match *mb.Match) mc.Message[mc.RespQuickFill] {
	msg := mc.NewMessage[mc.RespQuickFill](mc.CodeQuickFill)

	result, err := match.QuickFill()
	if err != nil {
		msg.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return msg
	}

	msg.AddPayload(mc.NewRespQuickFill(result))
	return msg
}

// HandleAttack fires the human shot and, when the turn passes to the
// scripted player, plays its reply right away. The frames come back in
// the order they should be sent.
func (r Request) HandleAttack(match *mb.Match) []interface{} {
	msg := mc.NewMessage[mc.RespAttack](mc.CodeAttack)

	req, err := decodePayload[mc.ReqAttack](r.payload)
	if err != nil {
		msg.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return []interface{}{msg}
	}

	result, err := match.Attack(req.Row, req.Col)
	if err != nil {
		msg.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return []interface{}{msg}
	}

	msg.AddPayload(mc.NewRespAttack(result, !match.Active().IsScripted(), match.Scripted().Board.ShipsRemaining()))
	frames := []interface{}{msg}

	if match.Phase() == mb.MatchPhaseActive && match.Active().IsScripted() {
		frames = append(frames, r.HandleScriptedTurn(match))
	}
	if match.Phase() == mb.MatchPhaseConcluded {
		frames = append(frames, NewEndMatchMessage(match))
	}
	return frames
}

func (r Request) HandleScriptedTurn(match *mb.Match) mc.Message[mc.RespAttack] {
	msg := mc.NewMessage[mc.RespAttack](mc.CodeScriptedTurn)

	result, err := match.TakeScriptedTurn()
	if err != nil {
		msg.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return msg
	}

	msg.AddPayload(mc.NewRespAttack(result, !match.Active().IsScripted(), match.Human().Board.ShipsRemaining()))
	return msg
}

func (r Request) HandleConcede(match *mb.Match) []interface{} {
	if err := match.Concede(); err != nil {
		msg := mc.NewMessage[mc.RespEndMatch](mc.CodeConcede)
		msg.AddError(err.Error(), "cannot concede right now")
		return []interface{}{msg}
	}
	return []interface{}{NewEndMatchMessage(match)}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := mc.RespHealth{Ok: true, Matches: s.MatchManager.Count()}

	if s.DbManager.Analytics.Enabled() {
		ctx, cancel := context.WithTimeout(r.Context(), sqlc.QuerierCtxTimeout)
		defer cancel()

		analytics, err := s.DbManager.Analytics.GetServerAnalytics(ctx, s.serverInet())
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// nothing recorded for this server yet
			resp.Analytics = &mc.RespServerAnalytics{}
		case err != nil:
			log.Error().Err(err).Msg("failed to fetch server analytics")
		default:
			resp.Analytics = &mc.RespServerAnalytics{
				GamesCreated: analytics.GamesCreated,
				HumanWins:    analytics.HumanWins,
				ScriptedWins: analytics.ScriptedWins,
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	matchUuid := chi.URLParam(r, URLParamMatchUuid)
	if tokenMatchUuid, _ := r.Context().Value(matchUuidCtxKey).(string); tokenMatchUuid != matchUuid {
		writeJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	var snapshot mb.Snapshot
	err := s.MatchManager.WithMatch(matchUuid, func(match *mb.Match) error {
		snapshot = match.Snapshot()
		return nil
	})
	if errors.Is(err, cerr.ErrMatchNotExist) {
		writeJSONError(w, http.StatusNotFound, "match_not_found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal")
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(snapshot)
}
