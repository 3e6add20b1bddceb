package connection

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

type RespMatchToken struct {
	MatchUuid string `json:"match_uuid"`
	Token     string `json:"token"`
}

type RespPlaceShip struct {
	ClassIndex int    `json:"class_index"`
	ShipName   string `json:"ship_name"`
	AllPlaced  bool   `json:"all_placed"`
	Phase      string `json:"phase"`
	Message    string `json:"message"`
}

func NewRespPlaceShip(result mb.PlacementResult) RespPlaceShip {
	return RespPlaceShip{
		ClassIndex: result.ClassIndex,
		ShipName:   result.ShipName,
		AllPlaced:  result.AllPlaced,
		Phase:      result.Phase.String(),
		Message:    result.Message,
	}
}

type RespQuickFill struct {
	Placed  []string `json:"placed"`
	Phase   string   `json:"phase"`
	Message string   `json:"message"`
}

func NewRespQuickFill(result mb.QuickFillResult) RespQuickFill {
	return RespQuickFill{
		Placed:  result.Placed,
		Phase:   result.Phase.String(),
		Message: result.Message,
	}
}

type RespAttack struct {
	Row           int    `json:"row"`
	Col           int    `json:"col"`
	Attacker      string `json:"attacker"`
	Outcome       string `json:"outcome"`
	TurnNumber    int    `json:"turn_number"`
	IsTurn        bool   `json:"is_turn"`
	Phase         string `json:"phase"`
	Victor        string `json:"victor,omitempty"`
	Message       string `json:"message"`
	DefenderShips int    `json:"defender_ships_remaining"`
}

// NewRespAttack describes an attack from the human client's point of
// view: IsTurn is true when the human moves next.
func NewRespAttack(result mb.AttackResult, humanToMove bool, defenderShips int) RespAttack {
	return RespAttack{
		Row:           result.Coordinates.Row,
		Col:           result.Coordinates.Col,
		Attacker:      result.Attacker,
		Outcome:       result.Outcome.String(),
		TurnNumber:    result.TurnNumber,
		IsTurn:        humanToMove,
		Phase:         result.Phase.String(),
		Victor:        result.Victor,
		Message:       result.Message,
		DefenderShips: defenderShips,
	}
}

type RespEndMatch struct {
	Victor     string        `json:"victor"`
	VictorKind string        `json:"victor_kind"`
	Stats      mb.MatchStats `json:"stats"`
}

type RespServerAnalytics struct {
	GamesCreated int64 `json:"games_created"`
	HumanWins    int64 `json:"human_wins"`
	ScriptedWins int64 `json:"scripted_wins"`
}

// Analytics is left out when the server runs without a database.
type RespHealth struct {
	Ok        bool                 `json:"ok"`
	Matches   int                  `json:"matches"`
	Analytics *RespServerAnalytics `json:"analytics,omitempty"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
