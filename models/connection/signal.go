package connection

const (
	CodeMatchToken uint8 = iota
	CodeReceivedInvalidToken
	CodeBeginMatch
	CodePlaceShip
	CodeQuickFill
	CodeAttack
	CodeScriptedTurn
	CodeConcede
	CodeSnapshot
	CodeEndMatch
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent

	// Start over after a concluded match, same as
	// CodeBeginMatch but only valid once the match ended
	CodeRematch
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
