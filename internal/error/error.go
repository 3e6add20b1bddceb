package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrAttackFailed    = "attack operation failed"
	ConstErrPlacementFailed = "vessel placement failed"
)

var (
	ErrWrongPhase               = errors.New("operation not allowed in current phase")
	ErrNotHumanTurn             = errors.New("it is not the human player's turn")
	ErrNotScriptedTurn          = errors.New("it is not the scripted player's turn")
	ErrOutOfBounds              = errors.New("coordinates out of grid bound")
	ErrInvalidVesselClass       = errors.New("invalid vessel class index")
	ErrVesselClassAlreadyPlaced = errors.New("vessel class already placed")
	ErrPlacementRejected        = errors.New("vessel cannot be placed there")
	ErrPlacementExhausted       = errors.New("random placement attempts exhausted")
	ErrMatchNotExist            = errors.New("match does not exist")
	ErrInvalidToken             = errors.New("invalid match token")
)

func ErrMatchNotExists(matchUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrMatchNotExist, matchUuid)
}

func ErrPhaseMismatch(want, got string) error {
	return fmt.Errorf("%w\twant: %s\tgot: %s", ErrWrongPhase, want, got)
}

func ErrXorYOutOfGridBound(row, col int) error {
	return fmt.Errorf("%w\trow: %d\tcol: %d", ErrOutOfBounds, row, col)
}

func ErrVesselClassIndex(index int) error {
	return fmt.Errorf("%w: %d", ErrInvalidVesselClass, index)
}

func ErrVesselAlreadyPlaced(name string) error {
	return fmt.Errorf("%w: %s", ErrVesselClassAlreadyPlaced, name)
}

func ErrCannotPlaceVessel(name string, row, col int, horizontal bool) error {
	return fmt.Errorf("%w\tvessel: %s\trow: %d\tcol: %d\thorizontal: %t", ErrPlacementRejected, name, row, col, horizontal)
}

func ErrPlacementAttemptsExhausted(name string, attempts int) error {
	return fmt.Errorf("%w after %d attempts for %s", ErrPlacementExhausted, attempts, name)
}

func ErrNilPayload() error {
	return fmt.Errorf("the payload is nil or not valid json")
}

func ErrTokenInvalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidToken, reason)
}
