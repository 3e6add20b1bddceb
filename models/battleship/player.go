package battleship

import (
	"github.com/google/uuid"
)

type PlayerKind uint8

const (
	PlayerKindHuman PlayerKind = iota
	PlayerKindScripted
)

func (pk PlayerKind) String() string {
	if pk == PlayerKindScripted {
		return "scripted"
	}
	return "human"
}

const (
	DefaultHumanName    = "You"
	DefaultScriptedName = "Battleship Bot"
)

// Player owns exactly one board for its whole lifetime.
type Player struct {
	Uuid  string
	Name  string
	Kind  PlayerKind
	Board *Board
}

func NewPlayer(name string, kind PlayerKind) *Player {
	return &Player{
		Uuid:  uuid.NewString()[:10],
		Name:  name,
		Kind:  kind,
		Board: NewBoard(),
	}
}

func (p *Player) IsScripted() bool {
	return p.Kind == PlayerKindScripted
}
