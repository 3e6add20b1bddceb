package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	GridSize        = 10
	ValidLowerBound = 0
	ValidUpperBound = GridSize - 1
)

type AttackOutcome uint8

// AttackOutcomeNone is the zero value, returned alongside an error when
// no attack took place.
const (
	AttackOutcomeNone AttackOutcome = iota
	AttackOutcomeAlreadyAttacked
	AttackOutcomeMiss
	AttackOutcomeHit
	AttackOutcomeSunk
)

func (ao AttackOutcome) String() string {
	switch ao {
	case AttackOutcomeMiss:
		return "miss"
	case AttackOutcomeHit:
		return "hit"
	case AttackOutcomeSunk:
		return "sunk"
	case AttackOutcomeAlreadyAttacked:
		return "already attacked"
	default:
		return "none"
	}
}

// Landed reports whether the attack struck a ship.
func (ao AttackOutcome) Landed() bool {
	return ao == AttackOutcomeHit || ao == AttackOutcomeSunk
}

type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewCoordinates(row, col int) Coordinates {
	return Coordinates{Row: row, Col: col}
}

func (c Coordinates) InBounds() bool {
	return c.Row >= ValidLowerBound && c.Row <= ValidUpperBound &&
		c.Col >= ValidLowerBound && c.Col <= ValidUpperBound
}

// Board is one player's 10x10 defence grid together with the
// history of attacks it has received.
type Board struct {
	grid     [GridSize][GridSize]*Ship
	ships    []*Ship
	attacked map[Coordinates]struct{}
	misses   []Coordinates
}

func NewBoard() *Board {
	return &Board{
		ships:    make([]*Ship, 0, FleetSize),
		attacked: make(map[Coordinates]struct{}, GridSize*GridSize),
		misses:   make([]Coordinates, 0, GridSize),
	}
}

// CanPlace reports whether every cell the ship would cover is on the
// grid and empty.
func (b *Board) CanPlace(ship *Ship, row, col int, horizontal bool) bool {
	if ship == nil || ship.length < 1 {
		return false
	}
	for _, c := range footprint(ship.length, row, col, horizontal) {
		if !c.InBounds() {
			return false
		}
		if b.grid[c.Row][c.Col] != nil {
			return false
		}
	}
	return true
}

// Place writes the ship onto the grid. Nothing is written when
// CanPlace is false.
func (b *Board) Place(ship *Ship, row, col int, horizontal bool) bool {
	if !b.CanPlace(ship, row, col, horizontal) {
		return false
	}
	for _, c := range footprint(ship.length, row, col, horizontal) {
		b.grid[c.Row][c.Col] = ship
	}
	b.ships = append(b.ships, ship)
	return true
}

// Attack is the only mutator of the attack history.
func (b *Board) Attack(row, col int) (AttackOutcome, error) {
	target := NewCoordinates(row, col)
	if !target.InBounds() {
		return AttackOutcomeNone, cerr.ErrXorYOutOfGridBound(row, col)
	}
	if _, prs := b.attacked[target]; prs {
		return AttackOutcomeAlreadyAttacked, nil
	}
	b.attacked[target] = struct{}{}

	ship := b.grid[row][col]
	if ship == nil {
		b.misses = append(b.misses, target)
		return AttackOutcomeMiss, nil
	}

	ship.GotHit()
	if ship.IsSunk() {
		return AttackOutcomeSunk, nil
	}
	return AttackOutcomeHit, nil
}

// AllSunk is false for an empty fleet so that an unplaced board never
// counts as defeated.
func (b *Board) AllSunk() bool {
	if len(b.ships) == 0 {
		return false
	}
	for _, ship := range b.ships {
		if !ship.IsSunk() {
			return false
		}
	}
	return true
}

func (b *Board) IsAttacked(row, col int) bool {
	_, prs := b.attacked[NewCoordinates(row, col)]
	return prs
}

func (b *Board) AttackedCount() int {
	return len(b.attacked)
}

// ShipAt returns nil for empty or out of bound cells.
func (b *Board) ShipAt(row, col int) *Ship {
	if !NewCoordinates(row, col).InBounds() {
		return nil
	}
	return b.grid[row][col]
}

// Ships returns a copy of the fleet in placement order.
func (b *Board) Ships() []*Ship {
	ships := make([]*Ship, len(b.ships))
	copy(ships, b.ships)
	return ships
}

// Misses returns a copy of the miss log.
func (b *Board) Misses() []Coordinates {
	misses := make([]Coordinates, len(b.misses))
	copy(misses, b.misses)
	return misses
}

func (b *Board) ShipsRemaining() int {
	remaining := 0
	for _, ship := range b.ships {
		if !ship.IsSunk() {
			remaining++
		}
	}
	return remaining
}

func footprint(length, row, col int, horizontal bool) []Coordinates {
	cells := make([]Coordinates, length)
	for i := 0; i < length; i++ {
		if horizontal {
			cells[i] = NewCoordinates(row, col+i)
		} else {
			cells[i] = NewCoordinates(row+i, col)
		}
	}
	return cells
}
