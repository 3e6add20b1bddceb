package battleship

type CellState string

const (
	CellStateEmpty CellState = "empty"
	CellStateShip  CellState = "ship"
	CellStateHit   CellState = "hit"
	CellStateMiss  CellState = "miss"
	CellStateSunk  CellState = "sunk"
)

type PlayerView struct {
	Uuid           string                        `json:"uuid"`
	Name           string                        `json:"name"`
	Kind           string                        `json:"kind"`
	ShipsPlaced    int                           `json:"ships_placed"`
	ShipsRemaining int                           `json:"ships_remaining"`
	Cells          [GridSize][GridSize]CellState `json:"cells"`
}

// Snapshot is the read only projection handed to presentation layers.
// Human is always drawn as its owner sees it. Scripted is fogged: a
// ship cell shows up only once it has been attacked.
type Snapshot struct {
	MatchUuid  string     `json:"match_uuid"`
	Phase      string     `json:"phase"`
	ActiveKind string     `json:"active_kind"`
	Victor     string     `json:"victor,omitempty"`
	Human      PlayerView `json:"human"`
	Scripted   PlayerView `json:"scripted"`
	Stats      MatchStats `json:"stats"`
}

func (m *Match) Snapshot() Snapshot {
	snapshot := Snapshot{
		MatchUuid:  m.uuid,
		Phase:      m.phase.String(),
		ActiveKind: m.active.Kind.String(),
		Human:      newPlayerView(m.human, true),
		Scripted:   newPlayerView(m.scripted, false),
		Stats:      m.Stats(),
	}
	if m.victor != nil {
		snapshot.Victor = m.victor.Name
	}
	return snapshot
}

func newPlayerView(p *Player, revealShips bool) PlayerView {
	view := PlayerView{
		Uuid:           p.Uuid,
		Name:           p.Name,
		Kind:           p.Kind.String(),
		ShipsPlaced:    len(p.Board.Ships()),
		ShipsRemaining: p.Board.ShipsRemaining(),
	}
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			view.Cells[row][col] = cellState(p.Board, row, col, revealShips)
		}
	}
	return view
}

func cellState(b *Board, row, col int, revealShips bool) CellState {
	ship := b.ShipAt(row, col)
	attacked := b.IsAttacked(row, col)

	switch {
	case ship == nil && attacked:
		return CellStateMiss
	case ship == nil:
		return CellStateEmpty
	case attacked && ship.IsSunk():
		return CellStateSunk
	case attacked:
		return CellStateHit
	case revealShips:
		return CellStateShip
	default:
		return CellStateEmpty
	}
}
