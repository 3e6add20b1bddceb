package battleship

// Ship is a single vessel. Its length is fixed at creation and
// hits never exceed it.
type Ship struct {
	Name   string
	length int
	hits   int
	sunk   bool
}

func NewShip(name string, length int) *Ship {
	return &Ship{
		Name:   name,
		length: length,
	}
}

// GotHit registers one hit. Hitting a sunken ship is a no-op.
func (sh *Ship) GotHit() {
	if sh.sunk {
		return
	}
	sh.hits++
	if sh.hits == sh.length {
		sh.sunk = true
	}
}

func (sh *Ship) IsSunk() bool {
	return sh.sunk
}

func (sh *Ship) Length() int {
	return sh.length
}

func (sh *Ship) Hits() int {
	return sh.hits
}
