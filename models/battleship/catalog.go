package battleship

// ShipClass is a template the match builds ships from.
type ShipClass struct {
	Name   string
	Length int
}

// ShipClasses is the fixed fleet every player places, in canonical order.
var ShipClasses = [...]ShipClass{
	{Name: "Carrier", Length: 5},
	{Name: "Battleship", Length: 4},
	{Name: "Cruiser", Length: 3},
	{Name: "Submarine", Length: 3},
	{Name: "Destroyer", Length: 2},
}

const FleetSize = len(ShipClasses)

func (sc ShipClass) Build() *Ship {
	return NewShip(sc.Name, sc.Length)
}
