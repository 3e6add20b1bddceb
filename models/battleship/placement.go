package battleship

import (
	"math/rand"
	"time"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

// Any fleet from ShipClasses fits a 10x10 grid long before this many
// tries, so running out means the configuration itself is broken.
const DefaultMaxPlacementAttempts = 1000

// Rand is the only source of randomness the engine uses. *rand.Rand
// satisfies it; tests substitute a deterministic sequence.
type Rand interface {
	Intn(n int) int
}

func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func randomCoordinates(r Rand) Coordinates {
	return NewCoordinates(r.Intn(GridSize), r.Intn(GridSize))
}

func randomHorizontal(r Rand) bool {
	return r.Intn(2) == 0
}

// placeRandomly keeps sampling until the ship fits. It panics once
// maxAttempts is spent.
func placeRandomly(b *Board, ship *Ship, r Rand, maxAttempts int) Coordinates {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		c := randomCoordinates(r)
		horizontal := randomHorizontal(r)
		if b.Place(ship, c.Row, c.Col, horizontal) {
			return c
		}
	}
	panic(cerr.ErrPlacementAttemptsExhausted(ship.Name, maxAttempts))
}

// pickUnattacked resamples until it lands on a cell the board has not
// received an attack on. Callers must make sure one exists.
func pickUnattacked(b *Board, r Rand) Coordinates {
	for {
		c := randomCoordinates(r)
		if !b.IsAttacked(c.Row, c.Col) {
			return c
		}
	}
}
