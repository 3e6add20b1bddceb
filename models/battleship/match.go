package battleship

import (
	"fmt"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type MatchPhase uint8

const (
	MatchPhaseSetup MatchPhase = iota
	MatchPhasePlacing
	MatchPhaseActive
	MatchPhaseConcluded
)

func (mp MatchPhase) String() string {
	switch mp {
	case MatchPhasePlacing:
		return "placing"
	case MatchPhaseActive:
		return "active"
	case MatchPhaseConcluded:
		return "concluded"
	default:
		return "setup"
	}
}

type TurnRecord struct {
	Actor      string
	ActorKind  PlayerKind
	Row        int
	Col        int
	Outcome    AttackOutcome
	TurnNumber int
}

type PlacementResult struct {
	Success    bool
	ClassIndex int
	ShipName   string
	Row        int
	Col        int
	Horizontal bool
	AllPlaced  bool
	Phase      MatchPhase
	Message    string
}

type QuickFillResult struct {
	Success bool
	Placed  []string
	Phase   MatchPhase
	Message string
}

type AttackResult struct {
	Success      bool
	Attacker     string
	Coordinates  Coordinates
	Outcome      AttackOutcome
	TurnNumber   int
	TurnSwitched bool
	Phase        MatchPhase
	Victor       string
	Message      string
}

// Match drives one human player against one scripted opponent.
// It is not safe for concurrent use; whoever holds it serialises calls.
type Match struct {
	uuid     string
	human    *Player
	scripted *Player
	active   *Player
	waiting  *Player
	phase    MatchPhase
	victor   *Player
	history  []TurnRecord
	placed   [FleetSize]bool

	rand                 Rand
	maxPlacementAttempts int
	humanName            string
	scriptedName         string
}

type MatchOption func(*Match) error

// Match uuids are short; the registry re-rolls one that is already taken.
var newMatchUuid = func() string {
	return uuid.NewString()[:6]
}

func WithRand(r Rand) MatchOption {
	return func(m *Match) error {
		if r == nil {
			return fmt.Errorf("rand source cannot be nil")
		}
		m.rand = r
		return nil
	}
}

func WithPlayerNames(humanName, scriptedName string) MatchOption {
	return func(m *Match) error {
		if humanName == "" || scriptedName == "" {
			return fmt.Errorf("player names cannot be empty")
		}
		m.humanName = humanName
		m.scriptedName = scriptedName
		return nil
	}
}

func WithMaxPlacementAttempts(attempts int) MatchOption {
	return func(m *Match) error {
		if attempts < 1 {
			return fmt.Errorf("placement attempts must be positive: %d", attempts)
		}
		m.maxPlacementAttempts = attempts
		return nil
	}
}

// NewMatch returns a match in the setup phase. Begin must be called
// before any ship can be placed. Options are set by the program, never by
// a player, so an invalid one is a programming error and panics.
func NewMatch(optFuncs ...MatchOption) *Match {
	m := Match{
		uuid:                 newMatchUuid(),
		phase:                MatchPhaseSetup,
		maxPlacementAttempts: DefaultMaxPlacementAttempts,
		humanName:            DefaultHumanName,
		scriptedName:         DefaultScriptedName,
	}
	for _, opt := range optFuncs {
		if err := opt(&m); err != nil {
			panic(err)
		}
	}
	if m.rand == nil {
		m.rand = NewRand(0)
	}

	m.human = NewPlayer(m.humanName, PlayerKindHuman)
	m.scripted = NewPlayer(m.scriptedName, PlayerKindScripted)
	m.active, m.waiting = m.human, m.scripted

	return &m
}

// Begin resets the match: fresh players and boards, human to move
// first, empty history, and the scripted fleet placed at random.
// It may be called from any phase.
func (m *Match) Begin() {
	m.human = NewPlayer(m.humanName, PlayerKindHuman)
	m.scripted = NewPlayer(m.scriptedName, PlayerKindScripted)
	m.active, m.waiting = m.human, m.scripted
	m.victor = nil
	m.history = nil
	m.placed = [FleetSize]bool{}

	for _, sc := range ShipClasses {
		placeRandomly(m.scripted.Board, sc.Build(), m.rand, m.maxPlacementAttempts)
	}
	m.phase = MatchPhasePlacing
}

func (m *Match) PlaceOwnShip(classIndex, row, col int, horizontal bool) (PlacementResult, error) {
	if m.phase != MatchPhasePlacing {
		return PlacementResult{}, cerr.ErrPhaseMismatch(MatchPhasePlacing.String(), m.phase.String())
	}
	if classIndex < 0 || classIndex >= FleetSize {
		return PlacementResult{}, cerr.ErrVesselClassIndex(classIndex)
	}

	sc := ShipClasses[classIndex]
	if m.placed[classIndex] {
		return PlacementResult{}, cerr.ErrVesselAlreadyPlaced(sc.Name)
	}
	if !m.human.Board.Place(sc.Build(), row, col, horizontal) {
		return PlacementResult{}, cerr.ErrCannotPlaceVessel(sc.Name, row, col, horizontal)
	}
	m.placed[classIndex] = true

	result := PlacementResult{
		Success:    true,
		ClassIndex: classIndex,
		ShipName:   sc.Name,
		Row:        row,
		Col:        col,
		Horizontal: horizontal,
		Message:    fmt.Sprintf("%s placed.", sc.Name),
	}
	if m.allPlaced() {
		m.phase = MatchPhaseActive
		result.AllPlaced = true
		result.Message = "All ships placed! The battle begins."
	}
	result.Phase = m.phase

	return result, nil
}

// QuickFill places every ship class the human has not placed yet.
func (m *Match) QuickFill() (QuickFillResult, error) {
	if m.phase != MatchPhasePlacing {
		return QuickFillResult{}, cerr.ErrPhaseMismatch(MatchPhasePlacing.String(), m.phase.String())
	}

	placed := make([]string, 0, FleetSize)
	for i, sc := range ShipClasses {
		if m.placed[i] {
			continue
		}
		placeRandomly(m.human.Board, sc.Build(), m.rand, m.maxPlacementAttempts)
		m.placed[i] = true
		placed = append(placed, sc.Name)
	}
	m.phase = MatchPhaseActive

	return QuickFillResult{
		Success: true,
		Placed:  placed,
		Phase:   m.phase,
		Message: "Ships placed randomly! The battle begins.",
	}, nil
}

// Attack fires the human player's shot at the scripted board.
func (m *Match) Attack(row, col int) (AttackResult, error) {
	if m.phase != MatchPhaseActive {
		return AttackResult{}, cerr.ErrPhaseMismatch(MatchPhaseActive.String(), m.phase.String())
	}
	if m.active.IsScripted() {
		return AttackResult{}, cerr.ErrNotHumanTurn
	}
	if !NewCoordinates(row, col).InBounds() {
		return AttackResult{}, cerr.ErrXorYOutOfGridBound(row, col)
	}

	return m.resolveAttack(row, col)
}

// TakeScriptedTurn fires at a uniformly random cell of the human board
// that has not been attacked yet. The chosen cell is in the result.
func (m *Match) TakeScriptedTurn() (AttackResult, error) {
	if m.phase != MatchPhaseActive {
		return AttackResult{}, cerr.ErrPhaseMismatch(MatchPhaseActive.String(), m.phase.String())
	}
	if !m.active.IsScripted() {
		return AttackResult{}, cerr.ErrNotScriptedTurn
	}
	// unreachable while a ship is afloat, checked so the sampler always ends
	if m.waiting.Board.AttackedCount() >= GridSize*GridSize {
		return AttackResult{}, cerr.ErrPhaseMismatch(MatchPhaseConcluded.String(), m.phase.String())
	}

	target := pickUnattacked(m.waiting.Board, m.rand)
	return m.resolveAttack(target.Row, target.Col)
}

// Concede is issued on behalf of the human player. Boards are untouched.
func (m *Match) Concede() error {
	if m.phase != MatchPhaseActive {
		return cerr.ErrPhaseMismatch(MatchPhaseActive.String(), m.phase.String())
	}
	m.victor = m.scripted
	m.phase = MatchPhaseConcluded
	return nil
}

func (m *Match) resolveAttack(row, col int) (AttackResult, error) {
	attacker, defender := m.active, m.waiting

	outcome, err := defender.Board.Attack(row, col)
	if err != nil {
		return AttackResult{}, err
	}

	record := TurnRecord{
		Actor:      attacker.Name,
		ActorKind:  attacker.Kind,
		Row:        row,
		Col:        col,
		Outcome:    outcome,
		TurnNumber: len(m.history) + 1,
	}
	m.history = append(m.history, record)

	result := AttackResult{
		Success:     true,
		Attacker:    attacker.Name,
		Coordinates: NewCoordinates(row, col),
		Outcome:     outcome,
		TurnNumber:  record.TurnNumber,
		Message:     attackMessage(attacker, outcome),
	}

	switch {
	case defender.Board.AllSunk():
		m.victor = attacker
		m.phase = MatchPhaseConcluded
		result.Victor = attacker.Name
		result.Message = fmt.Sprintf("%s %s", result.Message, victoryMessage(attacker))

	case outcome != AttackOutcomeAlreadyAttacked:
		m.switchTurns()
		result.TurnSwitched = true
	}
	result.Phase = m.phase

	return result, nil
}

func (m *Match) switchTurns() {
	m.active, m.waiting = m.waiting, m.active
}

func (m *Match) allPlaced() bool {
	for _, placed := range m.placed {
		if !placed {
			return false
		}
	}
	return true
}

func attackMessage(attacker *Player, outcome AttackOutcome) string {
	if attacker.IsScripted() {
		switch outcome {
		case AttackOutcomeMiss:
			return fmt.Sprintf("%s missed.", attacker.Name)
		case AttackOutcomeHit:
			return fmt.Sprintf("%s hit your ship!", attacker.Name)
		case AttackOutcomeSunk:
			return fmt.Sprintf("%s sunk your ship!", attacker.Name)
		}
		return "Position already attacked."
	}

	switch outcome {
	case AttackOutcomeMiss:
		return "You missed."
	case AttackOutcomeHit:
		return "Hit!"
	case AttackOutcomeSunk:
		return "You sunk a ship!"
	}
	return "Position already attacked. Choose another."
}

func victoryMessage(victor *Player) string {
	if victor.IsScripted() {
		return fmt.Sprintf("%s won!", victor.Name)
	}
	return "You won!"
}

func (m *Match) Uuid() string {
	return m.uuid
}

func (m *Match) Phase() MatchPhase {
	return m.phase
}

// Victor is nil until the match concludes.
func (m *Match) Victor() *Player {
	return m.victor
}

func (m *Match) Human() *Player {
	return m.human
}

func (m *Match) Scripted() *Player {
	return m.scripted
}

func (m *Match) Active() *Player {
	return m.active
}

func (m *Match) Waiting() *Player {
	return m.waiting
}

func (m *Match) IsPlaced(classIndex int) bool {
	if classIndex < 0 || classIndex >= FleetSize {
		return false
	}
	return m.placed[classIndex]
}

func (m *Match) History() []TurnRecord {
	history := make([]TurnRecord, len(m.history))
	copy(history, m.history)
	return history
}
