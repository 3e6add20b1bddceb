package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
	"github.com/sqlc-dev/pqtype"
)

const testRandSeed int64 = 7

var dialer = websocket.Dialer{
	HandshakeTimeout: 5 * time.Second,
}

type testEnv struct {
	server *Server
	http   *httptest.Server
	mock   sqlmock.Sqlmock
	inet   pqtype.Inet
}

// scriptedRand hands out a fixed sequence and then zeros.
type scriptedRand struct {
	values []int
	next   int
}

func (sr *scriptedRand) Intn(n int) int {
	if sr.next >= len(sr.values) {
		return 0
	}
	v := sr.values[sr.next]
	sr.next++
	return v % n
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	server := NewServer(append([]Option{WithDb(db), WithRandSeed(testRandSeed)}, opts...)...)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})

	return &testEnv{
		server: server,
		http:   ts,
		mock:   mock,
		inet:   pqtype.Inet{IPNet: server.GetIpNet(), Valid: true},
	}
}

func (env *testEnv) wsUrl(token string) string {
	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/battleship"
	if token != "" {
		url += "?" + URLQueryTokenKeyword + "=" + token
	}
	return url
}

func (env *testEnv) expectGameCreated() {
	env.mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(env.inet).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func (env *testEnv) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := dialer.Dial(env.wsUrl(token), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// newMatchConn opens a fresh match and consumes the token and the
// initial snapshot frames.
func (env *testEnv) newMatchConn(t *testing.T) (*websocket.Conn, mc.RespMatchToken) {
	t.Helper()
	env.expectGameCreated()
	conn := env.dial(t, "")

	var tokenMsg mc.Message[mc.RespMatchToken]
	readJSON(t, conn, &tokenMsg)
	if tokenMsg.Code != mc.CodeMatchToken {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeMatchToken, tokenMsg.Code)
	}

	var snapshotMsg mc.Message[mb.Snapshot]
	readJSON(t, conn, &snapshotMsg)
	if snapshotMsg.Code != mc.CodeSnapshot {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeSnapshot, snapshotMsg.Code)
	}
	return conn, tokenMsg.Payload
}

func readJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(v); err != nil {
		t.Fatal(err)
	}
}

func writeJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatal(err)
	}
}

func quickFill(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	writeJSON(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeQuickFill))

	var resp mc.Message[mc.RespQuickFill]
	readJSON(t, conn, &resp)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.ErrorDetails)
	}
	if resp.Payload.Phase != mb.MatchPhaseActive.String() {
		t.Fatalf("expected phase: %s\tgot: %s", mb.MatchPhaseActive, resp.Payload.Phase)
	}
}

func TestNewMatchToken(t *testing.T) {
	env := newTestEnv(t)
	_, resp := env.newMatchConn(t)

	if resp.MatchUuid == "" || resp.Token == "" {
		t.Fatalf("expected match uuid and token\tgot: %+v", resp)
	}

	matchUuid, err := env.server.parseMatchToken(resp.Token)
	if err != nil {
		t.Fatal(err)
	}
	if matchUuid != resp.MatchUuid {
		t.Fatalf("expected token for match: %s\tgot: %s", resp.MatchUuid, matchUuid)
	}
	if env.server.MatchManager.Count() != 1 {
		t.Fatalf("expected 1 registered match\tgot: %d", env.server.MatchManager.Count())
	}
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestInvalidSignal(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.newMatchConn(t)

	tests := []struct {
		name         string
		payload      []byte
		expectedCode uint8
	}{
		{name: "unknown code", payload: []byte(`{"code":255}`), expectedCode: mc.CodeInvalidSignal},
		{name: "not json", payload: []byte(`place a ship`), expectedCode: mc.CodeSignalAbsent},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, test.payload); err != nil {
				t.Fatal(err)
			}

			var resp mc.Message[mc.NoPayload]
			readJSON(t, conn, &resp)
			if resp.Code != test.expectedCode {
				t.Fatalf("expected code: %d\tgot: %d", test.expectedCode, resp.Code)
			}
			if resp.Error == nil {
				t.Fatal("expected an error in the response")
			}
		})
	}
}

func TestPlaceShip(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.newMatchConn(t)

	tests := []struct {
		name        string
		req         mc.ReqPlaceShip
		expectError bool
	}{
		{name: "carrier horizontal", req: mc.ReqPlaceShip{ClassIndex: 0, Row: 0, Col: 0, Horizontal: true}},
		{name: "carrier twice", req: mc.ReqPlaceShip{ClassIndex: 0, Row: 5, Col: 0, Horizontal: true}, expectError: true},
		{name: "overlap", req: mc.ReqPlaceShip{ClassIndex: 1, Row: 0, Col: 2, Horizontal: false}, expectError: true},
		{name: "off the grid", req: mc.ReqPlaceShip{ClassIndex: 1, Row: 9, Col: 8, Horizontal: true}, expectError: true},
		{name: "invalid class", req: mc.ReqPlaceShip{ClassIndex: 9, Row: 3, Col: 3, Horizontal: true}, expectError: true},
		{name: "battleship vertical", req: mc.ReqPlaceShip{ClassIndex: 1, Row: 2, Col: 0, Horizontal: false}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			writeJSON(t, conn, mc.Message[mc.ReqPlaceShip]{Code: mc.CodePlaceShip, Payload: test.req})

			var resp mc.Message[mc.RespPlaceShip]
			readJSON(t, conn, &resp)
			if resp.Code != mc.CodePlaceShip {
				t.Fatalf("expected code: %d\tgot: %d", mc.CodePlaceShip, resp.Code)
			}
			if test.expectError != (resp.Error != nil) {
				t.Fatalf("expected error: %t\tgot: %+v", test.expectError, resp.Error)
			}
			if !test.expectError && resp.Payload.ShipName != mb.ShipClasses[test.req.ClassIndex].Name {
				t.Fatalf("expected ship: %s\tgot: %s", mb.ShipClasses[test.req.ClassIndex].Name, resp.Payload.ShipName)
			}
		})
	}
}

func TestAttackGetsScriptedReply(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.newMatchConn(t)

	// attacking before every ship is placed is rejected
	writeJSON(t, conn, mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{Row: 0, Col: 0}})
	var early mc.Message[mc.RespAttack]
	readJSON(t, conn, &early)
	if early.Error == nil {
		t.Fatal("expected an error attacking during placement")
	}

	quickFill(t, conn)

	writeJSON(t, conn, mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{Row: 0, Col: 0}})

	var human mc.Message[mc.RespAttack]
	readJSON(t, conn, &human)
	if human.Code != mc.CodeAttack || human.Error != nil {
		t.Fatalf("expected a successful attack\tgot: %+v", human)
	}
	if human.Payload.TurnNumber != 1 {
		t.Fatalf("expected turn number: 1\tgot: %d", human.Payload.TurnNumber)
	}
	if human.Payload.IsTurn {
		t.Fatal("the scripted player should move after the human")
	}

	var scripted mc.Message[mc.RespAttack]
	readJSON(t, conn, &scripted)
	if scripted.Code != mc.CodeScriptedTurn || scripted.Error != nil {
		t.Fatalf("expected the scripted reply\tgot: %+v", scripted)
	}
	if scripted.Payload.TurnNumber != 2 {
		t.Fatalf("expected turn number: 2\tgot: %d", scripted.Payload.TurnNumber)
	}
	if !scripted.Payload.IsTurn {
		t.Fatal("expected the turn back with the human")
	}
	if scripted.Payload.Attacker != mb.DefaultScriptedName {
		t.Fatalf("expected attacker: %s\tgot: %s", mb.DefaultScriptedName, scripted.Payload.Attacker)
	}

	// a repeat keeps the turn with the human and gets no scripted reply
	writeJSON(t, conn, mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{Row: 0, Col: 0}})
	var repeat mc.Message[mc.RespAttack]
	readJSON(t, conn, &repeat)
	if repeat.Payload.Outcome != mb.AttackOutcomeAlreadyAttacked.String() {
		t.Fatalf("expected outcome: %s\tgot: %s", mb.AttackOutcomeAlreadyAttacked, repeat.Payload.Outcome)
	}
	if !repeat.Payload.IsTurn {
		t.Fatal("a repeated attack must not pass the turn")
	}

	writeJSON(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeSnapshot))
	var snapshot mc.Message[mb.Snapshot]
	readJSON(t, conn, &snapshot)
	if snapshot.Code != mc.CodeSnapshot {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeSnapshot, snapshot.Code)
	}
	if snapshot.Payload.Stats.TotalTurns != 3 {
		t.Fatalf("expected total turns: 3\tgot: %d", snapshot.Payload.Stats.TotalTurns)
	}
}

func TestConcedeAndRematch(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.newMatchConn(t)

	writeJSON(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeRematch))
	var early mc.Message[mb.Snapshot]
	readJSON(t, conn, &early)
	if early.Code != mc.CodeRematch || early.Error == nil {
		t.Fatalf("expected a rejected rematch\tgot: %+v", early)
	}

	quickFill(t, conn)

	env.mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, scripted_wins\)`).
		WithArgs(env.inet).
		WillReturnResult(sqlmock.NewResult(0, 1))

	writeJSON(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeConcede))
	var end mc.Message[mc.RespEndMatch]
	readJSON(t, conn, &end)
	if end.Code != mc.CodeEndMatch {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeEndMatch, end.Code)
	}
	if end.Payload.VictorKind != mb.PlayerKindScripted.String() {
		t.Fatalf("expected victor kind: %s\tgot: %s", mb.PlayerKindScripted, end.Payload.VictorKind)
	}

	env.expectGameCreated()
	writeJSON(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeRematch))
	var rematch mc.Message[mb.Snapshot]
	readJSON(t, conn, &rematch)
	if rematch.Error != nil {
		t.Fatalf("unexpected error: %s", rematch.Error.ErrorDetails)
	}
	if rematch.Payload.Phase != mb.MatchPhasePlacing.String() {
		t.Fatalf("expected phase: %s\tgot: %s", mb.MatchPhasePlacing, rematch.Payload.Phase)
	}
	if rematch.Payload.Victor != "" {
		t.Fatalf("expected no victor after rematch\tgot: %s", rematch.Payload.Victor)
	}

	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestScriptedPlayerWins(t *testing.T) {
	// Both fleets sit in rows 0-4 from column 0, one class per row. The
	// scripted fleet takes the first 15 values, one try per class; the
	// rest aims every scripted shot at the next human ship cell.
	values := make([]int, 0, 15+2*17)
	for i := range mb.ShipClasses {
		values = append(values, i, 0, 0)
	}
	for i, sc := range mb.ShipClasses {
		for col := 0; col < sc.Length; col++ {
			values = append(values, i, col)
		}
	}
	env := newTestEnv(t, WithMatchOptions(mb.WithRand(&scriptedRand{values: values})))
	conn, _ := env.newMatchConn(t)

	for i := range mb.ShipClasses {
		writeJSON(t, conn, mc.Message[mc.ReqPlaceShip]{
			Code:    mc.CodePlaceShip,
			Payload: mc.ReqPlaceShip{ClassIndex: i, Row: i, Col: 0, Horizontal: true},
		})
		var placed mc.Message[mc.RespPlaceShip]
		readJSON(t, conn, &placed)
		if placed.Error != nil {
			t.Fatalf("placing class %d: %s", i, placed.Error.ErrorDetails)
		}
	}

	const humanShipCells = 17
	for i := 0; i < humanShipCells; i++ {
		if i == humanShipCells-1 {
			env.mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, scripted_wins\)`).
				WithArgs(env.inet).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}

		// rows 5-9 hold no scripted ship, so every human shot misses
		writeJSON(t, conn, mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{Row: 5 + i/10, Col: i % 10}})

		var human mc.Message[mc.RespAttack]
		readJSON(t, conn, &human)
		if human.Error != nil || human.Payload.Outcome != mb.AttackOutcomeMiss.String() {
			t.Fatalf("human attack %d: expected a miss\tgot: %+v", i, human)
		}

		var scripted mc.Message[mc.RespAttack]
		readJSON(t, conn, &scripted)
		if scripted.Code != mc.CodeScriptedTurn || scripted.Error != nil || scripted.Payload.Outcome == mb.AttackOutcomeMiss.String() {
			t.Fatalf("scripted turn %d: expected a hit\tgot: %+v", i, scripted)
		}
		if i < humanShipCells-1 {
			continue
		}

		if scripted.Payload.Outcome != mb.AttackOutcomeSunk.String() {
			t.Fatalf("expected outcome: %s\tgot: %s", mb.AttackOutcomeSunk, scripted.Payload.Outcome)
		}
		if scripted.Payload.Phase != mb.MatchPhaseConcluded.String() || scripted.Payload.IsTurn {
			t.Fatalf("expected a concluded match with no turn for the human\tgot: %+v", scripted.Payload)
		}
	}

	var end mc.Message[mc.RespEndMatch]
	readJSON(t, conn, &end)
	if end.Code != mc.CodeEndMatch {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeEndMatch, end.Code)
	}
	if end.Payload.VictorKind != mb.PlayerKindScripted.String() {
		t.Fatalf("expected victor kind: %s\tgot: %s", mb.PlayerKindScripted, end.Payload.VictorKind)
	}
	if end.Payload.Stats.TotalTurns != 2*humanShipCells || end.Payload.Stats.HumanHits != 0 {
		t.Fatalf("unexpected stats: %+v", end.Payload.Stats)
	}

	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestResumeMatch(t *testing.T) {
	env := newTestEnv(t)
	conn, resp := env.newMatchConn(t)
	quickFill(t, conn)
	conn.Close()

	resumed := env.dial(t, resp.Token)
	var snapshot mc.Message[mb.Snapshot]
	readJSON(t, resumed, &snapshot)
	if snapshot.Code != mc.CodeSnapshot {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeSnapshot, snapshot.Code)
	}
	if snapshot.Payload.MatchUuid != resp.MatchUuid {
		t.Fatalf("expected match: %s\tgot: %s", resp.MatchUuid, snapshot.Payload.MatchUuid)
	}
	if snapshot.Payload.Phase != mb.MatchPhaseActive.String() {
		t.Fatalf("expected phase: %s\tgot: %s", mb.MatchPhaseActive, snapshot.Payload.Phase)
	}
}

func TestResumeInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.server.issueMatchToken("gone00")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage token", token: "not-a-token"},
		{name: "match does not exist", token: token},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conn := env.dial(t, test.token)

			var resp mc.Message[mc.NoPayload]
			readJSON(t, conn, &resp)
			if resp.Code != mc.CodeReceivedInvalidToken {
				t.Fatalf("expected code: %d\tgot: %d", mc.CodeReceivedInvalidToken, resp.Code)
			}

			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			if _, _, err := conn.ReadMessage(); err == nil {
				t.Fatal("expected the server to close the connection")
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	payload, _ := json.Marshal(mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{Row: 3, Col: 4}})

	req, err := decodePayload[mc.ReqAttack](payload)
	if err != nil {
		t.Fatal(err)
	}
	if req.Row != 3 || req.Col != 4 {
		t.Fatalf("expected row: 3 col: 4\tgot: %+v", req)
	}

	if _, err := decodePayload[mc.ReqAttack]([]byte(`{"code":5,"payload":"oops"}`)); err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
}
