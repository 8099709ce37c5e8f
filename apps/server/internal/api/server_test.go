package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"holdem-recorder/apps/server/internal/session"
	"holdem-recorder/apps/server/internal/store"
	"holdem-recorder/history"
	"holdem-recorder/holdem"
)

type testEnv struct {
	srv      *httptest.Server
	sessions *session.Registry
	store    store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	log := logrus.NewEntry(l)

	reg := session.NewRegistry(log, nil)
	st := store.NewMemory(10, 2)
	s := NewServer(Options{Sessions: reg, Store: st, DefaultLang: "en", Log: log})
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, sessions: reg, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func threeHanded() history.HandSpec {
	return history.HandSpec{
		Title: "api",
		Table: history.TableSpec{SB: 1, BB: 2},
		Seats: []history.SeatSpec{
			{Position: "BTN", Stack: 200, IsHero: true, Hole: []string{"As", "Kd"}},
			{Position: "SB", Stack: 200},
			{Position: "BB", Stack: 50},
		},
	}
}

func createSession(t *testing.T, e *testEnv, spec history.HandSpec) session.Snapshot {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/hands", spec)
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[session.Snapshot](t, body)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	status, body := e.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", string(body))
}

func TestSession_RecordActions(t *testing.T) {
	e := newTestEnv(t)
	snap := createSession(t, e, threeHanded())
	require.Equal(t, "api", snap.Title)
	require.Equal(t, holdem.PositionBTN, *snap.View.NextToAct)

	base := "/api/hands/" + snap.ID
	status, body := e.do(t, http.MethodPost, base+"/actions", map[string]any{"position": "BTN", "type": "raise", "amount": 6})
	require.Equal(t, http.StatusOK, status, string(body))
	resp := decode[actionResponse](t, body)
	require.Equal(t, holdem.PlayerActionTypeRaise, resp.Action.Type)
	require.Equal(t, holdem.PositionSB, *resp.Hand.View.NextToAct)

	// out of turn
	status, body = e.do(t, http.MethodPost, base+"/actions", map[string]any{"position": "BB", "type": "fold"})
	require.Equal(t, http.StatusConflict, status, string(body))
	errResp := decode[errorResponse](t, body)
	require.Contains(t, errResp.Error, "out of turn")
	require.NotEmpty(t, errResp.Message)

	// raise below the minimum
	status, _ = e.do(t, http.MethodPost, base+"/actions", map[string]any{"position": "SB", "type": "raise", "amount": 7})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPost, base+"/actions", map[string]any{"position": "SB", "type": "fold"})
	require.Equal(t, http.StatusOK, status)

	// a raise past the stack is recorded as all-in
	status, body = e.do(t, http.MethodPost, base+"/actions", map[string]any{"position": "BB", "type": "raise", "amount": 80})
	require.Equal(t, http.StatusOK, status, string(body))
	resp = decode[actionResponse](t, body)
	require.Equal(t, holdem.PlayerActionTypeAllin, resp.Action.Type)
	amount, _ := resp.Action.Amount()
	require.Equal(t, int64(50), amount)

	status, body = e.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[session.Snapshot](t, body)
	require.Equal(t, uint64(4), got.Version)
	require.Equal(t, int64(57), got.View.TotalPot)
}

func TestSession_UndoAndNewHand(t *testing.T) {
	e := newTestEnv(t)
	snap := createSession(t, e, threeHanded())
	base := "/api/hands/" + snap.ID

	status, _ := e.do(t, http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusConflict, status)

	status, _ = e.do(t, http.MethodPost, base+"/actions", map[string]any{"position": "BTN", "type": "fold"})
	require.Equal(t, http.StatusOK, status)

	status, body := e.do(t, http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	got := decode[session.Snapshot](t, body)
	require.Equal(t, holdem.PositionBTN, *got.View.NextToAct)
	require.Empty(t, got.View.Streets[0].Actions)

	status, _ = e.do(t, http.MethodPost, base+"/actions", map[string]any{"position": "BTN", "type": "call"})
	require.Equal(t, http.StatusOK, status)
	// seating is frozen mid-hand
	status, _ = e.do(t, http.MethodPost, base+"/seats", map[string]any{"position": "CO"})
	require.Equal(t, http.StatusConflict, status)

	status, body = e.do(t, http.MethodPost, base+"/new", map[string]any{"preserve_seats": true})
	require.Equal(t, http.StatusOK, status, string(body))
	got = decode[session.Snapshot](t, body)
	require.Equal(t, int64(3), got.View.TotalPot)
	for _, p := range got.View.Players {
		require.Empty(t, p.HoleCards)
	}

	status, body = e.do(t, http.MethodPost, base+"/seats", map[string]any{"position": "CO", "stack": 120})
	require.Equal(t, http.StatusOK, status, string(body))
	got = decode[session.Snapshot](t, body)
	require.Len(t, got.View.Players, 4)
	require.Equal(t, holdem.PositionCO, *got.View.NextToAct)
}

func TestSession_SeatsBoardAndStraddle(t *testing.T) {
	e := newTestEnv(t)
	snap := createSession(t, e, threeHanded())
	base := "/api/hands/" + snap.ID

	status, _ := e.do(t, http.MethodPut, base+"/straddle", map[string]any{"amount": 4})
	require.Equal(t, http.StatusBadRequest, status, "no UTG seated")

	status, _ = e.do(t, http.MethodPost, base+"/seats", map[string]any{"position": "UTG"})
	require.Equal(t, http.StatusOK, status)
	status, body := e.do(t, http.MethodPut, base+"/straddle", map[string]any{"amount": 4})
	require.Equal(t, http.StatusOK, status, string(body))
	got := decode[session.Snapshot](t, body)
	require.Equal(t, int64(4), got.View.Config.Straddle)

	status, _ = e.do(t, http.MethodDelete, base+"/seats/BTN", nil)
	require.Equal(t, http.StatusConflict, status, "hero cannot leave")
	status, _ = e.do(t, http.MethodDelete, base+"/seats/HJ", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, body = e.do(t, http.MethodPut, base+"/board/flop", map[string]any{"cards": []string{"Qh Jh", "As"}})
	require.Equal(t, http.StatusConflict, status, string(body))
	status, body = e.do(t, http.MethodPut, base+"/board/flop", map[string]any{"cards": []string{"Qh", "Jh"}})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	status, _ = e.do(t, http.MethodPut, base+"/board/flop", map[string]any{"cards": []string{"Qh Jh 2c"}})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodPut, base+"/seats/SB/cards", map[string]any{"cards": []string{"Qh", "3d"}})
	require.Equal(t, http.StatusConflict, status)
	status, body = e.do(t, http.MethodPut, base+"/seats/SB/cards", map[string]any{"cards": []string{"7c", "7d"}})
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = e.do(t, http.MethodPut, base+"/seats/SB/stack", map[string]any{"stack": 500})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodPost, base+"/seats", map[string]any{"position": "nowhere"})
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = e.do(t, http.MethodPost, base+"/seats", map[string]any{"position": "CO", "bogus": 1})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestSession_TranscriptLanguage(t *testing.T) {
	e := newTestEnv(t)
	spec := threeHanded()
	spec.Table = history.TableSpec{SB: 500, BB: 1000}
	spec.Seats[0].Stack = 250000
	snap := createSession(t, e, spec)
	base := "/api/hands/" + snap.ID

	status, body := e.do(t, http.MethodGet, base+"/transcript", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), "250,000")

	_, body = e.do(t, http.MethodGet, base+"/transcript?lang=de", nil)
	require.Contains(t, string(body), "250.000")

	_, body = e.do(t, http.MethodGet, base+"/transcript", nil, "Accept-Language", "de-CH, en;q=0.5")
	require.Contains(t, string(body), "250.000")
}

func TestSession_NotFound(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/api/hands/nope", "/api/hands/nope/transcript", "/api/hands/nope/spec"} {
		status, _ := e.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusNotFound, status, path)
	}
	status, _ := e.do(t, http.MethodDelete, "/api/hands/nope", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestCreateSession_ReplayErrorIsReported(t *testing.T) {
	e := newTestEnv(t)
	spec := threeHanded()
	spec.Actions = []history.ActionSpec{{Street: "preflop", Position: "SB", Type: "fold"}}
	status, body := e.do(t, http.MethodPost, "/api/hands", spec)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	resp := decode[errorResponse](t, body)
	require.NotNil(t, resp.Replay)
	require.Equal(t, history.ReasonOutOfTurn, resp.Replay.Reason)
	require.Equal(t, int32(0), resp.Replay.StepIndex)
	require.Equal(t, "BTN", resp.Replay.Expected.NextToAct)
}

func TestShareCodeRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	spec := threeHanded()
	spec.Actions = []history.ActionSpec{
		{Street: "preflop", Position: "BTN", Type: "raise", Amount: 6},
		{Street: "preflop", Position: "SB", Type: "fold"},
	}
	snap := createSession(t, e, spec)

	status, body := e.do(t, http.MethodGet, "/api/hands/"+snap.ID+"/share", nil)
	require.Equal(t, http.StatusOK, status)
	code := decode[map[string]string](t, body)["code"]
	require.NotEmpty(t, code)

	status, body = e.do(t, http.MethodGet, "/api/share/"+code, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	replayed := decode[replayResponse](t, body)
	require.Len(t, replayed.Spec.Actions, 2)
	require.Equal(t, int64(9), replayed.View.TotalPot)
	require.Equal(t, code, replayed.ShareCode)

	status, body = e.do(t, http.MethodPost, "/api/share/"+code+"/open", nil)
	require.Equal(t, http.StatusCreated, status)
	opened := decode[session.Snapshot](t, body)
	require.NotEqual(t, snap.ID, opened.ID)
	require.Equal(t, holdem.PositionBB, *opened.View.NextToAct)

	status, _ = e.do(t, http.MethodGet, "/api/share/!!!", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestReplayEndpoint(t *testing.T) {
	e := newTestEnv(t)
	spec := threeHanded()
	spec.Actions = []history.ActionSpec{{Street: "preflop", Position: "BTN", Type: "fold"}}
	status, body := e.do(t, http.MethodPost, "/api/replay", spec)
	require.Equal(t, http.StatusOK, status, string(body))
	resp := decode[replayResponse](t, body)
	require.Contains(t, resp.Transcript, "BTN: folds")
	require.Equal(t, holdem.PositionSB, *resp.View.NextToAct)

	status, _ = e.do(t, http.MethodPost, "/api/replay", "not a spec")
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRecords_SaveListDelete(t *testing.T) {
	e := newTestEnv(t)
	snap := createSession(t, e, threeHanded())

	var ids []string
	for i := 0; i < 3; i++ {
		status, body := e.do(t, http.MethodPost, "/api/hands/"+snap.ID+"/record", nil)
		require.Equal(t, http.StatusCreated, status, string(body))
		rec := decode[store.HandRecord](t, body)
		require.Equal(t, 3, rec.Summary.Players)
		require.NotEmpty(t, rec.ShareCode)
		ids = append(ids, rec.ID)
	}

	status, body := e.do(t, http.MethodGet, "/api/records?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Items []store.HandRecord `json:"items"`
	}](t, body)
	require.Len(t, list.Items, 2)

	for _, id := range ids[:2] {
		status, _ = e.do(t, http.MethodPut, "/api/records/"+id+"/saved", map[string]any{"saved": true})
		require.Equal(t, http.StatusOK, status)
	}
	status, _ = e.do(t, http.MethodPut, "/api/records/"+ids[2]+"/saved", map[string]any{"saved": true})
	require.Equal(t, http.StatusConflict, status, "saved limit is 2")

	status, body = e.do(t, http.MethodGet, "/api/records/"+ids[0]+"/transcript", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, strings.HasPrefix(string(body), "Hand: api"), string(body))

	status, body = e.do(t, http.MethodPost, "/api/records/"+ids[0]+"/open", nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = e.do(t, http.MethodDelete, "/api/records/"+ids[0], nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = e.do(t, http.MethodGet, "/api/records/"+ids[0], nil)
	require.Equal(t, http.StatusNotFound, status)
}
