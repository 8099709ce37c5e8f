package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"holdem-recorder/apps/server/internal/codec"
	"holdem-recorder/apps/server/internal/session"
	"holdem-recorder/holdem"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return logrus.NewEntry(l)
}

func startServer(t *testing.T, origins []string) (*Gateway, *session.Registry, *httptest.Server) {
	t.Helper()
	g := New(testLogger(), origins)
	reg := session.NewRegistry(testLogger(), g.Publish)
	reg.OnDrop(g.CloseSession)
	r := chi.NewRouter()
	r.Get("/ws/hands/{id}", g.Handler(reg))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return g, reg, srv
}

func newSession(t *testing.T, reg *session.Registry) *session.Session {
	t.Helper()
	h, err := holdem.NewHand(holdem.Config{SmallBlind: 1, BigBlind: 2})
	require.NoError(t, err)
	require.NoError(t, h.SitDown(holdem.Player{Position: holdem.PositionBTN, Hero: true}))
	require.NoError(t, h.SitDown(holdem.Player{Position: holdem.PositionBB}))
	return reg.Add(h, "ws")
}

func dial(t *testing.T, srv *httptest.Server, id string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/hands/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) codec.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env codec.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestGateway_PushesInitialAndCommittedViews(t *testing.T) {
	g, reg, srv := startServer(t, nil)
	s := newSession(t, reg)
	conn := dial(t, srv, s.ID, nil)

	env := readEnvelope(t, conn)
	require.Equal(t, codec.EnvelopeHandView, env.Type)
	require.Equal(t, s.ID, env.SessionID)
	require.Equal(t, uint64(1), env.Hand.Version)

	require.Eventually(t, func() bool { return g.Watchers(s.ID) == 1 }, time.Second, 10*time.Millisecond)

	_, err := s.Apply(func(h *holdem.Hand) error {
		_, err := h.AppendAction(holdem.StreetPreflop, holdem.Call(holdem.PositionBTN, 2))
		return err
	})
	require.NoError(t, err)

	env = readEnvelope(t, conn)
	require.Equal(t, uint64(2), env.Hand.Version)
	require.Greater(t, env.ServerSeq, uint64(1))
	require.Equal(t, int64(4), env.Hand.View.TotalPot)
}

func TestGateway_UnknownSession(t *testing.T) {
	_, _, srv := startServer(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/hands/nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_OriginCheck(t *testing.T) {
	_, reg, srv := startServer(t, []string{"https://recorder.example"})
	s := newSession(t, reg)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/hands/" + s.ID

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, srv, s.ID, http.Header{"Origin": {"https://recorder.example/"}})
	env := readEnvelope(t, conn)
	require.Equal(t, s.ID, env.SessionID)
}

func TestGateway_DisconnectUnsubscribes(t *testing.T) {
	g, reg, srv := startServer(t, nil)
	s := newSession(t, reg)
	conn := dial(t, srv, s.ID, nil)
	readEnvelope(t, conn)
	require.Eventually(t, func() bool { return g.Watchers(s.ID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return g.Watchers(s.ID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestGateway_ViewsArriveInVersionOrder(t *testing.T) {
	_, reg, srv := startServer(t, nil)
	s := newSession(t, reg)

	const commits = 40
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < commits; i++ {
			s.SetTitle("t" + strconv.Itoa(i))
		}
	}()

	conn := dial(t, srv, s.ID, nil)
	var last uint64
	for last < commits+1 {
		env := readEnvelope(t, conn)
		require.Greater(t, env.Hand.Version, last)
		last = env.Hand.Version
	}
	<-done
}

func TestGateway_DroppedSessionClosesWatchers(t *testing.T) {
	g, reg, srv := startServer(t, nil)
	s := newSession(t, reg)
	conn := dial(t, srv, s.ID, nil)
	readEnvelope(t, conn)
	require.Eventually(t, func() bool { return g.Watchers(s.ID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, reg.Delete(s.ID))
	require.Equal(t, 0, g.Watchers(s.ID))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)
}
