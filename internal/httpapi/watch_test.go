package httpapi

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/park285/cheese-checkers-bot/internal/match"
	nws "nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestWatchRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t, true)
	resp, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/ws/games/abc", nil))
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestWatchStreamsUpdates(t *testing.T) {
	s, m := newTestServer(t, true)
	s.watchEvery = 20 * time.Millisecond
	ctx := context.Background()

	g, err := m.Create(ctx, "room", "alice", "alice", "bob", "bob", "white", match.LayoutStandard)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = s.App().Listener(ln) }()
	t.Cleanup(func() { _ = s.App().Shutdown() })

	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, _, err := nws.Dial(dctx, "ws://"+ln.Addr().String()+"/ws/games/"+g.ID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(nws.StatusNormalClosure, "")

	read := func() stateJSON {
		t.Helper()
		var st stateJSON
		if err := wsjson.Read(dctx, conn, &st); err != nil {
			t.Fatalf("read: %v", err)
		}
		return st
	}

	if st := read(); st.ID != g.ID || st.Turn != "white" || len(st.Moves) != 0 {
		t.Fatalf("initial state %+v", st)
	}

	if _, _, err := m.Play(ctx, "alice", "room", "C3-D4"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if st := read(); st.Turn != "black" || len(st.Moves) != 1 || st.Moves[0] != "C3-D4" {
		t.Fatalf("after move %+v", st)
	}

	if _, _, err := m.Resign(ctx, "bob", "room"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	st := read()
	if st.Status != string(match.StatusResigned) || st.Winner != "white" {
		t.Fatalf("after resign %+v", st)
	}

	var extra stateJSON
	err = wsjson.Read(dctx, conn, &extra)
	if nws.CloseStatus(err) != nws.StatusNormalClosure {
		t.Fatalf("expected normal close, got %v", err)
	}
}
