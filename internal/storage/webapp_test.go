package storage

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWebApp ведет себя как web app над таблицей: отдает списки и копит гонки.
type fakeWebApp struct {
	mu      sync.Mutex
	secret  string
	races   []map[string]any
	reply   string
	players []string
}

func (f *fakeWebApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("secret") != f.secret {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		switch r.URL.Query().Get("action") {
		case "players":
			json.NewEncoder(w).Encode(f.players)
		case "tracks":
			json.NewEncoder(w).Encode([]string{"Oval", "Ring"})
		case "leaderboard":
			w.Write([]byte(`[["Player","Points","Races","Avg"],["A",12,3,"2.5"],["B",4.5,1,1]]`))
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}
	case http.MethodPost:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.Write([]byte(err.Error()))
			return
		}
		if body["secret"] != f.secret {
			w.Write([]byte("bad secret"))
			return
		}
		f.mu.Lock()
		f.races = append(f.races, body)
		f.mu.Unlock()
		w.Write([]byte(f.reply))
	}
}

func (f *fakeWebApp) recorded() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.races...)
}

func newTestWebApp(t *testing.T, fake *fakeWebApp) *WebApp {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewWebApp(srv.URL+"/exec", fake.secret, 5*time.Second)
	require.NoError(t, err)
	return client
}

func TestWebApp_Reads(t *testing.T) {
	fake := &fakeWebApp{secret: "s3cret", players: []string{"A", "B"}}
	client := newTestWebApp(t, fake)
	ctx := context.Background()

	players, err := client.Players(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, players)

	tracks, err := client.Tracks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Oval", "Ring"}, tracks)

	rows, err := client.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Player", "Points", "Races", "Avg"},
		{"A", "12", "3", "2.5"},
		{"B", "4.5", "1", "1"},
	}, rows)
}

func TestWebApp_ReadHTTPError(t *testing.T) {
	fake := &fakeWebApp{secret: "s3cret"}
	client := newTestWebApp(t, fake)
	client.secret = "wrong"

	_, err := client.Players(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP 403", err.Error())
}

func TestWebApp_SubmitRace(t *testing.T) {
	fake := &fakeWebApp{secret: "s3cret", reply: "ok"}
	client := newTestWebApp(t, fake)

	race := Race{
		Date:      "2026-10-15",
		Track:     "Oval",
		Players:   []string{"A", "B"},
		Positions: []Position{3, 1},
	}
	require.NoError(t, client.SubmitRace(context.Background(), race))

	races := fake.recorded()
	require.Len(t, races, 1)
	got := races[0]
	assert.Equal(t, "2026-10-15", got["date"])
	assert.Equal(t, "Oval", got["track"])
	assert.Equal(t, []any{"A", "B"}, got["players"])
	assert.Equal(t, []any{3.0, 1.0}, got["positions"])
}

func TestWebApp_SubmitRaceTwiceStoresTwoRaces(t *testing.T) {
	fake := &fakeWebApp{secret: "s3cret", reply: "ok"}
	client := newTestWebApp(t, fake)
	race := Race{Date: "2026-10-15", Track: "Oval", Players: []string{"A"}, Positions: []Position{1}}

	require.NoError(t, client.SubmitRace(context.Background(), race))
	require.NoError(t, client.SubmitRace(context.Background(), race))

	races := fake.recorded()
	require.Len(t, races, 2)
	assert.Equal(t, races[0], races[1])
}

func TestWebApp_SubmitRaceNotOK(t *testing.T) {
	fake := &fakeWebApp{secret: "s3cret", reply: "sheet is locked"}
	client := newTestWebApp(t, fake)

	err := client.SubmitRace(context.Background(), Race{Players: []string{}, Positions: []Position{}})
	require.Error(t, err)

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, "sheet is locked", err.Error())
}

func TestWebApp_SubmitRaceNaNIsNull(t *testing.T) {
	fake := &fakeWebApp{secret: "s3cret", reply: "ok"}
	client := newTestWebApp(t, fake)

	race := Race{
		Date:      "2026-10-15",
		Track:     "Oval",
		Players:   []string{"A", "B"},
		Positions: []Position{ParsePosition("abc"), 2},
	}
	require.NoError(t, client.SubmitRace(context.Background(), race))
	assert.Equal(t, []any{nil, 2.0}, fake.recorded()[0]["positions"])
}

func TestNewWebApp_InvalidURL(t *testing.T) {
	_, err := NewWebApp("not a url", "s", time.Second)
	assert.Error(t, err)
}

func TestParsePosition(t *testing.T) {
	assert.Equal(t, Position(3), ParsePosition("3"))
	assert.Equal(t, Position(1.5), ParsePosition("1.5"))
	assert.True(t, ParsePosition("abc").IsNaN())
	assert.True(t, ParsePosition("").IsNaN())
	assert.Equal(t, "NaN", ParsePosition("abc").String())
	assert.False(t, math.IsNaN(float64(ParsePosition("-2"))))
}

func TestRaceRows(t *testing.T) {
	race := Race{
		Date:      "2026-10-15",
		Track:     "Oval",
		Players:   []string{"A", "B"},
		Positions: []Position{3, ParsePosition("x")},
	}
	assert.Equal(t, [][]any{
		{"2026-10-15", "Oval", "A", 3.0},
		{"2026-10-15", "Oval", "B", ""},
	}, raceRows(race))
}

func TestToColumnSkipsBlankCells(t *testing.T) {
	raw := [][]any{{"A"}, {}, {""}, {"B", "extra"}}
	assert.Equal(t, []string{"A", "B"}, toColumn(raw))
}
