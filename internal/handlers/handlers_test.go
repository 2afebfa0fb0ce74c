package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/clickhouse"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/dal"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/pubsub"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/simulation"
)

type firstChooser struct{}

func (firstChooser) IntN(int) int { return 0 }

type testAPI struct {
	api      *APIHandlers
	router   http.Handler
	store    *dal.MemoryDAL
	ps       *pubsub.PubSub
	recorder *clickhouse.MemoryRecorder
}

func newTestAPI(t *testing.T, development bool) *testAPI {
	t.Helper()
	store := dal.NewMemoryDAL()
	ps := pubsub.New()
	rec := clickhouse.NewMemoryRecorder()
	sim := simulation.NewService(store,
		simulation.WithEngine(draft.NewEngine(draft.WithChooser(firstChooser{}))),
		simulation.WithPublisher(ps),
		simulation.WithRecorder(rec),
		simulation.WithLanguage("en"),
	)
	api := NewAPIHandlers(store, sim, ps, rec)
	return &testAPI{
		api:      api,
		router:   NewRouter(api, development),
		store:    store,
		ps:       ps,
		recorder: rec,
	}
}

func (ta *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListPlayers(t *testing.T) {
	ta := newTestAPI(t, false)
	players, err := ta.store.ListPlayers()
	require.NoError(t, err)

	pitchers := 0
	for _, p := range players {
		if p.Position == models.PositionPitcher {
			pitchers++
		}
	}

	w := ta.do(t, http.MethodGet, "/api/players", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[struct {
		Count  int `json:"count"`
		Groups []struct {
			ID string `json:"id"`
		} `json:"groups"`
	}](t, w)
	assert.Equal(t, len(players), all.Count)
	require.NotEmpty(t, all.Groups)
	assert.Equal(t, string(models.CategoryHighSchool), all.Groups[0].ID)

	w = ta.do(t, http.MethodGet, "/api/players?q="+"%E6%8A%95%E6%89%8B", "") // 投手
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decode[struct {
		Count int `json:"count"`
	}](t, w)
	assert.Equal(t, pitchers, filtered.Count)
}

func TestPlayerDetailAndComments(t *testing.T) {
	ta := newTestAPI(t, false)
	players, err := ta.store.ListPlayers()
	require.NoError(t, err)

	var pitcher, fielder models.Player
	for _, p := range players {
		if p.Position == models.PositionPitcher && pitcher.ID == "" {
			pitcher = p
		}
		if p.Position != models.PositionPitcher && fielder.ID == "" {
			fielder = p
		}
	}
	require.NotEmpty(t, pitcher.ID)
	require.NotEmpty(t, fielder.ID)

	w := ta.do(t, http.MethodGet, "/api/players/nobody", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ta.do(t, http.MethodGet, "/api/players/"+pitcher.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[models.PlayerDetail](t, w)
	assert.Equal(t, pitcher.ID, detail.Player.ID)
	assert.Equal(t, "-", detail.AvgRank)
	assert.Empty(t, detail.Comments)

	tests := []struct {
		name   string
		player string
		body   string
		want   int
	}{
		{"unknown player", "nobody", `{"text":"x","rank":"A"}`, http.StatusNotFound},
		{"bad json", pitcher.ID, `{`, http.StatusBadRequest},
		{"bad rank", pitcher.ID, `{"text":"solid","rank":"Z"}`, http.StatusBadRequest},
		{"empty text", pitcher.ID, `{"text":" ","rank":"A"}`, http.StatusBadRequest},
		{"rating out of range", pitcher.ID, `{"text":"fast","rank":"A","ratings":{"velocity":5.5}}`, http.StatusBadRequest},
		{"batting rating on pitcher", pitcher.ID, `{"text":"hits too","rank":"A","ratings":{"power":3}}`, http.StatusBadRequest},
		{"pitching rating on fielder", fielder.ID, `{"text":"arm","rank":"B","ratings":{"velocity":3}}`, http.StatusBadRequest},
		{"pitcher ok", pitcher.ID, `{"text":"plus fastball","rank":"S","ratings":{"velocity":4.5,"potential":5}}`, http.StatusCreated},
		{"second grade", pitcher.ID, `{"text":"command lags","rank":"B","ratings":{"velocity":3.5}}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ta.do(t, http.MethodPost, "/api/players/"+tt.player+"/comments", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w = ta.do(t, http.MethodGet, "/api/players/"+pitcher.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail = decode[models.PlayerDetail](t, w)
	require.Len(t, detail.Comments, 2)
	// S=5 and B=3 average to A
	assert.Equal(t, "A", detail.AvgRank)
	assert.InDelta(t, 4.0, detail.Averages["velocity"], 1e-9)
	assert.InDelta(t, 5.0, detail.Averages["potential"], 1e-9)

	events := ta.ps.Recent("", 10)
	require.Len(t, events, 2)
	assert.Equal(t, pubsub.EventComment, events[0].Type)
}

func TestListTeams(t *testing.T) {
	ta := newTestAPI(t, false)
	w := ta.do(t, http.MethodGet, "/api/teams", "")
	require.Equal(t, http.StatusOK, w.Code)

	teams := decode[[]models.Team](t, w)
	require.Len(t, teams, 12)
	assert.Equal(t, 1, teams[0].Order)
}

func TestSimulationLifecycle(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(t, http.MethodPost, "/api/simulations", "")
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[simulation.View](t, w)
	require.NotEmpty(t, view.RunID)
	require.NotNil(t, view.CurrentTeam)
	assert.Equal(t, 12, view.CurrentTeam.Order, "worst record bids first")
	assert.Equal(t, "/api/simulations/"+view.RunID, w.Header().Get("Location"))
	base := "/api/simulations/" + view.RunID

	players, err := ta.store.ListPlayers()
	require.NoError(t, err)
	teams, err := ta.store.ListTeams()
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, ta.do(t, http.MethodPost, base+"/pick", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, ta.do(t, http.MethodPost, base+"/pick", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, http.MethodPost, "/api/simulations/missing/pick", `{"playerId":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, http.MethodPost, base+"/pick", `{"playerId":"missing"}`).Code)
	assert.Equal(t, http.StatusConflict,
		ta.do(t, http.MethodPost, base+"/pick", `{"teamId":"`+teams[0].ID+`","playerId":"`+players[0].ID+`"}`).Code,
		"best team does not act first")
	assert.Equal(t, http.StatusConflict, ta.do(t, http.MethodPost, base+"/skip", ``).Code)

	// every team bids on a different player, so the lottery confirms them all
	for i := 0; i < len(teams); i++ {
		w := ta.do(t, http.MethodPost, base+"/pick", `{"playerId":"`+players[i].ID+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = ta.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[simulation.View](t, w)
	assert.Equal(t, draft.PhaseWaiver, view.Phase)
	assert.Equal(t, 2, view.Round)
	assert.Len(t, view.LotteryMessages, 12)
	assert.Len(t, view.Available, len(players)-12)

	// a signed player cannot be picked again
	assert.Equal(t, http.StatusConflict, ta.do(t, http.MethodPost, base+"/pick", `{"playerId":"`+players[0].ID+`"}`).Code)

	w = ta.do(t, http.MethodPost, base+"/skip", `{}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ta.do(t, http.MethodGet, base+"/result", "")
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[simulation.Result](t, w)
	require.Len(t, result.Teams, 12)
	assert.Equal(t, 1, result.MaxPicks)
	assert.Equal(t, teams[0].ID, result.Teams[0].Team.ID)

	w = ta.do(t, http.MethodGet, "/api/analytics/adp", "")
	require.Equal(t, http.StatusOK, w.Code)
	adp := decode[[]clickhouse.PlayerADP](t, w)
	assert.Len(t, adp, 12)

	assert.Equal(t, http.StatusNoContent, ta.do(t, http.MethodDelete, base, "").Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, http.MethodGet, base, "").Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, http.MethodDelete, base, "").Code)
}

func TestAdminResetOnlyInDevelopment(t *testing.T) {
	prod := newTestAPI(t, false)
	assert.Equal(t, http.StatusNotFound, prod.do(t, http.MethodPost, "/api/admin/reset", "").Code)

	dev := newTestAPI(t, true)
	w := dev.do(t, http.MethodPost, "/api/simulations", "")
	require.Equal(t, http.StatusCreated, w.Code)
	runID := decode[simulation.View](t, w).RunID

	assert.Equal(t, http.StatusOK, dev.do(t, http.MethodPost, "/api/admin/reset", "").Code)
	assert.Equal(t, http.StatusNotFound, dev.do(t, http.MethodGet, "/api/simulations/"+runID, "").Code)
}

func TestHealthProbes(t *testing.T) {
	ta := newTestAPI(t, false)

	assert.Equal(t, http.StatusOK, ta.do(t, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, ta.do(t, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, ta.do(t, http.MethodGet, "/api/health", "").Code)

	ta.api.AddCheck("clickhouse", false, func(context.Context) error { return errors.New("connection refused") })

	w := ta.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "degraded", body["status"])

	assert.Equal(t, http.StatusOK, ta.do(t, http.MethodGet, "/readyz", "").Code, "non-critical checks do not gate readiness")

	ta.api.AddCheck("nats", true, func(context.Context) error { return errors.New("disconnected") })
	assert.Equal(t, http.StatusServiceUnavailable, ta.do(t, http.MethodGet, "/readyz", "").Code)
}

func TestEventsSSE_ReplaysAndFiltersByRun(t *testing.T) {
	ta := newTestAPI(t, false)
	srv := httptest.NewServer(ta.router)
	defer srv.Close()

	w := ta.do(t, http.MethodPost, "/api/simulations", "")
	require.Equal(t, http.StatusCreated, w.Code)
	runID := decode[simulation.View](t, w).RunID

	// another run's events must not show up
	require.Equal(t, http.StatusCreated, ta.do(t, http.MethodPost, "/api/simulations", "").Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?runId="+runID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	next := func() pubsub.Event {
		t.Helper()
		for sc.Scan() {
			line := sc.Text()
			if !strings.HasPrefix(line, "data: ") || strings.Contains(line, `"connected"`) {
				continue
			}
			var ev pubsub.Event
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
			return ev
		}
		t.Fatalf("stream ended: %v", sc.Err())
		return pubsub.Event{}
	}

	ev := next()
	assert.Equal(t, pubsub.EventStart, ev.Type)
	assert.Equal(t, runID, ev.RunID)

	players, err := ta.store.ListPlayers()
	require.NoError(t, err)
	w = ta.do(t, http.MethodPost, "/api/simulations/"+runID+"/pick", `{"playerId":"`+players[0].ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	ev = next()
	assert.Equal(t, pubsub.EventBid, ev.Type)
	assert.Equal(t, runID, ev.RunID)
}

func TestEventsSSE_BadReplay(t *testing.T) {
	ta := newTestAPI(t, false)
	w := ta.do(t, http.MethodGet, "/api/events?replay=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
