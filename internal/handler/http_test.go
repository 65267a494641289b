package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AlekseevDev/tapper-game/internal/config"
	"github.com/AlekseevDev/tapper-game/internal/domain"
	"github.com/AlekseevDev/tapper-game/internal/service"
	"github.com/AlekseevDev/tapper-game/internal/store"
	"github.com/AlekseevDev/tapper-game/internal/websocket"
	"github.com/AlekseevDev/tapper-game/internal/worker"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(&config.DatabaseConfig{
		Dialect: "sqlite",
		Path:    filepath.Join(t.TempDir(), "tapper.db"),
	}, logger)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	svc := service.NewGameService(st, &config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100}, logger)
	svc.SetHub(hub)

	sweeper := worker.NewRetentionWorker(svc, &config.RetentionConfig{Days: 30, Interval: time.Hour}, logger)

	h := NewHandler(svc, hub, sweeper, logger)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var api APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp, api
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, api := doJSON(t, http.MethodGet, srv.URL+path, "")
		if resp.StatusCode != http.StatusOK || !api.Success {
			t.Errorf("%s: status=%d success=%v", path, resp.StatusCode, api.Success)
		}
	}
}

func TestGetPlayerCreatesDefaults(t *testing.T) {
	srv := newTestServer(t)

	resp, api := doJSON(t, http.MethodGet, srv.URL+"/api/v1/players/42/", "")
	if resp.StatusCode != http.StatusOK || !api.Success {
		t.Fatalf("status=%d success=%v error=%q", resp.StatusCode, api.Success, api.Error)
	}

	raw, _ := json.Marshal(api.Data)
	var p domain.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("decoding player: %v", err)
	}
	if p.UserID != 42 || p.Nickname != "Player" || p.Avatar != "avatar1" || p.TapPower != 1 {
		t.Errorf("player = %+v, want fresh defaults", p)
	}
}

func TestGetPlayerRejectsBadID(t *testing.T) {
	srv := newTestServer(t)

	for _, id := range []string{"abc", "0", "-5"} {
		resp, api := doJSON(t, http.MethodGet, srv.URL+"/api/v1/players/"+id+"/", "")
		if resp.StatusCode != http.StatusBadRequest || api.Success {
			t.Errorf("id %q: status=%d success=%v, want 400", id, resp.StatusCode, api.Success)
		}
	}
}

func TestSubmitResultFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, api := doJSON(t, http.MethodPost, srv.URL+"/api/v1/players/42/",
		`{"nickname":"Speedy","score":50,"tapsPerMinute":"120"}`)
	if resp.StatusCode != http.StatusOK || !api.Success {
		t.Fatalf("submit: status=%d error=%q", resp.StatusCode, api.Error)
	}

	_, api = doJSON(t, http.MethodPost, srv.URL+"/api/v1/players/42/", `{"score":30}`)
	if !api.Success {
		t.Fatalf("second submit failed: %q", api.Error)
	}

	_, api = doJSON(t, http.MethodGet, srv.URL+"/api/v1/players/42/", "")
	raw, _ := json.Marshal(api.Data)
	var p domain.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("decoding player: %v", err)
	}
	if p.Nickname != "Speedy" || p.TotalTaps != 80 || p.BestScore != 50 || p.TapsPerMinute != 120 {
		t.Errorf("player = %+v, want Speedy/80/50/120", p)
	}
}

func TestSubmitResultRejectsBadPayloads(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"empty update", `{}`},
		{"non-numeric score", `{"score":"lots"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, api := doJSON(t, http.MethodPost, srv.URL+"/api/v1/players/42/", tt.body)
			if resp.StatusCode != http.StatusBadRequest || api.Success {
				t.Errorf("status=%d success=%v, want 400", resp.StatusCode, api.Success)
			}
		})
	}

	// A rejected submission must not have touched the row
	_, api := doJSON(t, http.MethodGet, srv.URL+"/api/v1/players/42/", "")
	raw, _ := json.Marshal(api.Data)
	var p domain.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("decoding player: %v", err)
	}
	if p.TotalTaps != 0 {
		t.Errorf("TotalTaps = %d after rejected submissions, want 0", p.TotalTaps)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/api/v1/players/1/", `{"score":10,"tapsPerMinute":100}`)
	doJSON(t, http.MethodPost, srv.URL+"/api/v1/players/2/", `{"score":20,"tapsPerMinute":200}`)

	_, api := doJSON(t, http.MethodGet, srv.URL+"/api/v1/leaderboard", "")
	if !api.Success {
		t.Fatalf("leaderboard failed: %q", api.Error)
	}

	raw, _ := json.Marshal(api.Data)
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("decoding entries: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != 2 || entries[1].UserID != 1 {
		t.Errorf("entries = %+v, want [2, 1]", entries)
	}

	_, api = doJSON(t, http.MethodGet, srv.URL+"/api/v1/leaderboard?limit=1", "")
	raw, _ = json.Marshal(api.Data)
	entries = nil
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("decoding entries: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != 2 {
		t.Errorf("limited entries = %+v, want just player 2", entries)
	}
}

func TestLeaderboardEmptyIsArray(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/leaderboard")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"data":[]`) {
		t.Errorf("empty leaderboard body = %s, want a JSON array", body)
	}
}

func TestTaskEndpoints(t *testing.T) {
	srv := newTestServer(t)

	_, api := doJSON(t, http.MethodPost, srv.URL+"/api/v1/players/42/tasks/channel_x", "")
	if !api.Success {
		t.Fatalf("complete task failed: %q", api.Error)
	}
	raw, _ := json.Marshal(api.Data)
	var result map[string]bool
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !result["completed"] {
		t.Error("first completion: completed=false, want true")
	}

	_, api = doJSON(t, http.MethodPost, srv.URL+"/api/v1/players/42/tasks/channel_x", "")
	raw, _ = json.Marshal(api.Data)
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result["completed"] {
		t.Error("repeat completion: completed=true, want false")
	}

	_, api = doJSON(t, http.MethodGet, srv.URL+"/api/v1/players/42/tasks", "")
	raw, _ = json.Marshal(api.Data)
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		t.Fatalf("decoding ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != "channel_x" {
		t.Errorf("ids = %v, want [channel_x]", ids)
	}
}

func TestTriggerCleanup(t *testing.T) {
	srv := newTestServer(t)

	resp, api := doJSON(t, http.MethodPost, srv.URL+"/api/v1/admin/cleanup", "")
	if resp.StatusCode != http.StatusOK || !api.Success {
		t.Errorf("cleanup: status=%d success=%v error=%q", resp.StatusCode, api.Success, api.Error)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/leaderboard", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
