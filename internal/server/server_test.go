package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/market"
	"github.com/dyike/QuantumGPT/internal/storage"
	"github.com/dyike/QuantumGPT/models"
)

type fakeBackend struct {
	watchlist *storage.Watchlist
	alerts    *storage.Alerts
	board     *market.Board
	screenErr error
	lastReq   models.StrategyRequest
}

func (f *fakeBackend) Suggest(_ context.Context, req models.StrategyRequest) (*models.StrategyResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.lastReq = req
	return &models.StrategyResult{SuggestedPosition: models.PositionNone, Disclaimer: consts.Disclaimer, RiskWarnings: []string{}}, nil
}

func (f *fakeBackend) Screen(_ context.Context, req models.ScreenerRequest) (*models.ScreenerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.screenErr != nil {
		return nil, f.screenErr
	}
	return &models.ScreenerResult{Results: []models.ScreenedAsset{{Symbol: "BTC"}}}, nil
}

func (f *fakeBackend) Watchlist() *storage.Watchlist { return f.watchlist }
func (f *fakeBackend) Alerts() *storage.Alerts       { return f.alerts }
func (f *fakeBackend) Board() *market.Board          { return f.board }

type snapLookup struct{}

func (snapLookup) Fetch(_ context.Context, symbol string) (*models.MarketSnapshot, error) {
	if symbol == "BTC" {
		return &models.MarketSnapshot{Symbol: "BTC", Price: models.Float(70000)}, nil
	}
	return nil, nil
}

type emptyOverview struct{}

func (emptyOverview) Overview(context.Context, []string) []*models.MarketSnapshot {
	return []*models.MarketSnapshot{}
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	kv := storage.NewMemoryKV()
	fb := &fakeBackend{
		watchlist: storage.NewWatchlist(kv),
		alerts:    storage.NewAlerts(kv),
		board:     market.NewBoard(snapLookup{}, emptyOverview{}, nil, nil, []string{"BTC"}),
	}
	srv := httptest.NewServer(New(fb, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, fb
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "tester")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestAuthStubs(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]any
	if code := do(t, srv, "POST", "/api/auth/login", `{"email":"user@example.com","password":"password123"}`, &body); code != 200 {
		t.Fatalf("login = %d", code)
	}
	if user := body["user"].(map[string]any); user["id"] != "user_123" {
		t.Fatalf("user = %v", user)
	}
	if code := do(t, srv, "POST", "/api/auth/login", `{"email":"user@example.com","password":"nope"}`, nil); code != 401 {
		t.Fatalf("bad login = %d", code)
	}

	var verr ErrorResponse
	if code := do(t, srv, "POST", "/api/auth/login", `{"email":"not-an-email","password":""}`, &verr); code != 400 || len(verr.Errors) != 2 {
		t.Fatalf("invalid login = %d %+v", code, verr)
	}

	if code := do(t, srv, "POST", "/api/auth/signup", `{"name":"A","email":"exists@example.com","password":"longenough"}`, nil); code != 409 {
		t.Fatalf("taken signup = %d", code)
	}
	if code := do(t, srv, "POST", "/api/auth/signup", `{"name":"A","email":"a@example.com","password":"longenough"}`, nil); code != 201 {
		t.Fatalf("signup = %d", code)
	}
	if code := do(t, srv, "POST", "/api/auth/signup", `{"name":"A","email":"a@example.com","password":"short"}`, nil); code != 400 {
		t.Fatalf("short password = %d", code)
	}
	if code := do(t, srv, "POST", "/api/auth/logout", ``, nil); code != 200 {
		t.Fatalf("logout = %d", code)
	}

	var user models.User
	if code := do(t, srv, "GET", "/api/account/profile", "", &user); code != 200 || user.ID != "user_123" {
		t.Fatalf("profile = %d %+v", code, user)
	}
	if code := do(t, srv, "PUT", "/api/account/profile", `{"email":"bad"}`, nil); code != 400 {
		t.Fatalf("bad profile update = %d", code)
	}
	if code := do(t, srv, "PUT", "/api/account/profile", `{"name":"New"}`, nil); code != 200 {
		t.Fatalf("profile update = %d", code)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func TestAuthStubsLogActions(t *testing.T) {
	srv, _ := newTestServer(t)

	buf := &lockedBuffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	calls := []struct {
		method, path, body, want string
	}{
		{"POST", "/api/auth/logout", ``, "[Auth] simulated logout"},
		{"GET", "/api/account/profile", ``, "[Auth] simulated profile fetch"},
		{"PUT", "/api/account/profile", `{"name":"New"}`, "[Auth] simulated profile update"},
	}
	for _, c := range calls {
		buf.Reset()
		if code := do(t, srv, c.method, c.path, c.body, nil); code != 200 {
			t.Fatalf("%s %s = %d", c.method, c.path, code)
		}
		if !strings.Contains(buf.String(), c.want) {
			t.Fatalf("%s %s did not log %q, got %q", c.method, c.path, c.want, buf.String())
		}
	}
}

func TestStrategyAndScreener(t *testing.T) {
	srv, fb := newTestServer(t)

	var res models.StrategyResult
	if code := do(t, srv, "POST", "/api/strategy", `{"cryptocurrency":"eth","riskTolerance":"high"}`, &res); code != 200 {
		t.Fatalf("strategy = %d", code)
	}
	if fb.lastReq.Cryptocurrency != "ETH" || res.Disclaimer != consts.Disclaimer {
		t.Fatalf("strategy result %+v", res)
	}
	if code := do(t, srv, "POST", "/api/strategy", `{"cryptocurrency":"eth"`, nil); code != 400 {
		t.Fatalf("malformed body = %d", code)
	}
	if code := do(t, srv, "POST", "/api/strategy", `{"cryptocurrency":"eth","riskTolerance":"yolo"}`, nil); code != 400 {
		t.Fatalf("invalid risk = %d", code)
	}

	if code := do(t, srv, "POST", "/api/screener", `{"criteria":"short"}`, nil); code != 400 {
		t.Fatalf("short criteria = %d", code)
	}
	if code := do(t, srv, "POST", "/api/screener", `{"criteria":"low cap gems"}`, nil); code != 200 {
		t.Fatalf("screener = %d", code)
	}
	fb.screenErr = errors.New("screener flow: model returned no output")
	var eresp ErrorResponse
	if code := do(t, srv, "POST", "/api/screener", `{"criteria":"low cap gems"}`, &eresp); code != 502 || eresp.Message == "" {
		t.Fatalf("failed screener = %d %+v", code, eresp)
	}
}

func TestWatchlistRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	var out struct {
		Symbols []string `json:"symbols"`
	}
	if code := do(t, srv, "GET", "/api/watchlist", "", &out); code != 200 || len(out.Symbols) != 3 {
		t.Fatalf("list = %d %v", code, out.Symbols)
	}
	if code := do(t, srv, "POST", "/api/watchlist", `{"symbol":"kraken:xrpusd"}`, &out); code != 201 || out.Symbols[3] != "KRAKEN:XRPUSD" {
		t.Fatalf("add = %d %v", code, out.Symbols)
	}
	if code := do(t, srv, "POST", "/api/watchlist", `{"symbol":"KRAKEN:XRPUSD"}`, nil); code != 409 {
		t.Fatalf("duplicate = %d", code)
	}
	if code := do(t, srv, "POST", "/api/watchlist", `{"symbol":"XRPUSD"}`, nil); code != 400 {
		t.Fatalf("no exchange = %d", code)
	}
	if code := do(t, srv, "DELETE", "/api/watchlist/KRAKEN:XRPUSD", "", &out); code != 200 || len(out.Symbols) != 3 {
		t.Fatalf("remove = %d %v", code, out.Symbols)
	}
	if code := do(t, srv, "DELETE", "/api/watchlist/KRAKEN:XRPUSD", "", nil); code != 404 {
		t.Fatalf("remove missing = %d", code)
	}
}

func TestAlertRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	var al models.Alert
	if code := do(t, srv, "POST", "/api/alerts", `{"symbol":"btc","condition":"above","targetPrice":70000}`, &al); code != 201 {
		t.Fatalf("create = %d", code)
	}
	if al.ID == "" || !al.IsActive || al.Symbol != "BTC" {
		t.Fatalf("alert = %+v", al)
	}
	if code := do(t, srv, "PATCH", "/api/alerts/"+al.ID+"/active", `{"isActive":false}`, &al); code != 200 || al.IsActive {
		t.Fatalf("deactivate = %d %+v", code, al)
	}
	if code := do(t, srv, "PUT", "/api/alerts/"+al.ID, `{"symbol":"BTC","condition":"below","targetPrice":60000}`, &al); code != 200 || al.Condition != models.ConditionBelow {
		t.Fatalf("update = %d %+v", code, al)
	}
	if code := do(t, srv, "PUT", "/api/alerts/"+al.ID, `{"symbol":"BTC","condition":"below","targetPrice":0}`, nil); code != 400 {
		t.Fatalf("invalid update = %d", code)
	}

	var list struct {
		Alerts []models.Alert `json:"alerts"`
	}
	if code := do(t, srv, "GET", "/api/alerts", "", &list); code != 200 || len(list.Alerts) != 1 {
		t.Fatalf("list = %d %+v", code, list)
	}
	if code := do(t, srv, "DELETE", "/api/alerts/"+al.ID, "", nil); code != 200 {
		t.Fatalf("delete = %d", code)
	}
	if code := do(t, srv, "DELETE", "/api/alerts/"+al.ID, "", nil); code != 404 {
		t.Fatalf("delete missing = %d", code)
	}
}

func TestMarketRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	var snap *models.MarketSnapshot
	if code := do(t, srv, "GET", "/api/market/BTC", "", &snap); code != 200 || snap == nil || *snap.Price != 70000 {
		t.Fatalf("snapshot = %d %+v", code, snap)
	}
	snap = nil
	if code := do(t, srv, "GET", "/api/market/NOPE", "", &snap); code != 200 || snap != nil {
		t.Fatalf("unknown symbol = %d %+v", code, snap)
	}

	var ov models.MarketOverview
	if code := do(t, srv, "GET", "/api/market/overview", "", &ov); code != 200 || ov.UpdatedAt == "" {
		t.Fatalf("overview = %d %+v", code, ov)
	}
	if code := do(t, srv, "GET", "/api/market/trending", "", nil); code != 502 {
		t.Fatalf("trending without source = %d", code)
	}
	if code := do(t, srv, "GET", "/health", "", nil); code != 200 {
		t.Fatalf("health = %d", code)
	}
}
