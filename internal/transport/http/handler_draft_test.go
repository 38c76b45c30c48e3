package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"pst-draft-bot/internal/announce"
	"pst-draft-bot/internal/auction"
	"pst-draft-bot/internal/config"
	"pst-draft-bot/internal/session"
	"pst-draft-bot/internal/store"
	"pst-draft-bot/internal/ws"
)

const testAdminKey = "letmein"

type nullAnnouncer struct{}

func (nullAnnouncer) Publish(announce.Event) {}

type apiFixture struct {
	router *chi.Mux
	sess   *session.Session
	clock  *clockwork.FakeClock
	ctx    context.Context
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	kv := store.NewMemory()
	rs := store.NewRosterStore(kv)
	ctx := context.Background()
	if err := rs.SaveCaptains(ctx, []auction.Captain{
		{Name: "Cev", Dollars: 1000},
		{Name: "yfu", Dollars: 800},
	}); err != nil {
		t.Fatalf("seed captains: %v", err)
	}
	if err := rs.SavePlayers(ctx, []auction.Player{
		{Name: "toth", MMR: 4500},
		{Name: "milan", MMR: 4200},
	}); err != nil {
		t.Fatalf("seed players: %v", err)
	}

	auc := auction.New(rs, auction.Options{LotSeconds: 5})
	if err := auc.Load(ctx); err != nil {
		t.Fatalf("load auction: %v", err)
	}

	fc := clockwork.NewFakeClock()
	sess := session.New(session.Config{League: "PST", StartSeconds: 1, NominationSeconds: 30}, auc, fc, nullAnnouncer{})
	runCtx, cancel := context.WithCancel(context.Background())
	go sess.Run(runCtx)
	t.Cleanup(func() {
		cancel()
		sess.Close()
	})

	hub := ws.NewHub("PST")
	router := NewRouter(sess, hub, kv, config.ServerConfig{AdminAPIKey: testAdminKey})
	return &apiFixture{router: router, sess: sess, clock: fc, ctx: ctx}
}

type header map[string]string

func asAdmin() header { return header{"X-Admin-Key": testAdminKey} }

func asCaptain(name string) header { return header{"X-Requester": name} }

func (f *apiFixture) do(t *testing.T, method, path string, body any, h header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range h {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// advanceUntil drives the fake clock until the draft reaches the wanted
// state, polling through the public state endpoint.
func (f *apiFixture) advanceUntil(t *testing.T, want auction.State) session.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := f.do(t, http.MethodGet, "/api/draft/state", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /api/draft/state status = %d", rec.Code)
		}
		snap := decodeBody[session.Snapshot](t, rec)
		if snap.State == want {
			return snap
		}
		f.clock.Advance(time.Second)
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("draft never reached state %s", want)
	return session.Snapshot{}
}

func (f *apiFixture) startDraft(t *testing.T) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/draft/start", nil, asAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	f.advanceUntil(t, auction.StateNominating)
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestStartRequiresAdminKey(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/draft/start", nil, asCaptain("Cev"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("start without admin key status = %d, want 401", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["error"] != "unauthorized" {
		t.Fatalf("error code = %v, want unauthorized", body["error"])
	}

	rec = f.do(t, http.MethodPost, "/api/draft/start", nil, asAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("start with admin key status = %d", rec.Code)
	}
	res := decodeBody[auction.StartResult](t, rec)
	if len(res.QueueOrder) == 0 || res.QueueOrder[0] != "Cev" {
		t.Fatalf("queue order = %v, want Cev first", res.QueueOrder)
	}
}

func TestBearerTokenGrantsAdmin(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/draft/start", nil, header{"Authorization": "Bearer " + testAdminKey})
	if rec.Code != http.StatusOK {
		t.Fatalf("start with bearer token status = %d", rec.Code)
	}
}

func TestNominateRejectsMalformedBody(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/draft/nominate", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed nominate status = %d, want 400", rec.Code)
	}
}

func TestNominateBeforeStartConflicts(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/draft/nominate", map[string]any{"player": "toth"}, asCaptain("Cev"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("nominate while dormant status = %d, want 409", rec.Code)
	}
}

func TestBidOutsideBiddingAnswersAccepted(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/draft/bid", map[string]any{"amount": 100}, asCaptain("Cev"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("ignored bid status = %d, want 202", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["status"] != "ignored" {
		t.Fatalf("ignored bid body = %v", body)
	}
}

func TestNominateAndBidFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.startDraft(t)

	rec := f.do(t, http.MethodPost, "/api/draft/nominate", map[string]any{"player": "toth"}, asCaptain("yfu"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-turn nominate status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/draft/nominate", map[string]any{"player": "toth"}, asCaptain("Cev"))
	if rec.Code != http.StatusOK {
		t.Fatalf("nominate status = %d, body %s", rec.Code, rec.Body.String())
	}
	lot := decodeBody[auction.Lot](t, rec)
	if lot.Player != "toth" || lot.Nominator != "Cev" {
		t.Fatalf("lot = %+v", lot)
	}

	rec = f.do(t, http.MethodPost, "/api/draft/bid", map[string]any{"amount": 100}, asCaptain("yfu"))
	if rec.Code != http.StatusOK {
		t.Fatalf("bid status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decodeBody[map[string]int](t, rec)
	if res["time_remaining"] != 35 {
		t.Fatalf("time_remaining = %d, want 35", res["time_remaining"])
	}

	rec = f.do(t, http.MethodPost, "/api/draft/bid", map[string]any{"amount": 150}, asCaptain("yfu"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bid against self status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/draft/bid", map[string]any{"amount": 50}, asCaptain("Cev"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("too-low bid status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/draft/bid", map[string]any{"amount": 5000}, asCaptain("Cev"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("over-budget bid status = %d, want 400", rec.Code)
	}
}

func TestAdminNominatesOnBehalfOfCaptain(t *testing.T) {
	f := newAPIFixture(t)
	f.startDraft(t)

	rec := f.do(t, http.MethodPost, "/api/draft/nominate",
		map[string]any{"player": "milan", "captain": "Cev"}, asAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("admin nominate status = %d, body %s", rec.Code, rec.Body.String())
	}
	lot := decodeBody[auction.Lot](t, rec)
	if lot.Nominator != "Cev" {
		t.Fatalf("nominator = %q, want Cev", lot.Nominator)
	}
}

func TestUnknownPlayerAnswersNotFound(t *testing.T) {
	f := newAPIFixture(t)
	f.startDraft(t)

	rec := f.do(t, http.MethodPost, "/api/draft/nominate", map[string]any{"player": "ghost"}, asCaptain("Cev"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nominate unknown player status = %d, want 404", rec.Code)
	}
}

func TestUndoWithoutHistoryAnswersNotFound(t *testing.T) {
	f := newAPIFixture(t)
	f.startDraft(t)

	rec := f.do(t, http.MethodPost, "/api/draft/undo", nil, asAdmin())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("undo with empty history status = %d, want 404", rec.Code)
	}
}

func TestPauseResumeRequiresAdmin(t *testing.T) {
	f := newAPIFixture(t)
	f.startDraft(t)

	rec := f.do(t, http.MethodPost, "/api/draft/pause", nil, asCaptain("Cev"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("pause without admin status = %d, want 401", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/draft/pause", nil, asAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d, body %s", rec.Code, rec.Body.String())
	}
	snap := f.advanceUntil(t, auction.StateBreak)
	if snap.State != auction.StateBreak {
		t.Fatalf("state after pause = %s", snap.State)
	}

	rec = f.do(t, http.MethodPost, "/api/draft/resume", nil, asAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d, body %s", rec.Code, rec.Body.String())
	}
	f.advanceUntil(t, auction.StateNominating)
}

func TestRosterEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/roster/captains", map[string]any{"name": "Kira", "dollars": 600}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("add captain without admin status = %d, want 401", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/roster/captains", map[string]any{"name": "Kira", "dollars": 600}, asAdmin())
	if rec.Code != http.StatusCreated {
		t.Fatalf("add captain status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/roster/captains", map[string]any{"name": "kira", "dollars": 700}, asAdmin())
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate captain status = %d, want 409", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/roster/players", map[string]any{"name": "zai", "mmr": 3900}, asAdmin())
	if rec.Code != http.StatusCreated {
		t.Fatalf("add player status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/draft/captains", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list captains status = %d", rec.Code)
	}
	captains := decodeBody[[]auction.Captain](t, rec)
	if len(captains) != 3 {
		t.Fatalf("captain count = %d, want 3", len(captains))
	}

	rec = f.do(t, http.MethodDelete, "/api/roster/captains/Kira", nil, asAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("remove captain status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodDelete, "/api/roster/captains/ghost", nil, asAdmin())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("remove unknown captain status = %d, want 404", rec.Code)
	}
}

func TestStateEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/draft/state", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("state status = %d", rec.Code)
	}
	snap := decodeBody[session.Snapshot](t, rec)
	if snap.League != "PST" || snap.State != auction.StateAsleep {
		t.Fatalf("snapshot = %+v", snap)
	}
}
