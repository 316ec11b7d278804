package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"durak/internal/app"
	"durak/internal/config"
	"durak/internal/domain"
	"durak/internal/store"
)

func newTestServer(t *testing.T, mutate func(*config.GameConfig)) *echo.Echo {
	t.Helper()
	cfg := config.Defaults()
	if mutate != nil {
		mutate(&cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := app.NewService(app.Deps{
		Store:  store.NewMemory(nil),
		RNG:    rand.New(rand.NewSource(7)),
		Logger: logger,
	}, cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.Use(LoggingMiddleware(logger))
	NewHandler(svc, logger).Register(e)
	return e
}

func do(e *echo.Echo, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, nil)
	rec := do(e, http.MethodGet, "/healthz", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "OK" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatal("request id header missing")
	}

	rec = do(e, http.MethodGet, "/healthz", "", map[string]string{headerRequestID: "req-1"})
	if got := rec.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("request id = %q, want req-1", got)
	}
}

func TestCreateJoinAndState(t *testing.T) {
	e := newTestServer(t, nil)

	rec := do(e, http.MethodPost, "/api/create-game", `{"playerId":"alice","seatCount":2}`, nil)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[SeatResponse](t, rec)
	if created.PlayerID != "alice" || created.Status != string(domain.StatusWaiting) || len(created.GameID) != app.RoomCodeLength {
		t.Fatalf("created = %+v", created)
	}
	if created.SeatToken == "" {
		t.Fatal("create should return a seat token")
	}

	rec = do(e, http.MethodPost, "/api/join-game/"+strings.ToLower(created.GameID), `{"playerId":"bob"}`, nil)
	expectStatus(t, rec, http.StatusOK)
	if joined := decode[SeatResponse](t, rec); joined.PlayerID != "bob" || joined.GameID != created.GameID || joined.SeatToken == "" {
		t.Fatalf("joined = %+v", joined)
	}

	rec = do(e, http.MethodPost, "/api/join-game/"+created.GameID, `{"playerId":"carol"}`, nil)
	expectStatus(t, rec, http.StatusConflict)
	if body := decode[ErrorResponse](t, rec); body.Kind != "full" {
		t.Fatalf("error = %+v", body)
	}

	rec = do(e, http.MethodGet, "/api/game/"+created.GameID, "", bearer(created.SeatToken))
	expectStatus(t, rec, http.StatusOK)
	state := decode[StateResponse](t, rec).State
	if state.You != "alice" || len(state.Seats) != 2 || state.Status != domain.StatusWaiting {
		t.Fatalf("state = %+v", state)
	}

	rec = do(e, http.MethodGet, "/api/game/NOPE00", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCreateGame_InvalidConfig(t *testing.T) {
	e := newTestServer(t, nil)
	rec := do(e, http.MethodPost, "/api/create-game", `{"playerId":"alice","seatCount":9}`, nil)
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decode[ErrorResponse](t, rec); body.Kind != "invalid_config" {
		t.Fatalf("error = %+v", body)
	}

	rec = do(e, http.MethodPost, "/api/create-game", `{"playerId":`, nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestStartAndMove(t *testing.T) {
	e := newTestServer(t, nil)

	rec := do(e, http.MethodPost, "/api/create-game", `{"playerId":"alice","seatCount":2}`, nil)
	created := decode[SeatResponse](t, rec)
	id, alice := created.GameID, bearer(created.SeatToken)
	rec = do(e, http.MethodPost, "/api/join-game/"+id, `{"playerId":"bob"}`, nil)
	expectStatus(t, rec, http.StatusOK)
	bob := bearer(decode[SeatResponse](t, rec).SeatToken)

	expectStatus(t, do(e, http.MethodPost, "/api/game/"+id+"/start", "", bob), http.StatusForbidden)
	expectStatus(t, do(e, http.MethodPost, "/api/game/"+id+"/start", "", nil), http.StatusForbidden)
	rec = do(e, http.MethodPost, "/api/game/"+id+"/start", "", alice)
	expectStatus(t, rec, http.StatusOK)
	started := decode[StateResponse](t, rec)
	if started.State.Status != domain.StatusPlaying || len(started.Events) == 0 {
		t.Fatalf("started = %+v", started)
	}
	expectStatus(t, do(e, http.MethodPost, "/api/game/"+id+"/start", "", alice), http.StatusConflict)

	lead := started.State.Hand[0]
	tests := []struct {
		name   string
		body   string
		header map[string]string
		want   int
	}{
		{name: "malformed body", body: `{"action":`, header: alice, want: http.StatusBadRequest},
		{name: "missing action", body: `{}`, header: alice, want: http.StatusBadRequest},
		{name: "unknown action", body: `{"action":"shuffle"}`, header: alice, want: http.StatusUnprocessableEntity},
		{name: "anonymous", body: `{"action":"take"}`, want: http.StatusForbidden},
		{name: "out of turn", body: `{"action":"take"}`, header: bob, want: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, do(e, http.MethodPost, "/api/game/"+id+"/move", tt.body, tt.header), tt.want)
		})
	}

	body := `{"action":"attack","card":{"rank":"` + lead.Rank + `","suit":"` + string(lead.Suit) + `"}}`
	rec = do(e, http.MethodPost, "/api/game/"+id+"/move", body, alice)
	expectStatus(t, rec, http.StatusOK)
	moved := decode[StateResponse](t, rec)
	if len(moved.State.Table) != 1 || moved.State.CurrentActor != "bob" || len(moved.Events) != 1 {
		t.Fatalf("after attack = %+v", moved)
	}

	rec = do(e, http.MethodPost, "/api/game/"+id+"/move", `{"action":"take"}`, bob)
	expectStatus(t, rec, http.StatusOK)
	if took := decode[StateResponse](t, rec).State; len(took.Hand) != domain.HandSize+1 {
		t.Fatalf("bob hand after take = %d", len(took.Hand))
	}
}

func TestPublicSeatIDIsNotACredential(t *testing.T) {
	e := newTestServer(t, nil)

	rec := do(e, http.MethodPost, "/api/create-game", `{"seatCount":2,"autostart":true,"waitForFull":true}`, nil)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[SeatResponse](t, rec)
	rec = do(e, http.MethodPost, "/api/join-game/"+created.GameID, `{"playerId":"bob"}`, nil)
	expectStatus(t, rec, http.StatusOK)
	bob := bearer(decode[SeatResponse](t, rec).SeatToken)

	rec = do(e, http.MethodGet, "/api/game/"+created.GameID, "", bob)
	expectStatus(t, rec, http.StatusOK)
	bobView := decode[StateResponse](t, rec).State
	owner := bobView.Seats[0].ID
	if owner != created.PlayerID || bobView.CurrentActor != owner {
		t.Fatalf("bob view = %+v", bobView)
	}

	rec = do(e, http.MethodGet, "/api/game/"+created.GameID+"?playerId="+owner, "", nil)
	expectStatus(t, rec, http.StatusOK)
	if state := decode[StateResponse](t, rec).State; state.You != "" || state.Hand != nil {
		t.Fatalf("player id query unmasked a hand: %+v", state)
	}

	rec = do(e, http.MethodGet, "/api/game/"+created.GameID+"?playerId="+owner, "", bob)
	expectStatus(t, rec, http.StatusOK)
	if state := decode[StateResponse](t, rec).State; state.You != "bob" {
		t.Fatalf("bob resolved as %q", state.You)
	}

	expectStatus(t, do(e, http.MethodGet, "/api/game/"+created.GameID, "", bearer(owner)), http.StatusForbidden)

	body := `{"playerId":"` + owner + `","action":"attack","card":{"rank":"6","suit":"S"}}`
	expectStatus(t, do(e, http.MethodPost, "/api/game/"+created.GameID+"/move", body, nil), http.StatusForbidden)
	expectStatus(t, do(e, http.MethodPost, "/api/game/"+created.GameID+"/move", `{"action":"take"}`, bearer(owner)), http.StatusForbidden)
	expectStatus(t, do(e, http.MethodPost, "/api/game/"+created.GameID+"/move", `{"action":"take"}`, bob), http.StatusUnprocessableEntity)
}

func TestSeatTokenFromAnotherSession(t *testing.T) {
	e := newTestServer(t, func(c *config.GameConfig) { c.SeatTokenSecret = "secret" })

	rec := do(e, http.MethodPost, "/api/create-game", `{"playerId":"alice","seatCount":2,"botCount":1,"autostart":true}`, nil)
	expectStatus(t, rec, http.StatusCreated)
	first := decode[SeatResponse](t, rec)
	rec = do(e, http.MethodPost, "/api/create-game", `{"playerId":"zoe","seatCount":2}`, nil)
	second := decode[SeatResponse](t, rec)

	rec = do(e, http.MethodGet, "/api/game/"+first.GameID, "", bearer(first.SeatToken))
	expectStatus(t, rec, http.StatusOK)
	if state := decode[StateResponse](t, rec).State; state.You != "alice" || len(state.Hand) != domain.HandSize {
		t.Fatalf("bearer state = %+v", state)
	}

	expectStatus(t, do(e, http.MethodGet, "/api/game/"+second.GameID, "", bearer(first.SeatToken)), http.StatusForbidden)
	expectStatus(t, do(e, http.MethodGet, "/api/game/"+first.GameID, "", bearer("junk")), http.StatusForbidden)
}
