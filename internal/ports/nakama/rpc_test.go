package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"durak/internal/app"
	"durak/internal/config"
	"durak/internal/domain"
	"durak/internal/store"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentNotification struct {
	userID  string
	subject string
	content map[string]interface{}
	code    int
}

// mockNotifications records NotificationSend calls.
type mockNotifications struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (m *mockNotifications) NotificationSend(_ context.Context, userID, subject string, content map[string]interface{}, code int, _ string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentNotification{userID: userID, subject: subject, content: content, code: code})
	return m.err
}

type mockUsers struct {
	users map[string]*api.User
	err   error
}

func (m *mockUsers) UsersGetId(_ context.Context, userIDs []string, _ []string) ([]*api.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*api.User
	for _, id := range userIDs {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

const (
	aliceID = "6f1c3a52-64a4-4c41-9c57-0d6a7e9e2a01"
	bobID   = "0b2a1d7e-5f43-4a8e-8d3b-2c8e5a9f1b02"
)

func newTestModule(t *testing.T) (*Module, *mockNotifications) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := &mockUsers{users: map[string]*api.User{
		aliceID: {Id: aliceID, Username: "alice", DisplayName: "Alice"},
		bobID:   {Id: bobID, Username: "bob"},
	}}
	svc, err := app.NewService(app.Deps{
		Store:    store.NewMemory(nil),
		RNG:      rand.New(rand.NewSource(3)),
		Profiles: NewProfileAdapter(users),
		Logger:   logger,
	}, config.Defaults())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	notes := &mockNotifications{}
	return NewModule(svc, NewNotifier(notes, logger)), notes
}

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

func mustRPC(t *testing.T, raw string, err error, dst any) {
	t.Helper()
	if err != nil {
		t.Fatalf("rpc error: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
}

func errorCode(t *testing.T, err error) int {
	t.Helper()
	var rerr *runtime.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("error %v is not a runtime.Error", err)
	}
	return rerr.Code
}

func TestRpcSessionFlow(t *testing.T) {
	m, notes := newTestModule(t)

	var created seatResponse
	raw, err := m.RpcCreateSession(userCtx(aliceID), noopLogger{}, nil, nil, `{"seatCount":2,"autostart":true,"waitForFull":true}`)
	mustRPC(t, raw, err, &created)
	if created.SeatID != aliceID || created.Status != string(domain.StatusWaiting) {
		t.Fatalf("created = %+v", created)
	}

	var joined seatResponse
	raw, err = m.RpcJoinSession(userCtx(bobID), noopLogger{}, nil, nil, `{"sessionId":"`+created.SessionID+`"}`)
	mustRPC(t, raw, err, &joined)
	if joined.Status != string(domain.StatusPlaying) {
		t.Fatalf("joined = %+v", joined)
	}

	// Bob's join and the deal are pushed to Alice only.
	if len(notes.sent) != 2 {
		t.Fatalf("notifications = %+v", notes.sent)
	}
	for _, n := range notes.sent {
		if n.userID != aliceID || n.content["session_id"] != created.SessionID {
			t.Fatalf("notification = %+v", n)
		}
	}
	if notes.sent[0].code != NotifyPlayerJoined || notes.sent[1].code != NotifyGameStarted {
		t.Fatalf("codes = %d, %d", notes.sent[0].code, notes.sent[1].code)
	}

	var state stateResponse
	raw, err = m.RpcGetState(userCtx(aliceID), noopLogger{}, nil, nil, `{"sessionId":"`+created.SessionID+`"}`)
	mustRPC(t, raw, err, &state)
	if state.State.You != aliceID || len(state.State.Hand) != domain.HandSize {
		t.Fatalf("state = %+v", state.State)
	}
	if state.State.Seats[0].Name != "Alice" || state.State.Seats[1].Name != "bob" {
		t.Fatalf("seat names = %+v", state.State.Seats)
	}

	lead := state.State.Hand[0]
	move := `{"sessionId":"` + created.SessionID + `","action":"attack","card":{"rank":"` + lead.Rank + `","suit":"` + string(lead.Suit) + `"}}`
	raw, err = m.RpcSubmitMove(userCtx(aliceID), noopLogger{}, nil, nil, move)
	mustRPC(t, raw, err, &state)
	if len(state.State.Table) != 1 || state.State.CurrentActor != bobID {
		t.Fatalf("after attack = %+v", state.State)
	}
	last := notes.sent[len(notes.sent)-1]
	if last.userID != bobID || last.code != NotifyMovePlayed || last.subject != string(app.EventMovePlayed) {
		t.Fatalf("move notification = %+v", last)
	}
}

func TestRpcErrors(t *testing.T) {
	m, _ := newTestModule(t)
	raw, err := m.RpcCreateSession(userCtx(aliceID), noopLogger{}, nil, nil, `{"seatCount":2}`)
	var created seatResponse
	mustRPC(t, raw, err, &created)
	session := `{"sessionId":"` + created.SessionID + `"}`

	tests := []struct {
		name string
		call func() (string, error)
		want int
	}{
		{
			name: "bad json",
			call: func() (string, error) { return m.RpcGetState(userCtx(aliceID), noopLogger{}, nil, nil, `{`) },
			want: codeInvalidArgument,
		},
		{
			name: "missing session id",
			call: func() (string, error) { return m.RpcJoinSession(userCtx(bobID), noopLogger{}, nil, nil, `{}`) },
			want: codeInvalidArgument,
		},
		{
			name: "invalid config",
			call: func() (string, error) {
				return m.RpcCreateSession(userCtx(aliceID), noopLogger{}, nil, nil, `{"seatCount":8}`)
			},
			want: codeInvalidArgument,
		},
		{
			name: "unknown session",
			call: func() (string, error) {
				return m.RpcGetState(userCtx(aliceID), noopLogger{}, nil, nil, `{"sessionId":"NOPE00"}`)
			},
			want: codeNotFound,
		},
		{
			name: "start by non-owner",
			call: func() (string, error) { return m.RpcStartSession(userCtx(bobID), noopLogger{}, nil, nil, session) },
			want: codePermissionDenied,
		},
		{
			name: "start alone",
			call: func() (string, error) { return m.RpcStartSession(userCtx(aliceID), noopLogger{}, nil, nil, session) },
			want: codeFailedPrecondition,
		},
		{
			name: "move without action",
			call: func() (string, error) { return m.RpcSubmitMove(userCtx(aliceID), noopLogger{}, nil, nil, session) },
			want: codeInvalidArgument,
		},
		{
			name: "move before start",
			call: func() (string, error) {
				return m.RpcSubmitMove(userCtx(aliceID), noopLogger{}, nil, nil, `{"sessionId":"`+created.SessionID+`","action":"take"}`)
			},
			want: codeFailedPrecondition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			if got := errorCode(t, err); got != tt.want {
				t.Fatalf("code = %d, want %d (%v)", got, tt.want, err)
			}
		})
	}

	if _, err := m.RpcJoinSession(userCtx(bobID), noopLogger{}, nil, nil, session); err != nil {
		t.Fatal(err)
	}
	_, err = m.RpcJoinSession(userCtx("carol"), noopLogger{}, nil, nil, session)
	if got := errorCode(t, err); got != codeResourceExhausted {
		t.Fatalf("full session code = %d", got)
	}
}

func TestToRuntimeError_Internal(t *testing.T) {
	err := toRuntimeError(noopLogger{}, RpcGetState, aliceID, errors.New("disk on fire"))
	if got := errorCode(t, err); got != codeInternal {
		t.Fatalf("code = %d", got)
	}
	if err.Error() != "Internal error" {
		t.Fatalf("internal details leaked: %q", err.Error())
	}
}

func TestProfileAdapter(t *testing.T) {
	users := &mockUsers{users: map[string]*api.User{
		aliceID: {Id: aliceID, Username: "alice", DisplayName: "Alice"},
		bobID:   {Id: bobID, Username: "bob"},
	}}
	a := NewProfileAdapter(users)
	ctx := context.Background()

	tests := []struct {
		id   string
		want string
	}{
		{id: aliceID, want: "Alice"},
		{id: bobID, want: "bob"},
		{id: "player_123", want: ""},
		{id: "9d8c7b6a-0000-4000-8000-000000000000", want: ""},
	}
	for _, tt := range tests {
		got, err := a.DisplayName(ctx, tt.id)
		if err != nil || got != tt.want {
			t.Errorf("DisplayName(%s) = %q, %v; want %q", tt.id, got, err, tt.want)
		}
	}

	users.err = errors.New("db down")
	if _, err := a.DisplayName(ctx, aliceID); err == nil {
		t.Fatal("lookup error should propagate")
	}
}

func TestNotifier_SkipsBotsActorAndDuplicates(t *testing.T) {
	notes := &mockNotifications{err: errors.New("offline")}
	n := NewNotifier(notes, slog.New(slog.NewTextHandler(io.Discard, nil)))
	seats := []app.SeatView{
		{ID: aliceID, Kind: domain.SeatHuman},
		{ID: bobID, Kind: domain.SeatHuman},
		{ID: bobID + "#2", Kind: domain.SeatHuman},
		{ID: "bot-1", Kind: domain.SeatBot},
	}
	events := []app.Event{
		{Kind: app.EventMovePlayed, Payload: app.MovePlayedPayload{SeatID: aliceID}},
		{Kind: app.EventGameEnded, Payload: app.GameEndedPayload{}},
	}

	n.Dispatch(context.Background(), "ROOM01", aliceID, seats, events)

	if len(notes.sent) != 2 {
		t.Fatalf("sent = %+v", notes.sent)
	}
	if notes.sent[0].userID != bobID || notes.sent[1].userID != bobID || notes.sent[1].code != NotifyGameEnded {
		t.Fatalf("sent = %+v", notes.sent)
	}
	payload, _ := notes.sent[0].content["payload"].(map[string]interface{})
	if payload["seat_id"] != aliceID {
		t.Fatalf("payload = %+v", notes.sent[0].content)
	}

	var nilNotifier *Notifier
	nilNotifier.Dispatch(context.Background(), "ROOM01", aliceID, seats, events)
}
