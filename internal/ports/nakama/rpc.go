package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"

	"durak/internal/app"
)

type createSessionPayload struct {
	SeatCount   int  `json:"seatCount"`
	BotCount    int  `json:"botCount"`
	Autostart   bool `json:"autostart"`
	WaitForFull bool `json:"waitForFull"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type cardPayload struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

type movePayload struct {
	SessionID string       `json:"sessionId"`
	Action    string       `json:"action"`
	Card      *cardPayload `json:"card,omitempty"`
}

type seatResponse struct {
	SessionID string `json:"sessionId"`
	SeatID    string `json:"seatId"`
	Status    string `json:"status"`
}

type stateResponse struct {
	State  app.View    `json:"state"`
	Events []app.Event `json:"events,omitempty"`
}

// Module exposes the session service as Nakama RPCs.
type Module struct {
	svc      *app.Service
	notifier *Notifier
}

// NewModule wires the RPC handlers. notifier may be nil.
func NewModule(svc *app.Service, notifier *Notifier) *Module {
	return &Module{svc: svc, notifier: notifier}
}

// Register registers every session RPC with the initializer.
func (m *Module) Register(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateSession: m.RpcCreateSession,
		RpcJoinSession:   m.RpcJoinSession,
		RpcGetState:      m.RpcGetState,
		RpcSubmitMove:    m.RpcSubmitMove,
		RpcStartSession:  m.RpcStartSession,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

// RpcCreateSession creates a session seating the caller.
//
// Payload: {"seatCount": 3, "botCount": 1, "autostart": true, "waitForFull": false}, all optional.
func (m *Module) RpcCreateSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID := requesterFromContext(ctx)
	var req createSessionPayload
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	res, err := m.svc.CreateSession(ctx, app.CreateSessionRequest{
		Requester:   userID,
		SeatCount:   req.SeatCount,
		BotCount:    req.BotCount,
		Autostart:   req.Autostart,
		WaitForFull: req.WaitForFull,
	})
	if err != nil {
		return "", toRuntimeError(logger, RpcCreateSession, userID, err)
	}
	logger.Info("RpcCreateSession [User:%s]: Created session %s", userID, res.SessionID)
	return encodeResponse(logger, seatResponse{SessionID: res.SessionID, SeatID: res.SeatID, Status: string(res.Status)})
}

// RpcJoinSession seats the caller in an unstarted session.
//
// Payload: {"sessionId": "ABC123"}
func (m *Module) RpcJoinSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID := requesterFromContext(ctx)
	var req sessionPayload
	if err := decodeSessionPayload(payload, &req); err != nil {
		return "", err
	}

	res, err := m.svc.JoinSession(ctx, req.SessionID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcJoinSession, userID, err)
	}
	m.notifyJoin(ctx, res)
	return encodeResponse(logger, seatResponse{SessionID: res.SessionID, SeatID: res.SeatID, Status: string(res.Status)})
}

// RpcGetState returns the caller's masked view of a session.
//
// Payload: {"sessionId": "ABC123"}
func (m *Module) RpcGetState(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID := requesterFromContext(ctx)
	var req sessionPayload
	if err := decodeSessionPayload(payload, &req); err != nil {
		return "", err
	}

	view, err := m.svc.GetState(ctx, req.SessionID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcGetState, userID, err)
	}
	return encodeResponse(logger, stateResponse{State: view})
}

// RpcSubmitMove applies the caller's move and any bot replies.
//
// Payload: {"sessionId": "ABC123", "action": "defend", "card": {"rank": "10", "suit": "H"}}
func (m *Module) RpcSubmitMove(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID := requesterFromContext(ctx)
	var req movePayload
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.SessionID == "" || req.Action == "" {
		return "", runtime.NewError("sessionId and action are required", codeInvalidArgument)
	}

	move := app.MoveRequest{SessionID: req.SessionID, Requester: userID, Action: req.Action}
	if req.Card != nil {
		move.Rank, move.Suit = req.Card.Rank, req.Card.Suit
	}
	res, err := m.svc.SubmitMove(ctx, move)
	if err != nil {
		return "", toRuntimeError(logger, RpcSubmitMove, userID, err)
	}
	if m.notifier != nil {
		m.notifier.Dispatch(ctx, res.View.SessionID, userID, res.View.Seats, res.Events)
	}
	return encodeResponse(logger, stateResponse{State: res.View, Events: res.Events})
}

// RpcStartSession deals a session the caller owns.
//
// Payload: {"sessionId": "ABC123"}
func (m *Module) RpcStartSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID := requesterFromContext(ctx)
	var req sessionPayload
	if err := decodeSessionPayload(payload, &req); err != nil {
		return "", err
	}

	res, err := m.svc.StartSession(ctx, req.SessionID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcStartSession, userID, err)
	}
	if m.notifier != nil {
		m.notifier.Dispatch(ctx, res.View.SessionID, userID, res.View.Seats, res.Events)
	}
	return encodeResponse(logger, stateResponse{State: res.View, Events: res.Events})
}

// notifyJoin forwards join events, including the deal when the join filled the room.
func (m *Module) notifyJoin(ctx context.Context, res app.JoinResult) {
	if m.notifier == nil || len(res.Events) == 0 {
		return
	}
	view, err := m.svc.GetState(ctx, res.SessionID, "")
	if err != nil {
		return
	}
	m.notifier.Dispatch(ctx, res.SessionID, res.SeatID, view.Seats, res.Events)
}

func requesterFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	return userID
}

func decodePayload(payload string, dst any) error {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	return nil
}

func decodeSessionPayload(payload string, dst *sessionPayload) error {
	if err := decodePayload(payload, dst); err != nil {
		return err
	}
	if dst.SessionID == "" {
		return runtime.NewError("sessionId is required", codeInvalidArgument)
	}
	return nil
}

func encodeResponse(logger runtime.Logger, v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode RPC response: %v", err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return string(out), nil
}

// toRuntimeError maps service errors onto gRPC status codes.
func toRuntimeError(logger runtime.Logger, rpc, userID string, err error) error {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return runtime.NewError(err.Error(), codeNotFound)
	case errors.Is(err, app.ErrForbidden):
		return runtime.NewError(err.Error(), codePermissionDenied)
	case errors.Is(err, app.ErrInvalidMove), errors.Is(err, app.ErrInvalidConfig):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	case errors.Is(err, app.ErrFull):
		return runtime.NewError(err.Error(), codeResourceExhausted)
	case errors.Is(err, app.ErrConflict):
		return runtime.NewError(err.Error(), codeFailedPrecondition)
	default:
		logger.Error("%s [User:%s]: %v", rpc, userID, err)
		return runtime.NewError("Internal error", codeInternal)
	}
}

// newSlogLogger bridges the runtime logger for the app layer.
func newSlogLogger(logger runtime.Logger, level slog.Leveler) *slog.Logger {
	return slog.New(NewLogHandler(logger, level))
}
