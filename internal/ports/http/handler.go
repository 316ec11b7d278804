package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"durak/internal/app"
)

type Handler struct {
	svc    *app.Service
	logger *slog.Logger
}

func NewHandler(svc *app.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	api := e.Group("/api")
	api.POST("/create-game", h.CreateGame)
	api.POST("/join-game/:id", h.JoinGame)
	api.GET("/game/:id", h.GetGame)
	api.POST("/game/:id/move", h.SubmitMove)
	api.POST("/game/:id/start", h.StartGame)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) CreateGame(c echo.Context) error {
	var req CreateGameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.CreateSession(c.Request().Context(), app.CreateSessionRequest{
		Requester:   req.PlayerID,
		SeatCount:   req.SeatCount,
		BotCount:    req.BotCount,
		Autostart:   req.Autostart,
		WaitForFull: req.WaitForFull,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, toSeatResponse(res))
}

func (h *Handler) JoinGame(c echo.Context) error {
	var req JoinGameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.JoinSession(c.Request().Context(), c.Param("id"), req.PlayerID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(res))
}

func (h *Handler) GetGame(c echo.Context) error {
	id := c.Param("id")
	requester, err := h.requester(c, id)
	if err != nil {
		return h.mapError(c, err)
	}

	view, err := h.svc.GetState(c.Request().Context(), id, requester)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, StateResponse{State: view})
}

func (h *Handler) SubmitMove(c echo.Context) error {
	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Action) == "" {
		return badRequest(c, "action is required")
	}

	id := c.Param("id")
	requester, err := h.requester(c, id)
	if err != nil {
		return h.mapError(c, err)
	}

	move := app.MoveRequest{SessionID: id, Requester: requester, Action: req.Action}
	if req.Card != nil {
		move.Rank, move.Suit = req.Card.Rank, req.Card.Suit
	}
	res, err := h.svc.SubmitMove(c.Request().Context(), move)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, StateResponse{State: res.View, Events: res.Events})
}

func (h *Handler) StartGame(c echo.Context) error {
	id := c.Param("id")
	requester, err := h.requester(c, id)
	if err != nil {
		return h.mapError(c, err)
	}

	res, err := h.svc.StartSession(c.Request().Context(), id, requester)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, StateResponse{State: res.View, Events: res.Events})
}

// requester resolves the acting seat from the bearer seat token. Requests
// without one are anonymous.
func (h *Handler) requester(c echo.Context, sessionID string) (string, error) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return "", nil
	}
	return h.svc.Authenticate(sessionID, strings.TrimSpace(token))
}

func toSeatResponse(r app.JoinResult) SeatResponse {
	return SeatResponse{
		GameID:    r.SessionID,
		PlayerID:  r.SeatID,
		SeatToken: r.SeatToken,
		Status:    string(r.Status),
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func (h *Handler) mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)
	kind := app.Kind(err)

	switch {
	case errors.Is(err, app.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: kind})
	case errors.Is(err, app.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Kind: kind})
	case errors.Is(err, app.ErrInvalidMove):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: kind})
	case errors.Is(err, app.ErrConflict), errors.Is(err, app.ErrFull):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Kind: kind})
	case errors.Is(err, app.ErrInvalidConfig):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: kind})
	default:
		h.logger.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: kind})
	}
}
