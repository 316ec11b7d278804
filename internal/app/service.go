package app

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"durak/internal/bot"
	"durak/internal/config"
	"durak/internal/domain"
	"durak/internal/ports"
)

// Deps are the collaborators of Service. Store is required; the rest have defaults.
type Deps struct {
	Store    ports.SessionStore
	RNG      domain.RNG
	Roster   *bot.Roster
	Profiles ports.ProfilePort
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service contains Durak session use-cases operating on the session store.
type Service struct {
	store    ports.SessionStore
	rng      domain.RNG
	roster   *bot.Roster
	profiles ports.ProfilePort
	tokens   *SeatTokens
	logger   *slog.Logger
	now      func() time.Time
	cfg      config.GameConfig

	defaultBrain bot.Brain
	brains       map[bot.BotLevel]bot.Brain
}

// NewService validates cfg and wires the service. A nil RNG is replaced by a time-seeded source.
func NewService(deps Deps, cfg config.GameConfig) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("session store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := deps.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng = &lockedRNG{rng: rng}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	secret := cfg.SeatTokenSecret
	if secret == "" {
		secret = crand.Text()
		logger.Warn("seat token secret not configured, using a per-process secret")
	}

	s := &Service{
		store:    deps.Store,
		rng:      rng,
		roster:   deps.Roster,
		profiles: deps.Profiles,
		tokens:   NewSeatTokens(secret, cfg.SeatTokenTTL(), now),
		logger:   logger,
		now:      now,
		cfg:      cfg,
		brains:   make(map[bot.BotLevel]bot.Brain),
	}

	brain, err := s.brain(bot.BotLevel(cfg.BotLevel))
	if err != nil {
		return nil, err
	}
	s.defaultBrain = brain
	for i := 1; i <= s.roster.Len(); i++ {
		if _, err := s.brain(s.roster.Identity(i).Level); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CreateSessionRequest is the application-level input of CreateSession.
type CreateSessionRequest struct {
	Requester   string
	SeatCount   int
	BotCount    int
	Autostart   bool
	WaitForFull bool
}

// JoinResult identifies the seat a requester was given.
type JoinResult struct {
	SessionID string
	SeatID    string
	// SeatToken is the credential for the seat; SeatID is public.
	SeatToken string
	Status    domain.Status
	Events    []Event
}

// MoveRequest is the application-level input of SubmitMove.
type MoveRequest struct {
	SessionID string
	Requester string
	Action    string
	// Rank and Suit are required for attack, defend and extend.
	Rank string
	Suit string
}

// MoveResult is the requester's view after the move and any bot replies.
type MoveResult struct {
	View   View
	Events []Event
}

// CreateSession allocates a room, seats the requester and the requested bots,
// and deals immediately when autostart without waiting is requested.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (JoinResult, error) {
	cfg := domain.SessionConfig{
		SeatCount:   req.SeatCount,
		BotCount:    req.BotCount,
		Autostart:   req.Autostart,
		WaitForFull: req.WaitForFull,
	}
	if cfg.SeatCount == 0 && cfg.BotCount == 0 {
		cfg.SeatCount, cfg.BotCount = s.cfg.DefaultSeatCount, s.cfg.DefaultBotCount
	}
	if cfg.SeatCount < domain.MinSeats || cfg.SeatCount > domain.MaxSeats {
		return JoinResult{}, fmt.Errorf("%w: seat count %d outside [%d,%d]", ErrInvalidConfig, cfg.SeatCount, domain.MinSeats, domain.MaxSeats)
	}
	if cfg.BotCount < 0 || cfg.BotCount >= cfg.SeatCount {
		return JoinResult{}, fmt.Errorf("%w: bot count %d must be in [0,%d)", ErrInvalidConfig, cfg.BotCount, cfg.SeatCount)
	}

	owner := domain.Seat{ID: s.requesterID(req.Requester), Kind: domain.SeatHuman}
	owner.Name = s.displayName(ctx, owner.ID, 1)

	var events []Event
	for attempt := 0; attempt < maxRoomCodeAttempts; attempt++ {
		sess := &domain.Session{
			ID:        s.roomCode(),
			Config:    cfg,
			Owner:     owner.ID,
			Seats:     []domain.Seat{owner},
			CreatedAt: s.now(),
		}
		for range cfg.BotCount {
			s.addBot(sess)
		}
		events = nil
		if err := s.maybeAutoStart(sess, &events); err != nil {
			return JoinResult{}, s.fail(sess.ID, "create", err)
		}

		err := s.store.Create(ctx, sess)
		if errors.Is(err, ports.ErrSessionExists) {
			continue
		}
		if err != nil {
			return JoinResult{}, s.fail(sess.ID, "create", err)
		}

		s.logger.Info("session created",
			"session_id", sess.ID,
			"owner", owner.ID,
			"seat_count", cfg.SeatCount,
			"bot_count", cfg.BotCount,
			"autostart", cfg.Autostart,
			"wait_for_full", cfg.WaitForFull,
			"status", sess.Status(),
		)
		s.logEvents(sess.ID, events)
		return s.joinResult(sess, owner.ID, events)
	}
	return JoinResult{}, s.fail("", "create", fmt.Errorf("%w: no free room code after %d attempts", ErrInternal, maxRoomCodeAttempts))
}

// JoinSession seats requester in an unstarted session.
func (s *Service) JoinSession(ctx context.Context, sessionID, requester string) (JoinResult, error) {
	sessionID = normalizeID(sessionID)
	base := s.requesterID(requester)
	// Resolved before taking the session lock: profile lookups may block on the transport.
	name := s.displayName(ctx, base, 0)

	var seatID string
	var events []Event
	sess, err := s.store.Update(ctx, sessionID, func(sess *domain.Session) error {
		if sess.Game != nil {
			return ErrAlreadyStarted
		}
		if sess.OpenSeats() <= 0 {
			return fmt.Errorf("%w: %d of %d seats taken", ErrFull, len(sess.Seats), sess.Config.SeatCount)
		}
		seat := domain.Seat{ID: uniqueSeatID(base, sess.Seats), Kind: domain.SeatHuman, Name: name}
		if seat.Name == "" {
			seat.Name = fmt.Sprintf("Player %d", len(sess.Seats)+1)
		}
		sess.Seats = append(sess.Seats, seat)
		seatID = seat.ID
		events = append(events, Event{Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: seat.ID, Kind: seat.Kind}})
		return s.maybeAutoStart(sess, &events)
	})
	if err != nil {
		return JoinResult{}, s.fail(sessionID, "join", storeError(err))
	}

	s.logger.Info("seat joined", "session_id", sessionID, "seat_id", seatID, "seats", len(sess.Seats), "status", sess.Status())
	s.logEvents(sessionID, events)
	return s.joinResult(sess, seatID, events)
}

// StartSession deals a session that was created without autostart. Only the owner may start.
func (s *Service) StartSession(ctx context.Context, sessionID, requester string) (MoveResult, error) {
	sessionID = normalizeID(sessionID)
	requester = strings.TrimSpace(requester)
	var events []Event
	sess, err := s.store.Update(ctx, sessionID, func(sess *domain.Session) error {
		if sess.Game != nil {
			return ErrAlreadyStarted
		}
		if requester == "" || requester != sess.Owner {
			return ErrNotOwner
		}
		if len(sess.Seats) < domain.MinSeats {
			return fmt.Errorf("%w: %d seated", ErrTooFewPlayers, len(sess.Seats))
		}
		return s.deal(sess, &events)
	})
	if err != nil {
		return MoveResult{}, s.fail(sessionID, "start", storeError(err))
	}
	s.logger.Info("session started", "session_id", sessionID, "seats", len(sess.Seats))
	s.logEvents(sessionID, events)
	return MoveResult{View: buildView(sess, requester), Events: events}, nil
}

// GetState returns the session as seen by requester. Unknown requesters get the public view.
func (s *Service) GetState(ctx context.Context, sessionID, requester string) (View, error) {
	sessionID = normalizeID(sessionID)
	requester = strings.TrimSpace(requester)
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return View{}, storeError(err)
	}
	return buildView(sess, requester), nil
}

// SubmitMove applies the requester's move, then lets bots act until a human
// must move or the game ends. Nothing is committed unless every step succeeds.
func (s *Service) SubmitMove(ctx context.Context, req MoveRequest) (MoveResult, error) {
	sessionID := normalizeID(req.SessionID)
	requester := strings.TrimSpace(req.Requester)
	move, err := parseMove(req)
	if err != nil {
		return MoveResult{}, s.fail(sessionID, "move", err)
	}

	var events []Event
	sess, err := s.store.Update(ctx, sessionID, func(sess *domain.Session) error {
		seat, ok := sess.Seat(requester)
		if !ok || seat.IsBot() {
			return ErrNotSeated
		}
		g := sess.Game
		if g == nil {
			return ErrNotStarted
		}
		if g.Status == domain.StatusFinished {
			return ErrGameFinished
		}
		// Ownership is only reported to the current actor, so other seats
		// cannot ask who holds a card. The actor can still learn it from a rejected move.
		if g.CurrentActor != seat.ID {
			return classifyMoveError(domain.ErrNotYourTurn)
		}
		if move.Card != nil {
			if holder, held := domain.HolderOf(g, *move.Card); held && holder != seat.ID {
				return fmt.Errorf("%w: %s belongs to another seat", ErrForbidden, move.Card)
			}
		}

		if err := g.Apply(seat.ID, move); err != nil {
			return classifyMoveError(err)
		}
		events = append(events, movePlayed(g, seat, move))
		return s.settle(sess, &events)
	})
	if err != nil {
		return MoveResult{}, s.fail(sessionID, "move", storeError(err))
	}

	s.logger.Debug("move applied",
		"session_id", sessionID,
		"seat_id", requester,
		"move", move.String(),
		"events", len(events),
		"status", sess.Status(),
	)
	s.logEvents(sessionID, events)
	return MoveResult{View: buildView(sess, requester), Events: events}, nil
}

// Authenticate maps a seat token to a seat id. An empty credential yields
// the anonymous requester.
func (s *Service) Authenticate(sessionID, credential string) (string, error) {
	if credential == "" {
		return "", nil
	}
	sid, seat, err := s.tokens.Verify(credential)
	if err != nil {
		return "", err
	}
	if sid != normalizeID(sessionID) {
		return "", fmt.Errorf("%w: token issued for another session", ErrForbidden)
	}
	return seat, nil
}

// RunReaper deletes idle sessions every ReapInterval until ctx is done.
func (s *Service) RunReaper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReapInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ReapOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("reap failed", "error", err)
			}
		}
	}
}

// ReapOnce deletes sessions idle for longer than the session TTL, regardless of status.
func (s *Service) ReapOnce(ctx context.Context) (int, error) {
	reaped, err := s.store.Reap(ctx, s.now().Add(-s.cfg.SessionTTL()))
	if len(reaped) > 0 {
		s.logger.Info("sessions reaped", "count", len(reaped), "session_ids", reaped)
	}
	return len(reaped), err
}

// maybeAutoStart deals once the configured threshold is met.
func (s *Service) maybeAutoStart(sess *domain.Session, events *[]Event) error {
	if !sess.Config.Autostart || sess.Game != nil {
		return nil
	}
	if sess.Config.WaitForFull {
		if sess.OpenSeats() > 0 {
			return nil
		}
	} else {
		for sess.OpenSeats() > 0 {
			s.addBot(sess)
		}
	}
	return s.deal(sess, events)
}

func (s *Service) deal(sess *domain.Session, events *[]Event) error {
	deck := domain.NewShuffledDeck(s.rng)
	g, err := domain.NewGame(sess.Seats, deck, domain.StartOptions{LowestTrumpLeads: s.cfg.LowestTrumpLeads})
	if err != nil {
		if errors.Is(err, domain.ErrTooFewSeats) {
			return fmt.Errorf("%w: %w", ErrTooFewPlayers, err)
		}
		return fmt.Errorf("%w: deal: %w", ErrInternal, err)
	}
	sess.Game = g
	*events = append(*events, Event{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{TrumpCard: g.TrumpCard, Attacker: g.Attacker, Defender: g.Defender},
	})
	return s.settle(sess, events)
}

// settle runs the bot cascade, re-checks invariants and reports the end of the game.
func (s *Service) settle(sess *domain.Session, events *[]Event) error {
	if err := s.runBots(sess, events); err != nil {
		return err
	}
	g := sess.Game
	if err := g.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if g.Status == domain.StatusFinished && g.Result != nil {
		*events = append(*events, Event{Kind: EventGameEnded, Payload: GameEndedPayload{Result: *g.Result}})
	}
	return nil
}

// runBots plays bot turns until a human is to act or the game ends, bounded by MaxBotSteps.
func (s *Service) runBots(sess *domain.Session, events *[]Event) error {
	g := sess.Game
	for steps := 0; g.Status == domain.StatusPlaying; steps++ {
		seat, ok := g.Seat(g.CurrentActor)
		if !ok {
			return fmt.Errorf("%w: current actor %q has no seat", ErrInternal, g.CurrentActor)
		}
		if !seat.IsBot() {
			return nil
		}
		if steps >= s.cfg.MaxBotSteps {
			return fmt.Errorf("%w: bot cascade exceeded %d steps", ErrInternal, s.cfg.MaxBotSteps)
		}

		agent := &bot.Agent{ID: seat.ID, Name: seat.Name, Brain: s.brainFor(seat.ID)}
		move, err := agent.Play(g)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if err := g.Apply(seat.ID, move); err != nil {
			return fmt.Errorf("%w: bot %s played %s: %w", ErrInternal, seat.ID, move, err)
		}
		*events = append(*events, movePlayed(g, seat, move))
	}
	return nil
}

func (s *Service) addBot(sess *domain.Session) {
	index := 1
	for _, seat := range sess.Seats {
		if seat.IsBot() {
			index++
		}
	}
	identity := s.roster.Identity(index)
	sess.Seats = append(sess.Seats, domain.Seat{
		ID:   uniqueSeatID(identity.ID, sess.Seats),
		Kind: domain.SeatBot,
		Name: identity.DisplayName,
	})
}

func (s *Service) brain(level bot.BotLevel) (bot.Brain, error) {
	if b, ok := s.brains[level]; ok {
		return b, nil
	}
	b, err := bot.NewBrain(level, s.rng)
	if err != nil {
		return nil, err
	}
	s.brains[level] = b
	return b, nil
}

// brainFor picks the brain configured for a roster identity, else the default.
// The brains map is only written during NewService.
func (s *Service) brainFor(seatID string) bot.Brain {
	base, _, _ := strings.Cut(seatID, "#")
	for i := 1; i <= s.roster.Len(); i++ {
		identity := s.roster.Identity(i)
		if identity.ID == base && identity.Level != "" {
			if b, ok := s.brains[identity.Level]; ok {
				return b
			}
		}
	}
	return s.defaultBrain
}

func (s *Service) displayName(ctx context.Context, userID string, seatNumber int) string {
	if s.profiles != nil {
		name, err := s.profiles.DisplayName(ctx, userID)
		if err != nil {
			s.logger.Warn("display name lookup failed", "user_id", userID, "error", err)
		} else if name != "" {
			return name
		}
	}
	if seatNumber > 0 {
		return fmt.Sprintf("Player %d", seatNumber)
	}
	return ""
}

func (s *Service) joinResult(sess *domain.Session, seatID string, events []Event) (JoinResult, error) {
	token, err := s.tokens.Issue(sess.ID, seatID)
	if err != nil {
		return JoinResult{}, s.fail(sess.ID, "token", fmt.Errorf("%w: %w", ErrInternal, err))
	}
	return JoinResult{SessionID: sess.ID, SeatID: seatID, SeatToken: token, Status: sess.Status(), Events: events}, nil
}

func (s *Service) requesterID(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return anonymousPrefix + uuid.NewString()
	}
	return token
}

func (s *Service) roomCode() string {
	var b strings.Builder
	for range RoomCodeLength {
		b.WriteByte(roomCodeAlphabet[s.rng.Intn(len(roomCodeAlphabet))])
	}
	return b.String()
}

// fail logs err at a level matching its kind and returns it unchanged.
func (s *Service) fail(sessionID, op string, err error) error {
	kind := Kind(err)
	if kind == "internal" {
		s.logger.Error("session operation failed", "session_id", sessionID, "op", op, "kind", kind, "error", err)
	} else {
		s.logger.Debug("session operation rejected", "session_id", sessionID, "op", op, "kind", kind, "error", err)
	}
	return err
}

func (s *Service) logEvents(sessionID string, events []Event) {
	for _, ev := range events {
		s.logger.Debug("event", "session_id", sessionID, "kind", ev.Kind, "payload", ev.Payload)
	}
}

func parseMove(req MoveRequest) (domain.Move, error) {
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		return domain.Move{}, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
	move := domain.Move{Action: action}
	if !action.NeedsCard() {
		return move, nil
	}
	if req.Rank == "" && req.Suit == "" {
		return domain.Move{}, fmt.Errorf("%w: %w", ErrInvalidMove, domain.ErrCardRequired)
	}
	card, err := domain.ParseCard(req.Rank, req.Suit)
	if err != nil {
		return domain.Move{}, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
	move.Card = &card
	return move, nil
}

// uniqueSeatID returns base, or base#2, base#3... when base is already seated.
func uniqueSeatID(base string, seats []domain.Seat) string {
	taken := make(map[string]bool, len(seats))
	for _, seat := range seats {
		taken[seat.ID] = true
	}
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s#%d", base, n)
		if !taken[id] {
			return id
		}
	}
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// lockedRNG serializes access to a source shared by concurrent sessions.
type lockedRNG struct {
	mu  sync.Mutex
	rng domain.RNG
}

func (r *lockedRNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
