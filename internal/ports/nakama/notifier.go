package nakama

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"durak/internal/app"
	"durak/internal/domain"
)

type notificationSender interface {
	NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error
}

var notificationCodes = map[app.EventKind]int{
	app.EventPlayerJoined: NotifyPlayerJoined,
	app.EventGameStarted:  NotifyGameStarted,
	app.EventMovePlayed:   NotifyMovePlayed,
	app.EventGameEnded:    NotifyGameEnded,
}

// Notifier pushes session events to the other human seats so clients can refresh without polling.
type Notifier struct {
	nk     notificationSender
	logger *slog.Logger
}

func NewNotifier(nk notificationSender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{nk: nk, logger: logger}
}

// Dispatch sends each event to every human seat except actor.
// Delivery failures are logged and never fail the request.
func (n *Notifier) Dispatch(ctx context.Context, sessionID, actor string, seats []app.SeatView, events []app.Event) {
	if n == nil {
		return
	}
	recipients := broadcastTargets(seats, actor)
	if len(recipients) == 0 {
		return
	}
	for _, ev := range events {
		content, err := notificationContent(sessionID, ev)
		if err != nil {
			n.logger.Warn("encode notification failed", "session_id", sessionID, "kind", ev.Kind, "error", err)
			continue
		}
		for _, userID := range recipients {
			if err := n.nk.NotificationSend(ctx, userID, string(ev.Kind), content, notificationCodes[ev.Kind], "", false); err != nil {
				n.logger.Warn("notification send failed", "session_id", sessionID, "user_id", userID, "kind", ev.Kind, "error", err)
			}
		}
	}
}

// broadcastTargets lists human seats that map to Nakama users, skipping suffixed duplicates.
func broadcastTargets(seats []app.SeatView, actor string) []string {
	var out []string
	for _, s := range seats {
		if s.Kind != domain.SeatHuman || s.ID == actor || strings.Contains(s.ID, "#") {
			continue
		}
		out = append(out, s.ID)
	}
	return out
}

func notificationContent(sessionID string, ev app.Event) (map[string]interface{}, error) {
	raw, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session_id": sessionID,
		"kind":       string(ev.Kind),
		"payload":    payload,
	}, nil
}
