package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"durak/internal/app"
	"durak/internal/bot"
	"durak/internal/config"
	"durak/internal/store"
)

// InitModule wires the session RPCs for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	cfg := config.Defaults()
	if path := env["durak_config"]; path != "" {
		loaded, err := config.LoadGameConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return fmt.Errorf("durak config: %w", err)
	}

	level := slog.LevelInfo
	if env["durak_log_level"] == "debug" {
		level = slog.LevelDebug
	}
	slogger := newSlogLogger(logger, level)

	var roster *bot.Roster
	if cfg.BotIdentitiesPath != "" {
		loaded, err := bot.LoadRoster(cfg.BotIdentitiesPath)
		if err != nil {
			logger.Warn("Could not load bot identities: %v", err)
		} else {
			roster = loaded
		}
	}

	svc, err := app.NewService(app.Deps{
		Store:    store.NewMemory(nil),
		RNG:      rand.New(rand.NewSource(time.Now().UnixNano())),
		Roster:   roster,
		Profiles: NewProfileAdapter(nk),
		Logger:   slogger,
	}, cfg)
	if err != nil {
		return err
	}

	if err := NewModule(svc, NewNotifier(nk, slogger)).Register(initializer); err != nil {
		return err
	}

	// The init context ends with InitModule; the reaper lives as long as the runtime.
	go svc.RunReaper(context.Background())

	logger.Info("Durak Go module loaded.")
	return nil
}
