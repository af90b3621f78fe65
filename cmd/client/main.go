package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Fragoler/simple-tactics-client/internal/agent"
	"github.com/Fragoler/simple-tactics-client/internal/client"
	"github.com/Fragoler/simple-tactics-client/internal/effects"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/internal/recording"
	"github.com/Fragoler/simple-tactics-client/internal/transport"
	"github.com/Fragoler/simple-tactics-client/internal/version"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Конфигурация: флаги поверх переменных окружения
	cfg := client.NewConfig()
	cfg.ServerURL = envOr("TC_SERVER_URL", cfg.ServerURL)
	cfg.GameToken = os.Getenv("TC_GAME_TOKEN")
	cfg.PlayerToken = os.Getenv("TC_PLAYER_TOKEN")

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Game server websocket URL")
	flag.StringVar(&cfg.GameToken, "game", cfg.GameToken, "Game token")
	flag.StringVar(&cfg.PlayerToken, "player", cfg.PlayerToken, "Player token")
	flag.BoolVar(&cfg.Bot, "bot", cfg.Bot, "Play own units automatically")
	flag.Float64Var(&cfg.AnimationSpeed, "speed", cfg.AnimationSpeed, "Effect playback speed multiplier")
	flag.StringVar(&cfg.RecordDir, "record", os.Getenv("TC_RECORD_DIR"), "Directory to save a recording of server messages")
	flag.Parse()

	logger.Log.Info("Starting Simple Tactics client...")
	logger.Log.WithFields(version.Info().Fields()).Info(version.String())

	if cfg.GameToken == "" || cfg.PlayerToken == "" {
		logger.Log.Fatal("Game and player tokens are required (-game, -player or TC_GAME_TOKEN, TC_PLAYER_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.WithError(err).Fatal("Client stopped with error")
	}
	logger.Log.Info("Done.")
}

// run связывает транспорт, сессию и (опционально) бота.
func run(ctx context.Context, cfg client.Config) error {
	var session *client.Session

	var recorder *recording.Recorder
	if cfg.RecordDir != "" {
		recorder = recording.NewRecorder(cfg.GameToken)
		defer saveRecording(cfg.RecordDir, recorder)
	}

	conn := transport.New(transport.Config{
		URL:             cfg.ServerURL,
		ReconnectDelays: cfg.ReconnectDelays,
	}, func(ctx context.Context, msg api.ServerMessage) error {
		if recorder != nil {
			recorder.Record(msg)
		}
		return session.Deliver(ctx, msg)
	})

	session = client.NewSession(cfg, conn, effects.DelayAnimator{Speed: cfg.AnimationSpeed})

	// После каждого (пере)подключения входим в партию заново
	conn.OnConnect(session.JoinGame)
	conn.OnStatus(func(s transport.Status) {
		session.Bus.Publish(event.ConnectionStatusChanged{Status: string(s)})
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return session.Run(gctx) })
	g.Go(func() error { return conn.Run(gctx) })

	if cfg.Bot {
		bot := agent.NewBot(session)
		g.Go(func() error { return bot.Run(gctx) })
	}

	return g.Wait()
}

func saveRecording(dir string, recorder *recording.Recorder) {
	if recorder.Len() == 0 {
		return
	}
	svc, err := recording.NewService(dir)
	if err != nil {
		logger.Log.WithError(err).Error("Recording not saved")
		return
	}
	if _, err := svc.Save(recorder.Snapshot()); err != nil {
		logger.Log.WithError(err).Error("Recording not saved")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
