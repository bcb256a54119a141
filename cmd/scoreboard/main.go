package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoops-broadcast/internal/display"
	"hoops-broadcast/internal/media"
	"hoops-broadcast/internal/monitor"
	"hoops-broadcast/internal/platform/config"
	"hoops-broadcast/internal/platform/logger"
	"hoops-broadcast/internal/platform/metrics"
	"hoops-broadcast/internal/scoresocket"
	"hoops-broadcast/internal/state"
	"hoops-broadcast/internal/token"
)

const (
	shutdownTimeout = 10 * time.Second
	tokenTimeout    = 10 * time.Second
	scoreboardQuiet = 500 * time.Millisecond
)

func main() {
	_ = config.Load()
	cfg := config.FromEnv()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	met := metrics.New()

	phase := state.Phase(cfg.Phase)
	if !phase.Valid() {
		log.Error("invalid PHASE", "phase", cfg.Phase)
		os.Exit(1)
	}

	stores := state.New()
	defer stores.Close()
	stores.Mode.Set(phase)

	if cfg.TokenRole != "" {
		fetchToken(log, met, cfg, phase)
	}

	// No media session is joined by this binary; the channel reads as disconnected.
	media.NewBridge(stores, log, met).Update(nil, "")

	board := display.NewDebouncer(scoreboardQuiet)
	defer board.Stop()
	client := scoresocket.New(scoresocket.Config{
		URL:                  cfg.WSURL,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		PingInterval:         cfg.PingInterval,
		PongWait:             cfg.PongWait,
		WriteWait:            cfg.WriteWait,
		MaxMessageSize:       cfg.MaxMessageSize,
	}, stores,
		scoresocket.WithLogger(log),
		scoresocket.WithMetrics(met),
		scoresocket.WithOnMessage(func(d state.ScoreData) {
			board.Call(func() {
				log.Info("scoreboard updated", "phase", string(d.Phase), "board", display.BuildScoreboard(d))
			})
		}),
	)
	client.Connect()

	h := monitor.NewHandler(stores, log, met)
	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: h.Routes()}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("monitor starting",
		"port", cfg.Port,
		"ws_url", cfg.WSURL,
		"phase", cfg.Phase,
		"log_level", cfg.LogLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, closing score socket")
	client.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("monitor stopped")
}

// fetchToken requests a credential for the configured role and logs what it
// grants. Failures are logged; the monitor keeps running without one.
func fetchToken(log *slog.Logger, met *metrics.Metrics, cfg config.Settings, phase state.Phase) {
	tc := token.NewClient(cfg.APIURL, token.WithLogger(log), token.WithMetrics(met))

	ctx, cancel := context.WithTimeout(context.Background(), tokenTimeout)
	defer cancel()

	resp, err := tc.Fetch(ctx, token.Request{
		Role:     token.Role(cfg.TokenRole),
		Phase:    phase,
		Metadata: map[string]string{"phase": string(phase)},
	})
	if err != nil {
		log.Error("token fetch failed", "role", cfg.TokenRole, "error", display.FormatError(err))
		return
	}

	claims, err := resp.Claims()
	if err != nil {
		log.Error("token is not a readable JWT", "room", resp.Room, "error", err)
		return
	}
	log.Info("token acquired",
		"room", resp.Room,
		"identity", claims.Identity(),
		"can_publish", claims.CanPublish(),
		"expired", claims.Expired(time.Now()),
	)
}
