package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labbridge/labbridge/internal/alerts"
	"github.com/labbridge/labbridge/internal/api"
	"github.com/labbridge/labbridge/internal/bot"
	"github.com/labbridge/labbridge/internal/config"
	"github.com/labbridge/labbridge/internal/notify"
	"github.com/labbridge/labbridge/internal/poller"
	"github.com/labbridge/labbridge/internal/probe"
	"github.com/labbridge/labbridge/internal/recipients"
	"github.com/labbridge/labbridge/internal/registry"
	"github.com/labbridge/labbridge/internal/store"
	"github.com/labbridge/labbridge/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("labbridge starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	b := cfg.Bridge
	slog.Info("config loaded",
		"registry_url", b.RegistryURL,
		"poll_interval", b.PollInterval,
		"alert_cooldown", b.AlertCooldown,
		"http_port", b.HTTPPort,
	)

	token := b.Telegram.Token()
	if token == "" {
		slog.Error("telegram bot token not set", "env", b.Telegram.TokenEnv)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tg, err := notify.NewTelegram(token)
	if err != nil {
		slog.Error("failed to connect to telegram", "err", err)
		os.Exit(1)
	}

	rc := registry.New(b.RegistryURL, b.RequestTimeout)
	engine := alerts.New(b.AlertCooldown)
	rs := recipients.New()
	st := store.New()

	var prober *probe.Prober
	if b.MetricsPath != "" {
		prober = probe.New(b.RegistryURL, b.MetricsPath, b.RequestTimeout)
	}

	// Watch config file for hot-reload. The running loops keep the settings
	// they were built with until restart; the reload is logged so operators
	// know a restart is needed.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config reloaded, restart to apply",
				"registry_url", updated.Bridge.RegistryURL)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Bot command loop: registers recipients and relays registry commands.
	dispatcher := bot.NewDispatcher(rc, rs, prober)
	go bot.Loop(ctx, tg.Updates(ctx), dispatcher, tg)

	// Background poll/evaluate/notify loop.
	p := poller.New(rc, engine, tg, rs, st, b.PollInterval)
	go p.Run(ctx)

	// Optional diagnostics HTTP surface: REST API + WebSocket hub.
	var httpSrv *http.Server
	if b.HTTPPort > 0 {
		hub := ws.New(st, b.BroadcastInterval)
		go hub.Run(ctx)

		httpMux := http.NewServeMux()
		httpMux.Handle("/api/", api.New(st, engine, rs, prober, hub, 2*b.PollInterval))
		httpMux.Handle("/ws/labs", hub)

		httpSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", b.HTTPPort),
			Handler: httpMux,
		}
		go func() {
			slog.Info("HTTP server listening", "port", b.HTTPPort)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("HTTP server stopped", "err", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("labbridge shutting down")
	if httpSrv != nil {
		httpSrv.Shutdown(context.Background()) //nolint:errcheck
	}
}
