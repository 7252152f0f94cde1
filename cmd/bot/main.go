package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpx "github.com/hostbr/deploybot/internal/http"

	"github.com/hostbr/deploybot/internal/discord"
	"github.com/hostbr/deploybot/internal/service/adminlog"
	"github.com/hostbr/deploybot/internal/service/deploy"
	"github.com/hostbr/deploybot/internal/service/hosting"
	"github.com/hostbr/deploybot/internal/service/payment"
	"github.com/hostbr/deploybot/internal/service/poller"
	"github.com/hostbr/deploybot/internal/service/session"
	"github.com/hostbr/deploybot/internal/settings"
	"github.com/hostbr/deploybot/internal/workspace"
	"github.com/hostbr/deploybot/pkg/config"
	"github.com/hostbr/deploybot/pkg/logger"
)

func main() {
	cfg := config.LoadBotConfig()
	log := logger.New("bot", logger.ParseLevel(cfg.LogLevel))

	if cfg.DiscordToken == "" {
		log.Error("DISCORD_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws, err := workspace.New(cfg.TempDir)
	if err != nil {
		log.Error("failed to prepare temp workspace", "error", err)
		os.Exit(1)
	}

	settingsStore := settings.NewStore(cfg.SettingsPath, log)
	payments := payment.New(cfg.MercadoPagoToken, log)
	hostingAPI := hosting.New(cfg.SquareCloudKey, log)
	deployer := hosting.NewDeployer(hostingAPI, ws, log)
	registry := hosting.NewRegistry()
	sessions := session.NewStore()

	paymentPoller := poller.New(payments, poller.TickerScheduler{}, log, cfg.PollInterval, cfg.PaymentTimeout)

	metrics := httpx.NewMetrics()
	channelNotifier := discord.NewChannelNotifier(cfg, settingsStore, log)
	notifier := adminlog.Multi{adminlog.NewLogNotifier(log), metrics, channelNotifier}

	svc := deploy.New(deploy.Options{
		Sessions:        sessions,
		Payments:        payments,
		Poller:          paymentPoller,
		Deployer:        deployer,
		Hosting:         hostingAPI,
		Registry:        registry,
		Settings:        settingsStore,
		Notifier:        notifier,
		Logger:          log,
		DownloadTimeout: cfg.DownloadTimeout,
		MaxArtifactSize: cfg.MaxArtifactSize,
	})

	bot, err := discord.New(cfg, svc, paymentPoller, settingsStore, notifier, log)
	if err != nil {
		log.Error("failed to build discord bot", "error", err)
		os.Exit(1)
	}
	channelNotifier.Bind(bot.Session())

	if err := bot.Start(); err != nil {
		log.Error("failed to start discord bot", "error", err)
		os.Exit(1)
	}
	log.Info("bot started", "environment", cfg.Environment)

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           httpx.New(log, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("metrics server starting", "addr", cfg.MetricsAddr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}

	paymentPoller.StopAll()
	bot.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("bot stopped")
}
