package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitchat/internal/auth"
	"github.com/mmynk/splitchat/internal/cache"
	"github.com/mmynk/splitchat/internal/config"
	"github.com/mmynk/splitchat/internal/events"
	"github.com/mmynk/splitchat/internal/extract"
	"github.com/mmynk/splitchat/internal/handlers"
	"github.com/mmynk/splitchat/internal/service"
	"github.com/mmynk/splitchat/internal/storage/sqlite"
	"github.com/mmynk/splitchat/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	hub := events.NewHub()
	done := make(chan struct{})
	defer close(done)
	go hub.Heartbeat(30*time.Second, done)

	broadcaster := &events.Broadcaster{Hub: hub}
	if cfg.AMQP.URL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			slog.Error("Failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		broadcaster.AMQP = publisher
		slog.Info("Event mirroring enabled", "exchange", cfg.AMQP.Exchange)
	}

	balanceCache := cache.New(cfg.Redis.Addr, cfg.Redis.TTL)
	if balanceCache != nil {
		defer balanceCache.Close()
		slog.Info("Balance cache enabled", "addr", cfg.Redis.Addr)
	}

	var extractor extract.Extractor
	if cfg.Extractor.URL != "" {
		extractor = extract.NewClient(cfg.Extractor.URL, cfg.Extractor.Timeout)
		slog.Info("Expense extraction enabled", "url", cfg.Extractor.URL)
	} else {
		slog.Warn("EXTRACTOR_URL not set, messages stay plain text")
	}

	chat := service.NewChatService(store, extractor, broadcaster, balanceCache)
	authenticator := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	handler := handlers.New(chat, authenticator, jwtManager, hub)

	// h2c serves HTTP/2 without TLS for clients that want it; plain
	// HTTP/1.1 (and websocket upgrades) pass through untouched.
	h2cHandler := h2c.NewHandler(handler.Router(), &http2.Server{})

	slog.Info("Server starting", "address", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
