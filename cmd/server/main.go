package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/linkuphq/linkup/internal/api"
	"github.com/linkuphq/linkup/internal/auth"
	"github.com/linkuphq/linkup/internal/config"
	"github.com/linkuphq/linkup/internal/realtime"
	"github.com/linkuphq/linkup/internal/service"
	"github.com/linkuphq/linkup/internal/storage/sqlite"
	"github.com/linkuphq/linkup/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	registry := realtime.NewRegistry(slog.Default())
	gateway := realtime.NewGateway(registry, slog.Default())

	notifications := service.NewNotificationService(store, registry)
	server := api.NewServer(
		authenticator,
		jwtManager,
		service.NewUserService(store),
		service.NewFriendService(store, notifications),
		service.NewGroupService(store, notifications),
		service.NewFeedService(store, notifications),
		service.NewMessageService(store, registry),
		notifications,
		gateway,
	)

	// h2c allows HTTP/2 without TLS for clients that want it; HTTP/1.1
	// requests (including websocket upgrades) pass through untouched.
	handler := h2c.NewHandler(server.Router(), &http2.Server{})

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
