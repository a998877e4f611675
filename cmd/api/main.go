package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dm-chat/internal/config"
	"github.com/iamasit07/dm-chat/internal/logger"
	"github.com/iamasit07/dm-chat/internal/service/chat"
	"github.com/iamasit07/dm-chat/internal/service/presence"
	"github.com/iamasit07/dm-chat/internal/service/session"
	transportHttp "github.com/iamasit07/dm-chat/internal/transport/http"
	"github.com/iamasit07/dm-chat/internal/transport/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	redisrepo "github.com/iamasit07/dm-chat/internal/repository/redis"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			zlog.Info().Msg("no .env file found, using process environment")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}

	figure.NewFigure(cfg.AppName, "cybermedium", true).Print()

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger.Component(log, "db"))
	if err != nil {
		return err
	}
	defer st.close()

	// Redis is optional; history is read straight from the store without it
	var historyCache chat.HistoryCache
	if cfg.RedisEnabled() {
		if client := redisrepo.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, logger.Component(log, "redis")); client != nil {
			defer client.Close()
			historyCache = redisrepo.NewHistoryCache(client, cfg.HistoryCacheTTL)
		}
	}

	sessions := session.NewAuthService(st.users, []byte(cfg.JWTSecret), cfg.TokenTTL,
		session.WithBcryptCost(cfg.BcryptCost),
		session.WithLogger(logger.Component(log, "session")))

	registry := presence.NewRegistry()
	connManager := websocket.NewConnectionManager()

	routerOpts := []chat.RouterOption{
		chat.WithMaxLength(cfg.MaxMessageLength),
		chat.WithRouterLogger(logger.Component(log, "chat")),
	}
	if historyCache != nil {
		routerOpts = append(routerOpts, chat.WithCache(historyCache))
	}
	router := chat.NewRouter(sessions, registry, st.messages, connManager, routerOpts...)
	history := chat.NewHistoryService(sessions, st.messages, historyCache, logger.Component(log, "chat"))

	// operations run under the server context so they outlive a dropped client
	serverCtx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()

	wsHandler := websocket.NewHandler(serverCtx, connManager, registry, sessions, router, history,
		cfg.Origins(), logger.Component(log, "ws"))

	gin.SetMode(gin.ReleaseMode)
	engine := transportHttp.NewRouter(transportHttp.RouterDeps{
		Sessions:       sessions,
		History:        history,
		Presence:       registry,
		WebSocket:      wsHandler.HandleWebSocket,
		AllowedOrigins: cfg.Origins(),
		Log:            logger.Component(log, "http"),
	})

	if st.gc != nil {
		go st.gc.Run(serverCtx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.StoreBackend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info().Msg("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// hijacked websocket connections are not closed by Shutdown
	connManager.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	cancelServer()

	log.Info().Msg("server exited gracefully")
	return nil
}
