package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kikoune/server/internal/controller"
	roomRedis "github.com/kikoune/server/internal/repository/room/redis"
	"github.com/kikoune/server/internal/service/discord"
	"github.com/kikoune/server/internal/service/room"
	"github.com/kikoune/server/pkg/ctxlogger"
	"github.com/kikoune/server/pkg/nicovideodata"
	"github.com/kikoune/server/pkg/redisclient"
)

type AppConfig struct {
	Host                string `json:"host"`
	Port                int    `json:"port"`
	LogLevel            string `json:"log_level"`
	RedisHost           string `json:"redis_host"`
	RedisPort           int    `json:"redis_port"`
	RedisPassword       string `json:"-"`
	DiscordClientId     string `json:"discord_client_id"`
	DiscordClientSecret string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.DiscordClientId == "" {
		return fmt.Errorf("discord client id must be set")
	}
	if cfg.DiscordClientSecret == "" {
		return fmt.Errorf("discord client secret must be set")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := roomRedis.NewRepo(rc, logger)
	resolver := nicovideodata.New()
	roomService := room.NewService(roomRepo, resolver, logger)
	authService := discord.NewService(roomRepo, &discord.Config{
		ClientId:     cfg.DiscordClientId,
		ClientSecret: cfg.DiscordClientSecret,
	}, logger)
	controller := controller.NewController(roomService, authService, roomRepo, &controller.Config{
		DiscordClientId: cfg.DiscordClientId,
	}, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
