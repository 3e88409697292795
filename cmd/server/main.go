package main // Entry point package

import (
	"context"   // Shutdown and startup deadlines
	"errors"    // http.ErrServerClosed check
	"log/slog"  // Structured logging
	"net/http"  // HTTP server
	"os"        // Exit codes and stdout
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"github.com/joho/godotenv" // Optional .env loading

	"github.com/iliyamo/skillswap/internal/config"        // Internal config loader
	"github.com/iliyamo/skillswap/internal/observability" // Logger and tracing
	"github.com/iliyamo/skillswap/internal/queue"         // Swap event consumer
	"github.com/iliyamo/skillswap/internal/router"        // Internal router setup
	"github.com/iliyamo/skillswap/internal/service"       // Business services
	"github.com/iliyamo/skillswap/internal/storage"       // Avatar storage
	"github.com/iliyamo/skillswap/internal/store"         // Repository backend selection
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load() // Load environment config
	log := observability.NewLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, config.LoadTracingConfig(), cfg.Env)
	if err != nil {
		log.Error("tracing init failed", "err", err)
		os.Exit(1)
	}

	repos, closeStore, err := store.Open(cfg)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable, rate limiting in-process and cache disabled", "err", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitEnabled {
		events = service.NewRabbitPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartSwapConsumer(ctx, cfg.RabbitURL, cfg.SwapLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("swap consumer stopped", "err", err)
			}
		}()
	}

	objects := storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	users := service.NewUserService(repos.Users, objects, service.UserOptions{
		BcryptCost:     cfg.BcryptCost,
		AvatarMaxBytes: cfg.AvatarMaxBytes,
	})
	auth := service.NewAuthService(users, repos.Sessions, service.AuthOptions{
		Secret:     cfg.JWTSecret,
		AccessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	})

	e := router.New(router.Deps{
		Config:    cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		Logger:    log,
		Auth:      auth,
		Users:     users,
		Skills:    service.NewSkillService(repos.Skills, repos.Users),
		Swaps:     service.NewSwapService(repos.Swaps, events),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port, // Address string with port
		Handler:           router.WithCORS(e, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	if err := shutdownTracing(shCtx); err != nil {
		log.Warn("tracing shutdown failed", "err", err)
	}
}
