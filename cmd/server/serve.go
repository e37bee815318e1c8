package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/database"
	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/likes"
	"github.com/iliyamo/blog-api/internal/mailer"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/moderation"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/router"
	"github.com/iliyamo/blog-api/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	sender, err := mailer.New(cfg.Mail)
	if err != nil {
		return err
	}
	notifier, err := service.NewNotifier(cfg.Notify, sender, cfg.FrontendURL)
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient() // nil disables cache and rate limiting
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	codec := auth.NewCodec(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.CORS(cfg.CORSOrigins))

	router.Setup(e, router.Deps{
		Resolver:  auth.NewResolver(codec, users),
		DB:        db,
		Auth:      handler.NewAuthHandler(cfg, users, codec, notifier),
		Posts:     handler.NewPostHandler(posts),
		Comments:  handler.NewCommentHandler(moderation.NewService(repository.NewCommentRepo(db), posts)),
		Likes:     handler.NewLikeHandler(likes.NewGuard(repository.NewLikeRepo(db))),
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
