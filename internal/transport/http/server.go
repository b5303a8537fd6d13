package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/cache"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/config"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/database"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/handler"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/logger"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/queue"
	appredis "github.com/jesseruhland/SBUnit26TwitterClone/internal/redis"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/repository"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/service"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/session"
	sessionmw "github.com/jesseruhland/SBUnit26TwitterClone/internal/transport/http/middleware"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/view"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/worker"
)

// Run wires the application together and serves HTTP until interrupted.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.LogJSON)

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	// Redis is optional: without it timelines come straight from the
	// database and no fan-out workers run.
	var (
		timelineCache cache.TimelineCache
		publisher     queue.Publisher
		workerPool    *worker.Manager
	)
	if cfg.RedisURL != "" {
		redisClient, err := appredis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}

		timelineCache = cache.NewTimelineCache(redisClient.Client)
		publisher = queue.NewPublisher(redisClient.Client)
		consumer := queue.NewConsumer(redisClient.Client)

		workerHandler := worker.NewHandler(timelineCache, followRepo, messageRepo)
		workerPool = worker.NewManager(consumer, workerHandler)
		if err := workerPool.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer workerPool.Stop()
	} else {
		logrus.Info("redis not configured, serving timelines from database")
	}

	userService := service.NewUserService(userRepo, messageRepo, followRepo, likeRepo, db)
	messageService := service.NewMessageService(messageRepo, likeRepo, publisher)
	followService := service.NewFollowService(followRepo, userRepo, publisher)
	likeService := service.NewLikeService(likeRepo, messageRepo, db)
	timelineService := service.NewTimelineService(messageRepo, followRepo, likeRepo, timelineCache)

	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	sessions := session.NewManager(cfg.SessionSecret)
	sessionMiddleware := sessionmw.NewSessionMiddleware(sessions, userService)

	router := NewRouter(RouterConfig{
		HomeHandler:    handler.NewHomeHandler(timelineService, sessions, renderer),
		AuthHandler:    handler.NewAuthHandler(userService, sessions, renderer),
		UserHandler:    handler.NewUserHandler(userService, messageService, followService, likeService, sessions, renderer),
		MessageHandler: handler.NewMessageHandler(messageService, sessions, renderer),
		Session:        sessionMiddleware,
	})

	srv := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logrus.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
