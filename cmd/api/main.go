// Command api serves the holiday match HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"holidaymatch/config"
	"holidaymatch/internal/adapters/auth"
	"holidaymatch/internal/adapters/cache"
	"holidaymatch/internal/adapters/queue"
	httpdelivery "holidaymatch/internal/delivery/http"
	"holidaymatch/internal/delivery/http/controllers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
	"holidaymatch/internal/repository/memory"
	"holidaymatch/internal/repository/postgres"
	"holidaymatch/internal/services"
)

type repositories struct {
	invitations   domain.InvitationRepository
	acceptor      domain.InvitationAcceptor
	conversations domain.ConversationRepository
	profiles      domain.ProfileRepository
	users         domain.UserRepository
	close         func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, "api")
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	var counters domain.CounterCache = cache.Noop{}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		counters = cache.NewRedisCache(client)
	}

	dispatcher, closeDispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	notifier := services.NewNotifier(repos.users, repos.profiles, dispatcher, logger)
	matchSvc := services.NewMatchService(repos.invitations, repos.profiles)
	conversationSvc := services.NewConversationService(repos.conversations, repos.invitations, repos.profiles, notifier)
	invitationSvc := services.NewInvitationService(repos.invitations, repos.acceptor, repos.profiles, notifier, counters, logger)
	eventSvc := services.NewEventService(repos.conversations, repos.profiles)
	profileSvc := services.NewProfileService(repos.profiles, services.NewDisclosurePolicy(matchSvc), matchSvc)

	inviteLimiter := middleware.NewLimiterStore(cfg.InviteRatePerMinute, cfg.InviteRateBurst, time.Minute)
	defer inviteLimiter.Stop()

	router := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:        logger,
		Verifier:      auth.NewJWTVerifier(cfg.JWTSecret),
		InviteLimiter: inviteLimiter,
		Invitations:   controllers.NewInvitationController(logger, invitationSvc),
		Matches:       controllers.NewMatchController(logger, matchSvc, conversationSvc),
		Conversations: controllers.NewConversationController(logger, conversationSvc),
		Profiles:      controllers.NewProfileController(logger, profileSvc),
		Events:        controllers.NewEventController(logger, eventSvc),
	})
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage, "dispatch", cfg.NotifyDispatch)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		invitations := memory.NewInvitationRepository()
		conversations := memory.NewConversationRepository()
		r := &repositories{
			invitations:   invitations,
			acceptor:      memory.NewInvitationAcceptor(invitations, conversations),
			conversations: conversations,
			close:         func() error { return nil },
		}
		profiles := memory.NewProfileRepository()
		users := memory.NewUserRepository()
		seedDemo(users, profiles)
		r.profiles, r.users = profiles, users
		logger.Warn("using in-memory storage, data is lost on restart")
		return r, nil
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &repositories{
		invitations:   postgres.NewInvitationRepository(db),
		acceptor:      postgres.NewInvitationAcceptor(db),
		conversations: postgres.NewConversationRepository(db),
		profiles:      postgres.NewProfileRepository(db),
		users:         postgres.NewUserRepository(db),
		close:         db.Close,
	}, nil
}

// newDispatcher returns the notification dispatcher and a function that releases it.
func newDispatcher(cfg *config.Config, logger *slog.Logger) (domain.NotificationDispatcher, func(), error) {
	if cfg.NotifyDispatch == config.DispatchAsynq {
		client, err := queue.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return queue.NewPublisher(client, logger), func() { _ = client.Close() }, nil
	}

	emails, err := newEmailService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	d := queue.NewInlineDispatcher(emails, logger)
	return d, d.Wait, nil
}
