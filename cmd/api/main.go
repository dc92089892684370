package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/vanline/support-service/internal/api/http"
	"github.com/vanline/support-service/internal/api/http/handlers"
	"github.com/vanline/support-service/internal/auth"
	"github.com/vanline/support-service/internal/cache"
	"github.com/vanline/support-service/internal/config"
	"github.com/vanline/support-service/internal/events"
	"github.com/vanline/support-service/internal/notify"
	"github.com/vanline/support-service/internal/observability"
	"github.com/vanline/support-service/internal/persistence"
	"github.com/vanline/support-service/internal/repository"
	"github.com/vanline/support-service/internal/service"
	"github.com/vanline/support-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	driverRepo := repository.NewDriverRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	ticketEventRepo := repository.NewTicketEventRepository(pool)
	quoteRepo := repository.NewQuoteRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)

	var sender notify.Sender = notify.NewLogSender(logger)
	if cfg.NATS.URL != "" {
		natsSender, err := notify.ConnectNATS(cfg.NATS, logger)
		if err != nil {
			logger.Warn("unable to reach nats; falling back to log sender", zap.Error(err))
		} else {
			sender = natsSender
			defer natsSender.Close()
		}
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		MessageRepo:     messageRepo,
		TicketEventRepo: ticketEventRepo,
		UserRepo:        userRepo,
		QuoteRepo:       quoteRepo,
		ReservationRepo: reservationRepo,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:      ticketRepo,
		UserRepo:        userRepo,
		TicketEventRepo: ticketEventRepo,
		Dispatcher:      dispatcher,
	})
	searchService := service.NewSearchService(service.SearchDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		DriverRepo: driverRepo,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		UserRepo:   userRepo,
		Recipients: cache.NewRecipientCache(redis.Client, cfg.Redis.RecipientTTL(), logger),
		Sender:     sender,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	worker.Start(dispatcher, notificationService, metrics, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService, assignmentService, searchService),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
