package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"golang.org/x/sync/errgroup"

	"clubapi/docs"
	"clubapi/internal/analytics"
	"clubapi/internal/auth"
	"clubapi/internal/cache"
	"clubapi/internal/checkin"
	"clubapi/internal/config"
	"clubapi/internal/database"
	"clubapi/internal/database/migration"
	"clubapi/internal/events"
	"clubapi/internal/generator"
	handlers "clubapi/internal/http/handler"
	"clubapi/internal/http/middleware"
	"clubapi/internal/logger"
	"clubapi/internal/metrics"
	"clubapi/internal/notify"
	"clubapi/internal/otel"
	"clubapi/internal/payment"
	"clubapi/internal/repository/postgres"
	"clubapi/internal/service"
	"clubapi/internal/storage"
)

const (
	requestDeadline = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title Club API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) error {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown")
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := migration.Up(db, log); err != nil {
			return err
		}
	}

	scope := postgres.NewScope(db, cfg.Database.AuthenticatedRole, cfg.Database.ServiceRole)
	bunDB := bun.NewDB(db, pgdialect.New())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics, err := metrics.New(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	var (
		locker cache.Locker    = cache.NewLocalLocker()
		roles  cache.RoleCache = cache.NewMemoryRoleCache(cfg.Auth.RoleCacheTTL)
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		locker = cache.NewRedisLocker(rdb)
		roles = cache.NewRedisRoleCache(rdb, cfg.Auth.RoleCacheTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, using in-process locks and role cache")
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		defer kp.Close()
		publisher = kp
	}

	var (
		notifier notify.Publisher = notify.Noop{}
		queue    *notify.RabbitMQ
	)
	if cfg.RabbitMQ.URL != "" {
		queue, err = notify.NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer queue.Close()
		notifier = queue
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, notifications are dropped")
	}

	var gateway payment.Gateway = payment.Disabled{}
	if cfg.Stripe.SecretKey != "" {
		gateway = payment.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	var objStore storage.Storage = storage.Disabled{}
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
	}

	var verifier auth.Verifier
	if cfg.Auth.OIDCIssuer != "" {
		verifier, err = auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
		if err != nil {
			return err
		}
	} else {
		if cfg.Auth.JWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET or AUTH_OIDC_ISSUER is required")
		}
		verifier = auth.NewHMACVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	}

	deps := service.Deps{Tx: scope, Events: publisher, Notifier: notifier, Metrics: appMetrics}
	gen := generator.New(cfg.Generator.URL, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.Timeout)
	svcs := handlers.Services{
		Workshops:     service.NewWorkshopService(deps, gen),
		Registrations: service.NewRegistrationService(deps, gateway, checkin.NewSigner(cfg.CheckIn.Secret, cfg.CheckIn.TTL)),
		Refunds:       service.NewRefundService(deps, gateway, locker),
		Inventory:     service.NewInventoryService(deps, objStore),
		Invitations:   service.NewInvitationService(deps, roles),
		Members:       service.NewMemberService(deps, roles),
		Analytics:     analytics.NewService(bunDB, scope),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             10 * 1024 * 1024,
		DisableStartupMessage: true,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())
	app.Use(middleware.Deadline(requestDeadline))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, auth.Middleware(verifier, service.NewRoleResolver(scope, roles)), svcs)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	g, gctx := errgroup.WithContext(ctx)
	if queue != nil {
		var sender notify.Sender = notify.LogSender{}
		if cfg.Mail.APIKey != "" {
			sender = notify.NewMailerSend(cfg.Mail.APIKey, cfg.Mail.FromEmail, cfg.Mail.FromName)
		}
		worker := notify.NewWorker(queue, sender, cfg.Mail.AppURL)
		g.Go(func() error { return worker.Run(gctx) })
	}

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info().Str("event", "server_start").Str("addr", addr).Msg("listening")
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Str("event", "server_shutdown").Msg("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
