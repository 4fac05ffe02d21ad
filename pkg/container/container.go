package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	infraCache "shop-backend/internal/infrastructure/cache"
	"shop-backend/internal/infrastructure/database"
	"shop-backend/internal/infrastructure/email"
	"shop-backend/internal/infrastructure/events"
	"shop-backend/internal/infrastructure/queue"
	"shop-backend/internal/infrastructure/telemetry"
	pkgdb "shop-backend/pkg/database"
	"shop-backend/pkg/jwt"
	"shop-backend/pkg/logger"

	auditJob "shop-backend/internal/domains/audit/job"
	auditRepo "shop-backend/internal/domains/audit/repository"
	auditService "shop-backend/internal/domains/audit/service"
	bookingHandler "shop-backend/internal/domains/booking/handler"
	bookingModel "shop-backend/internal/domains/booking/model"
	bookingRepo "shop-backend/internal/domains/booking/repository"
	bookingService "shop-backend/internal/domains/booking/service"
	cartHandler "shop-backend/internal/domains/cart/handler"
	cartRepo "shop-backend/internal/domains/cart/repository"
	cartService "shop-backend/internal/domains/cart/service"
	notificationJob "shop-backend/internal/domains/notification/job"
	notificationService "shop-backend/internal/domains/notification/service"
	orderHandler "shop-backend/internal/domains/order/handler"
	orderJob "shop-backend/internal/domains/order/job"
	orderRepo "shop-backend/internal/domains/order/repository"
	orderService "shop-backend/internal/domains/order/service"
	"shop-backend/internal/domains/payment/gateway"
	paymentHandler "shop-backend/internal/domains/payment/handler"
	paymentService "shop-backend/internal/domains/payment/service"
	productHandler "shop-backend/internal/domains/product/handler"
	productRepo "shop-backend/internal/domains/product/repository"
	productService "shop-backend/internal/domains/product/service"
	reviewHandler "shop-backend/internal/domains/review/handler"
	reviewRepo "shop-backend/internal/domains/review/repository"
	reviewService "shop-backend/internal/domains/review/service"
	userHandler "shop-backend/internal/domains/user/handler"
	userRepo "shop-backend/internal/domains/user/repository"
	userService "shop-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph shared by the API and the worker.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       *infraCache.RedisClient
	AsynqClient *asynq.Client
	Publisher   events.Publisher
	JWTManager  *jwt.Manager
	Tx          *pkgdb.TxManager
	Gateway     gateway.Gateway
	Metrics     *telemetry.ShopMetrics
	MetricsHTTP http.Handler
	Recorder    auditService.Recorder

	shutdownTelemetry []func(context.Context) error

	// Repositories
	ProductRepo productRepo.ProductRepository
	ImageRepo   productRepo.ImageRepository
	CartRepo    cartRepo.Repository
	OrderRepo   orderRepo.Repository
	BookingRepo bookingRepo.Repository
	ReviewRepo  reviewRepo.Repository
	UserRepo    userRepo.Repository
	AuditRepo   auditRepo.Repository

	// Services
	ProductService productService.ServiceInterface
	CartService    cartService.ServiceInterface
	PaymentService paymentService.ServiceInterface
	OrderService   orderService.ServiceInterface
	BookingService bookingService.ServiceInterface
	ReviewService  reviewService.ServiceInterface
	UserService    userService.ServiceInterface

	// Handlers
	ProductHandler *productHandler.Handler
	CartHandler    *cartHandler.Handler
	PaymentHandler *paymentHandler.PaymentHandler
	OrderHandler   *orderHandler.Handler
	BookingHandler *bookingHandler.Handler
	ReviewHandler  *reviewHandler.Handler
	UserHandler    *userHandler.Handler
}

// NewContainer builds config, infrastructure, repositories, services and
// handlers in that order.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.App.Environment)
	logger.Info("[CONTAINER] config loaded", map[string]interface{}{"env": cfg.App.Environment})

	c := &Container{Config: cfg}

	if err := c.initTelemetry(ctx); err != nil {
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}
	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initRepositories(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	if err := c.initServices(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	c.initHandlers()

	logger.Info("[CONTAINER] initialized", nil)
	return c, nil
}

func (c *Container) initTelemetry(ctx context.Context) error {
	shutdownTracer, err := telemetry.InitTracerProvider(ctx, c.Config.Telemetry, c.Config.App.Version)
	if err != nil {
		return err
	}
	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(c.Config.Telemetry, c.Config.App.Version)
	if err != nil {
		return err
	}
	c.shutdownTelemetry = append(c.shutdownTelemetry, shutdownTracer, shutdownMeter)
	c.MetricsHTTP = metricsHandler
	c.Metrics = telemetry.NewShopMetrics()
	return nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	dbConfig, err := config.LoadDatabaseConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	c.DB = database.NewPostgresDB(dbConfig)
	connectCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	if err := c.DB.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Tx = pkgdb.NewTxManager(c.DB.Pool)

	c.Cache = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Connect(ctx); err != nil {
		// The API still serves without Redis; idempotency replay is skipped.
		logger.Error("[REDIS] connection failed (non-critical)", err)
	}

	c.AsynqClient = queue.NewClient(cfg.Redis)
	c.Recorder = auditService.NewRecorder(c.AsynqClient)
	c.Publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	switch cfg.Payment.Mode {
	case config.PaymentModeStripe:
		c.Gateway = gateway.NewStripeGateway(cfg.Payment.StripeSecretKey)
	default:
		c.Gateway = gateway.NewDemoGateway(cfg.Payment.Currency)
	}
	logger.Info("[PAYMENT] gateway selected", map[string]interface{}{"gateway": c.Gateway.Name()})
	return nil
}

func (c *Container) initRepositories() error {
	pool := c.DB.Pool

	c.ProductRepo = productRepo.NewPostgresRepository(pool)
	c.ImageRepo = productRepo.NewImageRepository(pool)
	c.CartRepo = cartRepo.NewPostgresRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresRepository(pool)
	c.BookingRepo = bookingRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.AuditRepo = auditRepo.NewPostgresRepository(pool)
	return nil
}

func (c *Container) initServices() error {
	calendar, err := bookingModel.NewCalendar(c.Config.Booking)
	if err != nil {
		return err
	}

	c.ProductService = productService.NewProductService(c.ProductRepo, c.ImageRepo, c.Recorder)
	c.CartService = cartService.NewCartService(c.CartRepo, c.ProductRepo, c.Tx)
	c.PaymentService = paymentService.NewPaymentService(
		c.OrderRepo,
		c.ProductRepo,
		c.CartRepo,
		c.Gateway,
		c.Tx,
		c.AsynqClient,
		c.Publisher,
		c.Metrics,
		*c.Config,
	)
	c.OrderService = orderService.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.Gateway,
		c.Tx,
		c.Recorder,
		c.Publisher,
	)
	c.BookingService = bookingService.NewBookingService(
		c.BookingRepo,
		calendar,
		c.Tx,
		c.Recorder,
		c.Metrics,
		c.Config.Booking.CancelCutoff,
	)
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.Recorder)
	c.UserService = userService.NewUserService(c.UserRepo, c.Recorder)
	return nil
}

func (c *Container) initHandlers() {
	c.ProductHandler = productHandler.NewHandler(c.ProductService)
	c.CartHandler = cartHandler.NewHandler(c.CartService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService)
	c.OrderHandler = orderHandler.NewHandler(c.OrderService)
	c.BookingHandler = bookingHandler.NewHandler(c.BookingService)
	c.ReviewHandler = reviewHandler.NewHandler(c.ReviewService)
	c.UserHandler = userHandler.NewHandler(c.UserService)
}

// Workers holds the asynq task handlers run by cmd/worker.
type Workers struct {
	WriteAuditLog         *auditJob.WriteAuditLogHandler
	SendOrderConfirmation *notificationJob.SendOrderConfirmationHandler
	ExpirePendingOrders   *orderJob.ExpirePendingOrdersHandler
}

func (c *Container) NewWorkers() *Workers {
	mailer := notificationService.NewOrderMailer(email.NewSMTPEmailService(c.Config.Email), c.Config.App.Name)
	return &Workers{
		WriteAuditLog:         auditJob.NewWriteAuditLogHandler(c.AuditRepo),
		SendOrderConfirmation: notificationJob.NewSendOrderConfirmationHandler(mailer),
		ExpirePendingOrders:   orderJob.NewExpirePendingOrdersHandler(c.OrderService, c.Config.Checkout.PendingOrderTTL),
	}
}

// Cleanup releases every resource. Safe on a partially built container.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("[QUEUE] failed to close client", err)
		}
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			logger.Error("[EVENTS] failed to close publisher", err)
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error("[REDIS] failed to close", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, shutdown := range c.shutdownTelemetry {
		if err := shutdown(ctx); err != nil {
			logger.Error("[TELEMETRY] shutdown failed", err)
		}
	}
}
