package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	authclient "github.com/vibast-solutions/lib-go-auth/client"
	authmiddleware "github.com/vibast-solutions/lib-go-auth/middleware"
	authlibservice "github.com/vibast-solutions/lib-go-auth/service"
	"github.com/vibast-solutions/ms-go-reservations/app/controller"
	"github.com/vibast-solutions/ms-go-reservations/app/events"
	"github.com/vibast-solutions/ms-go-reservations/app/gateway"
	"github.com/vibast-solutions/ms-go-reservations/app/repository"
	"github.com/vibast-solutions/ms-go-reservations/app/service"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
	"github.com/vibast-solutions/ms-go-reservations/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the reservations service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, reservationService, cleanup := mustCreateReservationService()
	defer cleanup()

	reservationController := controller.NewReservationController(reservationService)

	authGRPCClient, err := authclient.NewGRPCClientFromAddr(context.Background(), cfg.InternalEndpoints.AuthGRPCAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize auth gRPC client")
	}
	defer authGRPCClient.Close()

	internalAuthService := authlibservice.NewInternalAuthService(authGRPCClient)
	echoInternalAuthMiddleware := authmiddleware.NewEchoInternalAuthMiddleware(internalAuthService)

	e := setupHTTPServer(reservationController, echoInternalAuthMiddleware, cfg.App.ServiceName)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	reservationController *controller.ReservationController,
	internalAuthMiddleware *authmiddleware.EchoInternalAuthMiddleware,
	appServiceName string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(requireRequestID())
	e.Use(internalAuthMiddleware.RequireInternalAccess(appServiceName))

	e.GET("/health", reservationController.Health)

	reservations := e.Group("/reservations")
	reservations.POST("/initiate", reservationController.InitiateReservation)
	reservations.POST("/:gateway/verify", reservationController.VerifyPayment)
	reservations.DELETE("/:property_id", reservationController.CancelReservation)
	reservations.GET("/:property_id", reservationController.GetReservation)

	e.GET("/payments/:id", reservationController.GetPayment)
	e.PUT("/properties/:id", reservationController.UpsertProperty)

	return e
}

func requireRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "x-request-id header is required"})
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

func mustCreateReservationService() (*config.Config, *service.ReservationService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	var propertyRepo repository.PropertyStore = repository.NewPropertyRepository(db)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		propertyRepo = repository.NewCachedPropertyRepository(
			repository.NewPropertyRepository(db), redisClient, cfg.Redis.CacheTTL)
	}

	attemptRepo := repository.NewPaymentAttemptRepository(db)
	eventRepo := repository.NewReservationEventRepository(db)
	verificationRepo := repository.NewGatewayVerificationRepository(db)

	gatewayRegistry := gateway.NewRegistry(
		gateway.NewEsewaGateway(gateway.EsewaConfig{
			ProductCode: cfg.Esewa.ProductCode,
			SecretKey:   cfg.Esewa.SecretKey,
			FormURL:     cfg.Esewa.FormURL,
			StatusURL:   cfg.Esewa.StatusURL,
			HTTPTimeout: cfg.Esewa.HTTPTimeout,
		}),
		gateway.NewKhaltiGateway(gateway.KhaltiConfig{
			SecretKey:   cfg.Khalti.SecretKey,
			BaseURL:     cfg.Khalti.BaseURL,
			WebsiteURL:  cfg.Khalti.WebsiteURL,
			HTTPTimeout: cfg.Khalti.HTTPTimeout,
		}),
	)

	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			_ = db.Close()
			logrus.WithError(err).Fatal("Failed to initialize Kafka producer")
		}
	}

	reservationService := service.NewReservationService(
		propertyRepo,
		attemptRepo,
		eventRepo,
		verificationRepo,
		gatewayRegistry,
		servicePublisher(producer),
		cfg.Reservations,
	)

	cleanup := func() {
		if producer != nil {
			if err := producer.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close Kafka producer")
			}
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close Redis client")
			}
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, reservationService, cleanup
}

// servicePublisher avoids handing the service a typed nil when Kafka is not
// configured.
func servicePublisher(producer *events.Producer) service.EventPublisher {
	if producer == nil {
		return nil
	}
	return producer
}
