package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tricy/internal/config"
	handlers "tricy/internal/handlers/shared"
	"tricy/internal/middleware"
	"tricy/internal/repositories/graph"
	"tricy/internal/services"
	"tricy/internal/utils"
	"tricy/internal/validators"
	"tricy/pkg/cache"
	"tricy/pkg/database"
	"tricy/pkg/logger"
	"tricy/pkg/maps"
	"tricy/pkg/messaging"
	"tricy/pkg/oauth"
	"tricy/pkg/payment"
	"tricy/pkg/push"
	"tricy/pkg/sms"
	"tricy/pkg/storage"
	"tricy/pkg/websocket"
	"tricy/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Caller:  cfg.Log.Caller,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Graph store
	graphDB := database.NewGraphDB(&database.GraphConfig{
		URI:                     cfg.Database.URI,
		Username:                cfg.Database.Username,
		Password:                cfg.Database.Password,
		Database:                cfg.Database.Database,
		MaxConnectionPoolSize:   cfg.Database.MaxPoolSize,
		ConnectionTimeout:       cfg.Database.ConnectTimeout,
		MaxTransactionRetryTime: cfg.Database.MaxTransactionRetry,
		AllowInsecureFallback:   cfg.Database.AllowInsecureFallback,
	}, appLogger)
	if err := graphDB.Initialize(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Neo4j")
	}
	defer func() {
		if err := graphDB.Shutdown(context.Background()); err != nil {
			appLogger.WithError(err).Warn("Failed to close Neo4j driver")
		}
	}()
	if err := graphDB.EnsureConstraints(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure graph constraints")
	}

	healthChecks := map[string]handlers.HealthChecker{"neo4j": graphDB}

	// Booking snapshots and sign-in state
	var appCache cache.Cache = cache.NewMemoryCache()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    "tricy:",
		})
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, using in-process cache")
		} else {
			defer redisCache.Close()
			appCache = redisCache
			healthChecks["redis"] = redisCache
		}
	}

	// Event bus
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		rabbit, err := messaging.NewPublisher(&messaging.RabbitMQConfig{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			AppID:    cfg.App.Name,
		}, appLogger)
		if err != nil {
			appLogger.WithError(err).Warn("RabbitMQ unavailable, events will not be published")
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	// SMS
	var smsProvider sms.SMSProvider
	provider, err := sms.NewProvider(ctx, &sms.Config{
		Provider:     cfg.SMS.Provider,
		TwilioSID:    cfg.SMS.Twilio.AccountSID,
		TwilioToken:  cfg.SMS.Twilio.AuthToken,
		TwilioFrom:   cfg.SMS.Twilio.FromNumber,
		AWSRegion:    cfg.SMS.AWS.Region,
		AWSAccessKey: cfg.SMS.AWS.AccessKeyID,
		AWSSecretKey: cfg.SMS.AWS.SecretAccessKey,
		SenderID:     cfg.SMS.AWS.SenderID,
	})
	if err != nil {
		appLogger.WithError(err).Warn("SMS provider disabled")
	} else if provider != nil {
		smsProvider = provider
		appLogger.WithField("provider", provider.Name()).Info("SMS provider enabled")
	}

	// Device push
	var pusher services.DevicePusher
	pushRouter, err := push.NewRouterFromConfig(ctx, &push.Config{
		FCMCredentialsFile: cfg.Push.FCMCredentialsFile,
		APNSKeyFile:        cfg.Push.APNSKeyFile,
		APNSKeyID:          cfg.Push.APNSKeyID,
		APNSTeamID:         cfg.Push.APNSTeamID,
		APNSTopic:          cfg.Push.APNSTopic,
		APNSProduction:     cfg.Push.APNSProduction,
	})
	if err != nil {
		appLogger.WithError(err).Warn("Device push disabled")
	} else if pushRouter != nil {
		pusher = pushRouter
		appLogger.WithField("platforms", pushRouter.Platforms()).Info("Device push enabled")
	}

	// Geocoding
	var geocoder maps.Geocoder
	if cfg.Maps.GoogleAPIKey != "" {
		google, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleAPIKey, cfg.Maps.Region)
		if err != nil {
			appLogger.WithError(err).Warn("Geocoding disabled")
		} else {
			geocoder = google
		}
	}

	// Online payment verification
	paymentVerifier, err := payment.NewVerifier(&payment.Config{
		Provider:          cfg.Payment.Provider,
		StripeSecretKey:   cfg.Payment.StripeSecretKey,
		RazorpayKeyID:     cfg.Payment.RazorpayKeyID,
		RazorpayKeySecret: cfg.Payment.RazorpayKeySecret,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid payment gateway configuration")
	}
	if paymentVerifier != nil {
		appLogger.WithField("gateway", paymentVerifier.Name()).Info("Online payment verification enabled")
	}

	// Receipt archive
	receipts, err := storage.NewStore(ctx, &storage.Config{
		Provider:           cfg.Storage.Provider,
		Bucket:             cfg.Storage.Bucket,
		AWSRegion:          cfg.Storage.AWSRegion,
		AWSAccessKey:       cfg.Storage.AWSAccessKeyID,
		AWSSecretKey:       cfg.Storage.AWSSecretAccessKey,
		GCSCredentialsFile: cfg.Storage.GCSCredentialsFile,
		LocalPath:          cfg.Storage.LocalPath,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open receipt storage")
	}
	if receipts != nil {
		appLogger.WithField("store", receipts.Name()).Info("Receipt archive enabled")
	}

	// Realtime
	wsHandler := websocket.NewHandler(ctx, &websocket.Config{
		ReadBufferSize:   cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:  cfg.WebSocket.WriteBufferSize,
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		PingInterval:     cfg.WebSocket.PingInterval,
		PongTimeout:      cfg.WebSocket.PongTimeout,
		MaxMessageSize:   cfg.WebSocket.MaxMessageSize,
		AllowedOrigins:   cfg.Security.CORSAllowedOrigins,
	}, appLogger)

	// Repositories
	userRepo := graph.NewUserRepository(graphDB)
	driverRepo := graph.NewDriverRepository(graphDB)
	bookingRepo := graph.NewBookingRepository(graphDB, appCache, appLogger)
	transactionRepo := graph.NewTransactionRepository(graphDB)
	notificationRepo := graph.NewNotificationRepository(graphDB)

	// Services
	hasher := utils.NewPasswordHasher(cfg.Security.BcryptCost)
	tokens := utils.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL)
	events := services.NewEventDispatcher(publisher, wsHandler, appLogger)

	authService := services.NewAuthService(userRepo, hasher, tokens, events, appLogger)
	userService := services.NewUserService(userRepo, hasher, appLogger)
	driverService := services.NewDriverService(driverRepo, appLogger)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, wsHandler, events, smsProvider, pusher, appLogger)
	bookingService := services.NewBookingService(bookingRepo, notificationService, events, graphDB, geocoder, appLogger)
	transactionService := services.NewTransactionService(transactionRepo, events, receipts, paymentVerifier, appLogger)

	var oauthHandler *handlers.OAuthHandler
	if cfg.OAuth.GoogleEnabled() {
		google := oauth.NewGoogleProvider(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.GoogleRedirectURL)
		oauthService := services.NewOAuthService(google, appCache, userRepo, hasher, tokens, events, appLogger)
		oauthHandler = handlers.NewOAuthHandler(oauthService)
		appLogger.Info("Google sign-in enabled")
	}

	// HTTP
	validators.RegisterWithGin()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			appLogger.WithError(err).Fatal("Invalid TRUSTED_PROXIES")
		}
	}

	// Global middleware
	engine.Use(middleware.RecoveryMiddleware(appLogger))
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.LoggingMiddleware(appLogger))
	engine.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	routes.Setup(engine, &routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		OAuth:         oauthHandler,
		Users:         handlers.NewUserHandler(userService),
		Drivers:       handlers.NewDriverHandler(driverService),
		Bookings:      handlers.NewBookingHandler(bookingService),
		Transactions:  handlers.NewTransactionHandler(transactionService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Health:        handlers.NewHealthHandler(healthChecks),
		WebSocket:     wsHandler,
	}, authService)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithField("addr", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
}
