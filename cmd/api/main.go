package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/api/router"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/appointments"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/clients"
	appconfig "github.com/devSereneMINDS/Backend-Serene-MINDS/internal/config"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/dialogue"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/messaging/aisensy"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/observability/metrics"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/otp"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/payments"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/professionals"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

func main() {
	// Local development reads a .env file; deployed environments set real
	// variables and have no such file.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting serene-minds API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The stats queries run through database/sql on the pgx stdlib driver.
	statsDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open stats database handle", "error", err)
		os.Exit(1)
	}
	defer func() { _ = statsDB.Close() }()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	dialogueMetrics := metrics.NewDialogueMetrics(registry)
	messagingMetrics := metrics.NewMessagingMetrics(registry)

	// WhatsApp campaign delivery. Without an API key the dispatcher runs
	// disabled and every send reports ErrDisabled to its caller.
	var gateway *aisensy.Client
	if cfg.AiSensyAPIKey != "" {
		gateway, err = aisensy.New(aisensy.Config{
			BaseURL: cfg.AiSensyURL,
			APIKey:  cfg.AiSensyAPIKey,
			Timeout: cfg.AiSensyTimeout,
			Logger:  logger.Logger,
		})
		if err != nil {
			logger.Error("failed to create aisensy client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("AISENSY_API_KEY not set, whatsapp delivery disabled")
	}
	dispatcherCfg := notify.DispatcherConfig{
		SenderName: cfg.AiSensySender,
		Enabled:    cfg.WhatsAppEnabled && gateway != nil,
		Logger:     logger,
		Observer:   messagingMetrics.ObserveCampaign,
	}
	if gateway != nil {
		dispatcherCfg.Gateway = gateway
	}
	dispatcher := notify.NewDispatcher(dispatcherCfg)

	emailSender := buildEmailSender(ctx, cfg, logger)

	clientsRepo := clients.NewRepository(pool)
	professionalsRepo := professionals.NewRepository(pool)
	appointmentsRepo := appointments.NewRepository(pool)
	paymentsRepo := payments.NewRepository(pool)
	matcher := professionals.NewMatcher(professionalsRepo)

	webhookHandler := dialogue.NewHandler(dialogue.HandlerConfig{
		Matcher:            matcher,
		Clients:            clientsRepo,
		Sender:             dispatcher,
		Logger:             logger,
		CountryCallingCode: cfg.CountryCallingCode,
		BookingBaseURL:     cfg.BookingBaseURL,
		FallbackExpertise:  cfg.FallbackExpertise,
		DefaultPhotoURL:    cfg.DefaultPhotoURL,
		Observer:           dialogueMetrics.ObserveTurn,
	})

	var paymentsHandler *payments.Handler
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		razorpay, err := payments.NewRazorpayClient(payments.RazorpayConfig{
			KeyID:       cfg.RazorpayKeyID,
			KeySecret:   cfg.RazorpayKeySecret,
			BaseURL:     cfg.RazorpayBaseURL,
			TransferPct: int64(cfg.RazorpayTransferPct),
			Timeout:     cfg.RazorpayOrderTimeout,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("failed to create razorpay client", "error", err)
			os.Exit(1)
		}
		paymentsHandler = payments.NewHandler(razorpay, paymentsRepo, professionalsRepo,
			cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)
	} else {
		logger.Warn("razorpay credentials not set, payment endpoints disabled")
	}

	otpStore := otp.NewStore(redisClient, cfg.OTPTTL)

	routerCfg := &router.Config{
		Logger:               logger,
		WebhookHandler:       webhookHandler,
		ClientsHandler:       clients.NewHandler(clientsRepo, logger),
		ClientsRepo:          clientsRepo,
		ProfessionalsHandler: professionals.NewHandler(professionalsRepo, dispatcher, logger),
		StatsHandler:         professionals.NewStatsHandler(statsDB, logger),
		AppointmentsHandler:  appointments.NewHandler(appointmentsRepo, clientsRepo, professionalsRepo, emailSender, dispatcher, logger),
		PaymentsHandler:      paymentsHandler,
		OTPHandler:           otp.NewHandler(otpStore, emailSender, dispatcher, logger),
		NotifyHandler:        notify.NewHandler(emailSender, dispatcher, logger),
		MetricsHandler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AuthJWTSecret:        cfg.AuthJWTSecret,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildEmailSender selects the configured email provider, preferring SES when
// EMAIL_PROVIDER=ses, falling back to a logging stub when neither provider is
// usable.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.EmailProvider == "ses" {
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		return sender
	}
	logger.Warn("no email provider configured, using stub sender")
	return notify.NewStubEmailSender(logger)
}

// loadAWSConfig centralizes AWS SDK initialization. Static credentials are
// only injected when both halves are present; otherwise the default chain
// (instance profile, env, shared config) applies.
func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, loaders...)
}
