package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/config"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/handlers"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/middleware"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/services"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := pkg.NewLogger(pkg.ParseLogLevel(cfg.LogLevel))

	mongodb, err := repository.Connect(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer mongodb.Disconnect()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redisClient.Close()

	repos := repository.NewRepositories(mongodb)

	storage, err := services.NewStorageService(&services.StorageConfig{
		Provider:     cfg.Storage.Provider,
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		Endpoint:     cfg.Storage.Endpoint,
		BasePath:     cfg.Storage.BasePath,
		BaseURL:      cfg.Storage.BaseURL,
		AllowedTypes: cfg.Storage.AllowedTypes,
		MaxFileSize:  cfg.Storage.MaxFileSize,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var emailService services.EmailService = services.NopEmailService{}
	if cfg.Email.Enabled {
		emailService = services.NewSMTPEmailService(&services.EmailConfig{
			Host:      cfg.Email.Host,
			Port:      cfg.Email.Port,
			Username:  cfg.Email.Username,
			Password:  cfg.Email.Password,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		}, logger)
	}

	var sink services.NotificationSink = services.NewRedisNotifier(redisClient, logger)
	if cfg.Email.Enabled {
		sink = services.NewFanoutSink(sink, services.NewEmailSink(repos.User, emailService, logger))
	}

	folderService := services.NewFolderService(repos, storage, logger)
	fileService := services.NewFileService(repos, storage, logger)
	sharingService := services.NewSharingService(repos, sink, logger)
	fileSharingService := services.NewFileSharingService(repos, storage, sink, logger)
	verificationService := services.NewVerificationService(cfg.Verification.CodeTTL, nil, logger)
	accountService := services.NewAccountService(repos, verificationService, emailService, logger)

	jwtManager := pkg.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger)
	}

	router := handlers.NewRouter(
		handlers.NewFolderHandler(folderService, fileService),
		handlers.NewFileHandler(fileService),
		handlers.NewSharingHandler(sharingService, fileSharingService),
		handlers.NewAccountHandler(accountService),
		authMiddleware,
		limiter,
		logger,
	)

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Setup(engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	maintenance := worker.NewMaintenanceWorker(repos.PublicFileShare, verificationService, cfg.Worker.Interval, logger)
	go maintenance.Start(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("server listening", map[string]interface{}{
			"addr": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
