package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerHTTP "impact-ledger/internal/controller/http"
	"impact-ledger/internal/repo/persistent"
	"impact-ledger/internal/usecase"
	"impact-ledger/pkg/cache"
	"impact-ledger/pkg/config"
	"impact-ledger/pkg/database"
	"impact-ledger/pkg/jwt"
	"impact-ledger/pkg/logger"
	"impact-ledger/pkg/middleware"
	"impact-ledger/pkg/queue"
	"impact-ledger/pkg/s3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "impact-ledger/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	// Redis holds the ledger snapshots and transaction logs; without it
	// nothing survives a restart.
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v (continuing without audit archive)", err)
		db = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v (continuing without audit export)", err)
		s3Client = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	jwtService := jwt.NewService(cfg.JWTSecret)

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwtService,
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	ledgerRepo := persistent.NewLedgerRepository(a.redisClient, a.log)
	var archiveRepo persistent.ArchiveRepository
	if a.db != nil {
		archiveRepo = persistent.NewArchiveRepository(a.db)
	}

	// Initialize use cases
	ledgerUseCase := usecase.NewLedgerUseCase(
		ledgerRepo,
		archiveRepo,
		a.s3Client,
		a.queueClient,
		usecase.NewSystemClock(),
		a.log,
		time.Duration(a.cfg.LedgerConfirmDelayMs)*time.Millisecond,
	)

	// Initialize HTTP handlers
	ledgerHandler := ledgerHTTP.NewLedgerHandler(ledgerUseCase, a.log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.jwtService))
	api.Use(middleware.RateLimitMiddleware(a.redisClient, 100, time.Minute))
	{
		ledger := api.Group("/ledger")
		{
			ledger.POST("/initialize", ledgerHandler.Initialize)
			ledger.GET("", ledgerHandler.GetState)
			ledger.GET("/balance", ledgerHandler.GetBalance)
			ledger.GET("/rewards", ledgerHandler.GetRewards)
			ledger.POST("/rewards/:reward_id/unlock", ledgerHandler.UnlockReward)
			ledger.POST("/rewards/:reward_id/claim", ledgerHandler.ClaimReward)
			ledger.POST("/contribute", ledgerHandler.Contribute)
			ledger.POST("/transfer", ledgerHandler.Transfer)
			ledger.POST("/receive", ledgerHandler.Receive)
			ledger.POST("/stake", ledgerHandler.Stake)
			ledger.POST("/stakes/:stake_id/unstake", ledgerHandler.Unstake)
			ledger.GET("/transactions", ledgerHandler.GetTransactions)
			ledger.POST("/export", ledgerHandler.ExportAuditLog)
			ledger.POST("/reset", ledgerHandler.Reset)
		}
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Ledger service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down ledger service...")
}

func (a *App) Shutdown() error {
	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log.Error("Error closing database: %v", err)
			}
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	a.log.Info("Ledger service exited")
	return nil
}
