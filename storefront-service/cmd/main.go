package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/pkg/logger"
	"storefront/storefront-service/internal/app/storefront/checkout"
	"storefront/storefront-service/internal/app/storefront/config"
	"storefront/storefront-service/internal/app/storefront/handler"
	"storefront/storefront-service/internal/app/storefront/infrastructure"
	"storefront/storefront-service/internal/app/storefront/infrastructure/cache"
	catalogclient "storefront/storefront-service/internal/app/storefront/infrastructure/http"
	"storefront/storefront-service/internal/app/storefront/infrastructure/messaging"
	"storefront/storefront-service/internal/app/storefront/processor"
	"storefront/storefront-service/internal/app/storefront/repository"
	"storefront/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "storefront-service"

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Log.LogstashAddr).Msg("Logstash unavailable, logging to stdout only")
		}
	}
	logger.Info().Str("storage_driver", cfg.Storage.Driver).Msg("Starting Storefront Service")

	ctx := context.Background()

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis всегда нужен для кеша каталога, а при STORAGE_DRIVER=redis и для слотов
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Successfully connected to Redis")

	// === ХРАНИЛИЩЕ СЛОТОВ ===
	slotRepo, closeStorage, err := openSlotRepository(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open slot storage")
	}
	defer closeStorage()

	// === КАТАЛОГ ===
	catalogClient := catalogclient.NewCatalogClient(cfg.Catalog.URL, cfg.Catalog.Timeout)
	catalogCache := cache.NewRedisCatalogCache(redisClient, cfg.Catalog.CacheTTL)
	catalogService := service.NewCatalogService(catalogClient, catalogCache)

	// === KAFKA PRODUCER ===
	var publisher infrastructure.MessagePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")
	} else {
		publisher = messaging.NoopPublisher{}
		logger.Warn().Msg("KAFKA_BROKERS is off, order events will not be published")
	}
	defer publisher.Close()

	// === ИНИЦИАЛИЗАЦИЯ СЕРВИСОВ ===
	cartService := service.NewCartService(service.NewCartStore(slotRepo), catalogService, cfg.Persistence.SaveTimeout)
	authService := service.NewAuthService(slotRepo)
	checkoutService := service.NewCheckoutService(
		cartService,
		authService,
		checkout.NewValidator(),
		publisher,
		cfg.Kafka.PublishTimeout,
	)

	// === CRON SCHEDULER ===
	cronScheduler := processor.NewCronScheduler(catalogService, cfg.Session.IdleTTL, cartService, checkoutService)
	if err := cronScheduler.Start(ctx, cfg.Catalog.WarmSchedule, cfg.Session.PruneSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	// === HTTP ===
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions := handler.NewSessionManager(cfg.JWT.Secret, cfg.JWT.SessionTTL)
	router := handler.SetupRoutes(handler.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService),
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Auth:     handler.NewAuthHandler(authService),
	}, sessions, cfg.Server.AllowOrigins, func(c *gin.Context) error {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		return slotRepo.Ping(pingCtx)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Storefront Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Storefront Service stopped gracefully")
}

// openSlotRepository подключает выбранный драйвер слотов
func openSlotRepository(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (repository.SlotRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := connectDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := db.AutoMigrate(&repository.StorageSlot{}); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate storage_slots: %w", err)
		}
		logger.Info().Str("db", cfg.Database.DBName).Msg("Successfully connected to PostgreSQL")
		return repository.NewPostgresSlotRepository(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil

	case config.StorageMongo:
		client, err := connectMongo(ctx, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("db", cfg.MongoDB.Database).Msg("Successfully connected to MongoDB")
		return repository.NewMongoSlotRepository(client.Database(cfg.MongoDB.Database)), func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(disconnectCtx)
		}, nil

	default:
		return repository.NewRedisSlotRepository(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.SlotTTL), func() {}, nil
	}
}

// connectDB устанавливает соединение с PostgreSQL используя GORM
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	// Retry logic для устойчивости при запуске в Docker
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectRedis устанавливает соединение с Redis
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Проверяем соединение с retry logic
	var err error
	for i := 0; i < 10; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to Redis")
		time.Sleep(3 * time.Second)
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts: %w", err)
}

// connectMongo подключается к MongoDB и проверяет primary
func connectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	for i := 0; i < 10; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			return client, nil
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to ping MongoDB")
		time.Sleep(3 * time.Second)
	}

	client.Disconnect(ctx)
	return nil, fmt.Errorf("failed to connect to MongoDB after 10 attempts: %w", err)
}
