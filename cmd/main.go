/**
 * @description
 * This is the main entry point for the monetization-service. It is responsible for
 * initializing all components of the service, including configuration, database connection,
 * external API clients, message brokers, repositories, the core application service,
 * and the HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/robfig/cron/v3: Scheduler for the orphan sweeper.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/paylinkclient, pkg/storageclient: Clients for external provider APIs.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/zelipay/monetization-service/internal/api"
	"github.com/zelipay/monetization-service/internal/app"
	"github.com/zelipay/monetization-service/internal/config"
	"github.com/zelipay/monetization-service/internal/store"
	"github.com/zelipay/monetization-service/pkg/paylinkclient"
	rmrabbit "github.com/zelipay/monetization-service/pkg/rabbitmq"
	"github.com/zelipay/monetization-service/pkg/storageclient"
)

func main() {
	// Load a local .env file when present; real deployments set env directly.
	_ = godotenv.Load()

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting monetization-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish events. This service only
	// publishes; a broker outage degrades to the no-op fallback.
	var eventProducer rmrabbit.Publisher
	rabbitProducer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		eventProducer = &rmrabbit.EventProducerFallback{}
	} else {
		defer rabbitProducer.Close()
		eventProducer = rabbitProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	externalTimeout := time.Duration(cfg.ExternalCallTimeoutSeconds) * time.Second

	// Initialize the clients for the storage and payment link providers.
	storageClient := storageclient.NewClient(cfg.StorageBaseURL, cfg.StorageBucket, cfg.StorageServiceKey, externalTimeout)
	paylinkClient := paylinkclient.NewClient(cfg.PaymentLinkAPIBaseURL, cfg.PaymentLinkAPIKey, externalTimeout)

	// Optional Redis listing cache. A missing or unreachable Redis only costs
	// cache hits, never startup.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; listing cache disabled\" env=REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; listing cache disabled\" err=%v", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; listing cache disabled\" err=%v", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	monetizationService := app.NewService(
		repository,
		storageClient,
		paylinkClient,
		eventProducer,
		cfg.EventExchange,
		cfg.PipelineCompensationEnabled,
	)
	if redisClient != nil {
		cacheTTL := time.Duration(cfg.ListingCacheTTLSeconds) * time.Second
		monetizationService.SetListingCache(
			app.NewRedisListingCache(redisClient, cfg.RedisCachePrefix, cacheTTL),
		)
	}

	// Schedule the orphan sweeper to retry cleanup of resources left behind by
	// failed pipeline runs.
	sweeper := app.NewOrphanSweeper(repository, storageClient, paylinkClient, cfg.OrphanSweepBatchSize)
	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(cfg.OrphanSweepSchedule, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		sweeper.Sweep(sweepCtx)
	}); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"orphan sweep schedule invalid\" schedule=%q err=%v", cfg.OrphanSweepSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize the API handlers.
	monetizationHandlers := api.NewMonetizationHandlers(monetizationService)

	// Set up the HTTP router and define the API routes.
	router := chi.NewRouter()
	router.Mount("/monetization", api.MonetizationRoutes(monetizationHandlers, cfg.JWKSURL))

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
