package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/mkravets/tradesim/internal/facades"
	"github.com/mkravets/tradesim/internal/handlers"
	"github.com/mkravets/tradesim/internal/jwt"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/middlewares"
	"github.com/mkravets/tradesim/internal/repositories"
	"github.com/mkravets/tradesim/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title tradesim API
// @version 1.0.0
// @description Trading simulator backend: virtual portfolios, market data and a daily lucky wheel
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		kafkaAddr, kafkaTopic,
		jwtSecret, jwtExp,
		startingBalance, sellEpsilon,
		providerTimeout, chartCacheTTL, fmpAPIKey,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		kafkaAddr, kafkaTopic,
		jwtSecret, jwtExp,
		startingBalance, sellEpsilon,
		providerTimeout, chartCacheTTL, fmpAPIKey,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, Kafka, JWT, trading and market-data
// configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, jwtExpSecond int,
	startingBalance, sellEpsilon float64,
	providerTimeoutSecond, chartCacheTTLSecond int,
	fmpAPIKey string,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "database")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")

	// Kafka config. An empty address disables event publishing.
	kafkaAddr = getEnv("KAFKA_ADDR", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "tradesim-events")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}

	// Trading config
	if startingBalance, err = strconv.ParseFloat(getEnv("STARTING_BALANCE", "10000"), 64); err != nil {
		return
	}
	if sellEpsilon, err = strconv.ParseFloat(getEnv("SELL_EPSILON", "0.00000001"), 64); err != nil {
		return
	}

	// Market data config
	if providerTimeoutSecond, err = strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECOND", "10")); err != nil {
		return
	}
	if chartCacheTTLSecond, err = strconv.Atoi(getEnv("CHART_CACHE_TTL_SECOND", "86400")); err != nil {
		return
	}
	fmpAPIKey = getEnv("FMP_API_KEY", "")

	return
}

// run initializes the logger, database, Redis, Kafka writer, market-data
// providers and the HTTP server. It sets up routes, applies middleware, and
// handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, jwtExpSecond int,
	startingBalance, sellEpsilon float64,
	providerTimeoutSecond, chartCacheTTLSecond int,
	fmpAPIKey string,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d", pgHost, pgPort)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Fatal("PostgreSQL connection error:", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Fatal("PostgreSQL ping failed:", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password: redisPassword,
		DB:       redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Fatal("Redis connection error:", err)
	}
	defer rdb.Close()

	// Kafka writer for trade and spin events. Left nil when no broker is
	// configured; the services treat that as publishing disabled.
	var kafkaWriter *kafka.Writer
	if kafkaAddr != "" {
		kafkaWriter = &kafka.Writer{
			Addr:     kafka.TCP(kafkaAddr),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kafkaWriter.Close()
		logger.Log.Infof("Kafka writer configured for %s, topic %s", kafkaAddr, kafkaTopic)
	}

	// Initialize JWT service
	jwtService := jwt.New(jwtSecretKey, time.Duration(jwtExpSecond)*time.Second)

	// Initialize repositories
	txRunner := repositories.NewTxRunner(db)
	accountReadRepo := repositories.NewAccountReadRepository(db)
	accountWriteRepo := repositories.NewAccountWriteRepository(db)
	positionReadRepo := repositories.NewPositionReadRepository(db)
	positionWriteRepo := repositories.NewPositionWriteRepository(db)
	transactionReadRepo := repositories.NewTransactionReadRepository(db)
	transactionWriteRepo := repositories.NewTransactionWriteRepository(db)
	spinReadRepo := repositories.NewSpinReadRepository(db)
	spinWriteRepo := repositories.NewSpinWriteRepository(db)
	assetRepo := repositories.NewAssetReadRepository(db)
	chartCacheRepo := repositories.NewChartCacheRepository(rdb, time.Duration(chartCacheTTLSecond)*time.Second)

	// Market data providers, tried in order until one answers.
	providerTimeout := time.Duration(providerTimeoutSecond) * time.Second
	resolver := facades.NewResolver(providerTimeout,
		facades.NewBinanceProvider("", providerTimeout),
		facades.NewCoinGeckoProvider("", providerTimeout),
		facades.NewYahooProvider("", providerTimeout),
		facades.NewStooqProvider("", providerTimeout),
		facades.NewFMPProvider("", fmpAPIKey, providerTimeout),
	)

	// Initialize services. Trades and spins on the same account share one
	// locker so they serialize against each other.
	locks := services.NewAccountLocker()
	balanceStore := struct {
		*repositories.AccountReadRepository
		*repositories.AccountWriteRepository
	}{accountReadRepo, accountWriteRepo}
	positionStore := struct {
		*repositories.PositionReadRepository
		*repositories.PositionWriteRepository
	}{positionReadRepo, positionWriteRepo}
	spinStore := struct {
		*repositories.SpinReadRepository
		*repositories.SpinWriteRepository
	}{spinReadRepo, spinWriteRepo}

	authService := services.NewAuthService(accountReadRepo, accountWriteRepo, jwtService, startingBalance)
	tradeService := services.NewTradeService(txRunner, balanceStore, positionStore, transactionWriteRepo, locks, kafkaWriterOrNil(kafkaWriter), sellEpsilon)
	rewardService := services.NewRewardService(txRunner, balanceStore, spinStore, locks, kafkaWriterOrNil(kafkaWriter))
	portfolioService := services.NewPortfolioService(positionReadRepo, accountReadRepo)
	chartService := services.NewChartService(chartCacheRepo, resolver, assetRepo)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	balanceHandler := handlers.NewGetBalanceHandler(portfolioService, jwtService)
	portfolioHandler := handlers.NewGetPortfolioHandler(portfolioService, jwtService)
	tradeHandler := handlers.NewTradeHandler(tradeService, jwtService)
	transactionsHandler := handlers.NewGetTransactionsHandler(transactionReadRepo, jwtService)
	spinHandler := handlers.NewSpinHandler(rewardService, jwtService)
	assetsHandler := handlers.NewGetAssetsHandler(assetRepo)
	chartHandler := handlers.NewGetChartHandler(chartService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/register", registerHandler)
		r.Post("/login", loginHandler)
		r.Get("/assets", assetsHandler)
		r.Get("/chart/{symbol}", chartHandler)

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(jwtService))
			r.Get("/balance", balanceHandler)
			r.Get("/portfolio", portfolioHandler)
			r.Post("/trade", tradeHandler)
			r.Get("/transactions", transactionsHandler)
			r.Post("/wheel/spin", spinHandler)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

// kafkaWriterOrNil keeps a nil *kafka.Writer from becoming a non-nil
// services.KafkaWriter interface value.
func kafkaWriterOrNil(w *kafka.Writer) services.KafkaWriter {
	if w == nil {
		return nil
	}
	return w
}
