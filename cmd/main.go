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

	_ "github.com/franciscosanchezn/gin-foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-foodgram-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var (
	db            *gorm.DB
	redisClient   *redis.Client
	configuration *config.Config
)

// @title Foodgram API
// @version 1.0
// @description Recipe sharing API with favorites, shopping lists and author subscriptions
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// Initialize database connection
	setupDatabase(configuration)

	// Register custom binding rules before any request is bound
	checkPanicErr(validation.RegisterWithGin())

	// Rate limiting is optional
	setupRedis(configuration)

	// Initialize Gin router
	router := setupRouter()

	server := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	waitForShutdown(server)
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the database, migrates the schema and seeds the reference data
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(conf.Database())
	checkPanicErr(err)

	checkPanicErr(database.Migrate(db))

	if conf.SeedReferenceData {
		checkPanicErr(database.SeedReferenceData(db))
	} else {
		log.Info("Reference data seeding disabled")
	}
	return db
}

// setupRedis connects to Redis when REDIS_URL is set. Without it recipe
// creation is not rate limited.
func setupRedis(conf *config.Config) {
	if conf.RedisURL == "" {
		log.Info("REDIS_URL not set, recipe creation rate limiting disabled")
		return
	}

	opts, err := redis.ParseURL(conf.RedisURL)
	checkPanicErr(err)
	redisClient = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The limiter fails open, so an unreachable Redis is not fatal
		log.WithError(err).Warn("Redis is not reachable, rate limit checks will be skipped")
	}
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	var router *gin.Engine
	if configuration.Environment == "development" {
		router = gin.Default()
	} else {
		gin.SetMode(gin.ReleaseMode)
		router = gin.New()
		router.Use(gin.Recovery())
	}

	router.Use(middleware.RequestID())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     configuration.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Define routes
	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tokenTTL := time.Duration(configuration.JWTTTLHours) * time.Hour
	pageSize := configuration.PageSize

	oauthService := auth.NewOAuthService(db, configuration.JWTSecret, tokenTTL)
	if purged, err := oauthService.PurgeExpiredTokens(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to purge expired OAuth2 tokens")
	} else if purged > 0 {
		log.WithField("count", purged).Info("Purged expired OAuth2 tokens")
	}

	userService := services.NewUserService(db, pageSize)
	handlers := controllers.Handlers{
		Recipes: controllers.NewRecipeController(
			services.NewRecipeService(db, pageSize),
			services.NewShoppingListService(db),
		),
		Users:      controllers.NewUserController(userService, services.NewSubscriptionService(db, pageSize)),
		Catalog:    controllers.NewCatalogController(services.NewCatalogService(db)),
		Auth:       controllers.NewAuthController(userService, configuration.JWTSecret, tokenTTL),
		Clients:    controllers.NewClientController(services.NewClientService(db)),
		OAuthToken: oauthService.HandleToken,
	}
	if redisClient != nil {
		limiter := middleware.NewRecipeCreationRateLimiter(redisClient, configuration.RecipeCreateLimit)
		handlers.RecipeCreationLimit = limiter.Middleware()
	}

	controllers.RegisterRoutes(router.Group("/api"), handlers, []byte(configuration.JWTSecret))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// waitForShutdown blocks until SIGINT or SIGTERM, then drains in-flight requests
func waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}
	log.Info("Server stopped")
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service and its database are reachable
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	status := http.StatusOK
	state := "healthy"
	if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-foodgram-api",
	})
}
