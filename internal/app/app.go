package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/digiworldadda/server/docs" // swagger docs
	"github.com/digiworldadda/server/internal/module/catalog"
	"github.com/digiworldadda/server/internal/module/payment"
	"github.com/digiworldadda/server/internal/module/payment/provider"
	"github.com/digiworldadda/server/internal/module/user"
	sharedcache "github.com/digiworldadda/server/internal/shared/cache"
	"github.com/digiworldadda/server/internal/shared/config"
	"github.com/digiworldadda/server/internal/shared/database"
	"github.com/digiworldadda/server/internal/shared/logger"
	"github.com/digiworldadda/server/internal/shared/metrics"
	"github.com/digiworldadda/server/internal/utils/middleware"
)

// App represents the application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics

	// Modules
	catalogHandler *catalog.Handler
	userHandler    *user.Handler
	paymentHandler *payment.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New("storefront"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	// Redis is optional; without it the rate limiter passes through.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			zapLog.Warn("redis connection failed, rate limiting disabled", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	}

	app.initModules()
	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

// initModules wires all application modules.
func (a *App) initModules() {
	// Catalog
	catalogRepo := catalog.NewRepository(a.db)
	resolver := catalog.NewResolver(catalogRepo, a.zapLogger)
	a.catalogHandler = catalog.NewHandler(catalogRepo)

	// Users
	userRepo := user.NewRepository(a.db)
	jwtManager := user.NewJWTManager(user.JWTConfig{
		Secret:            a.config.Auth.JWTSecret,
		AccessTokenExpiry: a.config.Auth.AccessTokenExpiry,
	})
	userService := user.NewService(userRepo, jwtManager, a.zapLogger)
	a.userHandler = user.NewHandler(userService, jwtManager, a.zapLogger)

	// Payment
	gateway := provider.NewRazorpayGateway(a.config.Razorpay, a.metrics, a.zapLogger)
	saleRepo := payment.NewRepository(a.db)
	paymentService := payment.NewService(saleRepo, resolver, gateway, a.config.Checkout, a.metrics, a.zapLogger)
	a.paymentHandler = payment.NewHandler(paymentService, a.zapLogger)
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.StorefrontCORSConfig(a.config.Server.AllowedOrigins)))
	r.Use(middleware.Metrics(a.metrics))

	if a.redis != nil {
		limiter := middleware.NewRedisLimiter(a.redis)
		r.Use(middleware.RateLimit(limiter, middleware.DefaultRateLimitConfig()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// registerRoutes mounts module routes. Payment lives directly under /api
// because its paths are a contract with the storefront client; the rest sits
// under the versioned group.
func (a *App) registerRoutes() {
	api := a.router.Group("/api")
	a.paymentHandler.RegisterRoutes(api)

	v1 := api.Group("/v1")
	a.catalogHandler.RegisterRoutes(v1)
	a.userHandler.RegisterRoutes(v1)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := sharedcache.Close(a.redis); err != nil {
			a.zapLogger.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.zapLogger.Warn("close database", zap.Error(err))
		}
	}
	_ = a.zapLogger.Sync()
}
