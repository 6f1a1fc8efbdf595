package connection

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ezwallet/controller/auth"
	"ezwallet/controller/category"
	"ezwallet/controller/group"
	"ezwallet/controller/transaction"
	"ezwallet/controller/user"
	"ezwallet/middleware"
	"ezwallet/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	Config   *Config
	Store    services.Store
	Redis    redis.Cmdable // nil disables login throttling
	Logger   zerolog.Logger
	Registry *prometheus.Registry // a fresh registry when nil
}

// SetupRouter wires every controller under /api behind the shared guard.
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	codec, err := services.NewTokenCodec(services.TokenConfig{
		Secret:     []byte(cfg.AccessKey),
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}
	cookies := services.NewCookieManager(services.CookieConfig{
		Path:   cfg.CookiePath,
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
	})

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(registry, "ezwallet")
	guard := middleware.NewGuard(services.NewEvaluator(codec), cookies, metrics,
		deps.Logger.With().Str("component", "guard").Logger())

	var limiter *services.LoginLimiter
	if deps.Redis != nil {
		limiter = services.NewLoginLimiter(deps.Redis, services.LoginLimiterConfig{
			MaxAttempts: cfg.LoginMaxAttempts,
			Cooldown:    cfg.LoginCooldown,
		})
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.AccessLog(deps.Logger), metrics.Handler(), cors.New(corsConfig(cfg)))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	auth.AuthController(api, auth.Options{
		Store:   deps.Store,
		Codec:   codec,
		Cookies: cookies,
		Limiter: limiter,
		Log:     deps.Logger.With().Str("component", "auth").Logger(),
	})
	user.UserController(api, deps.Store, guard, deps.Logger)
	category.CategoryController(api, deps.Store, guard, deps.Logger)
	transaction.TransactionController(api, deps.Store, guard, deps.Logger)
	group.GroupController(api, deps.Store, guard, deps.Logger)

	return router, nil
}

// corsConfig reflects the request origin when no allow-list is configured;
// the session cookies need credentialed requests.
func corsConfig(cfg *Config) cors.Config {
	conf := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSAllowOrigins) > 0 {
		conf.AllowOrigins = cfg.CORSAllowOrigins
	} else {
		conf.AllowOriginFunc = func(string) bool { return true }
	}
	return conf
}

func StartServer() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	logger := NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	deps := Dependencies{Config: cfg, Store: store, Logger: logger}
	redisClient, err := RedisConnection(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		deps.Redis = redisClient
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	router, err := SetupRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *Config) (services.Store, func(), error) {
	if cfg.StoreDriver == StoreMemory {
		return services.NewMemoryStore(), func() {}, nil
	}
	fb, err := FBConnection(ctx, cfg.CredentialsFile, cfg.FirestoreProjectID)
	if err != nil {
		return nil, nil, err
	}
	return services.NewFirestoreStore(fb), func() { _ = fb.Close() }, nil
}
