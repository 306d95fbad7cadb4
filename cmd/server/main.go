// 电商后端服务入口：认证、商品目录与订单台账共用一个 HTTP 进程
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	authapp "github.com/wyfcoding/ecommerce/internal/auth/application"
	authdomain "github.com/wyfcoding/ecommerce/internal/auth/domain"
	authmsg "github.com/wyfcoding/ecommerce/internal/auth/infrastructure/messaging"
	authmysql "github.com/wyfcoding/ecommerce/internal/auth/infrastructure/persistence/mysql"
	authhttp "github.com/wyfcoding/ecommerce/internal/auth/interfaces/http"
	catalogapp "github.com/wyfcoding/ecommerce/internal/catalog/application"
	catalogmysql "github.com/wyfcoding/ecommerce/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/ecommerce/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/ecommerce/internal/order/application"
	orderdomain "github.com/wyfcoding/ecommerce/internal/order/domain"
	ordermsg "github.com/wyfcoding/ecommerce/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/ecommerce/internal/order/interfaces/http"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/mq"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "starting service",
		"service", cfg.ServiceName, "version", cfg.Version, "environment", cfg.Environment)

	// 金额 JSON 输出为数字而非字符串
	decimal.MarshalJSONWithoutQuotes = true

	m := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "failed to register metrics", "error", err)
		}
		go func() {
			if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil && err != http.ErrServerClosed {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		Metrics:            m,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&authmysql.UserModel{},
		&catalogmysql.ProductModel{},
		&ordermysql.OrderModel{},
		&ordermysql.OrderItemModel{},
	); err != nil {
		logger.Fatal(ctx, "failed to migrate database", "error", err)
	}

	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", "error", err)
	}
	defer redisCache.Close()

	var producer *mq.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to init kafka producer", "error", err)
		}
		defer producer.Close()
	}

	// 仓储
	userRepo := authmysql.NewUserRepository(database)
	productRepo := catalogmysql.NewProductRepository(database)
	orderRepo := ordermysql.NewOrderRepository(database)

	// 事件发布，未启用 Kafka 时为 nil，应用层按 nil 跳过
	userPublisher := userEventPublisher(producer, cfg.Kafka.UserTopic)
	orderPublisher := orderEventPublisher(producer, cfg.Kafka.OrderTopic)

	// 应用服务
	tokens := authapp.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireMinutes, cfg.JWT.Issuer)
	authCmd := authapp.NewAuthCommandService(userRepo, tokens, userPublisher, m)
	authQuery := authapp.NewAuthQueryService(userRepo)
	catalogCmd := catalogapp.NewCatalogCommandService(productRepo, redisCache, m)
	catalogQuery := catalogapp.NewCatalogQueryService(productRepo, redisCache,
		time.Duration(cfg.Redis.ProductCacheTTL)*time.Second)
	orderCmd := orderapp.NewOrderCommandService(orderRepo, productRepo, redisCache,
		orderPublisher, m)
	orderQuery := orderapp.NewOrderQueryService(orderRepo)

	// HTTP 路由
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisLimiter(redisCache.GetClient())
		router.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit, rateLimitSubject(tokens)))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	requireAuth := authhttp.RequireAuth(tokens, authQuery)
	requireAdmin := authhttp.RequireAdmin()

	api := router.Group("/api/v1")
	authhttp.NewHandler(authCmd, authQuery).RegisterRoutes(api)
	cataloghttp.NewHandler(catalogCmd, catalogQuery).RegisterRoutes(api, requireAuth, requireAdmin)
	orderhttp.NewHandler(orderCmd, orderQuery).RegisterRoutes(api, requireAuth)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	// 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", "error", err)
	}
	logger.Info(ctx, "server exited")
}

// rateLimitSubject 已认证请求按账户限流，令牌缺失或无效时回退到来源 IP
func rateLimitSubject(tokens *authapp.TokenManager) middleware.SubjectFunc {
	return func(c *gin.Context) string {
		header := c.GetHeader("Authorization")
		if raw, ok := strings.CutPrefix(header, "Bearer "); ok {
			if userID, err := tokens.Parse(raw); err == nil {
				return fmt.Sprintf("user:%d", userID)
			}
		}
		return ""
	}
}

func userEventPublisher(producer *mq.KafkaProducer, topic string) authdomain.EventPublisher {
	if producer == nil {
		return nil
	}
	return authmsg.NewKafkaEventPublisher(producer, topic)
}

func orderEventPublisher(producer *mq.KafkaProducer, topic string) orderdomain.EventPublisher {
	if producer == nil {
		return nil
	}
	return ordermsg.NewKafkaEventPublisher(producer, topic)
}
