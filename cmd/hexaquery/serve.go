package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/davicafu/hexaquery/internal/config"
	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	sharedEvents "github.com/davicafu/hexaquery/internal/shared/events"
	infraEvents "github.com/davicafu/hexaquery/internal/shared/infra/events"
	sharedBus "github.com/davicafu/hexaquery/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/hexaquery/internal/shared/infra/platform/cache"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/metrics"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
	taskApp "github.com/davicafu/hexaquery/internal/task/application"
	taskHttp "github.com/davicafu/hexaquery/internal/task/infra/inbound/http"
	userApp "github.com/davicafu/hexaquery/internal/user/application"
	userHttp "github.com/davicafu/hexaquery/internal/user/infra/inbound/http"
	"github.com/davicafu/hexaquery/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return err
	}
	log := logger.Logger()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- DB ----------------
	conn, dialect, err := db.Open(ctx, db.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpen,
		ConnMaxIdle:  cfg.DBConnMaxIdle,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	if dialect == sqlexec.SQLite {
		if err := db.InitSQLite(ctx, conn); err != nil {
			return err
		}
	}
	log.Info("Database ready", zap.String("dialect", dialect.Name()))

	// ---------------- Cache ----------------
	var cache sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		mem := sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		defer mem.Stop()
		cache = mem
	} else {
		defer rdb.Close()
		cache = sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("Redis connected, result cache enabled")
	}

	// ---------------- Events ----------------
	var bus sharedBus.EventBus
	slowQueries := infraEvents.NewSlowQueryHandler(cfg.SlowQueryLogTime, log)
	if cfg.UseKafka {
		log.Info("Using Kafka for query events", zap.String("topic", cfg.KafkaTopicQuery))
		writer := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopicQuery,
			Balancer: &kafka.Hash{},
		}
		defer writer.Close()
		bus = infraEvents.NewKafkaPublisher(writer, log)

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopicQuery,
			GroupID:  "hexaquery-slow-queries",
			MinBytes: 10e3,
			MaxBytes: 10e6,
		})
		defer reader.Close()
		infraEvents.NewConsumerAdapter(reader, slowQueries, log).Start(ctx)
	} else {
		log.Info("Using in-memory bus for query events")
		mem := infraEvents.NewInMemoryEventBus(sharedEvents.QueryTopic)
		infraEvents.Drain(ctx, mem.Subscribe(100), slowQueries)
		bus = mem
	}

	// ---------------- Executor ----------------
	collector := metrics.NewCollector("hexaquery", nil)
	executor := sqlexec.NewExecutor(conn, dialect, log,
		sqlexec.WithCache(cache, cfg.CacheTTL),
		sqlexec.WithObserver(collector),
		sqlexec.WithObserver(infraEvents.NewQueryEventObserver(bus, log, time.Second)),
	)

	queryOpts := []query.Option{
		query.WithDefaultPerPage(cfg.QueryDefaultPerPage),
		query.WithMaxPerPage(cfg.QueryMaxPerPage),
	}
	if cfg.QueryStrict {
		queryOpts = append(queryOpts, query.WithStrict())
	}

	userService := userApp.NewUserService(executor, log, queryOpts...)
	taskService := taskApp.NewTaskService(executor, log, queryOpts...)

	// ---------------- HTTP ----------------
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(collector.Handler()))
	userHttp.RegisterUserRoutes(r, userHttp.NewUserHandler(userService))
	taskHttp.RegisterTaskRoutes(r, taskHttp.NewTaskHandler(taskService))

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
