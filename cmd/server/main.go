package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/scoop-shop/internal/adapter/handler"
	"github.com/rl1809/scoop-shop/internal/adapter/storage"
	"github.com/rl1809/scoop-shop/internal/core/domain"
	"github.com/rl1809/scoop-shop/internal/core/service"
	"github.com/rl1809/scoop-shop/internal/port"
	"github.com/rl1809/scoop-shop/pkg/config"
	"github.com/rl1809/scoop-shop/pkg/logger"
	"github.com/rl1809/scoop-shop/pkg/shutdown"
)

const healthInterval = 10 * time.Second

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Service: "scoop-shop", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize MySQL, optional
	var orders port.OrderRepository
	if cfg.MySQLDSN != "" {
		db, err := openMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		orders = storage.NewMySQLOrderRepository(db)
		log.Info("connected to mysql, order archive enabled")
	} else {
		log.Info("MYSQL_DSN not set, order archive disabled")
	}

	carts := storage.NewRedisCartStore(rdb, cfg.CartTTL, log.Named("cart-store"))
	cartService := service.NewCartService(carts, domain.DefaultCatalog(), log.Named("cart"))
	checkoutService := service.NewCheckoutService(carts, cfg.QueueSize, log.Named("checkout"))

	// Start archive workers
	archiver := service.NewArchiver(orders, log.Named("archiver"))
	var workers sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			archiver.Run(id, checkoutService.GetOrderQueue())
		}(i)
	}
	log.Info("started archive workers", zap.Int("count", cfg.WorkerCount))

	httpHandler, err := handler.NewHTTPHandler(cartService, checkoutService, carts, handler.Options{
		CookieSecure: cfg.CookieSecure,
		Store: handler.StoreInfo{
			Address: cfg.StoreAddress,
			Lat:     cfg.StoreLat,
			Lon:     cfg.StoreLon,
		},
		ImagesDir: cfg.ImagesDir,
	}, log.Named("http"))
	if err != nil {
		return fmt.Errorf("build http handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	grpcHandler := handler.NewGRPCHandler(carts, log.Named("grpc"))
	grpcHandler.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		grpcHandler.Watch(gctx, healthInterval)
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		grpcHandler.Shutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown", zap.Error(err))
		}
		log.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
		return nil
	})

	err = g.Wait()

	// Close order queue and wait for workers
	checkoutService.Close()
	workers.Wait()
	log.Info("workers stopped")

	return err
}

func openMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn, err := storage.ArchiveDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate mysql: %w", err)
	}
	return db, nil
}
