package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/placegate"
	"github.com/unkn0wn-root/placegate/config"
	zaplog "github.com/unkn0wn-root/placegate/log/zap"
	"github.com/unkn0wn-root/placegate/reqlog"
	"github.com/unkn0wn-root/placegate/server"
	"github.com/unkn0wn-root/placegate/service"
	"github.com/unkn0wn-root/placegate/snapstore"
	"github.com/unkn0wn-root/placegate/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "placegate:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	store, err := newSnapStore(cfg)
	if err != nil {
		return err
	}

	cache, err := placegate.New(ctx, placegate.Options{
		Store: store,
		TTL:   cfg.TTL,
		Log:   zaplog.ZapLogger{L: logger.Named("cache")},
	})
	if err != nil {
		return err
	}
	defer cache.Close(ctx)

	logs, err := reqlog.New(cfg.DBFile)
	if err != nil {
		return err
	}
	defer logs.Close()

	recorder := service.NewAsyncRecorder(logs, 1, 1024)
	defer recorder.Close()

	svc, err := service.New(service.Options{
		Cache:    cache,
		Fetcher:  upstream.NewClient(upstream.Config{BaseURL: cfg.UpstreamURL}),
		Recorder: recorder,
		Log:      zaplog.ZapLogger{L: logger.Named("lookup")},
	})
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Service: svc,
		Cache:   cache,
		Stats:   logs,
		Log:     logger.Named("http"),
		Backend: cfg.SnapshotBackend,
	})

	logger.Info("starting",
		zap.Int("port", cfg.Port),
		zap.String("snapshot_backend", cfg.SnapshotBackend),
		zap.String("cache_file", cfg.CacheFile),
		zap.String("db_file", cfg.DBFile),
		zap.Duration("ttl", cfg.TTL),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(fmt.Sprintf(":%d", cfg.Port)) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newSnapStore(cfg config.Config) (snapstore.Store, error) {
	switch cfg.SnapshotBackend {
	case "redis":
		return snapstore.NewRedis(snapstore.RedisConfig{
			Client:      goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr}),
			CloseClient: true,
		})
	default:
		return snapstore.NewFile(cfg.CacheFile)
	}
}
