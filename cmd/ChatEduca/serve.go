package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	https_server "ChatEduca/api/http"
	"ChatEduca/internal/initial"
	"ChatEduca/pkg/metrics"
	"ChatEduca/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	opts := &Options{}
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts, migrate)
		},
	}
	opts.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run schema migration before serving")
	return cmd
}

func serve(ctx context.Context, opts *Options, migrate bool) error {
	conf, db, cleanup, err := opts.setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if migrate {
		if err := initial.AutoMigrate(db, conf.MigrateLegacyTables); err != nil {
			return err
		}
	}
	if !conf.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	rdb := initial.OpenRedis(ctx, conf.RedisConfig)
	defer func() {
		if err := rdb.Close(); err != nil {
			zlog.Warn("close redis", zap.Error(err))
		}
	}()
	pub := initial.OpenPublisher(conf.KafkaConfig)
	defer func() {
		if pub == nil {
			return
		}
		if err := pub.Close(); err != nil {
			zlog.Warn("close kafka publisher", zap.Error(err))
		}
	}()

	router, err := https_server.NewRouter(https_server.Deps{
		Config:    conf,
		DB:        db,
		Redis:     rdb,
		Publisher: pub,
		Metrics:   metrics.New(conf.AppName),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              conf.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr), zap.String("environment", conf.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
		return err
	}
	zlog.Info("server stopped")
	return nil
}
