// Command dagstored runs the content-addressed DAG store server: the
// hashed blob store and mutable-name register backed by Pebble, the LRU
// read cache in front of them, and the HTTP RPC facade exposing get_one,
// get_recursive, put_one, and put_tree (spec.md §6).
//
// Configuration is layered flags over environment variables (DAGSTORE_*),
// generalizing the teacher's env-var-only node/coordinator binaries onto
// cobra/viper.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dagcache/dagstore/internal/bulkput"
	"github.com/dagcache/dagstore/internal/cache"
	"github.com/dagcache/dagstore/internal/config"
	"github.com/dagcache/dagstore/internal/oneget"
	"github.com/dagcache/dagstore/internal/readthrough"
	"github.com/dagcache/dagstore/internal/recursiveget"
	"github.com/dagcache/dagstore/internal/rpcserver"
	"github.com/dagcache/dagstore/internal/store"
	"github.com/dagcache/dagstore/internal/telemetry"
)

func main() {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "dagstored",
		Short: "content-addressed DAG store server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(config.LoadServer(v))
		},
	}
	config.BindServerFlags(cmd, v)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Server) error {
	log, err := telemetry.NewLogger(cfg.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.TelemetryEndpoint != "" {
		log.Info("telemetry endpoint configured", zap.String("endpoint", cfg.TelemetryEndpoint))
	}

	blobs, err := store.OpenBlobStore(cfg.DataDir)
	if err != nil {
		log.Error("failed to open blob store", zap.Error(err))
		return err
	}
	defer blobs.Close()

	names := store.NewRegister(blobs.DB())

	nodeCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.Error("failed to build node cache", zap.Error(err))
		return err
	}

	getter := readthrough.New(nodeCache, blobs)
	bulk := bulkput.New(getter)
	recursive := recursiveget.New(getter)
	one := oneget.New(getter)

	srv := rpcserver.New(getter, bulk, recursive, one, names, log)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("dagstored listening", zap.String("addr", cfg.Listen), zap.String("data_dir", cfg.DataDir))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown error", zap.Error(err))
	}
	log.Info("dagstored stopped")
	return nil
}
