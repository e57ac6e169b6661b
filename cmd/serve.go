package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CVESummary/internal/cvedb"
	"CVESummary/internal/metrics"
	"CVESummary/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "监听地址 (默认 :3000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	m := metrics.NewMetrics()
	service, db, cleanup, err := newService(cfg.Feed.UseCache, m)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if db != nil && cfg.Feed.GCTime > 0 {
		go pruneLoop(ctx, db, cfg.Feed.GCTime)
	}

	srv := server.New(service.Lookup, m)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.ServerAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("正在关闭HTTP服务...")
		return srv.Shutdown()
	}
}

// pruneLoop 定期清理超过 gcTime 的缓存记录
func pruneLoop(ctx context.Context, db *cvedb.CVEDatabase, gcTime time.Duration) {
	interval := gcTime / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := db.Prune(gcTime); err != nil {
				logger.Warn("清理缓存失败: %v", err)
			} else if n > 0 {
				logger.Info("清理了 %d 条过期缓存", n)
			}
		}
	}
}
