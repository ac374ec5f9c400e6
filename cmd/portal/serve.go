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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/config"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/server"
)

var (
	port          int
	devMode       bool
	portSpecified bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP API 服务",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 命令行参数覆盖配置
	if port > 0 && !portSpecified {
		cfg.Server.Port = port
	}
	if devMode {
		cfg.Server.DevMode = true
	}

	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		zap.L().Warn("创建数据目录失败", zap.Error(err))
	} else {
		zap.L().Info("数据目录", zap.String("path", dir))
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if cfg.Data.WatchCatalog {
		if err := srv.WatchCatalog(ctx); err != nil {
			zap.L().Warn("无法监听住宿目录文件", zap.Error(err))
		}
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("服务启动", zap.Int("port", cfg.Server.Port), zap.Bool("dev", cfg.Server.DevMode))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务启动失败: %w", err)
		}
		return nil
	case <-quit:
	}

	zap.L().Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
