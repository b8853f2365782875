package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	https_server "FPKProgress/api/http"
	"FPKProgress/internal/config"
	"FPKProgress/pkg/redis"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

func main() {
	conf := config.GetConfig()
	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// 1. 后台任务：outbox 转发、实时推送、定时重算
	bg := https_server.Background
	if bg.Relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bg.Relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zlog.Error("outbox relay stopped", zap.Error(err))
			}
		}()
	}
	if bg.Push != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bg.Push.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zlog.Error("push worker stopped", zap.Error(err))
			}
		}()
	}
	bg.Scheduler.Start()

	// 2. 启动 HTTP 服务
	srv := &http.Server{Addr: addr, Handler: https_server.GE}
	go func() {
		zlog.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server start failed", zap.Error(err))
		}
	}()

	// 3. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("server shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}

	select {
	case <-bg.Scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		zlog.Warn("scheduler jobs still running at shutdown")
	}
	cancel()
	wg.Wait()

	if err := redis.Close(); err != nil {
		zlog.Warn("redis close failed", zap.Error(err))
	}
	zlog.Info("server stopped")
	zlog.Sync()
}
