package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/TaraJura/trade-bot/internal/sandbox"
	"github.com/TaraJura/trade-bot/pkg/logger"
	"github.com/TaraJura/trade-bot/pkg/shutdown"
)

func main() {
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		listenAddr = flag.String("listen", getenv("TRADEBOT_SANDBOX_LISTEN", ":5000"), "HTTP listen address")
		jitter     = flag.Float64("jitter", 0.002, "每次读价的随机波动比例（0 表示价格不变）")
		seed       = flag.Int64("seed", 0, "随机种子（0 使用当前时间）")
		logLevel   = flag.String("log-level", getenv("TRADEBOT_LOG_LEVEL", "info"), "日志级别")
	)
	flag.Parse()

	if err := logger.Init(logger.Config{Level: *logLevel, Console: true}); err != nil {
		os.Exit(1)
	}

	srv := sandbox.NewDefault(*jitter, *seed)
	httpSrv := &http.Server{
		Addr:              *listenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownMgr := shutdown.NewManager()
	shutdownMgr.OnShutdown("http", httpSrv.Shutdown)

	go func() {
		logger.Infof("模拟后端监听 %s", *listenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh
	logger.Info("收到停止信号，正在关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownMgr.Shutdown(ctx)
	logger.Info("模拟后端已停止")
}
