package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/TaraJura/trade-bot/internal/dashboard"
	"github.com/TaraJura/trade-bot/internal/journal"
	"github.com/TaraJura/trade-bot/internal/metrics"
	"github.com/TaraJura/trade-bot/internal/notify"
	"github.com/TaraJura/trade-bot/internal/profit"
	"github.com/TaraJura/trade-bot/internal/scheduler"
	"github.com/TaraJura/trade-bot/internal/tui"
	"github.com/TaraJura/trade-bot/pkg/botapi"
	"github.com/TaraJura/trade-bot/pkg/config"
	"github.com/TaraJura/trade-bot/pkg/logger"
	"github.com/TaraJura/trade-bot/pkg/ratelimit"
	"github.com/TaraJura/trade-bot/pkg/shutdown"
)

func main() {
	// .env 可选，缺失时直接用真实环境变量
	_ = godotenv.Load()

	configPath := flag.String("config", "", "配置文件路径（.yaml/.yml）")
	apiURL := flag.String("api", "", "后端地址，覆盖配置文件与环境变量")
	debugAddr := flag.String("debug-addr", "", "expvar/pprof 监听地址（例如 127.0.0.1:6060），为空不启用")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "dashboard 需要在终端中运行")
		os.Exit(1)
	}

	// 终端归界面所有，日志只写文件
	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Console:    false,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *debugAddr); err != nil {
		logrus.Errorf("dashboard 退出: %v", err)
		_ = logger.Close()
		fmt.Fprintf(os.Stderr, "dashboard 退出: %v\n", err)
		os.Exit(1)
	}
	_ = logger.Close()
}

func run(cfg *config.Config, debugAddr string) error {
	logger.Infof("连接后端 %s", cfg.APIBaseURL)
	client := botapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	if cfg.MaxRequestsPerSec > 0 {
		client.SetLimiter(ratelimit.NewSlidingWindow(cfg.MaxRequestsPerSec, time.Second))
	}

	shutdownMgr := shutdown.NewManager()

	var (
		source   profit.Source
		recorder dashboard.Recorder
	)
	switch cfg.ProfitSource {
	case config.ProfitSourceJournal:
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		// 调度器退出后再关，避免在途的 Record 写到已关闭的库
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warnf("关闭成交日志失败: %v", err)
			}
		}()
		source, recorder = store, store
		countCtx, countCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		if n, err := store.Count(countCtx); err != nil {
			logger.Warnf("读取成交日志失败: %v", err)
		} else {
			logger.Infof("成交日志 %s 已有 %d 条记录", cfg.JournalPath, n)
		}
		countCancel()
	default:
		source = profit.NewRandomSource(0)
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if debugAddr != "" {
		if _, err := metrics.StartAsync(rootCtx, debugAddr); err != nil {
			logger.Warnf("debug server 启动失败: %v", err)
		}
	}

	startCtx, startCancel := context.WithTimeout(rootCtx, cfg.RequestTimeout)
	startup := dashboard.LoadStartup(startCtx, client)
	startCancel()

	state := dashboard.NewState(time.Local)
	notices := notify.NewCenter(cfg.NotificationTTL)

	var program *tea.Program
	sched := scheduler.New(func(ev scheduler.Event) {
		program.Send(tui.EventMsg{Event: ev})
	}, cfg.RequestTimeout)

	for _, job := range dashboard.Jobs(client, source, recorder, dashboard.Intervals{
		Status:     cfg.StatusInterval,
		Statistics: cfg.StatisticsInterval,
		Balances:   cfg.BalancesInterval,
	}) {
		if err := sched.Register(job); err != nil {
			return err
		}
	}

	model := tui.New(rootCtx, tui.Options{
		Dispatcher:      dashboard.NewDispatcher(client, sched),
		Refresher:       sched,
		State:           state,
		Notices:         notices,
		Startup:         startup,
		DefaultStrategy: cfg.DefaultStrategy,
		DefaultInterval: cfg.DefaultInterval,
		DefaultTestMode: cfg.DefaultTestMode,
		CommandTimeout:  cfg.RequestTimeout,
		BaseURL:         client.BaseURL(),
	})
	program = tea.NewProgram(model, tea.WithAltScreen())

	if err := sched.Start(rootCtx); err != nil {
		return err
	}
	shutdownMgr.OnShutdown("scheduler", func(ctx context.Context) error {
		rootCancel()
		done := make(chan struct{})
		go func() {
			sched.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	_, runErr := program.Run()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if !shutdownMgr.Shutdown(shutdownCtx) {
		logger.Warnf("优雅关闭超时")
	}
	logger.Info("dashboard 已退出")
	return runErr
}
