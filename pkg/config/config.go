package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 收益曲线数据来源
const (
	ProfitSourceRandom  = "random"
	ProfitSourceJournal = "journal"
)

// Config 仪表盘运行配置
type Config struct {
	APIBaseURL string // 后端地址，例如 http://localhost:5000

	StatusInterval     time.Duration // /api/status 轮询间隔
	StatisticsInterval time.Duration // /api/statistics + /api/positions 轮询间隔
	BalancesInterval   time.Duration // /api/balance 轮询间隔
	RequestTimeout     time.Duration // 单次请求超时
	MaxRequestsPerSec  int           // 客户端限流，0 表示不限制
	NotificationTTL    time.Duration // 通知横幅显示时长

	ProfitSource string // random | journal
	JournalPath  string // journal 模式下的 SQLite 文件

	DefaultStrategy string
	DefaultInterval string
	DefaultTestMode bool

	Log LogConfig
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// ConfigFile 配置文件结构（YAML）
type ConfigFile struct {
	APIBaseURL         string   `yaml:"api_base_url"`
	StatusInterval     Duration `yaml:"status_interval"`
	StatisticsInterval Duration `yaml:"statistics_interval"`
	BalancesInterval   Duration `yaml:"balances_interval"`
	RequestTimeout     Duration `yaml:"request_timeout"`
	MaxRequestsPerSec  *int     `yaml:"max_requests_per_sec"`
	NotificationTTL    Duration `yaml:"notification_ttl"`
	ProfitSource       string   `yaml:"profit_source"`
	JournalPath        string   `yaml:"journal_path"`
	DefaultStrategy    string   `yaml:"default_strategy"`
	DefaultInterval    string   `yaml:"default_interval"`
	DefaultTestMode    *bool    `yaml:"default_test_mode"`
	LogLevel           string   `yaml:"log_level"`
	LogFile            string   `yaml:"log_file"`
	LogMaxSize         int      `yaml:"log_max_size"`
	LogMaxBackups      int      `yaml:"log_max_backups"`
	LogMaxAge          int      `yaml:"log_max_age"`
	LogCompress        *bool    `yaml:"log_compress"`
}

// Default 默认配置（与后端默认端口一致）
func Default() *Config {
	return &Config{
		APIBaseURL:         "http://localhost:5000",
		StatusInterval:     5 * time.Second,
		StatisticsInterval: 5 * time.Second,
		BalancesInterval:   30 * time.Second,
		RequestTimeout:     10 * time.Second,
		MaxRequestsPerSec:  20,
		NotificationTTL:    3 * time.Second,
		ProfitSource:       ProfitSourceRandom,
		JournalPath:        "data/journal.db",
		DefaultStrategy:    "combined",
		DefaultInterval:    "15m",
		DefaultTestMode:    true,
		Log: LogConfig{
			Level:      "info",
			File:       "logs/dashboard.log",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// LoadFromFile 加载配置（优先级：环境变量 > 配置文件 > 默认值）
// filePath 为空时只使用默认值与环境变量。
func LoadFromFile(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		cf, err := loadConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
		cf.apply(cfg)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("解析 YAML 失败: %w", err)
	}
	return &cf, nil
}

func (cf *ConfigFile) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, cf.APIBaseURL)
	setDuration(&cfg.StatusInterval, cf.StatusInterval)
	setDuration(&cfg.StatisticsInterval, cf.StatisticsInterval)
	setDuration(&cfg.BalancesInterval, cf.BalancesInterval)
	setDuration(&cfg.RequestTimeout, cf.RequestTimeout)
	setDuration(&cfg.NotificationTTL, cf.NotificationTTL)
	if cf.MaxRequestsPerSec != nil {
		cfg.MaxRequestsPerSec = *cf.MaxRequestsPerSec
	}
	setString(&cfg.ProfitSource, cf.ProfitSource)
	setString(&cfg.JournalPath, cf.JournalPath)
	setString(&cfg.DefaultStrategy, cf.DefaultStrategy)
	setString(&cfg.DefaultInterval, cf.DefaultInterval)
	if cf.DefaultTestMode != nil {
		cfg.DefaultTestMode = *cf.DefaultTestMode
	}
	setString(&cfg.Log.Level, cf.LogLevel)
	setString(&cfg.Log.File, cf.LogFile)
	setInt(&cfg.Log.MaxSize, cf.LogMaxSize)
	setInt(&cfg.Log.MaxBackups, cf.LogMaxBackups)
	setInt(&cfg.Log.MaxAge, cf.LogMaxAge)
	if cf.LogCompress != nil {
		cfg.Log.Compress = *cf.LogCompress
	}
}

// applyEnv 环境变量覆盖（TRADEBOT_ 前缀）
func applyEnv(cfg *Config) error {
	setString(&cfg.APIBaseURL, getEnv("TRADEBOT_API_URL", ""))
	setString(&cfg.ProfitSource, getEnv("TRADEBOT_PROFIT_SOURCE", ""))
	setString(&cfg.JournalPath, getEnv("TRADEBOT_JOURNAL_PATH", ""))
	setString(&cfg.Log.Level, getEnv("TRADEBOT_LOG_LEVEL", getEnv("LOG_LEVEL", "")))
	setString(&cfg.Log.File, getEnv("TRADEBOT_LOG_FILE", ""))

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TRADEBOT_STATUS_INTERVAL", &cfg.StatusInterval},
		{"TRADEBOT_STATISTICS_INTERVAL", &cfg.StatisticsInterval},
		{"TRADEBOT_BALANCES_INTERVAL", &cfg.BalancesInterval},
		{"TRADEBOT_REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"TRADEBOT_NOTIFICATION_TTL", &cfg.NotificationTTL},
	}
	for _, d := range durations {
		v := getEnv(d.key, "")
		if v == "" {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v := getEnv("TRADEBOT_MAX_RPS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRADEBOT_MAX_RPS: %w", err)
		}
		cfg.MaxRequestsPerSec = n
	}

	if v := getEnv("TRADEBOT_TEST_MODE", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRADEBOT_TEST_MODE: %w", err)
		}
		cfg.DefaultTestMode = b
	}
	return nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api_base_url 不能为空")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api_base_url 必须以 http:// 或 https:// 开头: %s", c.APIBaseURL)
	}
	checks := []struct {
		name string
		v    time.Duration
	}{
		{"status_interval", c.StatusInterval},
		{"statistics_interval", c.StatisticsInterval},
		{"balances_interval", c.BalancesInterval},
		{"request_timeout", c.RequestTimeout},
		{"notification_ttl", c.NotificationTTL},
	}
	for _, chk := range checks {
		if chk.v <= 0 {
			return fmt.Errorf("%s 必须大于 0", chk.name)
		}
	}
	if c.MaxRequestsPerSec < 0 {
		return fmt.Errorf("max_requests_per_sec 不能为负数")
	}
	switch c.ProfitSource {
	case ProfitSourceRandom:
	case ProfitSourceJournal:
		if strings.TrimSpace(c.JournalPath) == "" {
			return fmt.Errorf("profit_source=journal 时 journal_path 不能为空")
		}
	default:
		return fmt.Errorf("未知的 profit_source: %q（可选 random, journal）", c.ProfitSource)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
