// Package config provides configuration management functionality for client operations.
//
// 优先级：环境变量 > 配置文件 > 默认值。配置文件同目录下的 .env 会先被载入环境。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"

	"github.com/weisyn/wallet/client/core/ledger"
	"github.com/weisyn/wallet/configs"
	logconfig "github.com/weisyn/wallet/internal/config/log"
)

const (
	dirName        = ".wes-wallet"
	configFileName = "config.json"

	defaultRPCURL         = "https://ethereum-sepolia-rpc.publicnode.com"
	defaultNetwork        = "sepolia"
	defaultPollInterval   = 2 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

// Config 钱包配置
type Config struct {
	RPCURL         string                `json:"rpc_url"`         // 节点 JSON-RPC 地址
	Network        string                `json:"network"`         // 网络名称，仅用于展示
	Ledger         ledger.Config         `json:"ledger"`          // 本地账本
	PollInterval   Duration              `json:"poll_interval"`   // 回执轮询间隔
	RequestTimeout Duration              `json:"request_timeout"` // 只读查询超时，不作用于确认等待
	// 转账指标 textfile，为空不写
	MetricsFile    string                `json:"metrics_file,omitempty"`
	Log            *logconfig.LogOptions `json:"log"`
}

// envOverlay 可由环境变量覆盖的字段
//
// 预先填入当前值，未设置的变量保持原值
type envOverlay struct {
	RPCURL         string        `env:"WALLET_RPC_URL"`
	Network        string        `env:"WALLET_NETWORK"`
	LedgerBackend  string        `env:"WALLET_LEDGER_BACKEND"`
	LedgerPath     string        `env:"WALLET_LEDGER_PATH"`
	PollInterval   time.Duration `env:"WALLET_POLL_INTERVAL"`
	RequestTimeout time.Duration `env:"WALLET_REQUEST_TIMEOUT"`
	LogLevel       string        `env:"WALLET_LOG_LEVEL"`
	MetricsFile    string        `env:"WALLET_METRICS_FILE"`
}

// Duration 时间duration(支持JSON序列化)
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(dur)
	return nil
}

// Std 转换为 time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultDir 返回配置目录 ~/.wes-wallet
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(homeDir, dirName)
}

// DefaultPath 返回默认配置文件路径
func DefaultPath() string {
	return filepath.Join(DefaultDir(), configFileName)
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RPCURL:         defaultRPCURL,
		Network:        defaultNetwork,
		Ledger:         ledger.Config{Backend: ledger.BackendJSON},
		PollInterval:   Duration(defaultPollInterval),
		RequestTimeout: Duration(defaultRequestTimeout),
		Log:            logconfig.DefaultOptions(DefaultDir()),
	}
}

// Load 加载配置
//
// path 为空时使用默认路径。配置文件不存在时写入默认配置，
// 写入失败不影响本次运行。
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	// .env 不存在是常态
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := DefaultConfig()

	//nolint:gosec // G304: 路径来自用户参数或主目录
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		_ = cfg.Save(path)
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshaling config: %w", err)
		}
	}

	if cfg.Log == nil {
		cfg.Log = logconfig.DefaultOptions(DefaultDir())
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save 保存配置
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// applyEnv 应用环境变量覆盖
func (c *Config) applyEnv() error {
	overlay := envOverlay{
		RPCURL:         c.RPCURL,
		Network:        c.Network,
		LedgerBackend:  c.Ledger.Backend,
		LedgerPath:     c.Ledger.Path,
		PollInterval:   c.PollInterval.Std(),
		RequestTimeout: c.RequestTimeout.Std(),
		LogLevel:       c.Log.Level,
		MetricsFile:    c.MetricsFile,
	}
	if err := env.Parse(&overlay); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	c.RPCURL = overlay.RPCURL
	c.Network = overlay.Network
	c.Ledger.Backend = overlay.LedgerBackend
	c.Ledger.Path = overlay.LedgerPath
	c.PollInterval = Duration(overlay.PollInterval)
	c.RequestTimeout = Duration(overlay.RequestTimeout)
	c.Log.Level = overlay.LogLevel
	c.MetricsFile = overlay.MetricsFile
	return nil
}

// Validate 校验配置
//
// rpc_url 为空时使用 network 对应的内置预设
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		preset, ok := configs.Network(c.Network)
		if !ok {
			return fmt.Errorf("rpc_url is required (no preset for network %q, known: %s)",
				c.Network, strings.Join(configs.NetworkNames(), ", "))
		}
		c.RPCURL = preset.RPCURL
	}
	switch c.Ledger.Backend {
	case "", ledger.BackendJSON, ledger.BackendBadger, ledger.BackendSQLite:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}
	if c.PollInterval < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
