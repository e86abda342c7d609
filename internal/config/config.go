// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port              int    `mapstructure:"port"`
	HeliusAPIKey      string `mapstructure:"helius_api_key"`
	RPCURL            string `mapstructure:"rpc_url"`
	AmountSource      string `mapstructure:"amount_source"`
	MeteoraAPIURL     string `mapstructure:"meteora_api_url"`
	MeteoraPoolAPIURL string `mapstructure:"meteora_pool_api_url"`
	HyperliquidURL    string `mapstructure:"hyperliquid_info_url"`
	RequestTimeoutMs  int    `mapstructure:"request_timeout_ms"`
	Retries           int    `mapstructure:"retries"`
	RetryStepMs       int    `mapstructure:"retry_step_ms"`
	MemoTTLMs         int    `mapstructure:"memo_ttl_ms"`
	ShutdownTimeoutMs int    `mapstructure:"shutdown_timeout_ms"`
	DebugLogging      bool   `mapstructure:"debug_logging"`
	LogFile           string `mapstructure:"log_file"`
}

const (
	EnvPrefix = "LP_READER"

	DefaultPort              = 10000
	DefaultRequestTimeoutMs  = 20000
	DefaultRetries           = 2
	DefaultRetryStepMs       = 500
	DefaultMemoTTLMs         = 15000
	DefaultShutdownTimeoutMs = 10000

	SourceOnChain = "onchain"
	SourceIndexer = "indexer"

	heliusRPCBase = "https://mainnet.helius-rpc.com/"
)

// Bare variable names kept for deployments configured before the prefix existed.
var legacyEnv = map[string]string{
	"helius_api_key": "HELIUS_API_KEY",
	"port":           "PORT",
}

// NewFlagSet declares the command line flags LoadConfig understands.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a JSON/YAML/TOML config file")
	fs.Int("port", DefaultPort, "HTTP listen port")
	fs.String("amount-source", SourceOnChain, "position amount strategy: onchain or indexer")
	fs.Bool("debug", false, "enable debug logging")
	return fs
}

// LoadConfig merges defaults, the optional config file, environment and flags (lowest to highest).
// flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"port":                 DefaultPort,
		"helius_api_key":       "",
		"rpc_url":              "",
		"amount_source":        SourceOnChain,
		"meteora_api_url":      "https://dlmm-api.meteora.ag",
		"meteora_pool_api_url": "https://dlmm.datapi.meteora.ag",
		"hyperliquid_info_url": "https://api.hyperliquid.xyz/info",
		"request_timeout_ms":   DefaultRequestTimeoutMs,
		"retries":              DefaultRetries,
		"retry_step_ms":        DefaultRetryStepMs,
		"memo_ttl_ms":          DefaultMemoTTLMs,
		"shutdown_timeout_ms":  DefaultShutdownTimeoutMs,
		"debug_logging":        false,
		"log_file":             "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil && path == "" {
		if f := flags.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := bindEnvironment(v, defaults); err != nil {
		return nil, err
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()

	return &cfg, validateConfig(&cfg)
}

func bindEnvironment(v *viper.Viper, defaults map[string]interface{}) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		if _, ok := defaults[key]; !ok {
			continue
		}
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), legacy); err != nil {
			return fmt.Errorf("failed to bind %s: %w", legacy, err)
		}
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	bindings := map[string]string{
		"port":          "port",
		"amount_source": "amount-source",
		"debug_logging": "debug",
	}
	for key, name := range bindings {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.HeliusAPIKey = strings.TrimSpace(c.HeliusAPIKey)
	c.RPCURL = strings.TrimSpace(c.RPCURL)
	c.AmountSource = strings.ToLower(strings.TrimSpace(c.AmountSource))
}

func validateConfig(cfg *Config) error {
	switch cfg.AmountSource {
	case SourceOnChain, SourceIndexer:
	default:
		return fmt.Errorf("invalid amount_source %q", cfg.AmountSource)
	}
	for name, raw := range map[string]string{
		"meteora_api_url":      cfg.MeteoraAPIURL,
		"meteora_pool_api_url": cfg.MeteoraPoolAPIURL,
		"hyperliquid_info_url": cfg.HyperliquidURL,
	} {
		if err := validateURLWithCache(raw, "http"); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if cfg.RPCURL != "" {
		if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("invalid port")
	}
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RetryStepMs <= 0 {
		return errors.New("invalid retry_step_ms")
	}
	if cfg.MemoTTLMs < 0 {
		return errors.New("invalid memo_ttl_ms")
	}
	if cfg.ShutdownTimeoutMs <= 0 {
		return errors.New("invalid shutdown_timeout_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// RPCEndpoint returns the Solana RPC URL, empty when no credential is configured.
func (c *Config) RPCEndpoint() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	if c.HeliusAPIKey == "" {
		return ""
	}
	return heliusRPCBase + "?api-key=" + url.QueryEscape(c.HeliusAPIKey)
}

// RPCEndpointKind labels the RPC endpoint for /health without leaking the key.
func (c *Config) RPCEndpointKind() string {
	switch {
	case c.RPCURL != "":
		return "custom"
	case c.HeliusAPIKey != "":
		return "helius"
	default:
		return "missing"
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) RetryStep() time.Duration {
	return time.Duration(c.RetryStepMs) * time.Millisecond
}

func (c *Config) MemoTTL() time.Duration {
	return time.Duration(c.MemoTTLMs) * time.Millisecond
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}
