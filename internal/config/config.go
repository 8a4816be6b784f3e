// Package config defines the engine's tuning knobs. Config is loaded from a
// YAML file with sensitive-free overrides via HEIMDALL_* environment
// variables; every value also has a sane compiled-in default so the
// standalone server can run with no config file at all.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration, mapping directly onto the YAML
// file structure.
type Config struct {
	Book    BookConfig    `mapstructure:"book"`
	Margin  MarginConfig  `mapstructure:"margin"`
	Fees    FeesConfig    `mapstructure:"fees"`
	Funding FundingConfig `mapstructure:"funding"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BookConfig bounds the values the matching core will accept.
type BookConfig struct {
	MinPrice    string `mapstructure:"min_price"`
	MaxPrice    string `mapstructure:"max_price"`
	MaxQuantity string `mapstructure:"max_quantity"`
}

// MarginConfig tunes the derivatives risk engine.
type MarginConfig struct {
	MaintenanceMargin string `mapstructure:"maintenance_margin"`
	InitialMargin     string `mapstructure:"initial_margin"`
	MaxLeverage       string `mapstructure:"max_leverage"`
	MaxPositionSize   string `mapstructure:"max_position_size"`
	LiquidationFee    string `mapstructure:"liquidation_fee"`
	InsuranceFund     string `mapstructure:"insurance_fund"`
	ADLThreshold      string `mapstructure:"adl_threshold"`
}

// FeesConfig sets the fee schedule applied to fills.
type FeesConfig struct {
	MakerFee       string `mapstructure:"maker_fee"`
	TakerFee       string `mapstructure:"taker_fee"`
	LiquidationFee string `mapstructure:"liquidation_fee"`
}

// FundingConfig tunes the periodic funding-rate settlement.
type FundingConfig struct {
	IntervalSeconds       uint64 `mapstructure:"interval_seconds"`
	SampleIntervalSeconds uint64 `mapstructure:"sample_interval_seconds"`
	MaxSamples            int    `mapstructure:"max_samples"`
}

// GatewayConfig addresses the TCP demo server.
type GatewayConfig struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	WorkerCount int           `mapstructure:"worker_count"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// LoggingConfig controls the zerolog console/JSON writer.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default returns the engine's reference configuration: the exact
// parameters the derivatives core was designed against, usable with no
// config file present.
func Default() *Config {
	return &Config{
		Book: BookConfig{
			MinPrice:    "0.01",
			MaxPrice:    "1000000",
			MaxQuantity: "1000000",
		},
		Margin: MarginConfig{
			MaintenanceMargin: "0.005",
			InitialMargin:     "0.01",
			MaxLeverage:       "100",
			MaxPositionSize:   "1000000",
			LiquidationFee:    "0.003",
			InsuranceFund:     "1000000",
			ADLThreshold:      "0.8",
		},
		Fees: FeesConfig{
			MakerFee:       "-0.0001",
			TakerFee:       "0.0005",
			LiquidationFee: "0.003",
		},
		Funding: FundingConfig{
			IntervalSeconds:       28800,
			SampleIntervalSeconds: 60,
			MaxSamples:            480,
		},
		Gateway: GatewayConfig{
			ListenAddr:  "0.0.0.0:9001",
			WorkerCount: 8,
			ReadTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load reads config from a YAML file at path, falling back to Default's
// values for anything the file omits, with HEIMDALL_* environment variables
// taking final precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigFile(path)
	v.SetEnvPrefix("HEIMDALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("book.min_price", d.Book.MinPrice)
	v.SetDefault("book.max_price", d.Book.MaxPrice)
	v.SetDefault("book.max_quantity", d.Book.MaxQuantity)

	v.SetDefault("margin.maintenance_margin", d.Margin.MaintenanceMargin)
	v.SetDefault("margin.initial_margin", d.Margin.InitialMargin)
	v.SetDefault("margin.max_leverage", d.Margin.MaxLeverage)
	v.SetDefault("margin.max_position_size", d.Margin.MaxPositionSize)
	v.SetDefault("margin.liquidation_fee", d.Margin.LiquidationFee)
	v.SetDefault("margin.insurance_fund", d.Margin.InsuranceFund)
	v.SetDefault("margin.adl_threshold", d.Margin.ADLThreshold)

	v.SetDefault("fees.maker_fee", d.Fees.MakerFee)
	v.SetDefault("fees.taker_fee", d.Fees.TakerFee)
	v.SetDefault("fees.liquidation_fee", d.Fees.LiquidationFee)

	v.SetDefault("funding.interval_seconds", d.Funding.IntervalSeconds)
	v.SetDefault("funding.sample_interval_seconds", d.Funding.SampleIntervalSeconds)
	v.SetDefault("funding.max_samples", d.Funding.MaxSamples)

	v.SetDefault("gateway.listen_addr", d.Gateway.ListenAddr)
	v.SetDefault("gateway.worker_count", d.Gateway.WorkerCount)
	v.SetDefault("gateway.read_timeout", d.Gateway.ReadTimeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.pretty", d.Logging.Pretty)
}

// Validate checks that gateway.worker_count, funding.interval_seconds and
// funding.max_samples are positive. Other fields are not checked.
func (c *Config) Validate() error {
	if c.Gateway.WorkerCount <= 0 {
		return fmt.Errorf("gateway.worker_count must be > 0")
	}
	if c.Funding.IntervalSeconds == 0 {
		return fmt.Errorf("funding.interval_seconds must be > 0")
	}
	if c.Funding.MaxSamples <= 0 {
		return fmt.Errorf("funding.max_samples must be > 0")
	}
	return nil
}
