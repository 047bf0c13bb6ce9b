package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FinanceConfig carries the tax and installment policy knobs that a shop
// owner tunes without redeploying: the registered home state deciding the
// CGST/SGST vs IGST treatment, and the EMI guard rails.
type FinanceConfig struct {
	HomeState           string  `mapstructure:"homeState"`
	DefaultSlabPercent  int     `mapstructure:"defaultSlabPercent"`
	MinMonthlyAmount    float64 `mapstructure:"minMonthlyAmount"`
	MaxInstallmentCount int     `mapstructure:"maxInstallmentCount"`
}

func DefaultFinanceConfig() FinanceConfig {
	return FinanceConfig{
		HomeState:           "Gujarat",
		DefaultSlabPercent:  18,
		MinMonthlyAmount:    100,
		MaxInstallmentCount: 60,
	}
}

type FinanceConfigHolder struct {
	current atomic.Value // holds FinanceConfig
}

func NewFinanceConfigHolder() (*FinanceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("finance")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/vyapardesk/config") // Volume-mounted config
	v.AddConfigPath("/etc/vyapardesk")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("VYAPARDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultFinanceConfig()
		v.SetDefault("finance.homeState", defaults.HomeState)
		v.SetDefault("finance.defaultSlabPercent", defaults.DefaultSlabPercent)
		v.SetDefault("finance.minMonthlyAmount", defaults.MinMonthlyAmount)
		v.SetDefault("finance.maxInstallmentCount", defaults.MaxInstallmentCount)
	}

	var cfg FinanceConfig
	if err := v.UnmarshalKey("finance", &cfg); err != nil {
		return nil, err
	}
	if err := validateFinanceConfig(cfg); err != nil {
		return nil, err
	}

	holder := &FinanceConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FinanceConfig
		if err := v.UnmarshalKey("finance", &updated); err != nil {
			log.Printf("[finance-config] reload failed: %v", err)
			return
		}
		if err := validateFinanceConfig(updated); err != nil {
			log.Printf("[finance-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[finance-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticFinanceConfigHolder wraps a fixed configuration without file
// watching. Used where reload semantics are not wanted.
func NewStaticFinanceConfigHolder(cfg FinanceConfig) *FinanceConfigHolder {
	holder := &FinanceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// Current returns the active finance configuration snapshot.
func (h *FinanceConfigHolder) Current() FinanceConfig {
	cfg, _ := h.current.Load().(FinanceConfig)
	return cfg
}

func validateFinanceConfig(cfg FinanceConfig) error {
	if strings.TrimSpace(cfg.HomeState) == "" {
		return errors.New("finance config: homeState is required")
	}
	if cfg.MinMonthlyAmount < 0 {
		return errors.New("finance config: minMonthlyAmount must not be negative")
	}
	if cfg.MaxInstallmentCount <= 0 {
		return errors.New("finance config: maxInstallmentCount must be positive")
	}
	switch cfg.DefaultSlabPercent {
	case 0, 5, 12, 18, 28:
	default:
		return errors.New("finance config: defaultSlabPercent must be a valid GST slab")
	}
	return nil
}
