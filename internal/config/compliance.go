package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ComplianceConfig holds tunables for cap clamping and alert severity.
// The values mirror IRDAI guidance defaults and rarely change, but when
// they do (a new circular, a revised tolerance) ops can edit the file
// without a restart.
type ComplianceConfig struct {
	// UnboundedCapPercent is the ceiling reported when no regulatory cap
	// resolves for a context.
	UnboundedCapPercent float64 `mapstructure:"unboundedCapPercent"`
	// HighSeverityExcess is the excess (configured rate minus cap, in
	// percentage points) above which an alert is "high" instead of "medium".
	HighSeverityExcess float64 `mapstructure:"highSeverityExcess"`
}

func DefaultComplianceConfig() ComplianceConfig {
	return ComplianceConfig{
		UnboundedCapPercent: 100,
		HighSeverityExcess:  5,
	}
}

type ComplianceConfigHolder struct {
	current atomic.Value // holds ComplianceConfig
}

func NewComplianceConfigHolder() (*ComplianceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("compliance")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/commissions/config")
	v.AddConfigPath("/etc/commissions")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COMMISSIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultComplianceConfig()
		v.SetDefault("compliance.unboundedCapPercent", defaults.UnboundedCapPercent)
		v.SetDefault("compliance.highSeverityExcess", defaults.HighSeverityExcess)
	}

	var cfg ComplianceConfig
	if err := v.UnmarshalKey("compliance", &cfg); err != nil {
		return nil, err
	}
	if err := validateComplianceConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ComplianceConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ComplianceConfig
		if err := v.UnmarshalKey("compliance", &updated); err != nil {
			log.Printf("[compliance-config] reload failed: %v", err)
			return
		}
		if err := validateComplianceConfig(updated); err != nil {
			log.Printf("[compliance-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[compliance-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticComplianceConfigHolder wraps a fixed config without file
// watching. Intended for tests and embedded use.
func NewStaticComplianceConfigHolder(cfg ComplianceConfig) *ComplianceConfigHolder {
	h := &ComplianceConfigHolder{}
	h.current.Store(cfg)
	return h
}

func (h *ComplianceConfigHolder) Get() ComplianceConfig {
	return h.current.Load().(ComplianceConfig)
}

func validateComplianceConfig(cfg ComplianceConfig) error {
	if cfg.UnboundedCapPercent <= 0 {
		return errors.New("compliance.unboundedCapPercent must be positive")
	}
	if cfg.HighSeverityExcess < 0 {
		return errors.New("compliance.highSeverityExcess cannot be negative")
	}
	return nil
}
