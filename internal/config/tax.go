package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TaxPolicy carries the statutory parameters of the tax engine. All money
// values are kobo (minor units); rates are basis points (7.5% = 750).
// Statutory amendments land through tax.yml, never through code.
type TaxPolicy struct {
	// Small-company thresholds from the Finance Act. A business is "small"
	// only when turnover AND fixed assets are strictly below both values.
	SmallBusinessTurnoverThreshold int64 `mapstructure:"smallBusinessTurnoverThreshold"`
	SmallBusinessAssetThreshold    int64 `mapstructure:"smallBusinessAssetThreshold"`

	// Standard VAT rate in basis points.
	StandardRateBps int64 `mapstructure:"standardRateBps"`

	// carry_forward keeps a negative net VAT as a credit position;
	// clamp_zero floors it at zero.
	NegativeNetPolicy string `mapstructure:"negativeNetPolicy"`

	FiscalCodePrefix string `mapstructure:"fiscalCodePrefix"`
	FiscalHashLength int    `mapstructure:"fiscalHashLength"`
}

func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{
		SmallBusinessTurnoverThreshold: 2_500_000_000, // NGN 25m
		SmallBusinessAssetThreshold:    5_000_000_000, // NGN 50m
		StandardRateBps:                750,           // 7.5%
		NegativeNetPolicy:              "carry_forward",
		FiscalCodePrefix:               "NG",
		FiscalHashLength:               12,
	}
}

type TaxPolicyHolder struct {
	current atomic.Value // holds TaxPolicy
}

func NewTaxPolicyHolder() (*TaxPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("tax")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/taxcore/config") // Volume-mounted config
	v.AddConfigPath("/etc/taxcore")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("TAXCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultTaxPolicy()
		v.SetDefault("tax.smallBusinessTurnoverThreshold", defaults.SmallBusinessTurnoverThreshold)
		v.SetDefault("tax.smallBusinessAssetThreshold", defaults.SmallBusinessAssetThreshold)
		v.SetDefault("tax.standardRateBps", defaults.StandardRateBps)
		v.SetDefault("tax.negativeNetPolicy", defaults.NegativeNetPolicy)
		v.SetDefault("tax.fiscalCodePrefix", defaults.FiscalCodePrefix)
		v.SetDefault("tax.fiscalHashLength", defaults.FiscalHashLength)
	}

	var policy TaxPolicy
	if err := v.UnmarshalKey("tax", &policy); err != nil {
		return nil, err
	}
	if err := validateTaxPolicy(policy); err != nil {
		return nil, err
	}

	holder := &TaxPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TaxPolicy
		if err := v.UnmarshalKey("tax", &updated); err != nil {
			log.Printf("[tax-policy] reload failed: %v", err)
			return
		}
		if err := validateTaxPolicy(updated); err != nil {
			log.Printf("[tax-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tax-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticTaxPolicyHolder wraps a fixed policy without file watching.
func NewStaticTaxPolicyHolder(policy TaxPolicy) *TaxPolicyHolder {
	holder := &TaxPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *TaxPolicyHolder) Get() TaxPolicy {
	return h.current.Load().(TaxPolicy)
}

func validateTaxPolicy(policy TaxPolicy) error {
	if policy.SmallBusinessTurnoverThreshold <= 0 {
		return errors.New("tax.smallBusinessTurnoverThreshold must be positive")
	}
	if policy.SmallBusinessAssetThreshold <= 0 {
		return errors.New("tax.smallBusinessAssetThreshold must be positive")
	}
	if policy.StandardRateBps < 0 {
		return errors.New("tax.standardRateBps cannot be negative")
	}
	switch policy.NegativeNetPolicy {
	case "carry_forward", "clamp_zero":
	default:
		return errors.New("tax.negativeNetPolicy must be carry_forward or clamp_zero")
	}
	if policy.FiscalCodePrefix == "" {
		return errors.New("tax.fiscalCodePrefix cannot be empty")
	}
	if policy.FiscalHashLength < 8 || policy.FiscalHashLength > 64 {
		return errors.New("tax.fiscalHashLength must be between 8 and 64")
	}
	return nil
}
