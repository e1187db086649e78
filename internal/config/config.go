package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flexprice/billingcore/internal/validator"
	"github.com/spf13/viper"
)

type Configuration struct {
	Logging      LoggingConfig      `validate:"required"`
	Invoice      InvoiceConfig      `validate:"required"`
	Notification NotificationConfig `validate:"required"`
}

type LoggingConfig struct {
	Level string `validate:"required,oneof=debug info warn error"`
}

type InvoiceConfig struct {
	// MaxDailyNumberOfItems bounds how many items a single invoice run may
	// emit before the run aborts. Guards against a corrupted timeline
	// producing an unbounded number of micro periods.
	MaxDailyNumberOfItems int `mapstructure:"max_daily_number_of_items" validate:"required,gt=0"`

	// DefaultCurrency is used when a price carries no currency code
	DefaultCurrency string `mapstructure:"default_currency" validate:"required,len=3"`
}

type NotificationConfig struct {
	// Topic is the pubsub topic for next-billing-date notifications
	Topic string `validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billingcore")

	v.SetEnvPrefix("BILLINGCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("invoice.max_daily_number_of_items", 400)
	v.SetDefault("invoice.default_currency", "usd")
	v.SetDefault("notification.topic", "next_billing_date")
}

func (c Configuration) Validate() error {
	return validator.ValidateRequest(c)
}

// GetDefaultConfig returns a configuration suitable for tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: "info"},
		Invoice: InvoiceConfig{
			MaxDailyNumberOfItems: 400,
			DefaultCurrency:       "usd",
		},
		Notification: NotificationConfig{Topic: "next_billing_date"},
	}
}
