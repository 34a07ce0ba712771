// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-schedule.
type Configuration struct {
	Loan     LoanConfig     `yaml:"loan"`
	Calendar CalendarConfig `yaml:"calendar,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// LoanConfig holds the loan parameters as written in the config file. Amounts
// are converted to decimals by ToLoanTerms.
type LoanConfig struct {
	StartDate              string  `yaml:"startDate"`
	Principal              float64 `yaml:"principal"`
	TermMonths             int     `yaml:"termMonths"`
	AnnualRate             float64 `yaml:"annualRate"` // fraction, e.g. 0.1775
	Frequency              string  `yaml:"frequency"`  // daily, weekly
	OriginationFee         float64 `yaml:"originationFee,omitempty"`
	AdditionalFee          float64 `yaml:"additionalFee,omitempty"`
	AdditionalFeeTreatment string  `yaml:"additionalFeeTreatment,omitempty"`
	BankDaysOnly           bool    `yaml:"bankDaysOnly,omitempty"`
	InterestOnlyPeriods    int     `yaml:"interestOnlyPeriods,omitempty"`
	GracePeriodDays        int     `yaml:"gracePeriodDays,omitempty"`
	InterestMethod         string  `yaml:"interestMethod,omitempty"` // simple, precomputed
}

// CalendarConfig selects the holiday calendar used for bank-day adjustment.
type CalendarConfig struct {
	Holidays      string   `yaml:"holidays,omitempty"` // us-federal, none
	ExtraHolidays []string `yaml:"extraHolidays,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Any key can be overridden from the environment, e.g.
// LOAN_SCHEDULE_LOAN_PRINCIPAL.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("loan.additionalFeeTreatment", "distributed")
	v.SetDefault("loan.interestMethod", "simple")
	v.SetDefault("calendar.holidays", constants.HolidaysUSFederal)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}
