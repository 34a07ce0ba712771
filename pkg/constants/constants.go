// Package constants provides shared constants for the loan-schedule application.
package constants

// DateLayout is the date format expected in config files and is also the output
// date format.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// DaysPerYear is the day-count denominator used for daily rate conversion
	DaysPerYear = 365

	// DaysPerWeek is the calendar step between weekly payments
	DaysPerWeek = 7

	// DecimalPlaces is the precision for currency rounding (2 decimal places)
	DecimalPlaces = 2

	// GuardPlaces is the number of decimal places kept on intermediate
	// per-period amounts inside the engine
	GuardPlaces = 12

	// BalanceEpsilon is the balance below which a loan is considered retired
	BalanceEpsilon = 0.01

	// AverageDaysSampleCap bounds the bank-day sampling used to estimate the
	// average period length
	AverageDaysSampleCap = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys
	EnvPrefix = "LOAN_SCHEDULE"
)

// Calendar constants
const (
	// HolidaysUSFederal selects the US federal holiday calendar
	HolidaysUSFederal = "us-federal"

	// HolidaysNone disables holiday lookups; only weekends are non-bank days
	HolidaysNone = "none"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long a rendered schedule stays cached
	DefaultCacheTTLSeconds = 3600
)
