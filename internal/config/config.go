package config

import (
	"os"
	"time"

	"codeberg.org/mutker/solartag/internal/alarm"
	"codeberg.org/mutker/solartag/internal/clock"
	"codeberg.org/mutker/solartag/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel     = LogLevelInfo
	DefaultMode         = ModeOneshot
	DefaultTimezone     = "UTC"
	DefaultFetchTimeout = 30 * time.Second
	DefaultMQTTTopic    = "solartag/frame"
	DefaultMQTTClientID = "solartag"
	DefaultJournalDB    = "/var/lib/solartag/journal.db"
	DefaultRetention    = 30
	DefaultBattery      = 4.2

	configName = "solartag"
	envPrefix  = "SOLARTAG"
	configEnv  = "SOLARTAG_CONFIG"
)

type Config struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Timezone       string        `mapstructure:"timezone"`
	TimeURL        string        `mapstructure:"time_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	BatteryPath    string        `mapstructure:"battery_path"`
	BatteryVoltage float64       `mapstructure:"battery_voltage"`
	WakealarmPath  string        `mapstructure:"wakealarm_path"`
	Mode           Mode          `mapstructure:"mode"`
	LogLevel       string        `mapstructure:"log_level"`
	Journal        bool          `mapstructure:"journal"`
	JournalDB      string        `mapstructure:"journal_db"`
	RetentionDays  int           `mapstructure:"journal_retention_days"`
	MetricsFile    string        `mapstructure:"metrics_file"`
	MQTTBroker     string        `mapstructure:"mqtt_broker"`
	MQTTTopic      string        `mapstructure:"mqtt_topic"`
	MQTTClientID   string        `mapstructure:"mqtt_client_id"`
	PIDDir         string        `mapstructure:"pid_dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "")
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("time_url", "")
	v.SetDefault("fetch_timeout", DefaultFetchTimeout)
	v.SetDefault("battery_path", "")
	v.SetDefault("battery_voltage", DefaultBattery)
	v.SetDefault("wakealarm_path", alarm.DefaultWakealarmPath)
	v.SetDefault("mode", string(DefaultMode))
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("journal", false)
	v.SetDefault("journal_db", DefaultJournalDB)
	v.SetDefault("journal_retention_days", DefaultRetention)
	v.SetDefault("metrics_file", "")
	v.SetDefault("mqtt_broker", "")
	v.SetDefault("mqtt_topic", DefaultMQTTTopic)
	v.SetDefault("mqtt_client_id", DefaultMQTTClientID)
	v.SetDefault("pid_dir", "")
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.String("config", "", "Path to the configuration file")
	fs.String("endpoint", "", "Telemetry endpoint URL")
	fs.String("timezone", DefaultTimezone, "IANA timezone of the display")
	fs.String("mode", string(DefaultMode), "Halt mode: oneshot or loop")
	fs.String("log-level", string(DefaultLogLevel), "Log level: debug, info, warning, error")
	fs.Bool("journal", false, "Record cycles to the sqlite journal")
	fs.String("metrics-file", "", "Write node_exporter textfile metrics to this path")
	return fs
}

// Load reads configuration from defaults, the config file, SOLARTAG_*
// environment variables and args, in increasing order of precedence.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	for key, flag := range map[string]string{
		"endpoint":     "endpoint",
		"timezone":     "timezone",
		"mode":         "mode",
		"log_level":    "log-level",
		"journal":      "journal",
		"metrics_file": "metrics-file",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigType("toml")
	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc")
		v.AddConfigPath("$HOME/.config/solartag")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	var errs ValidationErrors
	if c.Endpoint == "" {
		errs = append(errs, ValidationError{Field: "endpoint", Value: c.Endpoint, Reason: "required"})
	}
	if !c.Mode.IsValid() {
		errs = append(errs, ValidationError{Field: "mode", Value: c.Mode, Reason: "must be oneshot or loop"})
	}
	if _, err := clock.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, ValidationError{Field: "timezone", Value: c.Timezone, Reason: "unknown zone"})
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "fetch_timeout", Value: c.FetchTimeout, Reason: "must be positive"})
	}
	if c.BatteryPath == "" && c.BatteryVoltage <= 0 {
		errs = append(errs, ValidationError{Field: "battery_voltage", Value: c.BatteryVoltage, Reason: "must be positive without battery_path"})
	}
	if c.Journal && c.JournalDB == "" {
		errs = append(errs, ValidationError{Field: "journal_db", Value: c.JournalDB, Reason: "required when journal is enabled"})
	}
	if c.RetentionDays < 0 {
		errs = append(errs, ValidationError{Field: "journal_retention_days", Value: c.RetentionDays, Reason: "must not be negative"})
	}
	if c.MQTTBroker != "" && c.MQTTTopic == "" {
		errs = append(errs, ValidationError{Field: "mqtt_topic", Value: c.MQTTTopic, Reason: "required with mqtt_broker"})
	}

	if len(errs) > 0 {
		return errFactory.Wrap(errors.ErrInvalidConfig, errs)
	}

	return nil
}
