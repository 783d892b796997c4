// Package config loads flowviz settings with viper. Precedence, lowest
// first: defaults, config file, FLOWVIZ_* environment, command flags.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bjorngylling/flowviz/errors"
)

const EnvPrefix = "FLOWVIZ"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Flow       FlowConfig       `mapstructure:"flow"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Churn      ChurnConfig      `mapstructure:"churn"`
	TimeSeries TimeSeriesConfig `mapstructure:"timeseries"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Flow sources
const (
	SourceFile  = "file"
	SourceKafka = "kafka"
)

type FlowConfig struct {
	Source   string        `mapstructure:"source"`
	File     string        `mapstructure:"file"`
	Debounce time.Duration `mapstructure:"debounce"`
	Vertical bool          `mapstructure:"vertical"`
}

type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	Version       string        `mapstructure:"version"`
	ClientID      string        `mapstructure:"client_id"`
	Verbose       bool          `mapstructure:"verbose"`
	FetchInterval time.Duration `mapstructure:"fetch_interval"`
	CAFile        string        `mapstructure:"ca_file"`
	CertFile      string        `mapstructure:"cert_file"`
	KeyFile       string        `mapstructure:"key_file"`
}

// ChurnConfig drives the live topology. A positive Agents overrides the
// agent count of the preset.
type ChurnConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Interval           time.Duration `mapstructure:"interval"`
	Agents             int           `mapstructure:"agents"`
	AddProbability     float64       `mapstructure:"add_probability"`
	BroadcastPerSecond float64       `mapstructure:"broadcast_per_second"`
	Preset             string        `mapstructure:"preset"`
}

type TimeSeriesConfig struct {
	// Source is "file", "influx" or empty to disable the view.
	Source string       `mapstructure:"source"`
	File   string       `mapstructure:"file"`
	Influx InfluxConfig `mapstructure:"influx"`
}

type InfluxConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Org     string        `mapstructure:"org"`
	Bucket  string        `mapstructure:"bucket"`
	Every   time.Duration `mapstructure:"every"`
	Queries []QueryConfig `mapstructure:"queries"`
}

type QueryConfig struct {
	Ref         string `mapstructure:"ref"`
	Measurement string `mapstructure:"measurement"`
	Field       string `mapstructure:"field"`
}

type CalendarConfig struct {
	Month    string `mapstructure:"month"`
	CellSize int    `mapstructure:"cell_size"`
	FirstDay int    `mapstructure:"first_day"`
	NameMap  string `mapstructure:"name_map"`
	Seed     int64  `mapstructure:"seed"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("flow.source", SourceFile)
	v.SetDefault("flow.file", "flow.json")
	v.SetDefault("flow.debounce", 250*time.Millisecond)
	v.SetDefault("flow.vertical", true)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.version", "2.2.0")
	v.SetDefault("kafka.client_id", "flowviz")
	v.SetDefault("kafka.verbose", false)
	v.SetDefault("kafka.fetch_interval", 10*time.Minute)
	v.SetDefault("kafka.ca_file", "")
	v.SetDefault("kafka.cert_file", "")
	v.SetDefault("kafka.key_file", "")

	v.SetDefault("churn.enabled", true)
	v.SetDefault("churn.interval", 200*time.Millisecond)
	v.SetDefault("churn.agents", 0)
	v.SetDefault("churn.add_probability", 0.2)
	v.SetDefault("churn.broadcast_per_second", 10.0)
	v.SetDefault("churn.preset", "chart")

	v.SetDefault("timeseries.source", "")
	v.SetDefault("timeseries.file", "")
	v.SetDefault("timeseries.influx.url", "http://localhost:8086")
	v.SetDefault("timeseries.influx.token", "")
	v.SetDefault("timeseries.influx.org", "")
	v.SetDefault("timeseries.influx.bucket", "")
	v.SetDefault("timeseries.influx.every", time.Minute)

	v.SetDefault("calendar.month", "2017-03")
	v.SetDefault("calendar.cell_size", 70)
	v.SetDefault("calendar.first_day", 1)
	v.SetDefault("calendar.name_map", "en")
	v.SetDefault("calendar.seed", 0)
}

// New returns a viper instance with defaults and FLOWVIZ_* environment
// binding. A non-empty configFile is read on top of the defaults.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configFile)
		}
	}
	return v, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	// Comma separated env values arrive as a single element.
	if len(config.Kafka.Brokers) == 1 && strings.Contains(config.Kafka.Brokers[0], ",") {
		config.Kafka.Brokers = strings.Split(config.Kafka.Brokers[0], ",")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings the selected sources depend on.
func (c *Config) Validate() error {
	switch c.Flow.Source {
	case SourceFile:
		if c.Flow.File == "" {
			return errors.WithHint(errors.WrapInvalidConfig("flow.file is empty"), "point flow.file at a JSON or YAML graph document")
		}
	case SourceKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.WithHint(errors.WrapInvalidConfig("kafka.brokers is empty"), "set FLOWVIZ_KAFKA_BROKERS to a comma separated broker list")
		}
		if c.Kafka.FetchInterval <= 0 {
			return errors.WrapInvalidConfig("kafka.fetch_interval must be positive")
		}
	default:
		return errors.WrapInvalidConfig("flow.source must be \"file\" or \"kafka\", got " + quote(c.Flow.Source))
	}

	if c.Churn.Enabled {
		if c.Churn.Interval <= 0 {
			return errors.WrapInvalidConfig("churn.interval must be positive")
		}
		if c.Churn.Agents < 0 {
			return errors.WrapInvalidConfig("churn.agents must not be negative")
		}
		if c.Churn.BroadcastPerSecond <= 0 {
			return errors.WithHint(errors.WrapInvalidConfig("churn.broadcast_per_second must be positive"),
				"disable churn with churn.enabled=false to stop topology updates")
		}
		if c.Churn.AddProbability < 0 || c.Churn.AddProbability > 1 {
			return errors.WrapInvalidConfig("churn.add_probability must be within [0, 1]")
		}
		if c.Churn.Preset != "chart" && c.Churn.Preset != "panel" {
			return errors.WrapInvalidConfig("churn.preset must be \"chart\" or \"panel\"")
		}
	}

	switch c.TimeSeries.Source {
	case "":
	case "file":
		if c.TimeSeries.File == "" {
			return errors.WrapInvalidConfig("timeseries.file is empty")
		}
	case "influx":
		if c.TimeSeries.Influx.Bucket == "" || len(c.TimeSeries.Influx.Queries) == 0 {
			return errors.WithHint(errors.WrapInvalidConfig("timeseries.influx needs a bucket and at least one query"),
				"add timeseries.influx.queries entries with ref, measurement and field")
		}
	default:
		return errors.WrapInvalidConfig("timeseries.source must be empty, \"file\" or \"influx\"")
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
