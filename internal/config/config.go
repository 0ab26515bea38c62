package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fortuna/bbref/internal/ingest/bbref"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". Empty means detect from the DSN.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SourceConfig holds document fetcher configuration
type SourceConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds the optional page cache and event stream settings
type RedisConfig struct {
	URL     string        `mapstructure:"url"` // empty disables redis
	PageTTL time.Duration `mapstructure:"page_ttl"`
	Stream  string        `mapstructure:"stream"`
}

// ScheduleConfig holds the seasons and months walked by the schedule pipeline
type ScheduleConfig struct {
	StartYear int      `mapstructure:"start_year"`
	EndYear   int      `mapstructure:"end_year"`
	Months    []string `mapstructure:"months"`
}

// PolitenessConfig is the delay policy of one pipeline
type PolitenessConfig struct {
	RequestDelay time.Duration `mapstructure:"request_delay"`
	BatchDelay   time.Duration `mapstructure:"batch_delay"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Config is the configuration shared by the collector and the API server.
type Config struct {
	Debug      bool                        `mapstructure:"debug"`
	Database   DatabaseConfig              `mapstructure:"database"`
	Source     SourceConfig                `mapstructure:"source"`
	Redis      RedisConfig                 `mapstructure:"redis"`
	Season     int                         `mapstructure:"season"`
	Schedule   ScheduleConfig              `mapstructure:"schedule"`
	Politeness map[string]PolitenessConfig `mapstructure:"politeness"`
	Server     ServerConfig                `mapstructure:"server"`
}

// defaultPoliteness mirrors the delays the site tolerates for each page type.
var defaultPoliteness = map[string]PolitenessConfig{
	bbref.JobRoster:      {RequestDelay: 20 * time.Second},
	bbref.JobPlayerStats: {RequestDelay: time.Second, BatchDelay: 5 * time.Second},
	bbref.JobSchedule:    {RequestDelay: 2 * time.Second},
	bbref.JobBoxScores:   {RequestDelay: 20 * time.Second},
	bbref.JobAdvanced:    {RequestDelay: 10 * time.Second},
}

// Load reads configuration from an optional YAML file, .env files under
// envPath and BBREF_* environment variables, in increasing precedence.
// An empty configFile searches for config.yaml and tolerates its absence.
func Load(configFile string, envPath string) (*Config, error) {
	v := configureViper(configFile, envPath)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configureViper(configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("BBREF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "nba_players.db")
	v.SetDefault("source.base_url", bbref.DefaultBaseURL)
	v.SetDefault("source.user_agent", bbref.DefaultUserAgent)
	v.SetDefault("source.timeout", bbref.DefaultTimeout)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.page_ttl", 24*time.Hour)
	v.SetDefault("redis.stream", "bbref.ingest.events")
	v.SetDefault("season", 2025)
	v.SetDefault("schedule.start_year", 2004)
	v.SetDefault("schedule.end_year", 2025)
	v.SetDefault("schedule.months", bbref.Months)
	v.SetDefault("server.port", 8080)

	for job, p := range defaultPoliteness {
		v.SetDefault("politeness."+job+".request_delay", p.RequestDelay)
		v.SetDefault("politeness."+job+".batch_delay", p.BatchDelay)
	}
}

// loadEnv loads .env then .env.local; later files override earlier ones.
func loadEnv(envPath string) {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// Validate checks the values a pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Season <= 0 {
		return fmt.Errorf("invalid season %d", c.Season)
	}
	if c.Schedule.StartYear > c.Schedule.EndYear {
		return fmt.Errorf("schedule.start_year %d is after schedule.end_year %d", c.Schedule.StartYear, c.Schedule.EndYear)
	}
	if len(c.Schedule.Months) == 0 {
		return errors.New("schedule.months must not be empty")
	}
	return nil
}

// Seasons lists the schedule seasons from StartYear to EndYear inclusive.
func (c *Config) Seasons() []int {
	var out []int
	for y := c.Schedule.StartYear; y <= c.Schedule.EndYear; y++ {
		out = append(out, y)
	}
	return out
}

// Policies returns the pacing policy of every pipeline. noDelay zeroes them all.
func (c *Config) Policies(noDelay bool) map[string]bbref.Policy {
	out := make(map[string]bbref.Policy, len(c.Politeness))
	if noDelay {
		return out
	}
	for job, p := range c.Politeness {
		out[job] = bbref.Policy{RequestDelay: p.RequestDelay, BatchDelay: p.BatchDelay}
	}
	return out
}

// ClientConfig returns the fetcher settings.
func (c *Config) ClientConfig() bbref.ClientConfig {
	return bbref.ClientConfig{
		BaseURL:   c.Source.BaseURL,
		UserAgent: c.Source.UserAgent,
		Timeout:   c.Source.Timeout,
	}
}
