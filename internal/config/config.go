package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("userinfo-archive version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Store   StoreConfig   `mapstructure:"store"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// ArchiveConfig holds the keyring used to seal and open archives.
// Keys maps a key ID to its secret; ActiveKeyID selects the one used for new archives.
type ArchiveConfig struct {
	ActiveKeyID string            `mapstructure:"active_key_id"`
	Keys        map[string]string `mapstructure:"keys"`
	Compression bool              `mapstructure:"compression"`
}

// StoreDriver selects the persistence back end
type StoreDriver string

const (
	StoreDriverMemory   StoreDriver = "memory"
	StoreDriverRedis    StoreDriver = "redis"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverMySQL    StoreDriver = "mysql"
	StoreDriverSQLite   StoreDriver = "sqlite"
)

type StoreConfig struct {
	Driver    StoreDriver   `mapstructure:"driver"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	Redis     RedisConfig   `mapstructure:"redis"`
	SQL       SQLConfig     `mapstructure:"sql"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to the config file")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("store-driver", "", "Store driver (memory|redis|postgres|mysql|sqlite); memory keeps nothing once the command exits")
	// Note: parsing is left to cobra
}

func setDefaults() {
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("archive.active_key_id", "")
	viper.SetDefault("archive.compression", true)
	viper.SetDefault("store.driver", string(StoreDriverMemory))
	viper.SetDefault("store.key_prefix", "userinfo:")
	viper.SetDefault("store.ttl", time.Duration(0))
	viper.SetDefault("store.redis.addr", "localhost:6379")
	viper.SetDefault("store.redis.password", "")
	viper.SetDefault("store.redis.db", 0)
	viper.SetDefault("store.sql.dsn", "")
}

// Load reads configuration from flags, environment and an optional config.yaml
func Load(flags *pflag.FlagSet) (*Config, error) {
	viper.Reset() // Ensure clean state
	setDefaults()

	viper.SetEnvPrefix("USERINFO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if flags != nil {
		if err := viper.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/userinfo-archive")
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is not an error here, Validate reports what is missing
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// viper lower-cases map keys, so key IDs are matched case-insensitively
	config.Archive.ActiveKeyID = strings.ToLower(config.Archive.ActiveKeyID)

	if level := viper.GetString("log-level"); level != "" {
		config.Logging.Level = level
	}
	if driver := viper.GetString("store-driver"); driver != "" {
		config.Store.Driver = StoreDriver(driver)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks cross-field constraints that viper cannot express
func (c *Config) Validate() error {
	if c.Archive.ActiveKeyID == "" {
		return fmt.Errorf("archive.active_key_id is required, please set it together with archive.keys in the config file")
	}
	if _, ok := c.Archive.Keys[c.Archive.ActiveKeyID]; !ok {
		// viper cannot build a map from environment variables
		return fmt.Errorf("archive.keys has no secret for active key %q, the keyring can only be set in the config file", c.Archive.ActiveKeyID)
	}

	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverRedis:
	case StoreDriverPostgres, StoreDriverMySQL, StoreDriverSQLite:
		if c.Store.SQL.DSN == "" {
			return fmt.Errorf("store.sql.dsn is required for driver %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}

	return nil
}
