// Package config reads fixie settings from fixie.toml, FIXIE_* environment
// variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fixie/internal/core"
	"fixie/internal/output"
)

const (
	EnvPrefix      = "FIXIE"
	DefaultFile    = "fixie"
	DefaultDSNEnv  = "DATABASE_URL"
	DefaultDir     = "fixtures"
	DefaultDialect = core.DialectMySQL
)

type Config struct {
	Dialect      string `json:"dialect" mapstructure:"dialect"`
	DSN          string `json:"dsn" mapstructure:"dsn"`
	DSNEnv       string `json:"dsn_env" mapstructure:"dsn_env"`
	Fixtures     string `json:"fixtures" mapstructure:"fixtures"`
	KeyDetection string `json:"key_detection" mapstructure:"key_detection"`
	Format       string `json:"format" mapstructure:"format"`
}

// Load reads the configuration. path names a config file; when empty,
// fixie.toml in the working directory is used if it exists. Variables from a
// .env file in the working directory are exported first without overriding
// the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("dialect", string(DefaultDialect))
	v.SetDefault("dsn", "")
	v.SetDefault("dsn_env", DefaultDSNEnv)
	v.SetDefault("fixtures", DefaultDir)
	v.SetDefault("key_detection", string(core.KeyDetectionAuto))
	v.SetDefault("format", string(output.FormatHuman))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultFile)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DatabaseDialect returns the configured dialect.
func (c *Config) DatabaseDialect() (core.Dialect, error) {
	return core.ParseDialect(c.Dialect)
}

// Detection returns the configured key detection mode.
func (c *Config) Detection() (core.KeyDetection, error) {
	return core.ParseKeyDetection(c.KeyDetection)
}

// DatabaseURL returns dsn, or the value of the dsn_env variable when dsn is empty.
func (c *Config) DatabaseURL() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.DSNEnv == "" {
		return "", fmt.Errorf("no dsn configured")
	}
	dsn := os.Getenv(c.DSNEnv)
	if dsn == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.DSNEnv)
	}
	return dsn, nil
}

// Validate checks every setting. A MySQL DSN must name the database, since it
// is the schema whose keys are read.
func (c *Config) Validate() error {
	d, err := c.DatabaseDialect()
	if err != nil {
		return err
	}
	if _, err := c.Detection(); err != nil {
		return err
	}
	if _, err := output.NewFormatter(c.Format); err != nil {
		return err
	}
	if c.Fixtures == "" {
		return fmt.Errorf("fixtures cannot be empty")
	}

	dsn, err := c.DatabaseURL()
	if err != nil {
		return err
	}
	if d.IsMySQLFamily() {
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return fmt.Errorf("invalid mysql dsn: %w", err)
		}
		if parsed.DBName == "" {
			return fmt.Errorf("mysql dsn must select a database, e.g. user:pass@tcp(host:3306)/dbname")
		}
	}
	return nil
}
