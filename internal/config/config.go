package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppName              string `mapstructure:"APP_NAME"`
	Env                  string `mapstructure:"ENV"`
	ConfigDir            string `mapstructure:"CONFIG_DIR"`
	AssetDir             string `mapstructure:"ASSET_DIR"`
	ConfigServerPort     string `mapstructure:"CONFIG_SERVER_PORT"`
	DefaultPatientName   string `mapstructure:"DEFAULT_PATIENT_NAME"`
	DefaultAuthorDisplay string `mapstructure:"DEFAULT_AUTHOR_DISPLAY"`
	IdentifierSystem     string `mapstructure:"IDENTIFIER_SYSTEM"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("APP_NAME", "notekit")
	v.SetDefault("ENV", "development")
	v.SetDefault("CONFIG_DIR", ".notekit")
	v.SetDefault("ASSET_DIR", "assets")
	v.SetDefault("CONFIG_SERVER_PORT", "8417")
	v.SetDefault("DEFAULT_PATIENT_NAME", "Alice Newman")
	v.SetDefault("DEFAULT_AUTHOR_DISPLAY", "Dr. Susan Clark, MD")
	v.SetDefault("IDENTIFIER_SYSTEM", "urn:notekit:document-id")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("APP_NAME")
	v.BindEnv("ENV")
	v.BindEnv("CONFIG_DIR")
	v.BindEnv("ASSET_DIR")
	v.BindEnv("CONFIG_SERVER_PORT")
	v.BindEnv("DEFAULT_PATIENT_NAME")
	v.BindEnv("DEFAULT_AUTHOR_DISPLAY")
	v.BindEnv("IDENTIFIER_SYSTEM")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is usable. The config directory
// name is a sentinel searched for while walking toward the filesystem root,
// so it must be a bare directory name rather than a path.
func (c *Config) Validate() error {
	if c.ConfigDir == "" {
		return fmt.Errorf("CONFIG_DIR must not be empty")
	}
	if strings.ContainsAny(c.ConfigDir, "/\\") {
		return fmt.Errorf("CONFIG_DIR must be a directory name, not a path: %q", c.ConfigDir)
	}
	if c.ConfigServerPort == "" {
		return fmt.Errorf("CONFIG_SERVER_PORT must not be empty")
	}
	return nil
}
