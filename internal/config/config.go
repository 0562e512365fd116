package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Wiki     WikiConfig     `yaml:"wiki" mapstructure:"wiki"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Health   HealthConfig   `yaml:"health" mapstructure:"health"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// WikiConfig configures the Cargo query client and schema mapping.
type WikiConfig struct {
	APIURL      string  `yaml:"api_url" mapstructure:"api_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxLimit    int     `yaml:"max_limit" mapstructure:"max_limit"`
	MappingPath string  `yaml:"mapping_path" mapstructure:"mapping_path"`
}

// TelegramConfig holds bot credentials and polling settings.
type TelegramConfig struct {
	Token             string `yaml:"token" mapstructure:"token"`
	UpdateTimeoutSecs int    `yaml:"update_timeout_secs" mapstructure:"update_timeout_secs"`
	InlineLimit       int    `yaml:"inline_limit" mapstructure:"inline_limit"`
}

// HealthConfig configures the bot's health endpoint.
type HealthConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POEWIKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("wiki.api_url", "https://www.poewiki.net/w/api.php")
	v.SetDefault("wiki.user_agent", "poewiki-cli/1.0")
	v.SetDefault("wiki.timeout_secs", 15)
	v.SetDefault("wiki.rate_limit", 5)
	v.SetDefault("wiki.max_limit", 50)
	v.SetDefault("wiki.mapping_path", "cargo_mapping.yaml")
	v.SetDefault("telegram.update_timeout_secs", 30)
	v.SetDefault("telegram.inline_limit", 10)
	v.SetDefault("health.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
