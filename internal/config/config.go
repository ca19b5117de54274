package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the agent
type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"igestor-agent.db"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	} `yaml:"log"`

	Server struct {
		Port int `yaml:"port" env:"SERVER_PORT" env-default:"8790"`
	} `yaml:"server"`

	Session struct {
		// IdleTimeout is the inactivity window in seconds before forced logout
		IdleTimeout int `yaml:"idle_timeout" env:"SESSION_IDLE_TIMEOUT" env-default:"600"`
		// ActivityThrottle limits persisted timestamp writes, in seconds
		ActivityThrottle int `yaml:"activity_throttle" env:"SESSION_ACTIVITY_THROTTLE" env-default:"3"`
		// CheckInterval is the periodic expiry check tick, in seconds
		CheckInterval int `yaml:"check_interval" env:"SESSION_CHECK_INTERVAL" env-default:"15"`
		// TouchStartDelay delays listener attachment on touch-primary clients, in milliseconds
		TouchStartDelay int    `yaml:"touch_start_delay" env:"SESSION_TOUCH_START_DELAY" env-default:"500"`
		TokenSecret     string `yaml:"token_secret" env:"SESSION_TOKEN_SECRET"`
	} `yaml:"session"`

	Share struct {
		TelegramToken string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
		TelegramChat  int64  `yaml:"telegram_chat" env:"TELEGRAM_CHAT_ID"`
		RetryInterval int    `yaml:"retry_interval" env:"SHARE_RETRY_INTERVAL" env-default:"60"`
	} `yaml:"share"`
}

// LoadConfig reads configuration from the given YAML file, with environment
// variables (and an optional .env file) taking precedence
func LoadConfig(path string) (*Config, error) {
	// Best-effort .env preload; absence is normal outside local dev
	_ = godotenv.Load()

	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	}

	return cfg, nil
}
