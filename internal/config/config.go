package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"6969"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Match      Match  `yaml:"match"`
	Redis      Redis  `yaml:"redis"`
}

type Match struct {
	// MoveTimeout bounds how long the active player may think; zero disables it.
	MoveTimeout       time.Duration `yaml:"move-timeout" env:"MATCH_MOVE_TIMEOUT" env-default:"2m"`
	SuperviseInterval time.Duration `yaml:"supervise-interval" env:"MATCH_SUPERVISE_INTERVAL" env-default:"1s"`
	MaxFrameSize      int           `yaml:"max-frame-size" env:"MATCH_MAX_FRAME_SIZE" env-default:"4096"`
}

type Redis struct {
	Enabled bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL     time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"1h"`
}

// Client is configured from the environment only.
type Client struct {
	LogLevel    string        `env:"TICTACTOE_LOG_LEVEL" env-default:"warn"`
	Addr        string        `env:"TICTACTOE_ADDR" env-default:"localhost:6969"`
	DialTimeout time.Duration `env:"TICTACTOE_DIAL_TIMEOUT" env-default:"5s"`
	// Bot plays random moves instead of asking on stdin.
	Bot bool `env:"TICTACTOE_BOT" env-default:"false"`
}

// Load - reads config.yml with environment overrides. A missing file leaves
// the environment and defaults in charge.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	default:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// LoadClient - reads the client settings from the environment.
func LoadClient() (*Client, error) {
	config := &Client{}
	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
