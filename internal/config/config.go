package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Search   Search `yaml:"search"`
	Game     Game   `yaml:"game"`
}

type Search struct {
	// ParallelRoot evaluates every root move in its own goroutine.
	ParallelRoot bool `yaml:"parallel-root" env:"SEARCH_PARALLEL_ROOT" env-default:"false"`
}

type Game struct {
	// HumanMark is "X" or "O"; empty means the player is asked.
	HumanMark string `yaml:"human-mark" env:"GAME_HUMAN_MARK" env-default:""`
}

// MustLoad - load configuration from the yml file, falling back to the environment when the file is absent.
func MustLoad(path string) *Config {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			panic(fmt.Errorf("unable to load config from env: %w", err))
		}

		return config
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}
