package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load builds the configuration from a YAML file overlaid with environment
// variables; env wins over the file, the file wins over defaults. The file
// path comes from CONFIG_PATH. Without CONFIG_PATH a missing ./config.yaml
// is fine and env plus defaults are used alone; a CONFIG_PATH that points
// at a missing file is an error.
func Load() (*Config, error) {
	var cfg Config

	path, required := os.LookupEnv("CONFIG_PATH")
	if !required {
		path = defaultConfigPath
	}

	err := cleanenv.ReadConfig(path, &cfg)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !required:
		if envErr := cleanenv.ReadEnv(&cfg); envErr != nil {
			return nil, fmt.Errorf("config: read env: %w", envErr)
		}
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
