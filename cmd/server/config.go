package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort = "8080"
	// The guru backend from the dev compose setup. Overridden in any real deployment.
	defaultAPIBaseURL = "http://localhost:8000"
)

type config struct {
	Port       string      `yaml:"port"`
	APIBaseURL string      `yaml:"apiBaseURL"`
	DBPath     string      `yaml:"dbPath"`
	Ghost      ghostConfig `yaml:"ghost"`
}

// ghostConfig points at the Ghost content API backing the blog pages. Nothing in this
// process calls Ghost; the blog frontend reads these values at deploy time.
type ghostConfig struct {
	URL     string `yaml:"url"`
	Key     string `yaml:"key"`
	Version string `yaml:"version"`
}

// loadConfig reads the yaml config at path, then applies environment overrides and
// defaults. A missing file is not an error: the server can run on env vars alone. The
// result is loaded once at startup and immutable afterwards.
func loadConfig(path string) (config, error) {
	cfg := config{}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return config{}, fmt.Errorf("error opening config file: %w", err)
	}

	overrideFromEnv(&cfg.Port, "PORT")
	overrideFromEnv(&cfg.APIBaseURL, "GURU_API_BASE_URL")
	overrideFromEnv(&cfg.DBPath, "GURU_DB_PATH")
	overrideFromEnv(&cfg.Ghost.URL, "GHOST_CONTENT_API_URL")
	overrideFromEnv(&cfg.Ghost.Key, "GHOST_CONTENT_API_KEY")
	overrideFromEnv(&cfg.Ghost.Version, "GHOST_CONTENT_API_VERSION")

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}

	return cfg, nil
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
