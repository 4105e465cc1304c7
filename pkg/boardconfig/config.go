package boardconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL  = "http://127.0.0.1:8080"
	DefaultOutput     = "text"
	DefaultDragPolicy = "hover"
	DefaultTimezone   = "Local"
)

type Config struct {
	ServerURL string        `yaml:"server_url"`
	Backend   BackendConfig `yaml:"backend"`
	CLI       CLIConfig     `yaml:"cli"`
}

type BackendConfig struct {
	DataDir      string `yaml:"data_dir"`
	SQLitePath   string `yaml:"sqlite_path"`
	ResumeDBPath string `yaml:"resume_db_path"`
	PostgresURL  string `yaml:"postgres_url,omitempty"`
	Timezone     string `yaml:"timezone"`
	DragPolicy   string `yaml:"drag_policy"`
}

type CLIConfig struct {
	Output string `yaml:"output"`
}

func Default(home string) Config {
	stateDir := filepath.Join(home, ".local", "state", "jobboard")

	return Config{
		ServerURL: DefaultServerURL,
		Backend: BackendConfig{
			DataDir:      filepath.Join(stateDir, "board"),
			SQLitePath:   filepath.Join(stateDir, "projection.db"),
			ResumeDBPath: filepath.Join(stateDir, "resumes.db"),
			Timezone:     DefaultTimezone,
			DragPolicy:   DefaultDragPolicy,
		},
		CLI: CLIConfig{
			Output: DefaultOutput,
		},
	}
}

func ConfigPath(home string) string {
	return filepath.Join(home, ".config", "jobboard", "config.yaml")
}

// LoadOrInit reads the config file under home, creating it from defaults when it
// is missing and writing back any fields the user left out.
func LoadOrInit(home string) (Config, error) {
	path := ConfigPath(home)
	defaults := Default(home)

	cfg, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := SaveFile(path, defaults); err != nil {
				return Config{}, err
			}
			return defaults, nil
		}
		return Config{}, err
	}

	merged := Merge(defaults, cfg)
	if merged != cfg {
		if err := SaveFile(path, merged); err != nil {
			return Config{}, err
		}
	}

	return merged, nil
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return normalize(cfg), nil
}

func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(normalize(cfg))
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Merge(defaults Config, user Config) Config {
	out := normalize(defaults)
	in := normalize(user)

	if in.ServerURL != "" {
		out.ServerURL = in.ServerURL
	}

	if in.Backend.DataDir != "" {
		out.Backend.DataDir = in.Backend.DataDir
	}
	if in.Backend.SQLitePath != "" {
		out.Backend.SQLitePath = in.Backend.SQLitePath
	}
	if in.Backend.ResumeDBPath != "" {
		out.Backend.ResumeDBPath = in.Backend.ResumeDBPath
	}
	if in.Backend.PostgresURL != "" {
		out.Backend.PostgresURL = in.Backend.PostgresURL
	}
	if in.Backend.Timezone != "" {
		out.Backend.Timezone = in.Backend.Timezone
	}
	if in.Backend.DragPolicy != "" {
		out.Backend.DragPolicy = in.Backend.DragPolicy
	}

	if in.CLI.Output != "" {
		out.CLI.Output = in.CLI.Output
	}

	return out
}

// ApplyEnv overrides fields from JOBBOARD_* variables. getenv is usually os.Getenv.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.ServerURL, "JOBBOARD_SERVER_URL")
	set(&cfg.Backend.DataDir, "JOBBOARD_DATA_DIR")
	set(&cfg.Backend.SQLitePath, "JOBBOARD_SQLITE_PATH")
	set(&cfg.Backend.ResumeDBPath, "JOBBOARD_RESUME_DB_PATH")
	set(&cfg.Backend.PostgresURL, "JOBBOARD_POSTGRES_URL")
	set(&cfg.Backend.Timezone, "JOBBOARD_TIMEZONE")
	set(&cfg.Backend.DragPolicy, "JOBBOARD_DRAG_POLICY")
	set(&cfg.CLI.Output, "JOBBOARD_OUTPUT")
	return cfg
}

// Location resolves the configured timezone. Empty and "Local" mean the host zone.
func (b BackendConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(b.Timezone)
	if name == "" || name == DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func normalize(cfg Config) Config {
	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)
	cfg.Backend.DataDir = strings.TrimSpace(cfg.Backend.DataDir)
	cfg.Backend.SQLitePath = strings.TrimSpace(cfg.Backend.SQLitePath)
	cfg.Backend.ResumeDBPath = strings.TrimSpace(cfg.Backend.ResumeDBPath)
	cfg.Backend.PostgresURL = strings.TrimSpace(cfg.Backend.PostgresURL)
	cfg.Backend.Timezone = strings.TrimSpace(cfg.Backend.Timezone)
	cfg.Backend.DragPolicy = strings.ToLower(strings.TrimSpace(cfg.Backend.DragPolicy))
	cfg.CLI.Output = strings.TrimSpace(cfg.CLI.Output)
	return cfg
}
