package jobboard

import (
	"strings"

	"github.com/simonjohansson/jobboard/pkg/boardconfig"
)

type Config struct {
	ServerURL string                    `yaml:"server_url"`
	Output    Output                    `yaml:"output"`
	Backend   boardconfig.BackendConfig `yaml:"backend"`
}

func DefaultConfig(home string) Config {
	return mapSharedToCLI(boardconfig.Default(home))
}

// ParseEnvConfig reads JOBBOARD_* overrides from an environ-style slice.
func ParseEnvConfig(env []string) Config {
	values := make(map[string]string, len(env))
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "JOBBOARD_") {
			continue
		}
		values[key] = value
	}

	shared := boardconfig.ApplyEnv(boardconfig.Config{}, func(key string) string {
		return values[key]
	})
	return mapSharedToCLI(shared)
}

func MergeConfig(defaults, fileCfg, envCfg, flagCfg Config) Config {
	out := defaults
	applyConfig(&out, fileCfg)
	applyConfig(&out, envCfg)
	applyConfig(&out, flagCfg)
	return out
}

func applyConfig(dst *Config, src Config) {
	if value := strings.TrimSpace(src.ServerURL); value != "" {
		dst.ServerURL = value
	}
	if src.Output != "" {
		dst.Output = src.Output
	}
	merged := boardconfig.Merge(boardconfig.Config{Backend: dst.Backend}, boardconfig.Config{Backend: src.Backend})
	dst.Backend = merged.Backend
}

func LoadOrInitConfig(home string) (Config, error) {
	shared, err := boardconfig.LoadOrInit(home)
	if err != nil {
		return Config{}, err
	}
	return mapSharedToCLI(shared), nil
}

func ConfigPath(home string) string {
	return boardconfig.ConfigPath(home)
}

func LoadConfigFile(path string) (Config, error) {
	shared, err := boardconfig.LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return mapSharedToCLI(shared), nil
}

func SaveConfigFile(path string, cfg Config) error {
	shared, err := boardconfig.LoadFile(path)
	if err != nil {
		shared = boardconfig.Config{}
	}
	shared.ServerURL = strings.TrimSpace(cfg.ServerURL)
	shared.CLI.Output = strings.TrimSpace(string(cfg.Output))
	shared.Backend = cfg.Backend
	return boardconfig.SaveFile(path, shared)
}

func mapSharedToCLI(shared boardconfig.Config) Config {
	cfg := Config{
		ServerURL: strings.TrimSpace(shared.ServerURL),
		Output:    Output(strings.TrimSpace(shared.CLI.Output)),
		Backend:   shared.Backend,
	}
	if cfg.Output != "" && !isValidOutput(string(cfg.Output)) {
		cfg.Output = ""
	}
	return cfg
}
