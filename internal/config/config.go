package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the loader. Each overrides the
// corresponding config file field.
const (
	EnvConfigPath    = "CL_CONFIG_PATH"
	EnvDBConnection  = "CL_DB_CONNECTION"
	EnvPort          = "CL_PORT"
	EnvJWTSecret     = "CL_JWT_SECRET"
	EnvUseRSA        = "CL_USE_RSA256_JWT"
	EnvRSAKeyFile    = "CL_RSA256_FILE"
	EnvRSAPublicFile = "CL_RSA256_PUBLIC_FILE"
	EnvMaxChallenges = "CL_MAX_CHALLENGES"
)

// defaultMaxChallenges bounds the main list; entries past it are legacy.
const defaultMaxChallenges = 100

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or env CL_DB_CONNECTION)")

// ErrMissingJWTSecret indicates no signing secret is configured.
var ErrMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` or env CL_JWT_SECRET)")

// JWTConfig holds token signing settings.
//
// The symmetric secret is always required: it signs tokens when RSA is off
// and remains the verification fallback when RSA is on. When UseRSA is set,
// both key files must be readable; missing key material is startup-fatal
// rather than a per-request error.
type JWTConfig struct {
	Secret        string `yaml:"secret"`
	UseRSA        bool   `yaml:"use-rsa"`
	RSAKeyFile    string `yaml:"rsa-key-file"`
	RSAPublicFile string `yaml:"rsa-public-file"`
}

// Config holds resolved application configuration values.
type Config struct {
	DatabaseDSN   string    `yaml:"database-dsn"`
	Port          int       `yaml:"port"`
	MaxChallenges int       `yaml:"max-challenges"`
	JWT           JWTConfig `yaml:"jwt"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides.
//
// The file may be absent as long as the environment provides the required
// values; a present but malformed file is an error.
func Load(configPath string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read %s: %w", configPath, errRead)
	}

	applyEnvOverrides(&cfg)

	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return Config{}, ErrMissingDatabaseDSN
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return Config{}, ErrMissingJWTSecret
	}
	if cfg.JWT.UseRSA {
		if strings.TrimSpace(cfg.JWT.RSAKeyFile) == "" || strings.TrimSpace(cfg.JWT.RSAPublicFile) == "" {
			return Config{}, errors.New("config: rsa signing enabled but key files are not set")
		}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = 8080
	}
	if cfg.MaxChallenges <= 0 {
		cfg.MaxChallenges = defaultMaxChallenges
	}
	return cfg, nil
}

// applyEnvOverrides overlays environment values onto the file config.
func applyEnvOverrides(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if useRSA := strings.TrimSpace(os.Getenv(EnvUseRSA)); useRSA != "" {
		cfg.JWT.UseRSA = useRSA == "true"
	}
	if keyFile := strings.TrimSpace(os.Getenv(EnvRSAKeyFile)); keyFile != "" {
		cfg.JWT.RSAKeyFile = keyFile
	}
	if publicFile := strings.TrimSpace(os.Getenv(EnvRSAPublicFile)); publicFile != "" {
		cfg.JWT.RSAPublicFile = publicFile
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil && port > 0 {
			cfg.Port = port
		}
	}
	if maxRaw := strings.TrimSpace(os.Getenv(EnvMaxChallenges)); maxRaw != "" {
		if maxChallenges, errParse := strconv.Atoi(maxRaw); errParse == nil && maxChallenges > 0 {
			cfg.MaxChallenges = maxChallenges
		}
	}
}
