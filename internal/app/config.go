package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/mlcatalog-backend/internal/platform/envutil"
	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
)

type Config struct {
	Port              string   `yaml:"port"`
	AdminToken        string   `yaml:"admin_token"`
	Environment       string   `yaml:"environment"`
	Version           string   `yaml:"version"`
	MaxTraversalDepth int      `yaml:"max_traversal_depth"`
	VersionMaxRetries int      `yaml:"version_max_retries"`
	CORSAllowOrigins  []string `yaml:"cors_allow_origins"`
}

// LoadConfig reads the optional YAML file named by CONFIG_FILE, then lets
// environment variables override individual fields.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:              "8080",
		Environment:       "development",
		MaxTraversalDepth: 25,
		VersionMaxRetries: 3,
	}

	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.AdminToken = envutil.String("ADMIN_AUTH_TOKEN", cfg.AdminToken)
	cfg.Environment = envutil.String("ENVIRONMENT", cfg.Environment)
	cfg.Version = envutil.String("SERVICE_VERSION", cfg.Version)
	cfg.MaxTraversalDepth = envutil.Int("MAX_TRAVERSAL_DEPTH", cfg.MaxTraversalDepth)
	cfg.VersionMaxRetries = envutil.Int("VERSION_MAX_RETRIES", cfg.VersionMaxRetries)
	if origins := envutil.String("CORS_ALLOW_ORIGINS", ""); origins != "" {
		cfg.CORSAllowOrigins = splitCSV(origins)
	}

	if cfg.MaxTraversalDepth < 1 {
		cfg.MaxTraversalDepth = 25
	}
	if cfg.VersionMaxRetries < 1 {
		cfg.VersionMaxRetries = 3
	}
	return cfg, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
