package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/rules"
)

type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	DB       DatabaseConfig
	Boundary BoundaryConfig
	Levels   []models.OrgType
	Rules    rules.Rules
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, 0 disables
}

type SourceConfig struct {
	Kind       string // "http" or "sqlite"
	BaseURL    string
	Token      string
	PageSize   int
	Timeout    time.Duration
	ActiveOnly bool
	Types      []models.OrgType // empty fetches every organization type
}

type DatabaseConfig struct {
	Path string
}

type BoundaryConfig struct {
	AnchorLat    float64
	AnchorLng    float64
	StarRadius   float64
	StarPoints   int
	CirclePoints int
	CircleRadius float64
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		Source: SourceConfig{
			Kind:       getEnv("SOURCE_KIND", "http"),
			BaseURL:    getEnv("SOURCE_URL", "https://api.f3nation.com/v1"),
			Token:      getEnv("SOURCE_TOKEN", ""),
			PageSize:   getEnvInt("SOURCE_PAGE_SIZE", 200),
			Timeout:    getEnvDuration("SOURCE_TIMEOUT", 15*time.Second),
			ActiveOnly: getEnvBool("SOURCE_ACTIVE_ONLY", true),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/org-boundaries.db"),
		},
		Boundary: BoundaryConfig{
			AnchorLat:    getEnvFloat("UMBRELLA_ANCHOR_LAT", 30),
			AnchorLng:    getEnvFloat("UMBRELLA_ANCHOR_LNG", -40),
			StarRadius:   getEnvFloat("UMBRELLA_STAR_RADIUS", 2.5),
			StarPoints:   getEnvInt("UMBRELLA_STAR_POINTS", 5),
			CirclePoints: getEnvInt("CIRCLE_POINTS", 8),
			CircleRadius: getEnvFloat("CIRCLE_RADIUS", 0.15),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	levels, err := parseLevels(getEnv("LEVELS", "sector,area,region,ao"))
	if err != nil {
		return nil, err
	}
	cfg.Levels = levels

	if raw := os.Getenv("SOURCE_TYPES"); raw != "" {
		types, err := parseSourceTypes(raw)
		if err != nil {
			return nil, err
		}
		cfg.Source.Types = types
	}

	cfg.Rules = rules.Default
	if raw := os.Getenv("UMBRELLA_RULES"); raw != "" {
		rs, err := rules.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UMBRELLA_RULES: %w", err)
		}
		cfg.Rules = rs
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	switch c.Source.Kind {
	case "http":
		if c.Source.BaseURL == "" {
			return fmt.Errorf("SOURCE_URL is required for the http source")
		}
	case "sqlite":
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite source")
		}
	default:
		return fmt.Errorf("invalid source kind: %s", c.Source.Kind)
	}
	if c.Source.PageSize < 1 {
		return fmt.Errorf("source page size must be positive: %d", c.Source.PageSize)
	}
	if len(c.Source.Types) > 0 {
		for _, l := range c.Levels {
			if !slices.Contains(c.Source.Types, l) {
				return fmt.Errorf("level %s is missing from SOURCE_TYPES", l)
			}
		}
	}

	if c.Boundary.CircleRadius <= 0 || c.Boundary.StarRadius <= 0 {
		return fmt.Errorf("boundary radii must be positive")
	}
	if c.Boundary.CirclePoints < 3 || c.Boundary.StarPoints < 2 {
		return fmt.Errorf("too few boundary points: circle %d, star %d", c.Boundary.CirclePoints, c.Boundary.StarPoints)
	}

	return nil
}

func parseLevels(raw string) ([]models.OrgType, error) {
	var levels []models.OrgType
	seen := make(map[models.OrgType]bool)
	for _, part := range strings.Split(raw, ",") {
		t := models.ParseOrgType(part)
		if t == "" || t == models.OrgTypeNation {
			return nil, fmt.Errorf("invalid level: %q", strings.TrimSpace(part))
		}
		if seen[t] {
			return nil, fmt.Errorf("duplicate level: %s", t)
		}
		seen[t] = true
		levels = append(levels, t)
	}
	return levels, nil
}

func parseSourceTypes(raw string) ([]models.OrgType, error) {
	var types []models.OrgType
	for _, part := range strings.Split(raw, ",") {
		t := models.ParseOrgType(part)
		if t == "" {
			return nil, fmt.Errorf("invalid source type: %q", strings.TrimSpace(part))
		}
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	return types, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
