// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

type Config struct {
	Addr        string
	LiveAgent   bool
	OpenAIKey   string
	OpenAIModel string
	UploadDir   string
	DBPath      string
	RulesPath   string
}

// FromEnv builds a Config with defaults and validates the mode switch.
// LIVE_AGENT accepts 1/true/yes (case-insensitive); anything else is the
// built-in dummy engine. Live mode without an API key is a startup error.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:        env("HTTP_ADDR", "127.0.0.1:8080"),
		LiveAgent:   truthy(os.Getenv("LIVE_AGENT")),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: env("OPENAI_MODEL", "gpt-5"),
		UploadDir:   env("UPLOAD_DIR", "./uploads"),
		DBPath:      env("DB_PATH", "./audit.db"),
		RulesPath:   os.Getenv("RULES_PATH"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.LiveAgent && c.OpenAIKey == "" {
		return fmt.Errorf("LIVE_AGENT is set but OPENAI_API_KEY is empty")
	}
	return nil
}

// Mode returns the run mode this configuration selects.
func (c Config) Mode() string {
	if c.LiveAgent {
		return domain.ModeLive
	}
	return domain.ModeDummy
}

// Catalog returns the rule catalog, reading a YAML override when RULES_PATH
// is set.
func (c Config) Catalog() (domain.Catalog, error) {
	if c.RulesPath == "" {
		return domain.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(c.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var catalog domain.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", c.RulesPath, err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("rules %s: empty catalog", c.RulesPath)
	}
	return catalog, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
