// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	PlanFile    string
	Project     ProjectConfig
	Dashboard   DashboardConfig
}

// ProjectConfig carries the fixed planning constants of the tracked project.
// Progress percentages are computed against these, not against sums over the
// sprint collection, so a scope change must be made here explicitly.
type ProjectConfig struct {
	Name          string
	Client        string
	Context       string
	TotalSessions int
	TotalHours    int
	StartDate     time.Time
	TargetDate    time.Time
}

// DashboardConfig controls the live dashboard stream.
type DashboardConfig struct {
	PushInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	startDate, err := getEnvDate("PROJECT_START_DATE", "2026-03-02")
	if err != nil {
		return nil, fmt.Errorf("invalid PROJECT_START_DATE: %w", err)
	}
	targetDate, err := getEnvDate("PROJECT_TARGET_DATE", "2026-12-20")
	if err != nil {
		return nil, fmt.Errorf("invalid PROJECT_TARGET_DATE: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/plantrack.db"),
		PlanFile:    getEnv("PLAN_FILE", ""),
		Project: ProjectConfig{
			Name:          getEnv("PROJECT_NAME", "SGCD — Sistema de Gestão Consular Digital"),
			Client:        getEnv("PROJECT_CLIENT", "Embaixada da República de Angola"),
			Context:       getEnv("PROJECT_CONTEXT", ""),
			TotalSessions: getEnvInt("PROJECT_TOTAL_SESSIONS", 204),
			TotalHours:    getEnvInt("PROJECT_TOTAL_HOURS", 680),
			StartDate:     startDate,
			TargetDate:    targetDate,
		},
		Dashboard: DashboardConfig{
			PushInterval: getEnvDuration("DASHBOARD_PUSH_INTERVAL", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Project.TotalSessions <= 0 {
		return fmt.Errorf("PROJECT_TOTAL_SESSIONS must be > 0")
	}
	if c.Project.TotalHours <= 0 {
		return fmt.Errorf("PROJECT_TOTAL_HOURS must be > 0")
	}
	if !c.Project.TargetDate.After(c.Project.StartDate) {
		return fmt.Errorf("PROJECT_TARGET_DATE must be after PROJECT_START_DATE")
	}
	if c.Dashboard.PushInterval <= 0 {
		return fmt.Errorf("DASHBOARD_PUSH_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvDate(key, fallback string) (time.Time, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		value = fallback
	}
	return time.Parse(time.DateOnly, strings.TrimSpace(value))
}
