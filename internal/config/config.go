package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds settings for both the server and the CLI client
type Config struct {
	DatabaseURL string // postgres connection string; empty selects SQLite
	SQLitePath  string
	Addr        string
	CORSOrigins []string
	LogQueries  bool

	APIBaseURL string
	Token      string

	AnthropicAPIKey string
}

// Load reads the given env files (".env" when none are given; missing files
// are fine) and then the process environment. Variables already set in the
// environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      os.Getenv("CALLDESK_DB"),
		Addr:            ":8080",
		CORSOrigins:     []string{"*"},
		LogQueries:      true,
		APIBaseURL:      getenv("CALLDESK_API", "http://localhost:8080"),
		Token:           os.Getenv("CALLDESK_TOKEN"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
	}

	if cfg.SQLitePath == "" {
		home, _ := os.UserHomeDir()
		cfg.SQLitePath = filepath.Join(home, ".calldesk", "calldesk.db")
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if v := os.Getenv("LOG_QUERIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse LOG_QUERIES: %w", err)
		}
		cfg.LogQueries = b
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
