/*
config.go - Server configuration

PURPOSE:
  Collects the planner server's settings from three layers, later layers
  overriding earlier ones:

    1. Built-in defaults
    2. Environment variables (a .env file is loaded first if present)
    3. Command-line flags

VARIABLES:
  PORT               HTTP port                          (default 8080)
  DB_PATH            SQLite database path               (default workshop.db)
  JWT_SECRET         HS256 secret; empty disables auth  (default "")
  REFRESH_INTERVAL   Backlog refresh, Go duration       (default 5m)
  ALLOWED_ORIGINS    Comma-separated CORS origins       (default *)

FLAGS:
  -port   overrides PORT
  -db     overrides DB_PATH

SEE ALSO:
  - cmd/server/main.go: Consumer
  - api/auth.go: Uses JWTSecret
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Port            string
	DBPath          string
	JWTSecret       string
	RefreshInterval time.Duration
	AllowedOrigins  []string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:            "8080",
		DBPath:          "workshop.db",
		RefreshInterval: 5 * time.Minute,
		AllowedOrigins:  []string{"*"},
	}
}

// envFiles are tried in order; the first one found is loaded.
var envFiles = []string{".env", "../.env"}

// Load builds the configuration from .env, the environment and args
// (without the program name).
func Load(args []string) (Config, error) {
	for _, p := range envFiles {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
	return FromEnv(os.Getenv, args)
}

// FromEnv builds the configuration from a lookup function and args.
func FromEnv(getenv func(string) string, args []string) (Config, error) {
	cfg := Defaults()

	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	cfg.JWTSecret = getenv("JWT_SECRET")
	if v := getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid REFRESH_INTERVAL %q", v)
		}
		cfg.RefreshInterval = d
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	fs := flag.NewFlagSet("workshop-planner", flag.ContinueOnError)
	port := fs.String("port", cfg.Port, "HTTP server port")
	dbPath := fs.String("db", cfg.DBPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Port = *port
	cfg.DBPath = *dbPath

	return cfg, nil
}

// AuthEnabled reports whether write routes require a bearer token.
func (c Config) AuthEnabled() bool { return c.JWTSecret != "" }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
