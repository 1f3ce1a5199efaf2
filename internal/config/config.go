// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Etherpad EtherpadConfig
	Mapping  MappingConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local storage configuration.
type DataConfig struct {
	// BasePath holds the SQLite database, the search index and the journal.
	BasePath string
}

// DatabasePath is the SQLite identity store file.
func (d DataConfig) DatabasePath() string { return filepath.Join(d.BasePath, "padlink.db") }

// SearchPath is the bleve index directory.
func (d DataConfig) SearchPath() string { return filepath.Join(d.BasePath, "search") }

// JournalPath is the badger journal directory.
func (d DataConfig) JournalPath() string { return filepath.Join(d.BasePath, "journal") }

// ServerConfig holds admin API server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// AdminToken, when set, is required as a Bearer token on /api/v1.
	AdminToken  string
	CORSOrigins []string
}

// EtherpadConfig holds outbound Etherpad API configuration.
type EtherpadConfig struct {
	APIVersion  string        // default: 1.2.13
	CallTimeout time.Duration // per remote call (default: 10s)
	RPS         float64       // per server (default: 10)
	Burst       int           // per server (default: 20)
}

// MappingConfig selects how local users are presented to Etherpad.
type MappingConfig struct {
	// AuthorName is one of AuthorNameMappers.
	AuthorName string
}

// AuthorNameMappers are the accepted MappingConfig.AuthorName values.
var AuthorNameMappers = []string{"display_name", "email", "username"}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("padlink", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for local data")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	adminToken := fs.String("admin-token", "", "Bearer token required by the admin API")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed CORS origins")

	// Etherpad flags
	apiVersion := fs.String("etherpad-api-version", "", "Etherpad HTTP API version (default: 1.2.13)")
	callTimeout := fs.String("etherpad-timeout", "", "Timeout of one Etherpad call (default: 10s)")
	rps := fs.String("etherpad-rps", "", "Requests per second per Etherpad server (default: 10)")
	burst := fs.String("etherpad-burst", "", "Request burst per Etherpad server (default: 20)")

	authorName := fs.String("author-name", "", "Author name mapper: display_name, email or username")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AdminToken:  getConfigValue(*adminToken, "ADMIN_TOKEN", ""),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "")),
		},
		Etherpad: EtherpadConfig{
			APIVersion: getConfigValue(*apiVersion, "ETHERPAD_API_VERSION", "1.2.13"),
			Burst:      getIntConfigValue(*burst, "ETHERPAD_BURST", 20),
		},
		Mapping: MappingConfig{
			AuthorName: getConfigValue(*authorName, "AUTHOR_NAME_MAPPER", "username"),
		},
	}

	rpsStr := getConfigValue(*rps, "ETHERPAD_RPS", "10")
	rpsValue, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid etherpad rps %q: %w", rpsStr, err)
	}
	cfg.Etherpad.RPS = rpsValue

	durations := []struct {
		flag, env, def, name string
		dst                  *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", "write timeout", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout", &cfg.Server.IdleTimeout},
		{*callTimeout, "ETHERPAD_TIMEOUT", "10s", "etherpad timeout", &cfg.Etherpad.CallTimeout},
	}
	for _, d := range durations {
		s := getConfigValue(d.flag, d.env, d.def)
		v, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, s, err)
		}
		*d.dst = v
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Etherpad.CallTimeout <= 0 {
		return errors.New("etherpad timeout must be positive")
	}
	if c.Etherpad.RPS <= 0 || c.Etherpad.Burst <= 0 {
		return errors.New("etherpad rps and burst must be positive")
	}

	valid := false
	for _, m := range AuthorNameMappers {
		if c.Mapping.AuthorName == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid author name mapper: %q (must be one of %s)",
			c.Mapping.AuthorName, strings.Join(AuthorNameMappers, ", "))
	}

	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute, defaulting to ~/Padlink/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Padlink", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
