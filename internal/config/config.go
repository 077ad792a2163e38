package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	SecretKey   string
	DatabaseURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Legacy service-account mode for a shared spreadsheet.
	GoogleCredentialsPath string
	GoogleSpreadsheetID   string
}

// Load reads configuration from the environment and validates the required
// values. Missing required values are fatal at startup.
func Load() (Config, error) {
	cfg := Config{
		Port:                  fallback(os.Getenv("PORT"), "8080"),
		SecretKey:             strings.TrimSpace(os.Getenv("SECRET_KEY")),
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		GoogleClientID:        strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		GoogleClientSecret:    strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		GoogleRedirectURI:     strings.TrimSpace(os.Getenv("GOOGLE_REDIRECT_URI")),
		GoogleCredentialsPath: fallback(os.Getenv("GOOGLE_CREDENTIALS_PATH"), "credentials.json"),
		GoogleSpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
	}

	required := map[string]string{
		"SECRET_KEY":           cfg.SecretKey,
		"DATABASE_URL":         cfg.DatabaseURL,
		"GOOGLE_CLIENT_ID":     cfg.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": cfg.GoogleClientSecret,
		"GOOGLE_REDIRECT_URI":  cfg.GoogleRedirectURI,
	}
	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
