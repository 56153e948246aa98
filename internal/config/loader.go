package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	SessionSecret     string
	CookieBlockKey    string
	SessionTTL        time.Duration
	ReconcileInterval time.Duration
	VerificationStep  bool
	VerificationTTL   time.Duration
	WebhookURL        string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:pracosfera.db?_foreign_keys=on",
		SessionTTL:        24 * time.Hour,
		ReconcileInterval: 5 * time.Minute,
		VerificationStep:  true,
		VerificationTTL:   24 * time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PRACOSFERA_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PRACOSFERA_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PRACOSFERA_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("PRACOSFERA_SESSION_SECRET")); secret == "" {
		missing = append(missing, "PRACOSFERA_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	// Optional; when set the session cookie payload is encrypted as well as
	// signed. Must be 16, 24 or 32 bytes for AES.
	if blockKey := strings.TrimSpace(os.Getenv("PRACOSFERA_COOKIE_BLOCK_KEY")); blockKey != "" {
		switch len(blockKey) {
		case 16, 24, 32:
			cfg.CookieBlockKey = blockKey
		default:
			invalid = append(invalid, "PRACOSFERA_COOKIE_BLOCK_KEY")
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PRACOSFERA_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PRACOSFERA_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if intervalValue := strings.TrimSpace(os.Getenv("PRACOSFERA_RECONCILE_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "PRACOSFERA_RECONCILE_INTERVAL")
		} else {
			cfg.ReconcileInterval = interval
		}
	}

	if stepValue := strings.TrimSpace(os.Getenv("PRACOSFERA_VERIFICATION_STEP")); stepValue != "" {
		step, err := strconv.ParseBool(stepValue)
		if err != nil {
			invalid = append(invalid, "PRACOSFERA_VERIFICATION_STEP")
		} else {
			cfg.VerificationStep = step
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PRACOSFERA_VERIFICATION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PRACOSFERA_VERIFICATION_TTL")
		} else {
			cfg.VerificationTTL = ttl
		}
	}

	if webhookURL := strings.TrimSpace(os.Getenv("PRACOSFERA_WEBHOOK_URL")); webhookURL != "" {
		cfg.WebhookURL = webhookURL
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("brak wymaganych zmiennych środowiskowych: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("nieprawidłowe wartości zmiennych środowiskowych: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
