package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"PRACOSFERA_HTTP_PORT",
			"PRACOSFERA_SQLITE_DSN",
			"PRACOSFERA_SESSION_TTL",
			"PRACOSFERA_RECONCILE_INTERVAL",
			"PRACOSFERA_VERIFICATION_STEP",
			"PRACOSFERA_VERIFICATION_TTL",
			"PRACOSFERA_WEBHOOK_URL",
			"PRACOSFERA_COOKIE_BLOCK_KEY",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("PRACOSFERA_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:pracosfera.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.ReconcileInterval != 5*time.Minute {
			t.Fatalf("expected default reconcile interval 5m, got %s", cfg.ReconcileInterval)
		}
		if !cfg.VerificationStep {
			t.Fatal("expected verification step to default on")
		}
		if cfg.VerificationTTL != 24*time.Hour {
			t.Fatalf("expected default verification TTL 24h, got %s", cfg.VerificationTTL)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"PRACOSFERA_SESSION_SECRET",
			"PRACOSFERA_HTTP_PORT",
			"PRACOSFERA_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "brak wymaganych zmiennych środowiskowych: PRACOSFERA_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("PRACOSFERA_SESSION_SECRET", "secret-value")
		t.Setenv("PRACOSFERA_HTTP_PORT", "9090")
		t.Setenv("PRACOSFERA_SQLITE_DSN", "file:/tmp/pracosfera.db")
		t.Setenv("PRACOSFERA_SESSION_TTL", "12h")
		t.Setenv("PRACOSFERA_RECONCILE_INTERVAL", "1m")
		t.Setenv("PRACOSFERA_VERIFICATION_STEP", "false")
		t.Setenv("PRACOSFERA_VERIFICATION_TTL", "48h")
		t.Setenv("PRACOSFERA_WEBHOOK_URL", "https://hooks.example.com/reservations")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.ReconcileInterval != time.Minute {
			t.Fatalf("expected reconcile interval 1m, got %s", cfg.ReconcileInterval)
		}
		if cfg.VerificationStep {
			t.Fatal("expected verification step off")
		}
		if cfg.VerificationTTL != 48*time.Hour {
			t.Fatalf("expected verification TTL 48h, got %s", cfg.VerificationTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.WebhookURL != "https://hooks.example.com/reservations" {
			t.Fatalf("unexpected webhook URL: %q", cfg.WebhookURL)
		}
	})

	t.Run("rejects malformed cookie block key", func(t *testing.T) {
		t.Setenv("PRACOSFERA_SESSION_SECRET", "secret-value")
		t.Setenv("PRACOSFERA_COOKIE_BLOCK_KEY", "too-short")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed block key")
		}
		expected := "nieprawidłowe wartości zmiennych środowiskowych: PRACOSFERA_COOKIE_BLOCK_KEY"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
