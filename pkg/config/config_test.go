package config

import (
	"testing"
	"time"
)

func TestGetHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "abc")
	t.Setenv("TEST_BOOL", "true")

	if got := GetString("TEST_STR", "fallback"); got != "value" {
		t.Fatalf("GetString = %q", got)
	}
	if got := GetString("TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("GetString fallback = %q", got)
	}
	if got := GetInt("TEST_INT", 7); got != 42 {
		t.Fatalf("GetInt = %d", got)
	}
	if got := GetInt("TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("GetInt malformed = %d", got)
	}
	if got := GetBool("TEST_BOOL", false); !got {
		t.Fatal("GetBool = false")
	}
}

func TestLoadBotConfigDefaults(t *testing.T) {
	cfg := LoadBotConfig()

	if cfg.TicketPrefix != "square-" {
		t.Fatalf("ticket prefix = %q", cfg.TicketPrefix)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.PaymentTimeout != 5*time.Minute {
		t.Fatalf("payment timeout = %v", cfg.PaymentTimeout)
	}
	if cfg.MaxArtifactSize != 100*1024*1024 {
		t.Fatalf("max artifact size = %d", cfg.MaxArtifactSize)
	}
}
