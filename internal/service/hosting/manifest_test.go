package hosting

import (
	"strings"
	"testing"

	"github.com/hostbr/deploybot/internal/domain"
)

func manifestLines(m string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(m, "\n") {
		k, v, ok := strings.Cut(line, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}

func TestRenderManifestFirstAttemptKeepsUserValues(t *testing.T) {
	cfg := domain.DeployConfig{
		DisplayName: "My Bot",
		Description: "does bot things",
		MemoryMB:    512,
		Version:     "latest",
	}
	got := manifestLines(renderManifest(cfg, "My Bot", 1))

	if got["DISPLAY_NAME"] != "My Bot" {
		t.Fatalf("DISPLAY_NAME = %q", got["DISPLAY_NAME"])
	}
	if got["DESCRIPTION"] != "does bot things" {
		t.Fatalf("DESCRIPTION = %q", got["DESCRIPTION"])
	}
	if got["MAIN"] != "index.js" {
		t.Fatalf("MAIN = %q", got["MAIN"])
	}
	if got["MEMORY"] != "512" {
		t.Fatalf("MEMORY = %q", got["MEMORY"])
	}
	if got["VERSION"] != "latest" {
		t.Fatalf("VERSION = %q", got["VERSION"])
	}
	if got["RESTART"] != "true" {
		t.Fatalf("RESTART = %q", got["RESTART"])
	}
}

func TestRenderManifestDegradesPerAttempt(t *testing.T) {
	cfg := domain.DeployConfig{
		DisplayName: "My Bot",
		Description: "does bot things",
		MemoryMB:    256,
		Version:     "latest",
	}

	second := manifestLines(renderManifest(cfg, "My Bot", 2))
	if second["DESCRIPTION"] != "Discord Deploy" {
		t.Fatalf("attempt 2 DESCRIPTION = %q", second["DESCRIPTION"])
	}
	if second["VERSION"] != "recommended" {
		t.Fatalf("attempt 2 VERSION = %q", second["VERSION"])
	}
	if second["RESTART"] != "true" {
		t.Fatalf("attempt 2 RESTART = %q", second["RESTART"])
	}

	third := manifestLines(renderManifest(cfg, "My Bot", 3))
	if third["DESCRIPTION"] != "App Deploy" {
		t.Fatalf("attempt 3 DESCRIPTION = %q", third["DESCRIPTION"])
	}
	if third["VERSION"] != "recommended" {
		t.Fatalf("attempt 3 VERSION = %q", third["VERSION"])
	}
	if _, ok := third["RESTART"]; ok {
		t.Fatalf("attempt 3 should not set RESTART, got %q", third["RESTART"])
	}
}

func TestRenderManifestDefaultsAndCaps(t *testing.T) {
	cfg := domain.DeployConfig{DisplayName: "App", MemoryMB: 256}
	got := manifestLines(renderManifest(cfg, "App", 1))
	if got["DESCRIPTION"] != "Deploy via Discord" {
		t.Fatalf("empty description fallback = %q", got["DESCRIPTION"])
	}
	if got["VERSION"] != "recommended" {
		t.Fatalf("empty version fallback = %q", got["VERSION"])
	}

	cfg.Description = strings.Repeat("x", 80)
	got = manifestLines(renderManifest(cfg, "App", 1))
	if len(got["DESCRIPTION"]) != maxManifestDescription {
		t.Fatalf("description not capped: %d chars", len(got["DESCRIPTION"]))
	}
}
