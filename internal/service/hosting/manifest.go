package hosting

import (
	"fmt"
	"strings"

	"github.com/hostbr/deploybot/internal/domain"
)

const maxManifestDescription = 50

// manifestVariant describes one rung of the degrading-manifest ladder.
// Later variants drop detail that has caused provider rejections.
type manifestVariant struct {
	// genericDescription replaces the user description when set.
	genericDescription string
	// forceRecommended overrides the runtime version selector.
	forceRecommended bool
	restart          bool
}

// manifestVariants is consumed by attempt index: attempt 1 sends the
// full manifest, attempt 3 the minimal one.
var manifestVariants = [...]manifestVariant{
	{restart: true},
	{genericDescription: "Discord Deploy", forceRecommended: true, restart: true},
	{genericDescription: "App Deploy", forceRecommended: true},
}

// maxDeployAttempts is the size of the variant ladder.
const maxDeployAttempts = len(manifestVariants)

// renderManifest produces the provider manifest for a given attempt.
func renderManifest(cfg domain.DeployConfig, displayName string, attempt int) string {
	v := manifestVariants[attempt-1]

	description := v.genericDescription
	if description == "" {
		description = cfg.Description
		if description == "" {
			description = "Deploy via Discord"
		}
		if len(description) > maxManifestDescription {
			description = description[:maxManifestDescription]
		}
	}

	version := "recommended"
	if !v.forceRecommended && cfg.Version != "" {
		version = cfg.Version
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DISPLAY_NAME=%s\n", displayName)
	fmt.Fprintf(&b, "DESCRIPTION=%s\n", description)
	b.WriteString("MAIN=index.js\n")
	fmt.Fprintf(&b, "MEMORY=%d\n", cfg.MemoryMB)
	fmt.Fprintf(&b, "VERSION=%s", version)
	if v.restart {
		b.WriteString("\nRESTART=true")
	}
	return b.String()
}
