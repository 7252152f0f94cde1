package hosting

import (
	"fmt"
	"strings"
	"time"
)

const maxDisplayNameLen = 30

// SanitizeDisplayName normalizes a display name to the provider's rules:
// letters, digits and single spaces only, no leading or trailing space,
// at most 30 characters. An input that sanitizes to nothing gets a
// generated fallback name.
func SanitizeDisplayName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}
	sanitized := strings.Join(strings.Fields(b.String()), " ")

	if len(sanitized) > maxDisplayNameLen {
		sanitized = strings.TrimSpace(sanitized[:maxDisplayNameLen])
	}
	if sanitized == "" {
		ts := fmt.Sprintf("%d", time.Now().UnixMilli())
		sanitized = "MyApp" + ts[len(ts)-4:]
	}
	return sanitized
}
