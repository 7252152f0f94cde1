package hosting

import (
	"regexp"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestSanitizeDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"my-cool-bot", "mycoolbot"},
		{"My App 2", "My App 2"},
		{"  spaced   out  ", "spaced out"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"acentuação aqui", "acentuao aqui"},
		{"!!!###", ""},
		{strings.Repeat("a", 40), strings.Repeat("a", 30)},
	}
	for _, tc := range cases {
		got := SanitizeDisplayName(tc.in)
		if tc.want == "" {
			if !strings.HasPrefix(got, "MyApp") || len(got) != len("MyApp")+4 {
				t.Fatalf("SanitizeDisplayName(%q) = %q, want generated fallback", tc.in, got)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("SanitizeDisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

var displayNameShape = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9 ]*[A-Za-z0-9])?$`)

func TestSanitizeDisplayNameProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "in")
		out := SanitizeDisplayName(in)

		if len(out) == 0 || len(out) > maxDisplayNameLen {
			t.Fatalf("length out of bounds: %q (%d)", out, len(out))
		}
		if !displayNameShape.MatchString(out) {
			t.Fatalf("invalid characters in %q", out)
		}
		if again := SanitizeDisplayName(out); again != out {
			t.Fatalf("not idempotent: %q -> %q", out, again)
		}
	})
}
