package namegen

import (
	"regexp"
	"testing"
)

var identityPattern = regexp.MustCompile(`^[a-z0-9_]+-[0-9a-f]{4}$`)

func TestNewFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		name := New()
		if !identityPattern.MatchString(name) {
			t.Fatalf("identity %q does not match %s", name, identityPattern)
		}
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		name := New()
		if seen[name] {
			t.Fatalf("identity %q minted twice", name)
		}
		seen[name] = true
	}
}
