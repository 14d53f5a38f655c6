package id

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var compact = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns a random (v4) UUID with the dashes stripped.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s is a lowercase 32-char hex id.
func Valid(s string) bool { return compact.MatchString(s) }

// Compact turns a dashed UUID into the 32-char form. Ids that are already
// compact pass through lowercased.
func Compact(s string) (string, bool) {
	if u, err := uuid.Parse(s); err == nil {
		return strings.ReplaceAll(u.String(), "-", ""), true
	}
	s = strings.ToLower(s)
	return s, Valid(s)
}
