// Package validation provides input validation utilities.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var boardSlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)

// Slugs that would collide with API routes or reserved pages.
var reservedBoardSlugs = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"auth":      {},
	"billing":   {},
	"board":     {},
	"boards":    {},
	"changelog": {},
	"dashboard": {},
	"login":     {},
	"metrics":   {},
	"onboard":   {},
	"posts":     {},
	"pricing":   {},
	"projects":  {},
	"roadmap":   {},
	"settings":  {},
	"signup":    {},
	"stripe":    {},
	"swagger":   {},
	"users":     {},
	"widget":    {},
}

// ValidateBoardSlug validates board slug format and reserved names.
func ValidateBoardSlug(slug string) error {
	if !boardSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-50 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedBoardSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}
