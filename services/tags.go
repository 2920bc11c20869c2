package services

import (
	"strings"

	"github.com/solocreator/planner/models"
)

// FormatHashtag formats a tag value as a hashtag usable on every supported platform.
// Letters, digits and underscores are kept; spaces and hyphens are dropped. Hashtags
// cannot start with a digit, so those yield "".
func FormatHashtag(tag string) string {
	tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return ""
	}

	var result strings.Builder
	for _, r := range tag {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}

	formatted := strings.ToLower(result.String())
	if len(formatted) > 0 && formatted[0] >= '0' && formatted[0] <= '9' {
		return ""
	}
	return formatted
}

// Hashtags returns the post's tags as unique hashtags without the leading '#', in tag order.
func Hashtags(post models.Post) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range post.TagList() {
		h := FormatHashtag(tag)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
