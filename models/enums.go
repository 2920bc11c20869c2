package models

import "strings"

type Platform string

const (
	PlatformYouTubeLong  Platform = "youtube_long"
	PlatformYouTubeShort Platform = "youtube_short"
	PlatformInstagram    Platform = "instagram"
	PlatformTikTok       Platform = "tiktok"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformYouTubeLong, PlatformYouTubeShort, PlatformInstagram, PlatformTikTok}

func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTubeLong, PlatformYouTubeShort, PlatformInstagram, PlatformTikTok:
		return true
	}
	return false
}

// DescriptionLimit is the maximum description length in characters for posts on p.
func (p Platform) DescriptionLimit() int {
	switch p {
	case PlatformYouTubeLong:
		return 5000
	case PlatformYouTubeShort:
		return 150
	case PlatformInstagram, PlatformTikTok:
		return 2200
	}
	return 1000
}

type Status string

const (
	StatusIdea         Status = "idea"
	StatusInProduction Status = "in_production"
	StatusReady        Status = "ready"
	StatusScheduled    Status = "scheduled"
	StatusPublished    Status = "published"
)

var Statuses = []Status{StatusIdea, StatusInProduction, StatusReady, StatusScheduled, StatusPublished}

func (s Status) Valid() bool {
	switch s {
	case StatusIdea, StatusInProduction, StatusReady, StatusScheduled, StatusPublished:
		return true
	}
	return false
}

type TodoStatus string

const (
	TodoOpen TodoStatus = "open"
	TodoDone TodoStatus = "done"
)

// Toggled flips open and done.
func (s TodoStatus) Toggled() TodoStatus {
	if s == TodoOpen {
		return TodoDone
	}
	return TodoOpen
}

// SplitList splits a comma separated column value, trimming blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
