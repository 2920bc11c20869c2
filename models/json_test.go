package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-05-06T10:00:00Z":      time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
		"2024-05-06 10:00:00":       time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local),
		"2024-05-06T10:30":          time.Date(2024, 5, 6, 10, 30, 0, 0, time.Local),
		" 2024-05-06 ":              time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local),
		"2024-05-06T10:00:00+02:00": time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got.Time), "%s parsed as %s", raw, got.Time)
	}

	_, err := ParseTimestamp("next tuesday")
	assert.Error(t, err)
}

type patchBody struct {
	Title     Optional[string]    `json:"title"`
	SeriesID  Optional[uint]      `json:"series_id"`
	PublishAt Optional[Timestamp] `json:"publish_at"`
}

func TestOptionalTracksPresence(t *testing.T) {
	var body patchBody
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Hello","series_id":null}`), &body))

	assert.True(t, body.Title.Set)
	assert.False(t, body.Title.Null)
	assert.Equal(t, "Hello", *body.Title.Ptr())

	assert.True(t, body.SeriesID.Set)
	assert.True(t, body.SeriesID.Null)
	assert.Nil(t, body.SeriesID.Ptr())

	assert.False(t, body.PublishAt.Set)
}

func TestPlatformLimits(t *testing.T) {
	assert.Equal(t, 5000, PlatformYouTubeLong.DescriptionLimit())
	assert.Equal(t, 150, PlatformYouTubeShort.DescriptionLimit())
	assert.Equal(t, 2200, PlatformInstagram.DescriptionLimit())
	assert.Equal(t, 2200, PlatformTikTok.DescriptionLimit())
	assert.Equal(t, 1000, Platform("linkedin").DescriptionLimit())
	assert.False(t, Platform("linkedin").Valid())
	assert.True(t, StatusInProduction.Valid())
	assert.Equal(t, TodoOpen, TodoOpen.Toggled().Toggled())
}

func TestTemplateTokens(t *testing.T) {
	tpl := Template{DaysOfWeek: "Mon, Wed,,Fri", Platforms: "tiktok, instagram"}
	assert.Equal(t, []string{"Mon", "Wed", "Fri"}, tpl.Weekdays())
	assert.Equal(t, []Platform{PlatformTikTok, PlatformInstagram}, tpl.PlatformList())
}
