package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solocreator/planner/models"
)

func samplePosts() []models.Post {
	at := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	series := uint(3)
	return []models.Post{
		{ID: 7, Platform: models.PlatformTikTok, Title: "Hook, line", Description: str("two\nlines"), PublishAt: &at, Status: models.StatusScheduled, Tags: str("Cooking Tips, 2024, #Pasta"), SeriesID: &series},
		{ID: 8, Platform: models.PlatformInstagram, Title: "Unscheduled", Status: models.StatusIdea},
	}
}

func TestWritePostsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePostsCSV(&buf, samplePosts()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "platform", "title", "description", "publish_at", "status", "tags", "series_id"}, records[0])
	assert.Equal(t, "7", records[1][0])
	assert.Equal(t, "Hook, line", records[1][2])
	assert.Equal(t, "two\nlines", records[1][3])
	assert.Equal(t, time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC).In(time.Local).Format("2006-01-02 15:04:05"), records[1][4])
	assert.Equal(t, "3", records[1][7])
	assert.Equal(t, []string{"8", "instagram", "Unscheduled", "", "", "idea", "", ""}, records[2])
}

func TestWriteCalendar(t *testing.T) {
	var buf bytes.Buffer
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, WriteCalendar(&buf, samplePosts(), stamp))

	out := buf.String()
	assert.Contains(t, out, "PRODID:-//SoloCreator//Planner//EN")
	assert.Contains(t, out, "UID:7@solocreator")
	assert.Contains(t, out, "DTSTART:20240506T080000Z")
	assert.Contains(t, out, "DTSTAMP:20240501T120000Z")
	assert.Contains(t, out, "DESCRIPTION:TIKTOK")
	assert.Contains(t, out, "CATEGORIES:cookingtips,pasta")
	assert.NotContains(t, out, "8@solocreator")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
}

func TestFormatHashtag(t *testing.T) {
	assert.Equal(t, "cookingtips", FormatHashtag(" Cooking Tips "))
	assert.Equal(t, "pasta", FormatHashtag("#Pasta"))
	assert.Equal(t, "", FormatHashtag("2024"))
	assert.Equal(t, "snake_case", FormatHashtag("snake_case!"))
	assert.Equal(t, []string{"cookingtips", "pasta"}, Hashtags(samplePosts()[0]))
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(in.Body); err != nil {
		return nil, err
	}
	f.body = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func TestBackupsToDirectoryAndS3(t *testing.T) {
	p, db, clock := newTestPlanner(t)
	ctx := context.Background()
	_, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformTikTok, Title: "backed up"})
	require.NoError(t, err)

	dir := t.TempDir()
	backups := NewBackups(db, DirStore{Dir: dir}, clock)
	location, err := backups.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, backups.FileName()), location)
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("SQLite format 3")))

	fake := &fakeS3{}
	remote := NewBackups(db, S3Store{Client: fake, Bucket: "planner-backups", Prefix: "nightly"}, clock)
	location, err = remote.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s3://planner-backups/nightly/"+remote.FileName(), location)
	assert.Equal(t, "nightly/"+remote.FileName(), aws.ToString(fake.input.Key))
	assert.True(t, bytes.HasPrefix(fake.body, []byte("SQLite format 3")))

	var streamed bytes.Buffer
	require.NoError(t, backups.WriteTo(ctx, &streamed))
	assert.True(t, bytes.HasPrefix(streamed.Bytes(), []byte("SQLite format 3")))
}
