package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

// wednesday is the pinned "now" of these tests: 2024-05-08 12:00 local.
var wednesday = time.Date(2024, 5, 8, 12, 0, 0, 0, time.Local)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestPlanner(t *testing.T) (*Planner, database.Database, *testClock) {
	t.Helper()
	gdb, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	db := database.New(gdb)
	clock := &testClock{now: wednesday}
	return NewPlanner(db, clock), db, clock
}

func str(s string) *string { return &s }

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	require.True(t, errs.IsValidationError(err), "expected validation error, got %v", err)
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Messages
}

func TestCreatePostReportsEveryRuleInOrder(t *testing.T) {
	p, _, _ := newTestPlanner(t)

	_, err := p.CreatePost(context.Background(), NewPost{
		Platform:    "myspace",
		Title:       "   ",
		Description: str(strings.Repeat("x", 1001)),
		Status:      "draft",
	})

	assert.Equal(t, []string{
		"title is required",
		"invalid platform",
		"description too long (max 1000)",
		"invalid status",
	}, validationMessages(t, err))
}

func TestCreatePostCountsCharactersNotBytes(t *testing.T) {
	p, _, _ := newTestPlanner(t)
	ctx := context.Background()

	_, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformYouTubeShort, Title: "ok", Description: str(strings.Repeat("é", 150))})
	require.NoError(t, err)

	_, err = p.CreatePost(ctx, NewPost{Platform: models.PlatformYouTubeShort, Title: "long", Description: str(strings.Repeat("é", 151))})
	assert.Equal(t, []string{"description too long (max 150)"}, validationMessages(t, err))
}

func TestCreatePostDefaults(t *testing.T) {
	p, db, _ := newTestPlanner(t)
	ctx := context.Background()

	publish, err := models.ParseTimestamp("2024-05-10 18:30")
	require.NoError(t, err)
	post, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformTikTok, Title: " Hook ", PublishAt: &publish})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, models.StatusIdea, post.Status)
	assert.Equal(t, "Hook", post.Title)

	stored, err := db.PostRepo().FindByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PublishAt)
	assert.True(t, publish.Time.Equal(*stored.PublishAt))
	assert.True(t, wednesday.Equal(stored.CreatedAt))
	assert.True(t, wednesday.Equal(stored.UpdatedAt))
}

func TestUpdatePostIsSparse(t *testing.T) {
	p, db, clock := newTestPlanner(t)
	ctx := context.Background()

	post, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformInstagram, Title: "Before", Description: str("keep me"), Tags: str("food")})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, p.UpdatePost(ctx, post.ID, PostPatch{
		Title: models.Some("After"),
		Tags:  models.Null[string](),
	}))

	stored, err := db.PostRepo().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", stored.Title)
	require.NotNil(t, stored.Description)
	assert.Equal(t, "keep me", *stored.Description)
	assert.Nil(t, stored.Tags)
	assert.Equal(t, models.PlatformInstagram, stored.Platform)
	assert.True(t, wednesday.Add(time.Hour).Equal(stored.UpdatedAt))
	assert.True(t, wednesday.Equal(stored.CreatedAt))
}

func TestUpdatePostErrors(t *testing.T) {
	p, _, _ := newTestPlanner(t)
	ctx := context.Background()

	post, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformInstagram, Title: "x", Description: str(strings.Repeat("a", 500))})
	require.NoError(t, err)

	assert.True(t, errs.IsMissingIDError(p.UpdatePost(ctx, 0, PostPatch{Title: models.Some("y")})))
	assert.True(t, errs.IsNoChangesError(p.UpdatePost(ctx, post.ID, PostPatch{})))
	assert.True(t, errs.IsNotFound(p.UpdatePost(ctx, 999, PostPatch{Title: models.Some("y")})))

	err = p.UpdatePost(ctx, post.ID, PostPatch{Status: models.Some(models.Status("lost"))})
	assert.Equal(t, []string{"invalid status"}, validationMessages(t, err))

	err = p.UpdatePost(ctx, post.ID, PostPatch{Platform: models.Some(models.Platform("vine")), Title: models.Some("  ")})
	assert.Equal(t, []string{"title is required", "invalid platform"}, validationMessages(t, err))

	err = p.UpdatePost(ctx, post.ID, PostPatch{Title: models.Null[string]()})
	assert.Equal(t, []string{"title is required"}, validationMessages(t, err))
}

func TestUpdatePostSkipsDescriptionLimit(t *testing.T) {
	p, db, _ := newTestPlanner(t)
	ctx := context.Background()

	long, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformYouTubeLong, Title: "Deep dive", Description: str(strings.Repeat("x", 3000))})
	require.NoError(t, err)
	ids, err := p.DuplicatePost(ctx, long.ID, []models.Platform{models.PlatformYouTubeShort})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	require.NoError(t, p.UpdatePost(ctx, ids[0], PostPatch{Status: models.Some(models.StatusReady)}))
	stored, err := db.PostRepo().FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, stored.Status)
	assert.Equal(t, models.PlatformYouTubeShort, stored.Platform)

	require.NoError(t, p.UpdatePost(ctx, long.ID, PostPatch{Platform: models.Some(models.PlatformInstagram)}))
	stored, err = db.PostRepo().FindByID(ctx, long.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlatformInstagram, stored.Platform)
	require.NotNil(t, stored.Description)
	assert.Len(t, *stored.Description, 3000)
}

func TestDuplicatePost(t *testing.T) {
	p, db, _ := newTestPlanner(t)
	ctx := context.Background()

	series, err := p.CreateSeries(ctx, NewSeries{Name: "Travel"})
	require.NoError(t, err)
	source, err := p.CreatePost(ctx, NewPost{
		Platform: models.PlatformYouTubeLong, Title: "Lisbon", Status: models.StatusScheduled,
		Tags: str("travel"), SeriesID: &series.ID,
	})
	require.NoError(t, err)

	ids, err := p.DuplicatePost(ctx, source.ID, []models.Platform{models.PlatformTikTok, models.PlatformInstagram})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Less(t, ids[0], ids[1])

	first, err := db.PostRepo().FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.PlatformTikTok, first.Platform)
	assert.Equal(t, models.StatusIdea, first.Status)
	assert.Equal(t, "Lisbon", first.Title)
	require.NotNil(t, first.SeriesID)
	assert.Equal(t, series.ID, *first.SeriesID)

	second, err := db.PostRepo().FindByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, models.PlatformInstagram, second.Platform)

	_, err = p.DuplicatePost(ctx, 999, []models.Platform{models.PlatformTikTok})
	assert.True(t, errs.IsNotFound(err))
	_, err = p.DuplicatePost(ctx, 999, []models.Platform{"vine"})
	assert.True(t, errs.IsNotFound(err))

	_, err = p.DuplicatePost(ctx, source.ID, []models.Platform{models.PlatformTikTok, "vine"})
	assert.Equal(t, []string{"invalid platform"}, validationMessages(t, err))

	all, err := p.ListPosts(ctx, PostFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListPostsFilters(t *testing.T) {
	p, _, _ := newTestPlanner(t)
	ctx := context.Background()

	_, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformTikTok, Title: "Morning Routine"})
	require.NoError(t, err)
	_, err = p.CreatePost(ctx, NewPost{Platform: models.PlatformInstagram, Title: "Routine reel"})
	require.NoError(t, err)
	_, err = p.CreatePost(ctx, NewPost{Platform: models.PlatformTikTok, Title: "Q&A", Tags: str("routine")})
	require.NoError(t, err)

	posts, err := p.ListPosts(ctx, PostFilter{Platform: "tiktok", Q: "ROUTINE"})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, post := range posts {
		assert.Equal(t, models.PlatformTikTok, post.Platform)
	}
}

func TestWeekDate(t *testing.T) {
	monday := time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)
	sunday := time.Date(2024, 5, 12, 10, 0, 0, 0, time.Local)

	assert.Equal(t, monday, WeekDate(wednesday, time.Monday))
	assert.Equal(t, sunday, WeekDate(wednesday, time.Sunday))
	assert.Equal(t, monday, WeekDate(time.Date(2024, 5, 12, 23, 0, 0, 0, time.Local), time.Monday))
	assert.Equal(t, sunday, WeekDate(time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local), time.Sunday))
}

func TestParseWeekdays(t *testing.T) {
	days, skipped := ParseWeekdays(" Mon,wed, ,Funday,Sun")
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Sunday}, days)
	assert.Equal(t, []string{"Funday"}, skipped)
}

func TestInstantiateWeek(t *testing.T) {
	p, db, _ := newTestPlanner(t)
	ctx := context.Background()

	tpl, err := p.CreateTemplate(ctx, "Cooking", "Mon,Xyz,Wed", "tiktok, instagram")
	require.NoError(t, err)
	assert.Equal(t, "tiktok,instagram", tpl.Platforms)

	ids, err := p.InstantiateWeek(ctx, tpl.ID, wednesday)
	require.NoError(t, err)
	require.Len(t, ids, 4)

	monday := time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)
	wed := time.Date(2024, 5, 8, 10, 0, 0, 0, time.Local)
	want := []struct {
		platform models.Platform
		at       time.Time
	}{
		{models.PlatformTikTok, monday},
		{models.PlatformInstagram, monday},
		{models.PlatformTikTok, wed},
		{models.PlatformInstagram, wed},
	}
	for i, id := range ids {
		post, err := db.PostRepo().FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want[i].platform, post.Platform)
		require.NotNil(t, post.PublishAt)
		assert.True(t, want[i].at.Equal(*post.PublishAt), "post %d at %s", i, post.PublishAt)
		assert.Equal(t, "[TPL] Cooking", post.Title)
		require.NotNil(t, post.Description)
		assert.Equal(t, "", *post.Description)
		assert.Equal(t, models.StatusScheduled, post.Status)
	}

	_, err = p.InstantiateWeek(ctx, 999, wednesday)
	assert.True(t, errs.IsNotFound(err))
}

func TestCreateTemplateValidation(t *testing.T) {
	p, _, _ := newTestPlanner(t)
	ctx := context.Background()

	_, err := p.CreateTemplate(ctx, "", "Mon", "")
	assert.Equal(t, []string{"name is required", "at least one platform is required"}, validationMessages(t, err))

	_, err = p.CreateTemplate(ctx, "Bad", "Mon", "tiktok,vine,myspace")
	assert.Equal(t, []string{"invalid platform"}, validationMessages(t, err))
}

func TestWeeklyReport(t *testing.T) {
	p, _, _ := newTestPlanner(t)
	ctx := context.Background()

	empty, err := p.WeeklyReport(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", empty.Start)
	assert.Equal(t, "2024-05-12", empty.End)
	assert.NotNil(t, empty.Rows)
	assert.Empty(t, empty.Rows)

	at := func(raw string) *models.Timestamp {
		ts, err := models.ParseTimestamp(raw)
		require.NoError(t, err)
		return &ts
	}
	for _, raw := range []string{"2024-05-06 00:00", "2024-05-12 23:59", "2024-05-13 00:00", "2024-05-05 23:59"} {
		_, err := p.CreatePost(ctx, NewPost{Platform: models.PlatformTikTok, Title: raw, PublishAt: at(raw), Status: models.StatusScheduled})
		require.NoError(t, err)
	}
	_, err = p.CreatePost(ctx, NewPost{Platform: models.PlatformInstagram, Title: "ready", PublishAt: at("2024-05-09 08:00"), Status: models.StatusReady})
	require.NoError(t, err)

	report, err := p.WeeklyReport(ctx, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.PlatformStatusCount{
		{Platform: models.PlatformInstagram, Status: models.StatusReady, Count: 1},
		{Platform: models.PlatformTikTok, Status: models.StatusScheduled, Count: 2},
	}, report.Rows)

	start, err := ParseDate("2024-05-13")
	require.NoError(t, err)
	next, err := p.WeeklyReport(ctx, &start)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-19", next.End)
	require.Len(t, next.Rows, 1)
	assert.EqualValues(t, 1, next.Rows[0].Count)
}

func TestSeriesEffectivenessReport(t *testing.T) {
	p, _, _ := newTestPlanner(t)
	ctx := context.Background()

	beta, err := p.CreateSeries(ctx, NewSeries{Name: "Beta"})
	require.NoError(t, err)
	alpha, err := p.CreateSeries(ctx, NewSeries{Name: "Alpha"})
	require.NoError(t, err)
	for _, in := range []NewPost{
		{Platform: models.PlatformTikTok, Title: "b1", SeriesID: &beta.ID},
		{Platform: models.PlatformTikTok, Title: "a1", SeriesID: &alpha.ID, Status: models.StatusPublished},
		{Platform: models.PlatformTikTok, Title: "a2", SeriesID: &alpha.ID, Status: models.StatusPublished},
		{Platform: models.PlatformTikTok, Title: "loose"},
	} {
		_, err := p.CreatePost(ctx, in)
		require.NoError(t, err)
	}

	rows, err := p.SeriesEffectivenessReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Nil(t, rows[0].Series)
	assert.Equal(t, "Alpha", *rows[1].Series)
	assert.EqualValues(t, 2, rows[1].Count)
	assert.Equal(t, models.StatusPublished, rows[1].Status)
	assert.Equal(t, "Beta", *rows[2].Series)

	series, err := p.ListSeries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", series[0].Name)
}

func TestIdeasAndTodos(t *testing.T) {
	p, _, clock := newTestPlanner(t)
	ctx := context.Background()

	_, err := p.CreateIdea(ctx, NewIdea{})
	assert.Equal(t, []string{"title is required"}, validationMessages(t, err))

	first, err := p.CreateIdea(ctx, NewIdea{Title: "first", Category: str("vlog")})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := p.CreateIdea(ctx, NewIdea{Title: "second"})
	require.NoError(t, err)
	ideas, err := p.ListIdeas(ctx)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, []uint{second.ID, first.ID}, []uint{ideas[0].ID, ideas[1].ID})

	_, err = p.CreateTodo(ctx, NewTodo{Title: "edit", DueDate: "next week"})
	assert.Equal(t, []string{"invalid due_date"}, validationMessages(t, err))

	todo, err := p.CreateTodo(ctx, NewTodo{Title: "edit", DueDate: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, models.TodoOpen, todo.Status)

	require.NoError(t, p.ToggleTodo(ctx, todo.ID))
	todos, err := p.ListTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TodoDone, todos[0].Status)

	require.NoError(t, p.ToggleTodo(ctx, todo.ID))
	todos, err = p.ListTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TodoOpen, todos[0].Status)

	assert.True(t, errs.IsNotFound(p.ToggleTodo(ctx, 999)))
	assert.True(t, errs.IsMissingIDError(p.ToggleTodo(ctx, 0)))
}
