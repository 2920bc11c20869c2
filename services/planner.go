package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

// Planner owns every content record: posts, series, ideas, todos and weekly templates.
type Planner struct {
	db       database.Database
	clock    Clock
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewPlanner(db database.Database, clock Clock) *Planner {
	return &Planner{
		db:       db,
		clock:    clock,
		validate: newValidator(),
		logger:   log.With().Str("service", "planner").Logger(),
	}
}

// NewPost is the input for CreatePost.
type NewPost struct {
	Platform    models.Platform   `json:"platform"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	PublishAt   *models.Timestamp `json:"publish_at"`
	Status      models.Status     `json:"status"`
	Tags        *string           `json:"tags"`
	SeriesID    *uint             `json:"series_id"`
}

// PostPatch carries only the fields a client sent. A field sent as null clears the column.
type PostPatch struct {
	Platform    models.Optional[models.Platform]  `json:"platform"`
	Title       models.Optional[string]           `json:"title"`
	Description models.Optional[string]           `json:"description"`
	PublishAt   models.Optional[models.Timestamp] `json:"publish_at"`
	Status      models.Optional[models.Status]    `json:"status"`
	Tags        models.Optional[string]           `json:"tags"`
	SeriesID    models.Optional[uint]             `json:"series_id"`
}

func (p PostPatch) Empty() bool {
	return !p.Platform.Set && !p.Title.Set && !p.Description.Set && !p.PublishAt.Set &&
		!p.Status.Set && !p.Tags.Set && !p.SeriesID.Set
}

// PostFilter narrows ListPosts. Empty fields match everything.
type PostFilter struct {
	Platform string `json:"platform"`
	Status   string `json:"status"`
	Q        string `json:"q"`
}

// postPatchInput holds the patched fields the update rules look at. Nil fields were not sent.
type postPatchInput struct {
	Title    *string          `json:"title" validate:"omitnil,notblank"`
	Platform *models.Platform `json:"platform" validate:"omitnil,platform"`
	Status   *models.Status   `json:"status" validate:"omitnil,status"`
}

// postInput holds the fields the post rules look at.
type postInput struct {
	Title       string          `json:"title" validate:"notblank"`
	Platform    models.Platform `json:"platform" validate:"platform"`
	Description *string         `json:"description"`
	Status      models.Status   `json:"status" validate:"status"`
}

func (p *Planner) CreatePost(ctx context.Context, in NewPost) (*models.Post, error) {
	status := in.Status
	if status == "" {
		status = models.StatusIdea
	}
	if err := validationError(p.validate, postInput{
		Title:       in.Title,
		Platform:    in.Platform,
		Description: in.Description,
		Status:      status,
	}); err != nil {
		return nil, err
	}

	now := p.clock.Now().UTC()
	post := &models.Post{
		Platform:    in.Platform,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		PublishAt:   timestampPtr(in.PublishAt),
		Status:      status,
		Tags:        in.Tags,
		SeriesID:    seriesRef(in.SeriesID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.db.PostRepo().Add(ctx, post); err != nil {
		return nil, errs.NewDatabaseError("create", "post", err)
	}
	p.logger.Debug().Uint("postID", post.ID).Str("platform", string(post.Platform)).Msg("Created post")
	return post, nil
}

// UpdatePost applies the fields present in patch and always refreshes updated_at. Only the
// sent fields are checked; description length is a creation rule.
func (p *Planner) UpdatePost(ctx context.Context, id uint, patch PostPatch) error {
	if id == 0 {
		return errs.NewMissingIDError()
	}
	if patch.Empty() {
		return errs.NewNoChangesError()
	}

	var check postPatchInput
	fields := make(map[string]interface{})
	if patch.Title.Set {
		check.Title = &patch.Title.Value
		fields["title"] = strings.TrimSpace(patch.Title.Value)
	}
	if patch.Platform.Set {
		check.Platform = &patch.Platform.Value
		fields["platform"] = patch.Platform.Value
	}
	if patch.Description.Set {
		fields["description"] = patch.Description.Ptr()
	}
	if patch.Status.Set {
		check.Status = &patch.Status.Value
		fields["status"] = patch.Status.Value
	}
	if patch.PublishAt.Set {
		fields["publish_at"] = timestampPtr(patch.PublishAt.Ptr())
	}
	if patch.Tags.Set {
		fields["tags"] = patch.Tags.Ptr()
	}
	if patch.SeriesID.Set {
		fields["series_id"] = seriesRef(patch.SeriesID.Ptr())
	}
	if err := validationError(p.validate, check); err != nil {
		return err
	}
	fields["updated_at"] = p.clock.Now().UTC()

	affected, err := p.db.PostRepo().UpdateFields(ctx, id, fields)
	if err != nil {
		return errs.NewDatabaseError("update", "post", err)
	}
	if affected == 0 {
		return errs.NewNotFound("post")
	}
	return nil
}

// DuplicatePost copies a post once per target platform as a new idea. The new ids are
// returned in the order the platforms were given.
func (p *Planner) DuplicatePost(ctx context.Context, id uint, platforms []models.Platform) ([]uint, error) {
	if id == 0 {
		return nil, errs.NewMissingIDError()
	}

	newIDs := make([]uint, 0, len(platforms))
	err := p.db.Transaction(ctx, func(tx database.Database) error {
		source, err := tx.PostRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "post", err)
		}
		// Targets are checked once the source exists, before anything is inserted.
		for _, platform := range platforms {
			if !platform.Valid() {
				return errs.NewValidationError([]string{"invalid platform"})
			}
		}

		now := p.clock.Now().UTC()
		for _, platform := range platforms {
			dup := &models.Post{
				Platform:    platform,
				Title:       source.Title,
				Description: source.Description,
				PublishAt:   source.PublishAt,
				Status:      models.StatusIdea,
				Tags:        source.Tags,
				SeriesID:    source.SeriesID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.PostRepo().Add(ctx, dup); err != nil {
				return errs.NewDatabaseError("duplicate", "post", err)
			}
			newIDs = append(newIDs, dup.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info().Uint("postID", id).Int("copies", len(newIDs)).Msg("Duplicated post")
	return newIDs, nil
}

func (p *Planner) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	posts, err := p.db.PostRepo().FindAll(ctx, database.PostQuery{
		Platform: models.Platform(strings.TrimSpace(filter.Platform)),
		Status:   models.Status(strings.TrimSpace(filter.Status)),
		Text:     filter.Q,
	})
	if err != nil {
		return nil, errs.NewDatabaseError("list", "posts", err)
	}
	return posts, nil
}

// CalendarPosts returns the posts that belong on a calendar: scheduled or published with a publish time.
func (p *Planner) CalendarPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := p.db.PostRepo().FindScheduled(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "scheduled posts", err)
	}
	return posts, nil
}

// timestampPtr treats an empty date-time as absent and stores everything else in UTC.
func timestampPtr(ts *models.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

// seriesRef maps the 0 some forms send for "no series" to NULL.
func seriesRef(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
