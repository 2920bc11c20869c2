package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

type NewIdea struct {
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type NewTodo struct {
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description"`
	DueDate     string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type NewSeries struct {
	Name        string  `json:"name" validate:"notblank"`
	Description *string `json:"description"`
}

// NewTemplate lists weekdays and platforms as comma separated tokens.
type NewTemplate struct {
	Name       string            `json:"name" validate:"notblank"`
	DaysOfWeek string            `json:"days_of_week"`
	Platforms  []models.Platform `json:"platforms" validate:"min=1,dive,platform"`
}

func (p *Planner) ListIdeas(ctx context.Context) ([]models.Idea, error) {
	ideas, err := p.db.IdeaRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "ideas", err)
	}
	return ideas, nil
}

func (p *Planner) CreateIdea(ctx context.Context, in NewIdea) (*models.Idea, error) {
	if err := validationError(p.validate, in); err != nil {
		return nil, err
	}
	idea := &models.Idea{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		CreatedAt:   p.clock.Now().UTC(),
	}
	if err := p.db.IdeaRepo().Add(ctx, idea); err != nil {
		return nil, errs.NewDatabaseError("create", "idea", err)
	}
	return idea, nil
}

func (p *Planner) ListTodos(ctx context.Context) ([]models.Todo, error) {
	todos, err := p.db.TodoRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "todos", err)
	}
	return todos, nil
}

func (p *Planner) CreateTodo(ctx context.Context, in NewTodo) (*models.Todo, error) {
	in.DueDate = strings.TrimSpace(in.DueDate)
	if err := validationError(p.validate, in); err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      models.TodoOpen,
		CreatedAt:   p.clock.Now().UTC(),
	}
	if in.DueDate != "" {
		due, err := time.Parse(dateLayout, in.DueDate)
		if err != nil {
			return nil, errs.NewValidationError([]string{"invalid due_date"})
		}
		date := datatypes.Date(due)
		todo.DueDate = &date
	}
	if err := p.db.TodoRepo().Add(ctx, todo); err != nil {
		return nil, errs.NewDatabaseError("create", "todo", err)
	}
	return todo, nil
}

// ToggleTodo flips a todo between open and done.
func (p *Planner) ToggleTodo(ctx context.Context, id uint) error {
	if id == 0 {
		return errs.NewMissingIDError()
	}
	affected, err := p.db.TodoRepo().Toggle(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("toggle", "todo", err)
	}
	if affected == 0 {
		return errs.NewNotFound("todo")
	}
	return nil
}

func (p *Planner) ListSeries(ctx context.Context) ([]models.Series, error) {
	series, err := p.db.SeriesRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "series", err)
	}
	return series, nil
}

func (p *Planner) CreateSeries(ctx context.Context, in NewSeries) (*models.Series, error) {
	if err := validationError(p.validate, in); err != nil {
		return nil, err
	}
	series := &models.Series{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := p.db.SeriesRepo().Add(ctx, series); err != nil {
		return nil, errs.NewDatabaseError("create", "series", err)
	}
	return series, nil
}

func (p *Planner) ListTemplates(ctx context.Context) ([]models.Template, error) {
	templates, err := p.db.TemplateRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "templates", err)
	}
	return templates, nil
}

// CreateTemplate stores weekday tokens as given; platform tokens must all be known.
func (p *Planner) CreateTemplate(ctx context.Context, name, daysOfWeek, platforms string) (*models.Template, error) {
	in := NewTemplate{Name: name, DaysOfWeek: daysOfWeek}
	for _, token := range models.SplitList(platforms) {
		in.Platforms = append(in.Platforms, models.Platform(token))
	}
	if err := validationError(p.validate, in); err != nil {
		return nil, err
	}

	tokens := make([]string, len(in.Platforms))
	for i, platform := range in.Platforms {
		tokens[i] = string(platform)
	}
	template := &models.Template{
		Name:       strings.TrimSpace(in.Name),
		DaysOfWeek: strings.TrimSpace(in.DaysOfWeek),
		Platforms:  strings.Join(tokens, ","),
	}
	if err := p.db.TemplateRepo().Add(ctx, template); err != nil {
		return nil, errs.NewDatabaseError("create", "template", err)
	}
	return template, nil
}
