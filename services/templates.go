package services

import (
	"context"
	"strings"
	"time"

	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

// PublishHour is the local hour template posts are scheduled at.
const PublishHour = 10

var weekdayTokens = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// ParseWeekdays reads a comma separated list of Mon..Sun tokens. Unknown tokens are
// returned in skipped; blank ones are ignored.
func ParseWeekdays(raw string) (days []time.Weekday, skipped []string) {
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		day, ok := weekdayTokens[strings.ToLower(token)]
		if !ok {
			skipped = append(skipped, token)
			continue
		}
		days = append(days, day)
	}
	return days, skipped
}

// isoWeekday numbers Monday 1 through Sunday 7.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// WeekDate returns the given weekday of the anchor's Monday-based week at PublishHour local time.
func WeekDate(anchor time.Time, day time.Weekday) time.Time {
	anchor = anchor.In(time.Local)
	offset := isoWeekday(day) - isoWeekday(anchor.Weekday())
	y, m, d := anchor.AddDate(0, 0, offset).Date()
	return time.Date(y, m, d, PublishHour, 0, 0, 0, time.Local)
}

// InstantiateWeek creates one scheduled post per template weekday and platform in the
// anchor's week. Posts are created weekday-major and their ids returned in that order.
func (p *Planner) InstantiateWeek(ctx context.Context, templateID uint, anchor time.Time) ([]uint, error) {
	if templateID == 0 {
		return nil, errs.NewMissingIDError()
	}
	template, err := p.db.TemplateRepo().FindByID(ctx, templateID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "template", err)
	}

	days, skipped := ParseWeekdays(template.DaysOfWeek)
	if len(skipped) > 0 {
		p.logger.Warn().Uint("templateID", templateID).Strs("tokens", skipped).Msg("Skipping unknown weekday tokens")
	}
	platforms := template.PlatformList()
	for _, platform := range platforms {
		if !platform.Valid() {
			return nil, errs.NewValidationError([]string{"invalid platform"})
		}
	}

	title := "[TPL] " + template.Name
	empty := ""
	created := make([]uint, 0, len(days)*len(platforms))
	err = p.db.Transaction(ctx, func(tx database.Database) error {
		now := p.clock.Now().UTC()
		for _, day := range days {
			publishAt := WeekDate(anchor, day).UTC()
			for _, platform := range platforms {
				post := &models.Post{
					Platform:    platform,
					Title:       title,
					Description: &empty,
					PublishAt:   &publishAt,
					Status:      models.StatusScheduled,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := tx.PostRepo().Add(ctx, post); err != nil {
					return errs.NewDatabaseError("create", "template post", err)
				}
				created = append(created, post.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info().Uint("templateID", templateID).Int("created", len(created)).Msg("Instantiated template week")
	return created, nil
}
