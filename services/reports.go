package services

import (
	"context"
	"time"

	"github.com/jinzhu/now"

	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

const dateLayout = "2006-01-02"

type WeeklyReport struct {
	Start string                       `json:"start"`
	End   string                       `json:"end"`
	Rows  []models.PlatformStatusCount `json:"rows"`
}

// WeeklyReport counts posts per platform and status whose publish date falls within the
// seven days from start, both ends inclusive. A nil start means Monday of the current week.
func (p *Planner) WeeklyReport(ctx context.Context, start *time.Time) (WeeklyReport, error) {
	var first time.Time
	if start == nil {
		first = now.With(p.clock.Now().In(time.Local)).Monday()
	} else {
		y, m, d := start.Date()
		first = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}
	last := first.AddDate(0, 0, 6)

	rows, err := p.db.PostRepo().CountByPlatformStatus(ctx, first, first.AddDate(0, 0, 7))
	if err != nil {
		return WeeklyReport{}, errs.NewDatabaseError("build", "weekly report", err)
	}
	return WeeklyReport{
		Start: first.Format(dateLayout),
		End:   last.Format(dateLayout),
		Rows:  rows,
	}, nil
}

// SeriesEffectivenessReport counts every post by series and status, ordered by series name.
func (p *Planner) SeriesEffectivenessReport(ctx context.Context) ([]models.SeriesStatusCount, error) {
	rows, err := p.db.PostRepo().CountBySeriesStatus(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("build", "series report", err)
	}
	return rows, nil
}

// ParseDate reads a YYYY-MM-DD date in the local zone.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, raw, time.Local)
}
