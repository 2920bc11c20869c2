package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/solocreator/planner/models"
)

const (
	CalendarProductID = "-//SoloCreator//Planner//EN"
	localTimeLayout   = "2006-01-02 15:04:05"
)

var csvHeader = []string{"id", "platform", "title", "description", "publish_at", "status", "tags", "series_id"}

// WritePostsCSV writes posts in the export column order. Publish times are written in local time.
func WritePostsCSV(w io.Writer, posts []models.Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range posts {
		record := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			string(p.Platform),
			p.Title,
			deref(p.Description),
			"",
			string(p.Status),
			deref(p.Tags),
			"",
		}
		if p.PublishAt != nil {
			record[4] = p.PublishAt.In(time.Local).Format(localTimeLayout)
		}
		if p.SeriesID != nil {
			record[7] = strconv.FormatUint(uint64(*p.SeriesID), 10)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCalendar writes posts as an iCalendar feed, one event per post at its publish time.
// Posts without a publish time are left out.
func WriteCalendar(w io.Writer, posts []models.Post, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetProductId(CalendarProductID)
	cal.SetMethod(ics.MethodPublish)

	for _, p := range posts {
		if p.PublishAt == nil {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("%d@solocreator", p.ID))
		event.SetDtStampTime(stamp.UTC())
		event.SetStartAt(p.PublishAt.UTC())
		event.SetSummary(p.Title)
		event.SetDescription(strings.ToUpper(string(p.Platform)))
		if tags := Hashtags(p); len(tags) > 0 {
			event.AddProperty(ics.ComponentPropertyCategories, strings.Join(tags, ","))
		}
	}
	return cal.SerializeTo(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
