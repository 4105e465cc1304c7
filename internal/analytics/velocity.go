package analytics

import (
	"errors"
	"time"

	"github.com/simonjohansson/jobboard/internal/model"
)

type Window string

const (
	Window7Days   Window = "7days"
	Window30Days  Window = "30days"
	Window3Months Window = "3months"
	WindowAll     Window = "all"
)

var ErrUnknownWindow = errors.New("unknown velocity window")

const dayKey = "2006-01-02"

type RoundOverlay struct {
	Type    string `json:"type"`
	Company string `json:"company"`
	Notes   string `json:"notes,omitempty"`
}

type Bucket struct {
	Day            string         `json:"day"`
	Date           time.Time      `json:"date"`
	Label          string         `json:"label"`
	Applications   int            `json:"applications"`
	UpcomingRounds []RoundOverlay `json:"upcoming_rounds"`
}

func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case Window7Days, Window30Days, Window3Months, WindowAll:
		return w, nil
	case "":
		return Window7Days, nil
	}
	return "", ErrUnknownWindow
}

// Velocity buckets applications and scheduled rounds per calendar day in loc. Cards
// still in saved never count as applications.
func Velocity(b model.Board, window Window, now time.Time, loc *time.Location) ([]Bucket, error) {
	if loc == nil {
		loc = time.Local
	}
	start, days, label, err := windowBounds(window, now.In(loc))
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, days)
	index := make(map[string]int, days)
	for i := range buckets {
		d := start.AddDate(0, 0, i)
		key := d.Format(dayKey)
		buckets[i] = Bucket{Day: key, Date: d, Label: d.Format(label), UpcomingRounds: []RoundOverlay{}}
		index[key] = i
	}

	for _, col := range b {
		for _, card := range col.Items {
			if col.ID != model.StageSaved && !card.Date.IsZero() {
				if i, ok := index[card.Date.In(loc).Format(dayKey)]; ok {
					buckets[i].Applications++
				}
			}
			for _, round := range card.UpcomingRounds {
				if round.ScheduledDate.IsZero() {
					continue
				}
				if i, ok := index[round.ScheduledDate.In(loc).Format(dayKey)]; ok {
					buckets[i].UpcomingRounds = append(buckets[i].UpcomingRounds, RoundOverlay{
						Type:    round.Type,
						Company: card.Company,
						Notes:   round.Notes,
					})
				}
			}
		}
	}
	return buckets, nil
}

func windowBounds(window Window, now time.Time) (time.Time, int, string, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch window {
	case Window7Days:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), 7, "Mon", nil
	case Window30Days:
		return today.AddDate(0, 0, -29), 30, "Jan 2", nil
	case Window3Months:
		return today.AddDate(0, 0, -89), 90, "Jan 2", nil
	case WindowAll:
		return today.AddDate(0, 0, -179), 180, "Jan '06", nil
	}
	return time.Time{}, 0, "", ErrUnknownWindow
}
