package board

import (
	"time"

	"github.com/simonjohansson/jobboard/internal/model"
)

// AppendStatusChange returns history unchanged (same slice) when the last entry
// already records status.
func AppendStatusChange(history []model.HistoryEntry, status string, now time.Time) []model.HistoryEntry {
	if n := len(history); n > 0 && history[n-1].Status == status {
		return history
	}
	out := make([]model.HistoryEntry, len(history), len(history)+1)
	copy(out, history)
	return append(out, model.HistoryEntry{
		Status: status,
		Date:   now,
		Type:   model.HistoryTypeStatusChange,
	})
}

func TouchDate(card model.Card, columnID string, now time.Time) model.Card {
	if model.IsTrackingStage(columnID) {
		card.Date = now
	}
	return card
}
