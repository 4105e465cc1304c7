package analytics

import "github.com/simonjohansson/jobboard/internal/model"

type StageCount struct {
	Stage    string `json:"stage"`
	Title    string `json:"title"`
	Current  int    `json:"current"`
	Lifetime int    `json:"lifetime"`
}

// Funnel reports, for every column, how many cards sit there now and how many have
// ever reached it.
func Funnel(b model.Board) []StageCount {
	out := make([]StageCount, 0, len(b))
	for _, col := range b {
		sc := StageCount{Stage: col.ID, Title: col.Title, Current: len(col.Items)}
		for _, other := range b {
			for _, card := range other.Items {
				if reached(card, other.ID, col.ID) {
					sc.Lifetime++
				}
			}
		}
		out = append(out, sc)
	}
	return out
}

func reached(card model.Card, currentColumnID, stage string) bool {
	if stage == model.StageApplied {
		return reachedApplied(card, currentColumnID)
	}
	return historyContains(card.History, stage)
}

// reachedApplied counts every card that has left saved, whether or not its history
// says it went through applied.
func reachedApplied(card model.Card, currentColumnID string) bool {
	return currentColumnID != model.StageSaved || historyContains(card.History, model.StageApplied)
}

func historyContains(history []model.HistoryEntry, stage string) bool {
	for _, h := range history {
		if h.Status == stage {
			return true
		}
	}
	return false
}
