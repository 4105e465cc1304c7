package analytics

import (
	"slices"
	"strings"

	"github.com/simonjohansson/jobboard/internal/model"
)

const (
	DefaultRejectionReason = "Other"
	topRejectionReasons    = 3
)

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type RejectionSummary struct {
	Top   []ReasonCount `json:"top"`
	Total int           `json:"total"`
}

// Rejections groups the rejected column by reason. Equal counts keep the order in
// which the reason first appears on the board.
func Rejections(b model.Board) RejectionSummary {
	col, ok := b.Column(model.StageRejected)
	if !ok {
		return RejectionSummary{Top: []ReasonCount{}}
	}

	counts := []ReasonCount{}
	seen := map[string]int{}
	for _, card := range col.Items {
		reason := strings.TrimSpace(card.RejectionReason)
		if reason == "" {
			reason = DefaultRejectionReason
		}
		if i, ok := seen[reason]; ok {
			counts[i].Count++
			continue
		}
		seen[reason] = len(counts)
		counts = append(counts, ReasonCount{Reason: reason, Count: 1})
	}

	slices.SortStableFunc(counts, func(a, b ReasonCount) int {
		return b.Count - a.Count
	})
	if len(counts) > topRejectionReasons {
		counts = counts[:topRejectionReasons]
	}
	return RejectionSummary{Top: counts, Total: len(col.Items)}
}
