package drag

import "github.com/simonjohansson/jobboard/internal/model"

// Payload is what the user picked up. It is either a JobPayload or a ResumePayload.
type Payload interface {
	isPayload()
}

type JobPayload struct {
	Card           model.Card
	OriginColumnID string
}

type ResumePayload struct {
	ResumeID string
	Title    string
}

func (JobPayload) isPayload()    {}
func (ResumePayload) isPayload() {}

type TargetKind string

const (
	TargetColumn TargetKind = "column"
	TargetCard   TargetKind = "card"
)

// Target describes what the pointer is over. Top and Height are the hovered card's
// vertical bounds and are only read for card targets.
type Target struct {
	ID       string     `json:"id" validate:"required"`
	Kind     TargetKind `json:"kind" validate:"required,oneof=column card"`
	PointerY float64    `json:"pointer_y,omitempty"`
	Top      float64    `json:"top,omitempty"`
	Height   float64    `json:"height,omitempty"`
}

// InsertionIndex returns where a card dropped on t should land in columnID. Hovering
// a card inserts before it, or after it once the pointer reaches its midpoint.
// Hovering the column itself appends.
func InsertionIndex(b model.Board, columnID string, t Target) int {
	col, ok := b.Column(columnID)
	if !ok {
		return 0
	}
	if t.Kind != TargetCard {
		return len(col.Items)
	}
	for i, c := range col.Items {
		if c.ID != t.ID {
			continue
		}
		if t.Height > 0 && t.PointerY >= t.Top+t.Height/2 {
			return i + 1
		}
		return i
	}
	return len(col.Items)
}
