package model

import "time"

const HistoryTypeStatusChange = "status_change"

type HistoryEntry struct {
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
	Type   string    `json:"type"`
}

type UpcomingRound struct {
	Type          string    `json:"type"`
	ScheduledDate time.Time `json:"scheduledDate"`
	Notes         string    `json:"notes,omitempty"`
}

type Card struct {
	ID              string          `json:"id"`
	Company         string          `json:"company"`
	Role            string          `json:"role"`
	Date            time.Time       `json:"date"`
	LinkedResumeID  string          `json:"linkedResumeId,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Description     string          `json:"description,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	Salary          string          `json:"salary,omitempty"`
	History         []HistoryEntry  `json:"history,omitempty"`
	UpcomingRounds  []UpcomingRound `json:"upcomingRounds,omitempty"`
}

// Clone copies the slices so the result can be modified without touching c.
func (c Card) Clone() Card {
	if c.History != nil {
		c.History = append([]HistoryEntry(nil), c.History...)
	}
	if c.UpcomingRounds != nil {
		c.UpcomingRounds = append([]UpcomingRound(nil), c.UpcomingRounds...)
	}
	return c
}

type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
	Items []Card `json:"items"`
}

type Board []Column

func (b Board) ColumnIDs() []string {
	out := make([]string, 0, len(b))
	for _, col := range b {
		out = append(out, col.ID)
	}
	return out
}

func (b Board) HasColumn(id string) bool {
	return b.ColumnIndex(id) >= 0
}

func (b Board) ColumnIndex(id string) int {
	for i := range b {
		if b[i].ID == id {
			return i
		}
	}
	return -1
}

func (b Board) Column(id string) (Column, bool) {
	idx := b.ColumnIndex(id)
	if idx < 0 {
		return Column{}, false
	}
	return b[idx], true
}

func (b Board) CardCount() int {
	n := 0
	for _, col := range b {
		n += len(col.Items)
	}
	return n
}

func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i, col := range b {
		out[i] = col
		items := make([]Card, len(col.Items))
		for j, card := range col.Items {
			items[j] = card.Clone()
		}
		out[i].Items = items
	}
	return out
}

const SnapshotVersion = 1

type Snapshot struct {
	Version int       `json:"version,omitempty"`
	SavedAt time.Time `json:"savedAt,omitempty"`
	Columns Board     `json:"columns"`
}

type CardSummary struct {
	ID              string    `json:"id"`
	ColumnID        string    `json:"column"`
	Position        int       `json:"position"`
	Company         string    `json:"company"`
	Role            string    `json:"role"`
	Date            time.Time `json:"date"`
	LinkedResumeID  string    `json:"linked_resume_id,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	HistoryCount    int       `json:"history_count"`
	RoundsCount     int       `json:"rounds_count"`
}

type Resume struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
