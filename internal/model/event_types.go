package model

import "time"

type EventType string

const (
	EventTypeCardCreated             EventType = "card.created"
	EventTypeCardUpdated             EventType = "card.updated"
	EventTypeCardMoved               EventType = "card.moved"
	EventTypeCardReordered           EventType = "card.reordered"
	EventTypeCardDeleted             EventType = "card.deleted"
	EventTypeOfferReached            EventType = "stage.offer_reached"
	EventTypeTailorRequested         EventType = "resume.tailor_requested"
	EventTypeCardFromResumeRequested EventType = "resume.card_requested"
	EventTypeDescriptionRequired     EventType = "card.description_required"
	EventTypeSmartDropOpened         EventType = "smartdrop.opened"
	EventTypeSmartDropCancelled      EventType = "smartdrop.cancelled"
	EventTypeBoardImported           EventType = "board.imported"
	EventTypeBoardSaveFailed         EventType = "board.save_failed"
	EventTypeResyncRequired          EventType = "resync.required"
)

var websocketEventTypes = []EventType{
	EventTypeCardCreated,
	EventTypeCardUpdated,
	EventTypeCardMoved,
	EventTypeCardReordered,
	EventTypeCardDeleted,
	EventTypeOfferReached,
	EventTypeTailorRequested,
	EventTypeCardFromResumeRequested,
	EventTypeDescriptionRequired,
	EventTypeSmartDropOpened,
	EventTypeSmartDropCancelled,
	EventTypeBoardImported,
	EventTypeBoardSaveFailed,
	EventTypeResyncRequired,
}

func WebSocketEventTypes() []EventType {
	out := make([]EventType, len(websocketEventTypes))
	copy(out, websocketEventTypes)
	return out
}

type Event struct {
	Type         EventType `json:"type"`
	CardID       string    `json:"card_id,omitempty"`
	ColumnID     string    `json:"column_id,omitempty"`
	FromColumnID string    `json:"from_column_id,omitempty"`
	ResumeID     string    `json:"resume_id,omitempty"`
	Card         *Card     `json:"card,omitempty"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
