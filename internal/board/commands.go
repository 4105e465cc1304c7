package board

import (
	"strings"
	"time"

	"github.com/simonjohansson/jobboard/internal/model"
)

const DefaultRole = "New Role"

// Result carries the next board plus the events the host should react to. An empty
// Events slice means the command was a no-op.
type Result struct {
	Board  model.Board
	Events []model.Event
}

func (r Result) Changed() bool {
	return len(r.Events) > 0
}

func unchanged(b model.Board) Result {
	return Result{Board: b}
}

// AddCard inserts card at the front of columnID. Cards without a company, with an id
// already on the board, or targeting an unknown column are ignored.
func AddCard(b model.Board, columnID string, card model.Card, now time.Time) Result {
	card.Company = strings.TrimSpace(card.Company)
	card.Role = strings.TrimSpace(card.Role)
	if card.ID == "" || card.Company == "" || !b.HasColumn(columnID) {
		return unchanged(b)
	}
	if _, _, exists := FindCard(b, card.ID); exists {
		return unchanged(b)
	}
	if card.Role == "" {
		card.Role = DefaultRole
	}
	next := InsertCard(b, columnID, card, 0)
	return Result{
		Board: next,
		Events: []model.Event{{
			Type:      model.EventTypeCardCreated,
			CardID:    card.ID,
			ColumnID:  columnID,
			ResumeID:  card.LinkedResumeID,
			Card:      &card,
			Timestamp: now,
		}},
	}
}

func QuickAdd(b model.Board, columnID, id, company, role string, now time.Time) Result {
	return AddCard(b, columnID, model.Card{
		ID:      id,
		Company: company,
		Role:    role,
		Date:    now,
	}, now)
}

// TrackJob files a fully described job into the saved column with its first
// history entry.
func TrackJob(b model.Board, card model.Card, now time.Time) Result {
	card = card.Clone()
	card.Date = now
	card.History = AppendStatusChange(nil, model.StageSaved, now)
	return AddCard(b, model.StageSaved, card, now)
}

func MoveToNextStage(b model.Board, cardID, currentColumnID string, now time.Time) Result {
	next, ok := model.NextStage(currentColumnID)
	if !ok {
		return unchanged(b)
	}
	return transition(b, cardID, currentColumnID, next, now, true)
}

func ChangeStatus(b model.Board, cardID, oldColumnID, newColumnID string, now time.Time) Result {
	if oldColumnID == newColumnID {
		return unchanged(b)
	}
	return transition(b, cardID, oldColumnID, newColumnID, now, false)
}

func transition(b model.Board, cardID, from, to string, now time.Time, alwaysTouch bool) Result {
	if !b.HasColumn(to) {
		return unchanged(b)
	}
	fi := b.ColumnIndex(from)
	if fi < 0 {
		return unchanged(b)
	}
	idx := indexOfCard(b[fi].Items, cardID)
	if idx < 0 {
		return unchanged(b)
	}

	card := b[fi].Items[idx].Clone()
	card.History = AppendStatusChange(card.History, to, now)
	if alwaysTouch {
		card.Date = now
	} else {
		card = TouchDate(card, to, now)
	}
	next := InsertCard(RemoveCard(b, from, cardID), to, card, 0)
	return Result{Board: next, Events: movedEvents(card, from, to, now)}
}

func movedEvents(card model.Card, from, to string, now time.Time) []model.Event {
	events := []model.Event{{
		Type:         model.EventTypeCardMoved,
		CardID:       card.ID,
		ColumnID:     to,
		FromColumnID: from,
		Card:         &card,
		Timestamp:    now,
	}}
	if to == model.StageOffer {
		events = append(events, model.Event{
			Type:      model.EventTypeOfferReached,
			CardID:    card.ID,
			ColumnID:  to,
			Card:      &card,
			Timestamp: now,
		})
	}
	return events
}

// DeleteCard returns the removed card so callers can release its linked resume.
func DeleteCard(b model.Board, columnID, cardID string, now time.Time) (Result, *model.Card) {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return unchanged(b), nil
	}
	idx := indexOfCard(b[ci].Items, cardID)
	if idx < 0 {
		return unchanged(b), nil
	}
	removed := b[ci].Items[idx]
	return Result{
		Board: RemoveCard(b, columnID, cardID),
		Events: []model.Event{{
			Type:      model.EventTypeCardDeleted,
			CardID:    cardID,
			ColumnID:  columnID,
			ResumeID:  removed.LinkedResumeID,
			Timestamp: now,
		}},
	}, &removed
}

type CardPatch struct {
	Company         *string
	Role            *string
	Notes           *string
	Description     *string
	RejectionReason *string
	Salary          *string
	LinkedResumeID  *string
	UpcomingRounds  *[]model.UpcomingRound
}

// UpdateCard edits detail fields only; placement, date and history are untouched.
func UpdateCard(b model.Board, cardID string, patch CardPatch, now time.Time) Result {
	card, columnID, ok := FindCard(b, cardID)
	if !ok {
		return unchanged(b)
	}
	card = card.Clone()
	if patch.Company != nil {
		if company := strings.TrimSpace(*patch.Company); company != "" {
			card.Company = company
		}
	}
	if patch.Role != nil {
		if role := strings.TrimSpace(*patch.Role); role != "" {
			card.Role = role
		}
	}
	setString(&card.Notes, patch.Notes)
	setString(&card.Description, patch.Description)
	setString(&card.RejectionReason, patch.RejectionReason)
	setString(&card.Salary, patch.Salary)
	setString(&card.LinkedResumeID, patch.LinkedResumeID)
	if patch.UpcomingRounds != nil {
		card.UpcomingRounds = append([]model.UpcomingRound(nil), (*patch.UpcomingRounds)...)
	}
	return Result{
		Board: ReplaceCard(b, columnID, card),
		Events: []model.Event{{
			Type:      model.EventTypeCardUpdated,
			CardID:    card.ID,
			ColumnID:  columnID,
			Card:      &card,
			Timestamp: now,
		}},
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
