package drag

import (
	"errors"
	"strings"
	"time"

	"github.com/simonjohansson/jobboard/internal/board"
	"github.com/simonjohansson/jobboard/internal/model"
)

var ErrDragInProgress = errors.New("a drag is already in progress")

// Policy decides when a cross-column hover becomes part of the committed board.
type Policy int

const (
	// CommitOnHover writes every cross-column hover straight to the board. Cancelling
	// keeps the card where it was last hovered without touching its history.
	CommitOnHover Policy = iota
	// CommitOnDrop keeps hover relocations in a preview until the drop.
	CommitOnDrop
)

func (p Policy) String() string {
	if p == CommitOnDrop {
		return "drop"
	}
	return "hover"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hover":
		return CommitOnHover, nil
	case "drop":
		return CommitOnDrop, nil
	}
	return CommitOnHover, errors.New("drag policy must be hover or drop")
}

func (p Policy) settle(committed, preview model.Board) model.Board {
	if p == CommitOnDrop {
		return committed
	}
	return preview
}

// Result reports the board the host should store, the board it should render and
// the events to publish. Changed is true when Board differs from the board passed in.
type Result struct {
	Board   model.Board
	Preview model.Board
	Events  []model.Event
	Changed bool
}

type state struct {
	payload Payload
	cardID  string
	origin  string
	column  string
	index   int
}

// Reconciler turns start/over/end/cancel notifications into board updates. It keeps
// only the drag session; the caller passes the committed board on every call and is
// responsible for serialising calls.
type Reconciler struct {
	policy Policy
	now    func() time.Time
	active *state
}

func New(policy Policy, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{policy: policy, now: now}
}

func (r *Reconciler) Policy() Policy {
	return r.policy
}

func (r *Reconciler) Active() bool {
	return r.active != nil
}

// Payload returns the item being dragged, if any.
func (r *Reconciler) Payload() (Payload, bool) {
	if r.active == nil {
		return nil, false
	}
	return r.active.payload, true
}

// Start begins a session. Picking up a card that is not on the board is ignored.
func (r *Reconciler) Start(b model.Board, p Payload) error {
	if r.active != nil {
		return ErrDragInProgress
	}
	switch p := p.(type) {
	case JobPayload:
		_, columnID, ok := board.FindCard(b, p.Card.ID)
		if !ok {
			return nil
		}
		r.active = &state{payload: p, cardID: p.Card.ID, origin: columnID, column: columnID}
	case ResumePayload:
		if strings.TrimSpace(p.ResumeID) == "" {
			return nil
		}
		r.active = &state{payload: p}
	}
	return nil
}

// Over handles a hover tick. Only job cards hovering a different column move; the
// drop decides everything else.
func (r *Reconciler) Over(b model.Board, t *Target) Result {
	if r.active == nil || r.active.cardID == "" || t == nil {
		return r.idle(b)
	}
	s := r.active
	base := r.preview(b)
	if !r.resync(base) {
		r.active = nil
		return r.idle(b)
	}
	toColumn, ok := board.FindColumnContaining(base, t.ID)
	if !ok || toColumn == s.column {
		return Result{Board: b, Preview: base}
	}

	index := InsertionIndex(base, toColumn, *t)
	next := r.place(base, s.column, toColumn, index)
	from := s.column
	s.column, s.index = toColumn, index

	committed := r.policy.settle(b, next)
	res := Result{Board: committed, Preview: next, Changed: r.policy == CommitOnHover}
	if res.Changed {
		card, _, _ := board.FindCard(next, s.cardID)
		res.Events = []model.Event{{
			Type:         model.EventTypeCardMoved,
			CardID:       s.cardID,
			ColumnID:     toColumn,
			FromColumnID: from,
			Card:         &card,
			Timestamp:    r.now(),
		}}
	}
	return res
}

// End finishes the session. A nil target is a cancellation.
func (r *Reconciler) End(b model.Board, t *Target) Result {
	if r.active == nil {
		return r.idle(b)
	}
	if t == nil {
		return r.Cancel(b)
	}
	s := r.active
	defer func() { r.active = nil }()

	switch p := s.payload.(type) {
	case ResumePayload:
		return Result{Board: b, Preview: b, Events: r.dropResume(b, p, *t)}
	case JobPayload:
		return r.dropJob(b, s, *t)
	}
	return r.idle(b)
}

// Cancel abandons the session and leaves the committed board untouched. Under
// CommitOnHover that board already holds the last hovered position.
func (r *Reconciler) Cancel(b model.Board) Result {
	r.active = nil
	return r.idle(b)
}

func (r *Reconciler) dropJob(b model.Board, s *state, t Target) Result {
	base := r.preview(b)
	if !r.resync(base) {
		return r.idle(b)
	}
	toColumn, ok := board.FindColumnContaining(base, t.ID)
	if !ok {
		return r.Cancel(b)
	}

	var events []model.Event
	if toColumn == s.column {
		if t.Kind == TargetCard && t.ID != s.cardID {
			oldIndex := board.IndexOf(base, toColumn, s.cardID)
			overIndex := board.IndexOf(base, toColumn, t.ID)
			reordered := board.MoveWithin(base, toColumn, oldIndex, overIndex)
			if oldIndex != overIndex && overIndex >= 0 {
				events = append(events, model.Event{
					Type:      model.EventTypeCardReordered,
					CardID:    s.cardID,
					ColumnID:  toColumn,
					Timestamp: r.now(),
				})
			}
			base = reordered
		}
	} else {
		base = r.place(base, s.column, toColumn, InsertionIndex(base, toColumn, t))
		s.column = toColumn
	}

	next, moved := r.finalize(base, s)
	events = append(events, moved...)
	return Result{Board: next, Preview: next, Events: events, Changed: len(events) > 0}
}

func (r *Reconciler) dropResume(b model.Board, p ResumePayload, t Target) []model.Event {
	now := r.now()
	if t.Kind == TargetCard {
		if card, columnID, ok := board.FindCard(b, t.ID); ok {
			if strings.TrimSpace(card.Description) == "" {
				return []model.Event{{
					Type:      model.EventTypeDescriptionRequired,
					CardID:    card.ID,
					ColumnID:  columnID,
					ResumeID:  p.ResumeID,
					Message:   "add a job description before tailoring a resume",
					Timestamp: now,
				}}
			}
			return []model.Event{{
				Type:      model.EventTypeTailorRequested,
				CardID:    card.ID,
				ColumnID:  columnID,
				ResumeID:  p.ResumeID,
				Card:      &card,
				Timestamp: now,
			}}
		}
	}
	columnID, ok := board.FindColumnContaining(b, t.ID)
	if !ok {
		return nil
	}
	return []model.Event{{
		Type:      model.EventTypeCardFromResumeRequested,
		ColumnID:  columnID,
		ResumeID:  p.ResumeID,
		Message:   p.Title,
		Timestamp: now,
	}}
}

// resync points the session at the column the dragged card is really in. It
// reports false when the card is no longer on the board.
func (r *Reconciler) resync(b model.Board) bool {
	_, columnID, ok := board.FindCard(b, r.active.cardID)
	if !ok {
		return false
	}
	r.active.column = columnID
	return true
}

// finalize records the one history entry a drag produces, when the card ended up
// outside the column it was picked up from.
func (r *Reconciler) finalize(b model.Board, s *state) (model.Board, []model.Event) {
	if s.column == s.origin {
		return b, nil
	}
	card, columnID, ok := board.FindCard(b, s.cardID)
	if !ok {
		return b, nil
	}
	now := r.now()
	card = card.Clone()
	card.History = board.AppendStatusChange(card.History, columnID, now)
	next := board.ReplaceCard(b, columnID, card)

	events := []model.Event{{
		Type:         model.EventTypeCardMoved,
		CardID:       card.ID,
		ColumnID:     columnID,
		FromColumnID: s.origin,
		Card:         &card,
		Timestamp:    now,
	}}
	if columnID == model.StageOffer {
		events = append(events, model.Event{
			Type:      model.EventTypeOfferReached,
			CardID:    card.ID,
			ColumnID:  columnID,
			Card:      &card,
			Timestamp: now,
		})
	}
	return next, events
}

// preview rebuilds what the user sees from the committed board. Under CommitOnHover
// the committed board already is the preview.
func (r *Reconciler) preview(b model.Board) model.Board {
	s := r.active
	if r.policy == CommitOnHover || s == nil || s.cardID == "" || s.column == s.origin {
		return b
	}
	return r.place(b, s.origin, s.column, s.index)
}

func (r *Reconciler) place(b model.Board, from, to string, index int) model.Board {
	if _, current, ok := board.FindCard(b, r.active.cardID); ok {
		from = current
	}
	next := board.Relocate(b, r.active.cardID, from, to, index)
	if from == to {
		return next
	}
	card, _, ok := board.FindCard(next, r.active.cardID)
	if !ok {
		return next
	}
	return board.ReplaceCard(next, to, board.TouchDate(card, to, r.now()))
}

func (r *Reconciler) idle(b model.Board) Result {
	return Result{Board: b, Preview: b}
}
