package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/simonjohansson/jobboard/internal/board"
	"github.com/simonjohansson/jobboard/internal/drag"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/simonjohansson/jobboard/internal/quickcreate"
	"github.com/simonjohansson/jobboard/internal/store"
)

const resumeCleanupTimeout = 10 * time.Second

type Persister interface {
	LoadBoard(ctx context.Context) (model.Board, error)
	SaveBoard(ctx context.Context, b model.Board) error
}

type Projection interface {
	RebuildFromBoard(ctx context.Context, b model.Board) error
	ListCards(ctx context.Context, columnID string) ([]model.CardSummary, error)
}

type Resumes interface {
	ResolveTitle(ctx context.Context, id string) (string, bool)
	DeleteResume(ctx context.Context, id string) error
}

type Publisher interface {
	Publish(event model.Event)
}

type Options struct {
	Persister  Persister
	Projection Projection
	Resumes    Resumes
	Publisher  Publisher
	Logger     *slog.Logger
	Policy     drag.Policy
	Location   *time.Location
	Now        func() time.Time
	NewID      func() (string, error)
}

// Outcome describes what a command did. Board is what a client should render, which
// during a CommitOnDrop drag may differ from the committed board.
type Outcome struct {
	Changed bool          `json:"changed"`
	Saved   bool          `json:"saved"`
	Card    *model.Card   `json:"card,omitempty"`
	Events  []model.Event `json:"events"`
	Board   model.Board   `json:"board"`
}

type RebuildResult struct {
	CardsRebuilt int `json:"cards_rebuilt"`
}

// Session owns the authoritative board and applies one mutation at a time.
type Session struct {
	mu       sync.RWMutex
	board    model.Board
	preview  model.Board
	dirty    bool
	reconc   *drag.Reconciler
	flow     *quickcreate.Flow
	validate *validator.Validate

	persister  Persister
	projection Projection
	resumes    Resumes
	publisher  Publisher
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
	newID      func() (string, error)

	background sync.WaitGroup
}

func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = newCardID
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Session{
		board:      model.DefaultBoard(),
		reconc:     drag.New(opts.Policy, func() time.Time { return now().UTC() }),
		flow:       quickcreate.New(),
		validate:   newValidator(),
		persister:  opts.Persister,
		projection: opts.Projection,
		resumes:    opts.Resumes,
		publisher:  opts.Publisher,
		logger:     logger,
		loc:        loc,
		now:        now,
		newID:      newID,
	}
}

func newCardID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads the saved board once at startup. A missing snapshot starts from the
// default columns.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.persister.LoadBoard(ctx)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Info("no saved board, starting empty")
		b = model.DefaultBoard()
	case err != nil:
		return newError(CodeInternal, "load board failed", err)
	}
	s.board = b
	s.logger.Info("board loaded", "columns", len(b), "cards", b.CardCount())
	s.rebuildProjection(ctx)
	return nil
}

// Close waits for background resume cleanup to finish.
func (s *Session) Close() {
	s.background.Wait()
}

func (s *Session) Board() model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Clone()
}

// Preview is the board a client should render while a drag is in flight.
func (s *Session) Preview() model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.preview != nil && s.reconc.Active() {
		return s.preview.Clone()
	}
	return s.board.Clone()
}

// Dirty reports whether the last save failed.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Session) DragPolicy() drag.Policy {
	return s.reconc.Policy()
}

// Card returns a card and the column holding it.
func (s *Session) Card(cardID string) (model.Card, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, columnID, ok := board.FindCard(s.board, cardID)
	if !ok {
		return model.Card{}, "", newError(CodeNotFound, "card not found", nil)
	}
	return card.Clone(), columnID, nil
}

func (s *Session) DragActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reconc.Active()
}

func (s *Session) Save(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return Outcome{Board: s.board.Clone()}, newError(CodeInternal, "save board failed", err)
	}
	return Outcome{Saved: true, Board: s.board.Clone(), Events: []model.Event{}}, nil
}

// commit installs next as the committed board, publishes events and persists. A
// failed save leaves next in memory and is reported through Outcome.Saved.
func (s *Session) commit(ctx context.Context, next model.Board, changed bool, events []model.Event) Outcome {
	out := Outcome{Changed: changed, Saved: !s.dirty, Events: events}
	if out.Events == nil {
		out.Events = []model.Event{}
	}
	if changed {
		s.board = next
		out.Saved = s.persist(ctx) == nil
	}
	for _, ev := range events {
		s.publish(ev)
	}
	out.Board = s.board.Clone()
	return out
}

func (s *Session) persist(ctx context.Context) error {
	if err := s.persister.SaveBoard(ctx, s.board); err != nil {
		s.dirty = true
		s.logger.Warn("board save failed", "error", err)
		s.publish(model.Event{
			Type:      model.EventTypeBoardSaveFailed,
			Message:   err.Error(),
			Timestamp: s.now().UTC(),
		})
		return err
	}
	s.dirty = false
	s.rebuildProjection(ctx)
	return nil
}

func (s *Session) rebuildProjection(ctx context.Context) {
	if s.projection == nil {
		return
	}
	if err := s.projection.RebuildFromBoard(ctx, s.board); err != nil {
		s.logger.Warn("projection rebuild failed", "error", err)
	}
}

func (s *Session) publish(event model.Event) {
	if s.publisher == nil {
		return
	}
	event.CardID = strings.TrimSpace(event.CardID)
	s.publisher.Publish(event)
}

type QuickAddInput struct {
	ColumnID string `json:"column" validate:"required"`
	Company  string `json:"company" validate:"required,max=200"`
	Role     string `json:"role" validate:"max=200"`
}

func (s *Session) QuickAdd(ctx context.Context, in QuickAddInput) (Outcome, error) {
	in.ColumnID = strings.TrimSpace(in.ColumnID)
	in.Company = strings.TrimSpace(in.Company)
	in.Role = strings.TrimSpace(in.Role)
	if err := s.validate.Struct(in); err != nil {
		return Outcome{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.board.HasColumn(in.ColumnID) {
		return Outcome{}, newError(CodeNotFound, "column not found", nil)
	}
	id, err := s.newID()
	if err != nil {
		return Outcome{}, newError(CodeInternal, "generate card id failed", err)
	}
	res := board.QuickAdd(s.board, in.ColumnID, id, in.Company, in.Role, s.now().UTC())
	if !res.Changed() {
		return Outcome{}, newError(CodeConflict, "card could not be added", nil)
	}
	out := s.commit(ctx, res.Board, true, res.Events)
	out.Card = res.Events[0].Card
	s.logger.Info("card created", "card_id", id, "column", in.ColumnID)
	return out, nil
}

type TrackJobInput struct {
	Company        string `json:"company" validate:"required,max=200"`
	Role           string `json:"role" validate:"max=200"`
	Description    string `json:"description"`
	Notes          string `json:"notes"`
	Salary         string `json:"salary" validate:"max=100"`
	LinkedResumeID string `json:"linkedResumeId"`
}

func (s *Session) TrackJob(ctx context.Context, in TrackJobInput) (Outcome, error) {
	in.Company = strings.TrimSpace(in.Company)
	if err := s.validate.Struct(in); err != nil {
		return Outcome{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.newID()
	if err != nil {
		return Outcome{}, newError(CodeInternal, "generate card id failed", err)
	}
	res := board.TrackJob(s.board, model.Card{
		ID:             id,
		Company:        in.Company,
		Role:           in.Role,
		Description:    strings.TrimSpace(in.Description),
		Notes:          strings.TrimSpace(in.Notes),
		Salary:         strings.TrimSpace(in.Salary),
		LinkedResumeID: strings.TrimSpace(in.LinkedResumeID),
	}, s.now().UTC())
	if !res.Changed() {
		return Outcome{}, newError(CodeConflict, "job could not be tracked", nil)
	}
	out := s.commit(ctx, res.Board, true, res.Events)
	out.Card = res.Events[0].Card
	s.logger.Info("job tracked", "card_id", id, "company", in.Company)
	return out, nil
}

func (s *Session) UpdateCard(ctx context.Context, cardID string, patch board.CardPatch) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, ok := board.FindCard(s.board, cardID); !ok {
		return Outcome{}, newError(CodeNotFound, "card not found", nil)
	}
	res := board.UpdateCard(s.board, cardID, patch, s.now().UTC())
	out := s.commit(ctx, res.Board, res.Changed(), res.Events)
	if res.Changed() {
		out.Card = res.Events[0].Card
	}
	s.logger.Info("card updated", "card_id", cardID)
	return out, nil
}

func (s *Session) DeleteCard(ctx context.Context, cardID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refuseDuringDrag(); err != nil {
		return Outcome{}, err
	}

	_, columnID, ok := board.FindCard(s.board, cardID)
	if !ok {
		return Outcome{}, newError(CodeNotFound, "card not found", nil)
	}
	res, removed := board.DeleteCard(s.board, columnID, cardID, s.now().UTC())
	out := s.commit(ctx, res.Board, res.Changed(), res.Events)
	out.Card = removed
	s.logger.Info("card deleted", "card_id", cardID, "column", columnID)
	if removed != nil && removed.LinkedResumeID != "" {
		s.releaseResume(removed.LinkedResumeID)
	}
	return out, nil
}

// releaseResume deletes the linked resume in the background. Failures are only
// logged because the card is already gone.
func (s *Session) releaseResume(resumeID string) {
	if s.resumes == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), resumeCleanupTimeout)
		defer cancel()
		if err := s.resumes.DeleteResume(ctx, resumeID); err != nil {
			s.logger.Warn("linked resume cleanup failed", "resume_id", resumeID, "error", err)
			return
		}
		s.logger.Info("linked resume deleted", "resume_id", resumeID)
	}()
}

// MoveToNextStage is a no-op for cards in the last pipeline stage or outside it.
func (s *Session) MoveToNextStage(ctx context.Context, cardID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refuseDuringDrag(); err != nil {
		return Outcome{}, err
	}

	_, columnID, ok := board.FindCard(s.board, cardID)
	if !ok {
		return Outcome{}, newError(CodeNotFound, "card not found", nil)
	}
	res := board.MoveToNextStage(s.board, cardID, columnID, s.now().UTC())
	out := s.commit(ctx, res.Board, res.Changed(), res.Events)
	if res.Changed() {
		out.Card = res.Events[0].Card
		s.logger.Info("card advanced", "card_id", cardID, "from", columnID, "to", res.Events[0].ColumnID)
	}
	return out, nil
}

type ChangeStatusInput struct {
	ColumnID string `json:"column" validate:"required"`
}

func (s *Session) ChangeStatus(ctx context.Context, cardID string, in ChangeStatusInput) (Outcome, error) {
	in.ColumnID = strings.TrimSpace(in.ColumnID)
	if err := s.validate.Struct(in); err != nil {
		return Outcome{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refuseDuringDrag(); err != nil {
		return Outcome{}, err
	}

	_, columnID, ok := board.FindCard(s.board, cardID)
	if !ok {
		return Outcome{}, newError(CodeNotFound, "card not found", nil)
	}
	if !s.board.HasColumn(in.ColumnID) {
		return Outcome{}, newError(CodeValidation, "unknown column "+in.ColumnID, nil)
	}
	res := board.ChangeStatus(s.board, cardID, columnID, in.ColumnID, s.now().UTC())
	out := s.commit(ctx, res.Board, res.Changed(), res.Events)
	if res.Changed() {
		out.Card = res.Events[0].Card
		s.logger.Info("card status changed", "card_id", cardID, "from", columnID, "to", in.ColumnID)
	}
	return out, nil
}

// refuseDuringDrag keeps card positions stable while the reconciler holds a drag
// session over them. Callers hold s.mu.
func (s *Session) refuseDuringDrag() error {
	if s.reconc.Active() {
		return newError(CodeConflict, "cannot move or delete cards while a drag is in progress", drag.ErrDragInProgress)
	}
	return nil
}

// Import replaces the whole board with a snapshot document, either a versioned
// snapshot object or a bare column array.
func (s *Session) Import(ctx context.Context, data []byte) (Outcome, error) {
	b, err := store.DecodeSnapshot(data)
	if err != nil {
		var schemaErr *store.SchemaError
		if errors.As(err, &schemaErr) {
			return Outcome{}, newError(CodeValidation, schemaErr.Error(), err)
		}
		return Outcome{}, newError(CodeValidation, "invalid board snapshot", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reconc.Active() {
		return Outcome{}, newError(CodeConflict, "cannot import while a drag is in progress", drag.ErrDragInProgress)
	}
	s.flow.Cancel()
	out := s.commit(ctx, b.Clone(), true, []model.Event{{
		Type:      model.EventTypeBoardImported,
		Message:   "board replaced",
		Timestamp: s.now().UTC(),
	}})
	s.logger.Info("board imported", "columns", len(b), "cards", b.CardCount())
	return out, nil
}

func (s *Session) RebuildProjection(ctx context.Context) (RebuildResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.projection == nil {
		return RebuildResult{}, newError(CodeInternal, "projection is not configured", nil)
	}
	if err := s.projection.RebuildFromBoard(ctx, s.board); err != nil {
		return RebuildResult{}, newError(CodeInternal, "rebuild projection failed", err)
	}
	s.logger.Info("projection rebuilt", "cards_rebuilt", s.board.CardCount())
	return RebuildResult{CardsRebuilt: s.board.CardCount()}, nil
}

// ListCards reads from the projection when one is configured and otherwise
// summarises the in-memory board.
func (s *Session) ListCards(ctx context.Context, columnID string) ([]model.CardSummary, error) {
	if s.projection != nil {
		cards, err := s.projection.ListCards(ctx, columnID)
		if err != nil {
			return nil, newError(CodeInternal, "list cards failed", err)
		}
		return cards, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summarise(s.board, columnID), nil
}

func summarise(b model.Board, columnID string) []model.CardSummary {
	out := make([]model.CardSummary, 0)
	for _, col := range b {
		if columnID != "" && col.ID != columnID {
			continue
		}
		for pos, card := range col.Items {
			out = append(out, model.CardSummary{
				ID:              card.ID,
				ColumnID:        col.ID,
				Position:        pos,
				Company:         card.Company,
				Role:            card.Role,
				Date:            card.Date,
				LinkedResumeID:  card.LinkedResumeID,
				RejectionReason: card.RejectionReason,
				HistoryCount:    len(card.History),
				RoundsCount:     len(card.UpcomingRounds),
			})
		}
	}
	return out
}
