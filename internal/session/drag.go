package session

import (
	"context"
	"errors"
	"strings"

	"github.com/simonjohansson/jobboard/internal/analytics"
	"github.com/simonjohansson/jobboard/internal/board"
	"github.com/simonjohansson/jobboard/internal/drag"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/simonjohansson/jobboard/internal/quickcreate"
)

type DragKind string

const (
	DragJob    DragKind = "job"
	DragResume DragKind = "resume"
)

type StartDragInput struct {
	Kind        DragKind `json:"kind" validate:"required,oneof=job resume"`
	CardID      string   `json:"card_id" validate:"required_if=Kind job"`
	ResumeID    string   `json:"resume_id" validate:"required_if=Kind resume"`
	ResumeTitle string   `json:"resume_title"`
}

func (s *Session) StartDrag(ctx context.Context, in StartDragInput) (Outcome, error) {
	if err := s.validate.Struct(in); err != nil {
		return Outcome{}, invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var payload drag.Payload
	switch in.Kind {
	case DragJob:
		card, columnID, ok := board.FindCard(s.board, in.CardID)
		if !ok {
			return Outcome{}, newError(CodeNotFound, "card not found", nil)
		}
		payload = drag.JobPayload{Card: card, OriginColumnID: columnID}
	case DragResume:
		title := strings.TrimSpace(in.ResumeTitle)
		if title == "" && s.resumes != nil {
			title, _ = s.resumes.ResolveTitle(ctx, in.ResumeID)
		}
		payload = drag.ResumePayload{ResumeID: in.ResumeID, Title: title}
	}

	if err := s.reconc.Start(s.board, payload); err != nil {
		if errors.Is(err, drag.ErrDragInProgress) {
			return Outcome{}, newError(CodeConflict, err.Error(), err)
		}
		return Outcome{}, newError(CodeInternal, "start drag failed", err)
	}
	s.preview = s.board
	s.logger.Debug("drag started", "kind", in.Kind, "card_id", in.CardID, "resume_id", in.ResumeID)
	return Outcome{Saved: !s.dirty, Events: []model.Event{}, Board: s.board.Clone()}, nil
}

func (s *Session) DragOver(ctx context.Context, target *drag.Target) (Outcome, error) {
	if err := s.validateTarget(target); err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.reconc.Over(s.board, target)
	return s.applyDrag(ctx, res), nil
}

func (s *Session) EndDrag(ctx context.Context, target *drag.Target) (Outcome, error) {
	if err := s.validateTarget(target); err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.reconc.End(s.board, target)
	res.Events = s.openSmartDrops(res.Events)
	out := s.applyDrag(ctx, res)
	s.logger.Debug("drag ended", "events", len(out.Events))
	return out, nil
}

func (s *Session) CancelDrag(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyDrag(ctx, s.reconc.Cancel(s.board)), nil
}

func (s *Session) validateTarget(target *drag.Target) error {
	if target == nil {
		return nil
	}
	if err := s.validate.Struct(target); err != nil {
		return invalid(err)
	}
	return nil
}

func (s *Session) applyDrag(ctx context.Context, res drag.Result) Outcome {
	out := s.commit(ctx, res.Board, res.Changed, res.Events)
	if s.reconc.Active() {
		s.preview = res.Preview
		if s.preview != nil {
			out.Board = s.preview.Clone()
		}
	} else {
		s.preview = nil
	}
	return out
}

// openSmartDrops starts the quick-create flow for a resume dropped on a column.
func (s *Session) openSmartDrops(events []model.Event) []model.Event {
	out := events
	for _, ev := range events {
		if ev.Type != model.EventTypeCardFromResumeRequested {
			continue
		}
		if err := s.flow.Open(ev.ResumeID, ev.ColumnID, ev.Message); err != nil {
			s.logger.Warn("smart drop could not open", "resume_id", ev.ResumeID, "error", err)
			continue
		}
		out = append(out, model.Event{
			Type:      model.EventTypeSmartDropOpened,
			ColumnID:  ev.ColumnID,
			ResumeID:  ev.ResumeID,
			Message:   ev.Message,
			Timestamp: s.now().UTC(),
		})
	}
	return out
}

type OpenSmartDropInput struct {
	ResumeID    string `json:"resume_id" validate:"required"`
	ColumnID    string `json:"column" validate:"required"`
	ResumeTitle string `json:"resume_title"`
}

func (s *Session) OpenSmartDrop(ctx context.Context, in OpenSmartDropInput) (quickcreate.Pending, error) {
	if err := s.validate.Struct(in); err != nil {
		return quickcreate.Pending{}, invalid(err)
	}

	title := strings.TrimSpace(in.ResumeTitle)
	if title == "" && s.resumes != nil {
		title, _ = s.resumes.ResolveTitle(ctx, in.ResumeID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.board.HasColumn(in.ColumnID) {
		return quickcreate.Pending{}, newError(CodeNotFound, "column not found", nil)
	}
	if err := s.flow.Open(in.ResumeID, in.ColumnID, title); err != nil {
		return quickcreate.Pending{}, invalid(err)
	}
	pending, _ := s.flow.Pending()
	s.publish(model.Event{
		Type:      model.EventTypeSmartDropOpened,
		ColumnID:  pending.TargetColumnID,
		ResumeID:  pending.ResumeID,
		Message:   pending.ResumeTitle,
		Timestamp: s.now().UTC(),
	})
	return pending, nil
}

func (s *Session) PendingSmartDrop() (quickcreate.Pending, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flow.Pending()
}

type ConfirmSmartDropInput struct {
	Company string `json:"company"`
	Role    string `json:"role"`
}

func (s *Session) ConfirmSmartDrop(ctx context.Context, in ConfirmSmartDropInput) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.newID()
	if err != nil {
		return Outcome{}, newError(CodeInternal, "generate card id failed", err)
	}
	res, err := s.flow.Confirm(s.board, in.Company, in.Role, id, s.now().UTC())
	switch {
	case errors.Is(err, quickcreate.ErrNothingPending):
		return Outcome{}, newError(CodeNotFound, err.Error(), err)
	case errors.Is(err, quickcreate.ErrCompanyRequired), errors.Is(err, quickcreate.ErrCompanyTooLong):
		return Outcome{}, newError(CodeValidation, err.Error(), err)
	case errors.Is(err, quickcreate.ErrUnknownColumn):
		return Outcome{}, newError(CodeConflict, err.Error(), err)
	case err != nil:
		return Outcome{}, newError(CodeValidation, err.Error(), err)
	}
	out := s.commit(ctx, res.Board, true, res.Events)
	out.Card = res.Events[0].Card
	s.logger.Info("card created from resume", "card_id", id, "resume_id", out.Card.LinkedResumeID)
	return out, nil
}

// CancelSmartDrop reports whether a drop was pending.
func (s *Session) CancelSmartDrop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.flow.Pending()
	if !s.flow.Cancel() {
		return false
	}
	s.publish(model.Event{
		Type:      model.EventTypeSmartDropCancelled,
		ColumnID:  pending.TargetColumnID,
		ResumeID:  pending.ResumeID,
		Timestamp: s.now().UTC(),
	})
	return ok
}

func (s *Session) Funnel() []analytics.StageCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analytics.Funnel(s.board)
}

func (s *Session) Velocity(window string) ([]analytics.Bucket, error) {
	w, err := analytics.ParseWindow(window)
	if err != nil {
		return nil, newError(CodeValidation, err.Error(), err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets, err := analytics.Velocity(s.board, w, s.now(), s.loc)
	if err != nil {
		return nil, newError(CodeValidation, err.Error(), err)
	}
	return buckets, nil
}

func (s *Session) Rejections() analytics.RejectionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analytics.Rejections(s.board)
}
