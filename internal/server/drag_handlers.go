package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/simonjohansson/jobboard/internal/drag"
	"github.com/simonjohansson/jobboard/internal/quickcreate"
	"github.com/simonjohansson/jobboard/internal/session"
)

func (s *Server) registerDragOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startDrag",
		Method:      http.MethodPost,
		Path:        "/drag/start",
		Summary:     "Pick up a job card or a resume",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, s.startDrag)

	huma.Register(s.api, huma.Operation{
		OperationID: "dragOver",
		Method:      http.MethodPost,
		Path:        "/drag/over",
		Summary:     "Report what the dragged item is hovering",
		Errors:      []int{http.StatusBadRequest},
	}, s.dragOver)

	huma.Register(s.api, huma.Operation{
		OperationID: "endDrag",
		Method:      http.MethodPost,
		Path:        "/drag/end",
		Summary:     "Drop the dragged item; an absent target cancels",
		Errors:      []int{http.StatusBadRequest},
	}, s.endDrag)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelDrag",
		Method:      http.MethodPost,
		Path:        "/drag/cancel",
		Summary:     "Abandon the current drag",
	}, s.cancelDrag)
}

func (s *Server) registerSmartDropOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSmartDrop",
		Method:      http.MethodGet,
		Path:        "/smart-drop",
		Summary:     "Get the pending resume drop, if any",
	}, s.getSmartDrop)

	huma.Register(s.api, huma.Operation{
		OperationID:   "openSmartDrop",
		Method:        http.MethodPost,
		Path:          "/smart-drop",
		DefaultStatus: http.StatusCreated,
		Summary:       "Start creating a card from a resume dropped on a column",
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, s.openSmartDrop)

	huma.Register(s.api, huma.Operation{
		OperationID:   "confirmSmartDrop",
		Method:        http.MethodPost,
		Path:          "/smart-drop/confirm",
		DefaultStatus: http.StatusCreated,
		Summary:       "Create the card for the pending resume drop",
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError},
	}, s.confirmSmartDrop)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelSmartDrop",
		Method:      http.MethodPost,
		Path:        "/smart-drop/cancel",
		Summary:     "Discard the pending resume drop",
	}, s.cancelSmartDrop)
}

type startDragRequest struct {
	Kind        string `json:"kind" enum:"job,resume"`
	CardID      string `json:"card_id,omitempty"`
	ResumeID    string `json:"resume_id,omitempty"`
	ResumeTitle string `json:"resume_title,omitempty"`
}

type startDragInput struct {
	Body startDragRequest
}

func (s *Server) startDrag(ctx context.Context, input *startDragInput) (*outcomeOutput, error) {
	outcome, err := s.session.StartDrag(ctx, session.StartDragInput{
		Kind:        session.DragKind(input.Body.Kind),
		CardID:      input.Body.CardID,
		ResumeID:    input.Body.ResumeID,
		ResumeTitle: input.Body.ResumeTitle,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

type dragTargetInput struct {
	Body struct {
		Target *drag.Target `json:"target,omitempty"`
	}
}

func (s *Server) dragOver(ctx context.Context, input *dragTargetInput) (*outcomeOutput, error) {
	outcome, err := s.session.DragOver(ctx, input.Body.Target)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

func (s *Server) endDrag(ctx context.Context, input *dragTargetInput) (*outcomeOutput, error) {
	outcome, err := s.session.EndDrag(ctx, input.Body.Target)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

func (s *Server) cancelDrag(ctx context.Context, _ *struct{}) (*outcomeOutput, error) {
	outcome, err := s.session.CancelDrag(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

type smartDropOutput struct {
	Body struct {
		Pending *quickcreate.Pending `json:"pending"`
	}
}

func (s *Server) getSmartDrop(_ context.Context, _ *struct{}) (*smartDropOutput, error) {
	out := &smartDropOutput{}
	if pending, ok := s.session.PendingSmartDrop(); ok {
		out.Body.Pending = &pending
	}
	return out, nil
}

type openSmartDropInput struct {
	Body struct {
		ResumeID    string `json:"resume_id"`
		Column      string `json:"column"`
		ResumeTitle string `json:"resume_title,omitempty"`
	}
}

func (s *Server) openSmartDrop(ctx context.Context, input *openSmartDropInput) (*smartDropOutput, error) {
	pending, err := s.session.OpenSmartDrop(ctx, session.OpenSmartDropInput{
		ResumeID:    input.Body.ResumeID,
		ColumnID:    input.Body.Column,
		ResumeTitle: input.Body.ResumeTitle,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &smartDropOutput{}
	out.Body.Pending = &pending
	return out, nil
}

type confirmSmartDropInput struct {
	Body struct {
		Company string `json:"company"`
		Role    string `json:"role,omitempty"`
	}
}

func (s *Server) confirmSmartDrop(ctx context.Context, input *confirmSmartDropInput) (*outcomeOutput, error) {
	outcome, err := s.session.ConfirmSmartDrop(ctx, session.ConfirmSmartDropInput{
		Company: input.Body.Company,
		Role:    input.Body.Role,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

type cancelSmartDropOutput struct {
	Body struct {
		Cancelled bool `json:"cancelled"`
	}
}

func (s *Server) cancelSmartDrop(_ context.Context, _ *struct{}) (*cancelSmartDropOutput, error) {
	out := &cancelSmartDropOutput{}
	out.Body.Cancelled = s.session.CancelSmartDrop()
	return out, nil
}
