package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/simonjohansson/jobboard/internal/board"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/simonjohansson/jobboard/internal/session"
)

func (s *Server) registerCardOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "quickAddCard",
		Method:        http.MethodPost,
		Path:          "/columns/{column}/cards",
		DefaultStatus: http.StatusCreated,
		Summary:       "Quick-add a card to the front of a column",
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, s.quickAddCard)

	huma.Register(s.api, huma.Operation{
		OperationID:   "trackJob",
		Method:        http.MethodPost,
		Path:          "/cards/track",
		DefaultStatus: http.StatusCreated,
		Summary:       "Track a fully described job in the saved column",
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, s.trackJob)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCard",
		Method:      http.MethodGet,
		Path:        "/cards/{card}",
		Summary:     "Get card",
		Errors:      []int{http.StatusNotFound},
	}, s.getCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCard",
		Method:      http.MethodPatch,
		Path:        "/cards/{card}",
		Summary:     "Edit card details",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, s.updateCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCard",
		Method:      http.MethodDelete,
		Path:        "/cards/{card}",
		Summary:     "Delete card and release its linked resume",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError},
	}, s.deleteCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "advanceCard",
		Method:      http.MethodPost,
		Path:        "/cards/{card}/advance",
		Summary:     "Move card to the next pipeline stage",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError},
	}, s.advanceCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "changeCardStatus",
		Method:      http.MethodPatch,
		Path:        "/cards/{card}/status",
		Summary:     "Move card to any column",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError},
	}, s.changeCardStatus)
}

type quickAddRequest struct {
	Company string `json:"company"`
	Role    string `json:"role,omitempty"`
}

type quickAddInput struct {
	Column string `path:"column"`
	Body   quickAddRequest
}

func (s *Server) quickAddCard(ctx context.Context, input *quickAddInput) (*outcomeOutput, error) {
	outcome, err := s.session.QuickAdd(ctx, session.QuickAddInput{
		ColumnID: input.Column,
		Company:  input.Body.Company,
		Role:     input.Body.Role,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

type trackJobRequest struct {
	Company        string  `json:"company"`
	Role           string  `json:"role,omitempty"`
	Description    *string `json:"description,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Salary         *string `json:"salary,omitempty"`
	LinkedResumeID *string `json:"linkedResumeId,omitempty"`
}

type trackJobInput struct {
	Body trackJobRequest
}

func (s *Server) trackJob(ctx context.Context, input *trackJobInput) (*outcomeOutput, error) {
	outcome, err := s.session.TrackJob(ctx, session.TrackJobInput{
		Company:        input.Body.Company,
		Role:           input.Body.Role,
		Description:    stringOrEmpty(input.Body.Description),
		Notes:          stringOrEmpty(input.Body.Notes),
		Salary:         stringOrEmpty(input.Body.Salary),
		LinkedResumeID: stringOrEmpty(input.Body.LinkedResumeID),
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

type cardPathInput struct {
	Card string `path:"card"`
}

type getCardOutput struct {
	Body struct {
		Card   model.Card `json:"card"`
		Column string     `json:"column"`
	}
}

func (s *Server) getCard(_ context.Context, input *cardPathInput) (*getCardOutput, error) {
	card, columnID, err := s.session.Card(input.Card)
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &getCardOutput{}
	out.Body.Card = card
	out.Body.Column = columnID
	return out, nil
}

type updateCardRequest struct {
	Company         *string                `json:"company,omitempty"`
	Role            *string                `json:"role,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Description     *string                `json:"description,omitempty"`
	RejectionReason *string                `json:"rejectionReason,omitempty"`
	Salary          *string                `json:"salary,omitempty"`
	LinkedResumeID  *string                `json:"linkedResumeId,omitempty"`
	UpcomingRounds  *[]model.UpcomingRound `json:"upcomingRounds,omitempty"`
}

type updateCardInput struct {
	Card string `path:"card"`
	Body updateCardRequest
}

func (s *Server) updateCard(ctx context.Context, input *updateCardInput) (*outcomeOutput, error) {
	outcome, err := s.session.UpdateCard(ctx, input.Card, board.CardPatch{
		Company:         input.Body.Company,
		Role:            input.Body.Role,
		Notes:           input.Body.Notes,
		Description:     input.Body.Description,
		RejectionReason: input.Body.RejectionReason,
		Salary:          input.Body.Salary,
		LinkedResumeID:  input.Body.LinkedResumeID,
		UpcomingRounds:  input.Body.UpcomingRounds,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

func (s *Server) deleteCard(ctx context.Context, input *cardPathInput) (*outcomeOutput, error) {
	outcome, err := s.session.DeleteCard(ctx, input.Card)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

func (s *Server) advanceCard(ctx context.Context, input *cardPathInput) (*outcomeOutput, error) {
	outcome, err := s.session.MoveToNextStage(ctx, input.Card)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

type changeStatusInput struct {
	Card string `path:"card"`
	Body struct {
		Column string `json:"column"`
	}
}

func (s *Server) changeCardStatus(ctx context.Context, input *changeStatusInput) (*outcomeOutput, error) {
	outcome, err := s.session.ChangeStatus(ctx, input.Card, session.ChangeStatusInput{ColumnID: input.Body.Column})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}
