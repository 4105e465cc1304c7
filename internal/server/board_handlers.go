package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/simonjohansson/jobboard/internal/session"
)

func (s *Server) registerBoardOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBoard",
		Method:      http.MethodGet,
		Path:        "/board",
		Summary:     "Get the board as it should be rendered",
	}, s.getBoard)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportBoard",
		Method:      http.MethodGet,
		Path:        "/board/export",
		Summary:     "Export the committed board as a versioned snapshot",
	}, s.exportBoard)

	huma.Register(s.api, huma.Operation{
		OperationID: "importBoard",
		Method:      http.MethodPut,
		Path:        "/board",
		Summary:     "Replace the board with a snapshot document",
		Errors:      []int{http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError},
	}, s.importBoard)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveBoard",
		Method:      http.MethodPost,
		Path:        "/board/save",
		Summary:     "Retry persisting the board",
		Errors:      []int{http.StatusInternalServerError},
	}, s.saveBoard)
}

type boardOutput struct {
	Body struct {
		Columns    model.Board `json:"columns"`
		DragActive bool        `json:"drag_active"`
		Dirty      bool        `json:"dirty"`
	}
}

func (s *Server) getBoard(_ context.Context, _ *struct{}) (*boardOutput, error) {
	out := &boardOutput{}
	out.Body.Columns = s.session.Preview()
	out.Body.DragActive = s.session.DragActive()
	out.Body.Dirty = s.session.Dirty()
	return out, nil
}

type exportBoardOutput struct {
	Body model.Snapshot
}

func (s *Server) exportBoard(_ context.Context, _ *struct{}) (*exportBoardOutput, error) {
	return &exportBoardOutput{Body: model.Snapshot{
		Version: model.SnapshotVersion,
		SavedAt: time.Now().UTC(),
		Columns: s.session.Board(),
	}}, nil
}

type importBoardInput struct {
	RawBody []byte `contentType:"application/json"`
}

type outcomeOutput struct {
	Body session.Outcome
}

func (s *Server) importBoard(ctx context.Context, input *importBoardInput) (*outcomeOutput, error) {
	outcome, err := s.session.Import(ctx, input.RawBody)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}

func (s *Server) saveBoard(ctx context.Context, _ *struct{}) (*outcomeOutput, error) {
	outcome, err := s.session.Save(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &outcomeOutput{Body: outcome}, nil
}
