package server

import (
	"context"

	"github.com/simonjohansson/jobboard/internal/model"
)

type healthOutput struct {
	Body struct {
		Ok    bool `json:"ok"`
		Dirty bool `json:"dirty"`
	}
}

func (s *Server) health(_ context.Context, _ *struct{}) (*healthOutput, error) {
	out := &healthOutput{}
	out.Body.Ok = true
	out.Body.Dirty = s.session.Dirty()
	return out, nil
}

type listProjectedCardsInput struct {
	Column string `query:"column"`
}

type listProjectedCardsOutput struct {
	Body struct {
		Cards []model.CardSummary `json:"cards"`
	}
}

func (s *Server) listProjectedCards(ctx context.Context, input *listProjectedCardsInput) (*listProjectedCardsOutput, error) {
	cards, err := s.session.ListCards(ctx, input.Column)
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &listProjectedCardsOutput{}
	out.Body.Cards = cards
	return out, nil
}

type rebuildProjectionOutput struct {
	Body struct {
		CardsRebuilt int `json:"cards_rebuilt"`
	}
}

func (s *Server) rebuildProjection(ctx context.Context, _ *struct{}) (*rebuildProjectionOutput, error) {
	result, err := s.session.RebuildProjection(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}

	out := &rebuildProjectionOutput{}
	out.Body.CardsRebuilt = result.CardsRebuilt
	return out, nil
}
