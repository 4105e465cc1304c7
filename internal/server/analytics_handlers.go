package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/simonjohansson/jobboard/internal/analytics"
)

func (s *Server) registerAnalyticsOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID: "funnel",
		Method:      http.MethodGet,
		Path:        "/analytics/funnel",
		Summary:     "Current and lifetime counts per stage",
	}, s.funnel)

	huma.Register(s.api, huma.Operation{
		OperationID: "velocity",
		Method:      http.MethodGet,
		Path:        "/analytics/velocity",
		Summary:     "Applications and upcoming rounds per day",
		Errors:      []int{http.StatusBadRequest},
	}, s.velocity)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejections",
		Method:      http.MethodGet,
		Path:        "/analytics/rejections",
		Summary:     "Top rejection reasons",
	}, s.rejections)
}

type funnelOutput struct {
	Body struct {
		Stages []analytics.StageCount `json:"stages"`
	}
}

func (s *Server) funnel(_ context.Context, _ *struct{}) (*funnelOutput, error) {
	out := &funnelOutput{}
	out.Body.Stages = s.session.Funnel()
	return out, nil
}

type velocityInput struct {
	Window string `query:"window" doc:"7days, 30days, 3months or all; defaults to 7days"`
}

type velocityOutput struct {
	Body struct {
		Buckets []analytics.Bucket `json:"buckets"`
	}
}

func (s *Server) velocity(_ context.Context, input *velocityInput) (*velocityOutput, error) {
	buckets, err := s.session.Velocity(input.Window)
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &velocityOutput{}
	out.Body.Buckets = buckets
	return out, nil
}

type rejectionsOutput struct {
	Body analytics.RejectionSummary
}

func (s *Server) rejections(_ context.Context, _ *struct{}) (*rejectionsOutput, error) {
	return &rejectionsOutput{Body: s.session.Rejections()}, nil
}
