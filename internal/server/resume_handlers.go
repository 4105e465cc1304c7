package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/simonjohansson/jobboard/internal/resume"
)

func (s *Server) registerResumeOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createResume",
		Method:        http.MethodPost,
		Path:          "/resumes",
		DefaultStatus: http.StatusCreated,
		Summary:       "Register a resume",
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, s.createResume)

	huma.Register(s.api, huma.Operation{
		OperationID: "listResumes",
		Method:      http.MethodGet,
		Path:        "/resumes",
		Summary:     "List resumes",
		Errors:      []int{http.StatusInternalServerError},
	}, s.listResumes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getResume",
		Method:      http.MethodGet,
		Path:        "/resumes/{id}",
		Summary:     "Get resume",
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, s.getResume)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteResume",
		Method:        http.MethodDelete,
		Path:          "/resumes/{id}",
		DefaultStatus: http.StatusNoContent,
		Summary:       "Delete resume",
		Errors:        []int{http.StatusInternalServerError},
	}, s.deleteResume)
}

type createResumeInput struct {
	Body struct {
		Title string            `json:"title"`
		Tags  map[string]string `json:"tags,omitempty"`
	}
}

type resumeOutput struct {
	Body model.Resume
}

func (s *Server) createResume(ctx context.Context, input *createResumeInput) (*resumeOutput, error) {
	r, err := s.resumes.Create(ctx, input.Body.Title, input.Body.Tags)
	if err != nil {
		if errors.Is(err, resume.ErrTitleRequired) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, huma.Error500InternalServerError(err.Error())
	}
	s.logger.Info("resume created", "resume_id", r.ID, "title", r.Title)
	return &resumeOutput{Body: r}, nil
}

type listResumesOutput struct {
	Body struct {
		Resumes []model.Resume `json:"resumes"`
	}
}

func (s *Server) listResumes(ctx context.Context, _ *struct{}) (*listResumesOutput, error) {
	resumes, err := s.resumes.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	out := &listResumesOutput{}
	out.Body.Resumes = resumes
	return out, nil
}

type resumePathInput struct {
	ID string `path:"id"`
}

func (s *Server) getResume(ctx context.Context, input *resumePathInput) (*resumeOutput, error) {
	r, err := s.resumes.Get(ctx, input.ID)
	if err != nil {
		if errors.Is(err, resume.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &resumeOutput{Body: r}, nil
}

func (s *Server) deleteResume(ctx context.Context, input *resumePathInput) (*struct{}, error) {
	if err := s.resumes.DeleteResume(ctx, input.ID); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	s.logger.Info("resume deleted", "resume_id", input.ID)
	return nil, nil
}
