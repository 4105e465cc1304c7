package server

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/simonjohansson/jobboard/internal/session"
)

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func toHumaError(err error) error {
	code := session.CodeOf(err)
	msg := session.MessageOf(err)
	switch code {
	case session.CodeConflict:
		return huma.Error409Conflict(msg)
	case session.CodeNotFound:
		return huma.Error404NotFound(msg)
	case session.CodeValidation:
		return huma.Error400BadRequest(msg)
	default:
		return huma.Error500InternalServerError(msg)
	}
}
