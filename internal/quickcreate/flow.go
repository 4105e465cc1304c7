package quickcreate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/simonjohansson/jobboard/internal/board"
	"github.com/simonjohansson/jobboard/internal/model"
)

var (
	ErrCompanyRequired = errors.New("company is required")
	ErrCompanyTooLong  = errors.New("company must be at most 200 characters")
	ErrNothingPending  = errors.New("no smart drop is pending")
	ErrUnknownColumn   = errors.New("target column no longer exists")
)

// Pending is a resume that was dropped on a column and is waiting for the user to
// name the company.
type Pending struct {
	ResumeID       string `json:"resume_id" validate:"required"`
	TargetColumnID string `json:"target_column_id" validate:"required"`
	ResumeTitle    string `json:"resume_title,omitempty"`
}

type confirmInput struct {
	Company string `validate:"required,max=200"`
	Role    string `validate:"max=200"`
	ID      string `validate:"required"`
}

type Flow struct {
	validate *validator.Validate
	pending  *Pending
}

func New() *Flow {
	return &Flow{validate: validator.New()}
}

// Open replaces any earlier pending drop.
func (f *Flow) Open(resumeID, columnID, title string) error {
	p := Pending{
		ResumeID:       strings.TrimSpace(resumeID),
		TargetColumnID: strings.TrimSpace(columnID),
		ResumeTitle:    strings.TrimSpace(title),
	}
	if err := f.validate.Struct(p); err != nil {
		return fmt.Errorf("open smart drop: %w", err)
	}
	f.pending = &p
	return nil
}

func (f *Flow) Pending() (Pending, bool) {
	if f.pending == nil {
		return Pending{}, false
	}
	return *f.pending, true
}

// Confirm materialises the pending drop as a card at the front of its column. On
// error the board and the pending drop are left untouched so the user can retry.
func (f *Flow) Confirm(b model.Board, company, role, id string, now time.Time) (board.Result, error) {
	if f.pending == nil {
		return board.Result{Board: b}, ErrNothingPending
	}
	in := confirmInput{
		Company: strings.TrimSpace(company),
		Role:    strings.TrimSpace(role),
		ID:      strings.TrimSpace(id),
	}
	if err := f.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Company" {
			if verrs[0].Tag() == "required" {
				return board.Result{Board: b}, ErrCompanyRequired
			}
			return board.Result{Board: b}, ErrCompanyTooLong
		}
		return board.Result{Board: b}, fmt.Errorf("confirm smart drop: %w", err)
	}
	if !b.HasColumn(f.pending.TargetColumnID) {
		return board.Result{Board: b}, ErrUnknownColumn
	}

	res := board.AddCard(b, f.pending.TargetColumnID, model.Card{
		ID:             in.ID,
		Company:        in.Company,
		Role:           in.Role,
		Date:           now,
		LinkedResumeID: f.pending.ResumeID,
	}, now)
	if !res.Changed() {
		return res, fmt.Errorf("confirm smart drop: card %q already exists", in.ID)
	}
	f.pending = nil
	return res, nil
}

// Cancel reports whether a drop was pending.
func (f *Flow) Cancel() bool {
	had := f.pending != nil
	f.pending = nil
	return had
}
