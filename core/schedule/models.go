// Package schedule persists shift templates & the weekly assignment boards built on top of the grid.
package schedule

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/grid"
)

const (
	DaysPerWeek = 7
	WeekLayout  = "2006-01-02"
)

type (
	ShiftTemplate struct {
		ID         string         `json:"id"`
		BusinessID string         `json:"business_id"`
		Start      grid.TimeOfDay `json:"start"`
		End        grid.TimeOfDay `json:"end"`
		Label      string         `json:"label"`
		CreatedAt  time.Time      `json:"created_at"` // UTC
	}

	NewShiftTemplate struct {
		Start string `json:"start" validate:"required,timeofday"`
		End   string `json:"end" validate:"required,timeofday"`

		start, end grid.TimeOfDay
	}

	// Assignment is a persisted placement of a token on a week board.
	Assignment struct {
		ID         string    `json:"id"`
		BusinessID string    `json:"business_id"`
		WeekStart  time.Time `json:"week_start"` // Monday, 00:00 UTC
		Row        int       `json:"row"`
		Col        int       `json:"col"`
		Kind       grid.Kind `json:"kind"`
		TokenID    string    `json:"token_id"`
		AssignedBy string    `json:"assigned_by"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	// MeasuredBox is a cell box as measured by the client.
	MeasuredBox struct {
		Cell grid.CellID `json:"cell"`
		grid.Box
	}

	DropRequest struct {
		Kind    grid.Kind     `json:"kind" validate:"required,oneof=worker shift"`
		TokenID string        `json:"token_id" validate:"required"`
		X       float64       `json:"x"`
		Y       float64       `json:"y"`
		Boxes   []MeasuredBox `json:"boxes"` // defaults to the configured layout
	}

	// TapRequest clears one kind of a cell; the kind must always be given.
	TapRequest struct {
		Cell grid.CellID `json:"cell"`
		Kind grid.Kind   `json:"kind" validate:"required,oneof=worker shift"`
	}

	DropResponse struct {
		Placed    bool         `json:"placed"`
		Cell      *grid.CellID `json:"cell"`
		Displaced *string      `json:"displaced"` // id of the token pushed back to its pool
		Board     BoardView    `json:"board"`
	}

	BoardView struct {
		WeekStart         string             `json:"week_start"`
		Days              []string           `json:"days"`
		Headers           []string           `json:"headers"`
		Placeholder       string             `json:"placeholder"`
		Rows              [][]grid.CellView  `json:"rows"`
		UnassignedWorkers []grid.WorkerToken `json:"unassigned_workers"`
		UnassignedShifts  []grid.ShiftToken  `json:"unassigned_shifts"`
	}

	Repository interface {
		CreateTemplate(ctx context.Context, tmpl ShiftTemplate) (ShiftTemplate, error)
		// QueryTemplates lists the templates of a business ordered by start, end.
		QueryTemplates(ctx context.Context, businessID string) ([]ShiftTemplate, error)
		GetTemplate(ctx context.Context, businessID, id string) (ShiftTemplate, error)
		// DeleteTemplate also deletes the assignments of the template.
		DeleteTemplate(ctx context.Context, businessID, id string, exec ...core.DBExecutor) error
		QueryAssignments(ctx context.Context, businessID string, weekStart time.Time) ([]Assignment, error)
		// SaveAssignment replaces both the assignment of the same cell & kind
		// and the previous assignment of the same token on that week.
		SaveAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		DeleteAssignment(ctx context.Context, businessID string, weekStart time.Time, cell grid.CellID, kind grid.Kind, exec ...core.DBExecutor) error
	}
)

func (tmpl ShiftTemplate) Token() grid.ShiftToken {
	return grid.ShiftToken{ID: tmpl.ID, Start: tmpl.Start, End: tmpl.End}
}

func (nt *NewShiftTemplate) Validate(validate *validator.Validate) error {
	nt.Start = core.CleanString(nt.Start)
	nt.End = core.CleanString(nt.End)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	var err error
	if nt.start, err = grid.ParseTimeOfDay(nt.Start); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "start", Error: err.Error()})
	}
	if nt.end, err = grid.ParseTimeOfDay(nt.End); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "end", Error: err.Error()})
	}
	if nt.end <= nt.start {
		return core.NewValidationError(ErrInvalidTimeRange, core.FieldError{Field: "end", Error: ErrInvalidTimeRange.Error()})
	}
	return nil
}

func (dr *DropRequest) Validate(validate *validator.Validate) error {
	dr.TokenID = core.CleanString(dr.TokenID)
	return validate.Struct(dr)
}

func (dr DropRequest) boxes() map[grid.CellID]grid.Box {
	if len(dr.Boxes) == 0 {
		return nil
	}
	boxes := make(map[grid.CellID]grid.Box, len(dr.Boxes))
	for _, mb := range dr.Boxes {
		boxes[mb.Cell] = mb.Box
	}
	return boxes
}

func (tr *TapRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(tr)
}

// ParseWeek parses a "YYYY-MM-DD" date & returns the Monday of its week.
func ParseWeek(s string) (time.Time, error) {
	day, err := time.Parse(WeekLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidWeek
	}
	return core.StartOfWeek(day), nil
}
