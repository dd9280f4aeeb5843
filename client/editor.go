package client

import (
	"context"

	"github.com/Mil05h/calories-ai/apperr"
	"github.com/Mil05h/calories-ai/models"
	"github.com/Mil05h/calories-ai/utils"
)

// Editor drives one analyze-edit-save round trip. It holds the returned
// nutrition result in memory until the user saves or cancels, and keeps
// calories derived from the macros whenever they are edited: calories is
// never directly settable in the edit view.
type Editor struct {
	client *Client

	description string
	result      *models.NutritionResult
	busy        bool
}

func NewEditor(c *Client) *Editor {
	return &Editor{client: c}
}

// Analyze submits the request and holds its result for editing. At most
// one request is in flight per editor; re-submission while one is
// outstanding is rejected.
func (e *Editor) Analyze(ctx context.Context, req models.AnalysisRequest) error {
	if e.busy {
		return apperr.New(apperr.InvalidArgument, "analysis already in progress")
	}
	e.busy = true
	defer func() { e.busy = false }()

	result, err := e.client.Analyze(ctx, req)
	if err != nil {
		return err
	}
	e.description = req.Description
	e.result = result
	return nil
}

// Result returns the current (possibly edited) values, and whether an
// analysis result is held at all.
func (e *Editor) Result() (models.NutritionResult, bool) {
	if e.result == nil {
		return models.NutritionResult{}, false
	}
	return *e.result, true
}

func (e *Editor) SetProtein(grams float64) error {
	return e.setMacro(grams, func(r *models.NutritionResult) { r.Protein = grams })
}

func (e *Editor) SetCarbs(grams float64) error {
	return e.setMacro(grams, func(r *models.NutritionResult) { r.Carbs = grams })
}

func (e *Editor) SetFat(grams float64) error {
	return e.setMacro(grams, func(r *models.NutritionResult) { r.Fat = grams })
}

func (e *Editor) setMacro(grams float64, apply func(*models.NutritionResult)) error {
	if e.result == nil {
		return apperr.New(apperr.InvalidArgument, "no analysis result to edit")
	}
	if grams < 0 {
		return apperr.New(apperr.InvalidArgument, "value must be non-negative")
	}
	apply(e.result)
	e.result.Calories = utils.CaloriesFromMacros(e.result.Protein, e.result.Carbs, e.result.Fat)
	return nil
}

// Save persists the current values as a meal record and clears the held
// state. On failure the state stays intact so the user can retry
// manually.
func (e *Editor) Save(ctx context.Context) (*models.MealRecord, error) {
	if e.result == nil {
		return nil, apperr.New(apperr.InvalidArgument, "no analysis result to save")
	}

	record, err := e.client.SaveMeal(ctx, e.description, *e.result)
	if err != nil {
		return nil, err
	}

	e.Cancel()
	return record, nil
}

// Cancel discards the held result without persisting anything.
func (e *Editor) Cancel() {
	e.description = ""
	e.result = nil
}
