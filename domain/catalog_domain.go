package domain

import "errors"

var (
	MessageSuccessGetTags        = "tags retrieved successfully"
	MessageSuccessGetIngredients = "ingredients retrieved successfully"

	MessageFailedGetTags        = "failed to retrieve tags"
	MessageFailedGetIngredients = "failed to retrieve ingredients"

	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
)

type (
	TagResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}

	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
)
