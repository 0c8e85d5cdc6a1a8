package entities

import (
	"github.com/google/uuid"
)

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `gorm:"uniqueIndex" json:"name"`
	Slug string    `gorm:"uniqueIndex" json:"slug"`

	Recipes []*Recipe `gorm:"many2many:recipe_tags" json:"-"`
}

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"uniqueIndex:idx_ingredient_identity" json:"name"`
	MeasurementUnit string    `gorm:"uniqueIndex:idx_ingredient_identity" json:"measurement_unit"`
}
