package models

import (
	"time"
)

// Recipe is an author-owned record combining ingredients, tags and preparation metadata
type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	AuthorID    uint               `gorm:"index;not null" json:"-"`
	Author      User               `gorm:"foreignKey:AuthorID" json:"-"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Text        string             `gorm:"size:500;not null" json:"text"`
	Image       string             `gorm:"type:text;not null" json:"image"`
	CookingTime int                `gorm:"not null" json:"cooking_time"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time          `gorm:"index" json:"-"`
	UpdatedAt   time.Time          `json:"-"`
}

// RecipeIngredient links an ingredient to a recipe with the amount used
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"index;not null"`
	IngredientID uint       `gorm:"index;not null"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID"`
	Amount       int        `gorm:"not null"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
