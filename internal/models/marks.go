package models

import (
	"time"
)

// Favorite marks a recipe as preferred by a user
type Favorite struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint   `gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	Recipe    Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// CartEntry marks a recipe for shopping-list aggregation
type CartEntry struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint   `gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	Recipe    Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (CartEntry) TableName() string {
	return "cart_entries"
}

// Follow is a subscription from a user to an author
type Follow struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_follow_user_author"`
	AuthorID  uint `gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	Author    User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}
