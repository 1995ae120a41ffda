package database

import (
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

var defaultIngredients = []models.Ingredient{
	{Name: "flour", MeasurementUnit: "g"},
	{Name: "sugar", MeasurementUnit: "g"},
	{Name: "salt", MeasurementUnit: "g"},
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "egg", MeasurementUnit: "pcs"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "water", MeasurementUnit: "ml"},
	{Name: "olive oil", MeasurementUnit: "tbsp"},
	{Name: "onion", MeasurementUnit: "pcs"},
	{Name: "garlic", MeasurementUnit: "clove"},
	{Name: "tomato", MeasurementUnit: "pcs"},
	{Name: "rice", MeasurementUnit: "g"},
}

// SeedReferenceData inserts the default tags and ingredients into empty tables.
// Tables that already hold rows are left untouched.
func SeedReferenceData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tag{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			tags := append([]models.Tag(nil), defaultTags...)
			if err := tx.Create(&tags).Error; err != nil {
				return err
			}
			log.WithField("count", len(tags)).Info("Seeded tags")
		} else {
			log.WithField("count", count).Debug("Tags already seeded")
		}

		count = 0
		if err := tx.Model(&models.Ingredient{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			ingredients := append([]models.Ingredient(nil), defaultIngredients...)
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"count": len(ingredients)}).Info("Seeded ingredients")
		} else {
			log.WithField("count", count).Debug("Ingredients already seeded")
		}
		return nil
	})
}
