package models

// Ingredient is immutable reference data
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;index;not null" json:"name"`
	MeasurementUnit string `gorm:"size:50;not null" json:"measurement_unit"`
}
