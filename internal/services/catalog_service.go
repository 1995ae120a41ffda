package services

import (
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CatalogService serves the tag and ingredient reference data
type CatalogService interface {
	ListTags() ([]models.Tag, error)
	GetTag(id uint) (models.Tag, error)
	CreateTag(requester Requester, tag *models.Tag) error
	ListIngredients(nameFilter string) ([]models.Ingredient, error)
	GetIngredient(id uint) (models.Ingredient, error)
	CreateIngredient(requester Requester, ingredient *models.Ingredient) error
}

type catalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

func (s *catalogService) ListTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Order("id").Find(&tags).Error; err != nil {
		return nil, translateError(err, "list tags")
	}
	return tags, nil
}

func (s *catalogService) GetTag(id uint) (models.Tag, error) {
	var tag models.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		return models.Tag{}, translateError(err, fmt.Sprintf("tag %d", id))
	}
	return tag, nil
}

func (s *catalogService) CreateTag(requester Requester, tag *models.Tag) error {
	if !requester.IsAdmin() {
		return ErrForbidden
	}
	tag.Name = strings.TrimSpace(tag.Name)
	tag.Slug = strings.TrimSpace(tag.Slug)
	tag.Color = strings.TrimSpace(tag.Color)

	if err := s.db.Create(tag).Error; err != nil {
		return translateError(err, "create tag")
	}
	log.WithFields(log.Fields{"tag_id": tag.ID, "slug": tag.Slug}).Info("Tag created")
	return nil
}

// ListIngredients returns ingredients ordered by id, optionally those whose
// name contains nameFilter regardless of case
func (s *catalogService) ListIngredients(nameFilter string) ([]models.Ingredient, error) {
	query := s.db.Order("id")
	if filter := strings.TrimSpace(nameFilter); filter != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, translateError(err, "list ingredients")
	}
	return ingredients, nil
}

func (s *catalogService) GetIngredient(id uint) (models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.First(&ingredient, id).Error; err != nil {
		return models.Ingredient{}, translateError(err, fmt.Sprintf("ingredient %d", id))
	}
	return ingredient, nil
}

func (s *catalogService) CreateIngredient(requester Requester, ingredient *models.Ingredient) error {
	if !requester.IsAdmin() {
		return ErrForbidden
	}
	ingredient.Name = strings.TrimSpace(ingredient.Name)
	ingredient.MeasurementUnit = strings.TrimSpace(ingredient.MeasurementUnit)
	if ingredient.Name == "" {
		return newValidationError("name", "This field is required.")
	}
	if ingredient.MeasurementUnit == "" {
		return newValidationError("measurement_unit", "This field is required.")
	}

	if err := s.db.Create(ingredient).Error; err != nil {
		return translateError(err, "create ingredient")
	}
	log.WithFields(log.Fields{"ingredient_id": ingredient.ID, "name": ingredient.Name}).Info("Ingredient created")
	return nil
}
