package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CatalogController serves tags and ingredients
type CatalogController interface {
	ListTags(c *gin.Context)
	GetTag(c *gin.Context)
	CreateTag(c *gin.Context)
	ListIngredients(c *gin.Context)
	GetIngredient(c *gin.Context)
	CreateIngredient(c *gin.Context)
}

// TagRequest is the body of a tag creation
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"required,hexcolor"`
	Slug  string `json:"slug" binding:"required,slug,max=200"`
}

// IngredientRequest is the body of an ingredient creation
type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=50"`
}

type catalogController struct {
	service services.CatalogService
}

// NewCatalogController creates a new instance of CatalogController
func NewCatalogController(service services.CatalogService) *catalogController {
	return &catalogController{service: service}
}

// ListTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /api/tags [get]
func (c *catalogController) ListTags(ctx *gin.Context) {
	tags, err := c.service.ListTags()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tags)
}

// GetTag godoc
// @Summary Get tag by ID
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} models.APIError
// @Router /api/tags/{id} [get]
func (c *catalogController) GetTag(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	tag, err := c.service.GetTag(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tag)
}

// CreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param tag body TagRequest true "Tag"
// @Success 201 {object} models.Tag
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/tags [post]
func (c *catalogController) CreateTag(ctx *gin.Context) {
	var req TagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	tag := &models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := c.service.CreateTag(requesterFrom(ctx), tag); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, tag)
}

// ListIngredients godoc
// @Summary List ingredients
// @Tags ingredients
// @Produce json
// @Param name query string false "Case-insensitive name fragment"
// @Success 200 {array} models.Ingredient
// @Router /api/ingredients [get]
func (c *catalogController) ListIngredients(ctx *gin.Context) {
	ingredients, err := c.service.ListIngredients(ctx.Query("name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.APIError
// @Router /api/ingredients/{id} [get]
func (c *catalogController) GetIngredient(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	ingredient, err := c.service.GetIngredient(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ingredient)
}

// CreateIngredient godoc
// @Summary Create an ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Param ingredient body IngredientRequest true "Ingredient"
// @Success 201 {object} models.Ingredient
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/ingredients [post]
func (c *catalogController) CreateIngredient(ctx *gin.Context) {
	var req IngredientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	ingredient := &models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := c.service.CreateIngredient(requesterFrom(ctx), ingredient); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, ingredient)
}
