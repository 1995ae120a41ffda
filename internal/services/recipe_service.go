package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxRecipeNameLength = 200
	maxRecipeTextLength = 500
)

// RecipeCriteria narrows a recipe listing. Every non-empty criterion must hold.
type RecipeCriteria struct {
	AuthorID      *uint
	TagSlugs      []string
	FavoritedOnly bool
	InCartOnly    bool
	Pagination
}

// RecipeView is a recipe annotated relative to the requester
type RecipeView struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// IngredientAmount is one ingredient line of a recipe write
type IngredientAmount struct {
	ID     uint
	Amount int
}

// RecipeInput carries the writable fields of a recipe
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientAmount
	Tags        []uint
}

// RecipeService provides the recipe listing, writes and per-user marks
type RecipeService interface {
	// ListRecipes returns the recipes matching criteria, newest first, annotated for requester
	ListRecipes(requester Requester, criteria RecipeCriteria) (Page[RecipeView], error)
	// GetRecipe retrieves one annotated recipe
	GetRecipe(requester Requester, id uint) (RecipeView, error)
	// CreateRecipe validates input and stores a recipe authored by requester
	CreateRecipe(requester Requester, input RecipeInput) (RecipeView, error)
	// UpdateRecipe replaces a recipe's content; author or admin only
	UpdateRecipe(requester Requester, id uint, input RecipeInput) (RecipeView, error)
	// DeleteRecipe removes a recipe and every record pointing at it; author or admin only
	DeleteRecipe(requester Requester, id uint) error
	// AddFavorite marks a recipe as favorite for requester
	AddFavorite(requester Requester, recipeID uint) (models.Recipe, error)
	// RemoveFavorite drops the favorite mark
	RemoveFavorite(requester Requester, recipeID uint) error
	// AddToCart puts a recipe into requester's shopping cart
	AddToCart(requester Requester, recipeID uint) (models.Recipe, error)
	// RemoveFromCart takes a recipe out of the shopping cart
	RemoveFromCart(requester Requester, recipeID uint) error
}

type recipeService struct {
	db       *gorm.DB
	pageSize int
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB, pageSize int) RecipeService {
	return &recipeService{db: db, pageSize: pageSize}
}

// ParseFlag interprets a boolean-ish query flag. An absent flag and the
// values "false" and "0" are off, anything else is on.
func ParseFlag(raw string, present bool) bool {
	if !present {
		return false
	}
	return raw != "false" && raw != "0"
}

// AnnotateRecipes pairs every recipe with the requester's favorite, cart and
// subscription state. Anonymous requesters get false everywhere.
func AnnotateRecipes(recipes []models.Recipe, requester Requester, favorites, cart, following map[uint]bool) []RecipeView {
	views := make([]RecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		view := RecipeView{Recipe: recipe}
		if !requester.IsAnonymous() {
			view.IsFavorited = favorites[recipe.ID]
			view.IsInShoppingCart = cart[recipe.ID]
			view.AuthorSubscribed = following[recipe.AuthorID]
		}
		views = append(views, view)
	}
	return views
}

func (s *recipeService) ListRecipes(requester Requester, criteria RecipeCriteria) (Page[RecipeView], error) {
	p := criteria.Pagination.normalize(s.pageSize)
	query := s.db.Model(&models.Recipe{})

	if criteria.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *criteria.AuthorID)
	}

	if slugs := uniqueStrings(criteria.TagSlugs); len(slugs) > 0 {
		// IN over a subquery keeps each recipe once however many tags match
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", slugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if !requester.IsAnonymous() {
		if criteria.FavoritedOnly {
			query = query.Where("recipes.id IN (?)",
				s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", requester.UserID))
		}
		if criteria.InCartOnly {
			query = query.Where("recipes.id IN (?)",
				s.db.Model(&models.CartEntry{}).Select("recipe_id").Where("user_id = ?", requester.UserID))
		}
	}

	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[RecipeView]{}, translateError(err, "count recipes")
	}

	var recipes []models.Recipe
	err := withRecipeParts(base).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&recipes).Error
	if err != nil {
		return Page[RecipeView]{}, translateError(err, "list recipes")
	}

	views, err := s.annotate(requester, recipes)
	if err != nil {
		return Page[RecipeView]{}, err
	}

	return Page[RecipeView]{Count: total, Page: p.Page, Limit: p.Limit, Results: views}, nil
}

func (s *recipeService) GetRecipe(requester Requester, id uint) (RecipeView, error) {
	recipe, err := s.loadRecipe(s.db, id)
	if err != nil {
		return RecipeView{}, err
	}
	if err := Authorize(ActionRetrieve, requester, &recipe); err != nil {
		return RecipeView{}, err
	}
	views, err := s.annotate(requester, []models.Recipe{recipe})
	if err != nil {
		return RecipeView{}, err
	}
	return views[0], nil
}

func (s *recipeService) CreateRecipe(requester Requester, input RecipeInput) (RecipeView, error) {
	if err := Authorize(ActionCreate, requester, nil); err != nil {
		return RecipeView{}, err
	}
	tags, err := s.validateInput(input, 0, true)
	if err != nil {
		return RecipeView{}, err
	}

	recipe := models.Recipe{
		AuthorID:    requester.UserID,
		Name:        strings.TrimSpace(input.Name),
		Text:        input.Text,
		Image:       input.Image,
		CookingTime: input.CookingTime,
		Tags:        tags,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Ingredients", "Tags.*").Create(&recipe).Error; err != nil {
			return err
		}
		return createIngredientRows(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		return RecipeView{}, translateError(err, "create recipe")
	}

	log.WithFields(log.Fields{
		"recipe_id": recipe.ID,
		"author_id": recipe.AuthorID,
	}).Info("Recipe created")

	return s.GetRecipe(requester, recipe.ID)
}

func (s *recipeService) UpdateRecipe(requester Requester, id uint, input RecipeInput) (RecipeView, error) {
	recipe, err := s.findRecipe(s.db, id)
	if err != nil {
		return RecipeView{}, err
	}
	if err := Authorize(ActionUpdate, requester, &recipe); err != nil {
		return RecipeView{}, err
	}
	tags, err := s.validateInput(input, recipe.ID, false)
	if err != nil {
		return RecipeView{}, err
	}

	updates := map[string]interface{}{
		"name":         strings.TrimSpace(input.Name),
		"text":         input.Text,
		"cooking_time": input.CookingTime,
	}
	if input.Image != "" {
		updates["image"] = input.Image
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := createIngredientRows(tx, recipe.ID, input.Ingredients); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		return RecipeView{}, translateError(err, "update recipe")
	}

	log.WithFields(log.Fields{
		"recipe_id": recipe.ID,
		"user_id":   requester.UserID,
	}).Info("Recipe updated")

	return s.GetRecipe(requester, recipe.ID)
}

func (s *recipeService) DeleteRecipe(requester Requester, id uint) error {
	recipe, err := s.findRecipe(s.db, id)
	if err != nil {
		return err
	}
	if err := Authorize(ActionDelete, requester, &recipe); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.Favorite{}, &models.CartEntry{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return translateError(err, "delete recipe")
	}

	log.WithFields(log.Fields{
		"recipe_id": recipe.ID,
		"user_id":   requester.UserID,
	}).Info("Recipe deleted")
	return nil
}

func (s *recipeService) AddFavorite(requester Requester, recipeID uint) (models.Recipe, error) {
	return s.addMark(requester, recipeID, &models.Favorite{}, &models.Favorite{UserID: requester.UserID, RecipeID: recipeID})
}

func (s *recipeService) RemoveFavorite(requester Requester, recipeID uint) error {
	return s.removeMark(requester, recipeID, &models.Favorite{})
}

func (s *recipeService) AddToCart(requester Requester, recipeID uint) (models.Recipe, error) {
	return s.addMark(requester, recipeID, &models.CartEntry{}, &models.CartEntry{UserID: requester.UserID, RecipeID: recipeID})
}

func (s *recipeService) RemoveFromCart(requester Requester, recipeID uint) error {
	return s.removeMark(requester, recipeID, &models.CartEntry{})
}

// addMark inserts a (user, recipe) row into the table of model
func (s *recipeService) addMark(requester Requester, recipeID uint, model interface{}, row interface{}) (models.Recipe, error) {
	if requester.IsAnonymous() {
		return models.Recipe{}, ErrUnauthenticated
	}
	recipe, err := s.findRecipe(s.db, recipeID)
	if err != nil {
		return models.Recipe{}, err
	}

	var count int64
	err = s.db.Model(model).
		Where("user_id = ? AND recipe_id = ?", requester.UserID, recipeID).
		Count(&count).Error
	if err != nil {
		return models.Recipe{}, translateError(err, "check mark")
	}
	if count > 0 {
		return models.Recipe{}, fmt.Errorf("recipe %d already marked: %w", recipeID, ErrConflict)
	}

	// The unique index still rejects a concurrent duplicate
	if err := s.db.Create(row).Error; err != nil {
		return models.Recipe{}, translateError(err, "add mark")
	}
	return recipe, nil
}

// removeMark deletes a (user, recipe) row from the table of model
func (s *recipeService) removeMark(requester Requester, recipeID uint, model interface{}) error {
	if requester.IsAnonymous() {
		return ErrUnauthenticated
	}
	if _, err := s.findRecipe(s.db, recipeID); err != nil {
		return err
	}

	result := s.db.Where("user_id = ? AND recipe_id = ?", requester.UserID, recipeID).Delete(model)
	if result.Error != nil {
		return translateError(result.Error, "remove mark")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recipe %d is not marked: %w", recipeID, ErrRelationNotFound)
	}
	return nil
}

// annotate fetches the requester's marks for recipes with one IN query per kind
func (s *recipeService) annotate(requester Requester, recipes []models.Recipe) ([]RecipeView, error) {
	if requester.IsAnonymous() || len(recipes) == 0 {
		return AnnotateRecipes(recipes, requester, nil, nil, nil), nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorites, err := s.idSet(&models.Favorite{}, "recipe_id", requester.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	cart, err := s.idSet(&models.CartEntry{}, "recipe_id", requester.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	following, err := s.idSet(&models.Follow{}, "author_id", requester.UserID, authorIDs)
	if err != nil {
		return nil, err
	}

	return AnnotateRecipes(recipes, requester, favorites, cart, following), nil
}

func (s *recipeService) idSet(model interface{}, column string, userID uint, ids []uint) (map[uint]bool, error) {
	var found []uint
	err := s.db.Model(model).
		Where("user_id = ?", userID).
		Where(column+" IN ?", ids).
		Pluck(column, &found).Error
	if err != nil {
		return nil, translateError(err, "load "+column+" marks")
	}
	set := make(map[uint]bool, len(found))
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}

// validateInput checks a recipe write and returns the referenced tags.
// excludeID is the recipe being updated, 0 on create.
func (s *recipeService) validateInput(input RecipeInput, excludeID uint, creating bool) ([]models.Tag, error) {
	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return nil, newValidationError("name", "This field is required.")
	case utf8.RuneCountInString(name) > maxRecipeNameLength:
		return nil, newValidationError("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxRecipeNameLength))
	case strings.TrimSpace(input.Text) == "":
		return nil, newValidationError("text", "This field is required.")
	case utf8.RuneCountInString(input.Text) > maxRecipeTextLength:
		return nil, newValidationError("text", fmt.Sprintf("Ensure this field has no more than %d characters.", maxRecipeTextLength))
	case creating && input.Image == "":
		return nil, newValidationError("image", "This field is required.")
	case input.CookingTime < 1:
		return nil, newValidationError("cooking_time", "Cooking time can't be less than 1 min.")
	case len(input.Ingredients) == 0:
		return nil, newValidationError("ingredients", "At least one ingredient is required.")
	case len(input.Tags) == 0:
		return nil, newValidationError("tags", "At least one tag is required.")
	}

	seen := make(map[uint]bool, len(input.Ingredients))
	ingredientIDs := make([]uint, 0, len(input.Ingredients))
	for _, line := range input.Ingredients {
		if line.Amount < 1 {
			return nil, newValidationError("ingredients", "Amount can't be less than 1.")
		}
		if seen[line.ID] {
			return nil, newValidationError("ingredients", fmt.Sprintf("Ingredient %d is listed more than once.", line.ID))
		}
		seen[line.ID] = true
		ingredientIDs = append(ingredientIDs, line.ID)
	}

	var known int64
	if err := s.db.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&known).Error; err != nil {
		return nil, translateError(err, "check ingredients")
	}
	if int(known) != len(ingredientIDs) {
		return nil, newValidationError("ingredients", "Unknown ingredient id.")
	}

	tagIDs := uniqueIDs(input.Tags)
	var tags []models.Tag
	if err := s.db.Where("id IN ?", tagIDs).Order("id").Find(&tags).Error; err != nil {
		return nil, translateError(err, "check tags")
	}
	if len(tags) != len(tagIDs) {
		return nil, newValidationError("tags", "Unknown tag id.")
	}

	// Names are unique across all recipes, not per author
	duplicate := s.db.Model(&models.Recipe{}).Where("name = ?", name)
	if excludeID != 0 {
		duplicate = duplicate.Where("id <> ?", excludeID)
	}
	var taken int64
	if err := duplicate.Count(&taken).Error; err != nil {
		return nil, translateError(err, "check recipe name")
	}
	if taken > 0 {
		return nil, newValidationError("name", "Recipe with such name already exists.")
	}

	return tags, nil
}

func (s *recipeService) findRecipe(db *gorm.DB, id uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		return models.Recipe{}, translateError(err, fmt.Sprintf("recipe %d", id))
	}
	return recipe, nil
}

func (s *recipeService) loadRecipe(db *gorm.DB, id uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeParts(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Recipe{}, fmt.Errorf("recipe %d: %w", id, ErrNotFound)
		}
		return models.Recipe{}, translateError(err, "load recipe")
	}
	sortRecipeParts(&recipe)
	return recipe, nil
}

// withRecipeParts preloads everything the read representation needs
func withRecipeParts(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient")
}

// sortRecipeParts puts ingredient lines in insertion order and tags by id
func sortRecipeParts(recipe *models.Recipe) {
	sort.SliceStable(recipe.Ingredients, func(i, j int) bool {
		return recipe.Ingredients[i].ID < recipe.Ingredients[j].ID
	})
	sort.SliceStable(recipe.Tags, func(i, j int) bool {
		return recipe.Tags[i].ID < recipe.Tags[j].ID
	})
}

func createIngredientRows(tx *gorm.DB, recipeID uint, lines []IngredientAmount) error {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&rows).Error
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func uniqueIDs(values []uint) []uint {
	seen := make(map[uint]bool, len(values))
	out := make([]uint, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
