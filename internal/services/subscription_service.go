package services

import (
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthorFeed summarises one followed author for the subscriptions page
type AuthorFeed struct {
	Author       models.User
	IsSubscribed bool
	Recipes      []models.Recipe
	RecipesCount int64
}

// SubscriptionService manages follows and assembles the subscription feed
type SubscriptionService interface {
	Subscribe(requester Requester, authorID uint, recipesLimit *int) (AuthorFeed, error)
	Unsubscribe(requester Requester, authorID uint) error
	ListSubscriptions(requester Requester, recipesLimit *int, pagination Pagination) (Page[AuthorFeed], error)
}

type subscriptionService struct {
	db       *gorm.DB
	pageSize int
}

// NewSubscriptionService creates a new instance of SubscriptionService
func NewSubscriptionService(db *gorm.DB, pageSize int) SubscriptionService {
	return &subscriptionService{db: db, pageSize: pageSize}
}

// ParseRecipesLimit reads the recipes_limit query value. Only a plain run of
// digits caps the feed; anything else, including an empty value, means no cap.
func ParseRecipesLimit(raw string) *int {
	if raw == "" {
		return nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func (s *subscriptionService) Subscribe(requester Requester, authorID uint, recipesLimit *int) (AuthorFeed, error) {
	if requester.IsAnonymous() {
		return AuthorFeed{}, ErrUnauthenticated
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		return AuthorFeed{}, translateError(err, fmt.Sprintf("user %d", authorID))
	}
	if author.ID == requester.UserID {
		return AuthorFeed{}, newValidationError("author", "You can't subscribe to yourself.")
	}

	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", requester.UserID, authorID).
		Count(&count).Error
	if err != nil {
		return AuthorFeed{}, translateError(err, "check subscription")
	}
	if count > 0 {
		return AuthorFeed{}, fmt.Errorf("subscription to user %d: %w", authorID, ErrConflict)
	}

	if err := s.db.Create(&models.Follow{UserID: requester.UserID, AuthorID: authorID}).Error; err != nil {
		return AuthorFeed{}, translateError(err, "subscribe")
	}

	log.WithFields(log.Fields{
		"user_id":   requester.UserID,
		"author_id": authorID,
	}).Info("Subscribed to author")

	return s.feedEntry(author, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(requester Requester, authorID uint) error {
	if requester.IsAnonymous() {
		return ErrUnauthenticated
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		return translateError(err, fmt.Sprintf("user %d", authorID))
	}

	result := s.db.Where("user_id = ? AND author_id = ?", requester.UserID, authorID).Delete(&models.Follow{})
	if result.Error != nil {
		return translateError(result.Error, "unsubscribe")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription to user %d: %w", authorID, ErrRelationNotFound)
	}

	log.WithFields(log.Fields{
		"user_id":   requester.UserID,
		"author_id": authorID,
	}).Info("Unsubscribed from author")
	return nil
}

func (s *subscriptionService) ListSubscriptions(requester Requester, recipesLimit *int, pagination Pagination) (Page[AuthorFeed], error) {
	if requester.IsAnonymous() {
		return Page[AuthorFeed]{}, ErrUnauthenticated
	}
	p := pagination.normalize(s.pageSize)

	base := s.db.Model(&models.Follow{}).Where("user_id = ?", requester.UserID).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[AuthorFeed]{}, translateError(err, "count subscriptions")
	}

	var follows []models.Follow
	err := base.Preload("Author").Order("id").Offset(p.offset()).Limit(p.Limit).Find(&follows).Error
	if err != nil {
		return Page[AuthorFeed]{}, translateError(err, "list subscriptions")
	}

	feed := make([]AuthorFeed, 0, len(follows))
	for _, follow := range follows {
		entry, err := s.feedEntry(follow.Author, recipesLimit)
		if err != nil {
			return Page[AuthorFeed]{}, err
		}
		feed = append(feed, entry)
	}

	return Page[AuthorFeed]{Count: total, Page: p.Page, Limit: p.Limit, Results: feed}, nil
}

// feedEntry loads the author's recipes, newest first, up to limit when set
func (s *subscriptionService) feedEntry(author models.User, limit *int) (AuthorFeed, error) {
	entry := AuthorFeed{Author: author, IsSubscribed: true, Recipes: []models.Recipe{}}

	base := s.db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Session(&gorm.Session{})
	if err := base.Count(&entry.RecipesCount).Error; err != nil {
		return AuthorFeed{}, translateError(err, "count author recipes")
	}

	if limit != nil && *limit == 0 {
		return entry, nil
	}
	query := base.Order("created_at DESC").Order("id DESC")
	if limit != nil {
		query = query.Limit(*limit)
	}
	if err := query.Find(&entry.Recipes).Error; err != nil {
		return AuthorFeed{}, translateError(err, "list author recipes")
	}
	return entry, nil
}
