package services

import (
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// UserView is a user as seen by the requester
type UserView struct {
	models.User
	IsSubscribed bool
}

type UserService interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserView(requester Requester, id uint) (UserView, error)
	ListUsers(requester Requester, pagination Pagination) (Page[UserView], error)
	SetPassword(requester Requester, current, next string) error
	IsSubscribed(requester Requester, authorID uint) (bool, error)
}

type userService struct {
	db       *gorm.DB
	pageSize int
}

func NewUserService(db *gorm.DB, pageSize int) UserService {
	return &userService{db: db, pageSize: pageSize}
}

// CreateUser validates and stores a new user, hashing its plain text password
func (s *userService) CreateUser(user *models.User) error {
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	user.Username = strings.TrimSpace(user.Username)
	switch {
	case user.Email == "":
		return newValidationError("email", "This field is required.")
	case user.Username == "":
		return newValidationError("username", "This field is required.")
	case strings.EqualFold(user.Username, "me"):
		return newValidationError("username", "Username 'me' is reserved.")
	case len(user.Password) < minPasswordLength:
		return newValidationError("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}

	var existing int64
	err := s.db.Model(&models.User{}).
		Where("email = ? OR username = ?", user.Email, user.Username).
		Count(&existing).Error
	if err != nil {
		return translateError(err, "check user")
	}
	if existing > 0 {
		return fmt.Errorf("user %s: %w", user.Username, ErrConflict)
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Create(user).Error; err != nil {
		return translateError(err, "create user")
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return nil
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (s *userService) GetUserView(requester Requester, id uint) (UserView, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return UserView{}, err
	}
	subscribed, err := s.IsSubscribed(requester, user.ID)
	if err != nil {
		return UserView{}, err
	}
	return UserView{User: *user, IsSubscribed: subscribed}, nil
}

func (s *userService) ListUsers(requester Requester, pagination Pagination) (Page[UserView], error) {
	p := pagination.normalize(s.pageSize)

	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return Page[UserView]{}, translateError(err, "count users")
	}

	var users []models.User
	if err := s.db.Order("id").Offset(p.offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return Page[UserView]{}, translateError(err, "list users")
	}

	following := map[uint]bool{}
	if !requester.IsAnonymous() && len(users) > 0 {
		ids := make([]uint, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var followed []uint
		err := s.db.Model(&models.Follow{}).
			Where("user_id = ? AND author_id IN ?", requester.UserID, ids).
			Pluck("author_id", &followed).Error
		if err != nil {
			return Page[UserView]{}, translateError(err, "load subscriptions")
		}
		for _, id := range followed {
			following[id] = true
		}
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{User: u, IsSubscribed: following[u.ID]})
	}
	return Page[UserView]{Count: total, Page: p.Page, Limit: p.Limit, Results: views}, nil
}

// SetPassword replaces the requester's password after checking the current one
func (s *userService) SetPassword(requester Requester, current, next string) error {
	if requester.IsAnonymous() {
		return ErrUnauthenticated
	}
	user, err := s.GetUserByID(requester.UserID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return newValidationError("current_password", "Wrong password.")
	}
	if len(next) < minPasswordLength {
		return newValidationError("new_password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}

	user.Password = next
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Model(user).Update("password", user.Password).Error; err != nil {
		return translateError(err, "set password")
	}

	log.WithField("user_id", user.ID).Info("Password changed")
	return nil
}

func (s *userService) IsSubscribed(requester Requester, authorID uint) (bool, error) {
	if requester.IsAnonymous() {
		return false, nil
	}
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", requester.UserID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "check subscription")
	}
	return count > 0, nil
}
