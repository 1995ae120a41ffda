package services

import (
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GrantClientCredentials is the only grant type the token endpoint serves
const GrantClientCredentials = "client_credentials"

// ClientRegistration describes a new OAuth2 client
type ClientRegistration struct {
	Name   string
	Domain string
	Scopes string
}

type ClientService interface {
	// CreateClient registers a client owned by requester and returns it with the plain secret.
	// The plain secret is not stored and cannot be recovered later.
	CreateClient(requester Requester, reg ClientRegistration) (*models.OAuthClient, string, error)
	GetClientsByUserID(userID uint) ([]models.OAuthClient, error)
	GetClientByID(id string) (*models.OAuthClient, error)
	DeleteClient(clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(requester Requester, reg ClientRegistration) (*models.OAuthClient, string, error) {
	if requester.IsAnonymous() {
		return nil, "", ErrUnauthenticated
	}
	if strings.TrimSpace(reg.Name) == "" {
		return nil, "", newValidationError("name", "This field is required.")
	}

	secret := uuid.New().String()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	scopes := strings.TrimSpace(reg.Scopes)
	if scopes == "" {
		scopes = "read"
	}

	client := &models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hashed),
		Name:       strings.TrimSpace(reg.Name),
		Domain:     reg.Domain,
		UserID:     requester.UserID,
		Scopes:     scopes,
		GrantTypes: GrantClientCredentials,
	}
	if err := s.db.Create(client).Error; err != nil {
		return nil, "", translateError(err, "create client")
	}

	log.WithFields(log.Fields{
		"client_id": client.ID,
		"user_id":   client.UserID,
	}).Info("OAuth2 client created")
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, translateError(err, "list clients")
	}
	return clients, nil
}

func (s *clientService) GetClientByID(id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		return nil, translateError(err, "client "+id)
	}
	return &client, nil
}

func (s *clientService) DeleteClient(clientID string, userID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return translateError(result.Error, "delete client")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	return nil
}
