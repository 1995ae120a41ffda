package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Parse command line flags
	role := flag.String("role", models.RoleAdmin, "User role (admin or user)")
	flag.Parse()

	if *role != models.RoleAdmin && *role != models.RoleUser {
		log.Fatalf("Unknown role %q", *role)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Determine client credentials based on role
	var clientID, clientSecret string
	if *role == models.RoleUser {
		clientID = "user-client"
		clientSecret = "user-secret-123"
	} else {
		clientID = "dev-client"
		clientSecret = "dev-secret-123"
	}

	// Check if client already exists
	var existing models.OAuthClient
	if err := db.Where("id = ?", clientID).First(&existing).Error; err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", *role)
		fmt.Printf("Client ID: %s\n", clientID)
		fmt.Printf("Client Secret: %s\n", clientSecret)
		return
	}

	// Get or create user with specified role
	userID, err := getUserIDForRole(db, conf.PageSize, *role)
	if err != nil {
		log.Fatalf("Failed to get user for role %s: %v", *role, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash secret:", err)
	}

	client := models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s Client", *role),
		Domain:     "http://localhost",
		UserID:     userID,
		Scopes:     "read write",
		GrantTypes: services.GrantClientCredentials,
	}
	if err := db.Create(&client).Error; err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Printf("✓ Development OAuth client created for role '%s'!\n", *role)
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Printf("User ID: %d\n", userID)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://%s:%d/api/oauth/token \\\n", conf.Host, conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}

// getUserIDForRole gets or creates a user with the specified role
func getUserIDForRole(db *gorm.DB, pageSize int, role string) (uint, error) {
	users := services.NewUserService(db, pageSize)
	email := fmt.Sprintf("%s@foodgram.local", role)

	// Try to find existing user
	user, err := users.GetUserByEmail(email)
	if err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return user.ID, nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return 0, err
	}

	user = &models.User{
		Email:     email,
		Username:  "dev-" + role,
		FirstName: "Development",
		LastName:  role,
		Password:  "dev-password-" + role,
		Role:      role,
	}
	if err := users.CreateUser(user); err != nil {
		return 0, err
	}

	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return user.ID, nil
}
