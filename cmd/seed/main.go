package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/store"
)

// UserData represents the structure of users in the JSON file
type UserData struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// JSONData represents the structure of the JSON files
type JSONData struct {
	Users []UserData `json:"users"`
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	path := os.Getenv("STORE_PATH")
	if path == "" {
		path = "data/store"
	}

	st, err := store.OpenLocal(store.LocalOptions{Path: path})
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	// Seed the store with the default fixture set
	log.Println("Seeding record store with initial data...")
	if err := st.Initialize(ctx); err != nil {
		log.Fatalf("Failed to seed record store: %v", err)
	}

	// Load and upsert extra users from JSON, if a fixture file is present
	if err := seedUsers(ctx, st); err != nil {
		log.Printf("Error seeding users: %v", err)
	}

	log.Println("Record store seeding completed successfully")
}

func seedUsers(ctx context.Context, st *store.Local) error {
	usersData, err := os.ReadFile("data/initial-users.json")
	if err != nil {
		if os.IsNotExist(err) {
			log.Println("No data/initial-users.json fixture, skipping extra users")
			return nil
		}
		return err
	}

	var jsonData JSONData
	if err := json.Unmarshal(usersData, &jsonData); err != nil {
		return err
	}

	existing, err := st.Users(ctx)
	if err != nil {
		return err
	}
	byEmail := make(map[string]bool, len(existing))
	for _, u := range existing {
		byEmail[u.Email] = true
	}

	for _, userData := range jsonData.Users {
		if byEmail[userData.Email] {
			log.Printf("User already exists: %s", userData.Email)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password for %s: %v", userData.Email, err)
			continue
		}

		var role models.UserRole
		switch userData.Role {
		case "admin":
			role = models.RoleAdmin
		case "employee":
			role = models.RoleEmployee
		case "citizen":
			role = models.RoleCitizen
		default:
			log.Printf("Unknown role %s for user %s, defaulting to citizen", userData.Role, userData.Email)
			role = models.RoleCitizen
		}

		user := models.User{
			ID:         uuid.NewString(),
			Name:       userData.Name,
			Email:      userData.Email,
			Password:   string(hashedPassword),
			Role:       role,
			Department: userData.Department,
		}

		if err := st.SaveUser(ctx, user); err != nil {
			log.Printf("Error creating user %s: %v", user.Email, err)
		} else {
			log.Printf("Created user: %s (%s)", user.Email, user.Role)
		}
	}

	return nil
}
