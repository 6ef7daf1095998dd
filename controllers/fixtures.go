package controllers

import (
	"database/sql/driver"
	"time"

	"github.com/DevotionLoop/models"
	"golang.org/x/crypto/bcrypt"
)

// Test fixture data for use in tests

var fixtureTime = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func MockUser() models.AuthUser {
	return models.AuthUser{
		ID:    "user-1",
		Name:  "Test User",
		Email: "test@example.com",
		Role:  models.RoleUser,
	}
}

func MockAdminUser() models.AuthUser {
	return models.AuthUser{
		ID:    "admin-1",
		Name:  "Admin User",
		Email: "admin@example.com",
		Role:  models.RoleAdmin,
	}
}

// MockPasswordHash hashes password with the minimum cost to keep tests fast.
func MockPasswordHash(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

var userRowColumns = []string{"id", "name", "email", "role", "email_verified", "created_at", "updated_at"}

func userRow(u models.AuthUser) []driver.Value {
	return []driver.Value{u.ID, u.Name, u.Email, string(u.Role), false, fixtureTime, fixtureTime}
}
