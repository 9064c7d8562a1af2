package utils

import (
	"os"
	"time"

	"makai_ordering/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateStaffJWT génère un token pour un employé (terminal staff, tests)
func GenerateStaffJWT(staff models.Staff) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}

	claims := jwt.MapClaims{
		"user_id":       staff.ID,
		"email":         staff.Email,
		"role":          staff.Role,
		"staff_id":      staff.ID,
		"restaurant_id": staff.RestaurantID,
		"exp":           time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
