package staff

import (
	"log"
	"net/http"

	"makai_ordering/internal/database"
	"makai_ordering/internal/models"
	"makai_ordering/internal/utils"

	"github.com/gin-gonic/gin"
)

// Login authentifie un employé par e-mail / mot de passe et retourne un JWT
// pour le terminal staff
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	session, err := database.GetStaffSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base staff indisponible"})
		return
	}

	var (
		staffID, name, role, restaurantID, passwordHash string
	)
	err = session.Query(`SELECT staff_id, name, role, restaurant_id, password_hash FROM staff_by_email WHERE email = ?`,
		req.Email).Scan(&staffID, &name, &role, &restaurantID, &passwordHash)
	if err != nil {
		log.Printf("⚠️ Login staff inconnu: %s", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	member := models.Staff{
		ID:           staffID,
		Name:         name,
		Email:        req.Email,
		Role:         role,
		RestaurantID: restaurantID,
	}

	token, err := utils.GenerateStaffJWT(member)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Génération du token impossible"})
		return
	}

	log.Printf("✅ Login staff: %s (%s)", member.Email, member.Role)
	c.JSON(http.StatusOK, gin.H{"token": token, "staff": member})
}
