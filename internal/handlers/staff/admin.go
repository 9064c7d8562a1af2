package staff

import (
	"log"
	"net/http"

	"makai_ordering/internal/cache"
	"makai_ordering/internal/database"
	"makai_ordering/internal/models"
	"makai_ordering/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateStaff enregistre un nouvel employé (admin uniquement)
func CreateStaff(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Role         string `json:"role"`
		RestaurantID string `json:"restaurant_id" binding:"required"`
		Password     string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données employé invalides"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}

	session, err := database.GetStaffSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base staff indisponible"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Hash du mot de passe impossible"})
		return
	}

	staffID := uuid.NewString()

	if err := session.Query(`INSERT INTO staff (staff_id, name, email, role, restaurant_id, password_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		staffID, req.Name, req.Email, req.Role, req.RestaurantID, hash).Exec(); err != nil {
		log.Printf("❌ Insertion staff: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Création de l'employé impossible"})
		return
	}
	if err := session.Query(`INSERT INTO staff_by_email (email, staff_id, name, role, restaurant_id, password_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		req.Email, staffID, req.Name, req.Role, req.RestaurantID, hash).Exec(); err != nil {
		log.Printf("⚠️ Désync staff_by_email pour %s: %v", staffID, err)
	}

	cache.InvalidateStaffCache(staffID)

	log.Printf("✅ Employé créé: %s (%s)", req.Email, req.Role)
	c.JSON(http.StatusCreated, models.Staff{
		ID:           staffID,
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		RestaurantID: req.RestaurantID,
	})
}

// CreateVIPCode enregistre un code VIP hashé pour un restaurant (admin uniquement)
func CreateVIPCode(c *gin.Context) {
	var req struct {
		RestaurantID string `json:"restaurant_id" binding:"required"`
		Code         string `json:"code" binding:"required,min=4"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code VIP invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base commandes indisponible"})
		return
	}

	hash, err := utils.HashVIPCode(req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Hash du code impossible"})
		return
	}

	if err := session.Query(`INSERT INTO vip_codes (restaurant_id, code_hash) VALUES (?, ?)`,
		req.RestaurantID, hash).Exec(); err != nil {
		log.Printf("❌ Insertion code VIP: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Création du code impossible"})
		return
	}

	// Le cache des hashes est invalidé pour que le code soit utilisable immédiatement
	cache.InvalidateVIPCache(req.RestaurantID)

	log.Printf("✅ Code VIP créé pour le restaurant %s", req.RestaurantID)
	c.JSON(http.StatusCreated, gin.H{"restaurant_id": req.RestaurantID})
}
