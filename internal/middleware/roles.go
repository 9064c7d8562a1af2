package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireStaff vérifie que l'acteur est staff, admin ou super_admin
func RequireStaff(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé au personnel"})
		c.Abort()
		return
	}
	switch role {
	case "staff", "admin", "super_admin":
		c.Next()
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé au personnel"})
		c.Abort()
	}
}

// RequireAdmin vérifie que l'acteur a le rôle "admin" ou "super_admin"
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || (role != "admin" && role != "super_admin") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}
