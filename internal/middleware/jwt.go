package middleware

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}
	return []byte(secret)
}

// parseToken valide un token HS256 et retourne ses claims
func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims invalides")
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(exp) {
			return nil, fmt.Errorf("token expiré")
		}
	}

	return claims, nil
}

// applyClaims pose l'identité de l'acteur dans le context Gin
func applyClaims(c *gin.Context, claims jwt.MapClaims) {
	if userID, ok := claims["user_id"].(string); ok {
		c.Set("user_id", userID)
	}
	c.Set("email", claims["email"])

	role, _ := claims["role"].(string)
	if role == "" {
		role = "customer"
	}
	c.Set("role", role)

	// staff_id et restaurant_id pilotent l'attribution des commandes staff
	if staffID, ok := claims["staff_id"].(string); ok {
		c.Set("staff_id", staffID)
	}
	if restaurantID, ok := claims["restaurant_id"].(string); ok {
		c.Set("restaurant_id", restaurantID)
	}
}

// AuthRequired exige un token Bearer valide
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Printf("❌ Format Authorization invalide: %v parties", len(parts))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
			c.Abort()
			return
		}

		claims, err := parseToken(parts[1])
		if err != nil {
			log.Printf("❌ Erreur parsing JWT: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			c.Abort()
			return
		}

		applyClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth pose l'identité si un token est présent, sans jamais bloquer.
// Les commandes du storefront sont anonymes ; celles du staff portent un token.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set("role", "customer")
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := parseToken(parts[1]); err == nil {
				applyClaims(c, claims)
				c.Next()
				return
			}
		}

		// Token présent mais invalide : on traite la requête comme anonyme
		c.Set("role", "customer")
		c.Next()
	}
}
