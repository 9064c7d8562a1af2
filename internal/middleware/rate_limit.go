package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"makai_ordering/internal/database"

	"github.com/gin-gonic/gin"
)

const (
	// Limites par endpoint
	OrderSubmitMaxAttempts = 10 // Commandes par fenêtre et par contact
	APIMaxRequests         = 100

	// Durées de cooldown
	OrderSubmitWindow   = 10 * time.Minute
	OrderSubmitCooldown = 15 * time.Minute
	APICooldown         = 1 * time.Minute
)

// OrderSubmitRateLimit limite les créations de commandes par contact
// (email ou téléphone), pour absorber les doubles-clics et les abus
func OrderSubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Order struct {
				ContactEmail string `json:"contact_email"`
				ContactPhone string `json:"contact_phone"`
			} `json:"order"`
		}

		contact := ""
		if err := json.Unmarshal(bodyBytes, &input); err == nil {
			if input.Order.ContactEmail != "" {
				contact = input.Order.ContactEmail
			} else {
				contact = input.Order.ContactPhone
			}
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if contact == "" {
			c.Next()
			return
		}

		ctx := context.Background()
		key := "order_attempts:" + contact
		cooldownKey := "order_cooldown:" + contact

		// Contact en cooldown ?
		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de commandes envoyées. Réessayez dans %d minutes", int(ttl.Minutes())),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= OrderSubmitMaxAttempts {
			database.Redis.Set(ctx, cooldownKey, "1", OrderSubmitCooldown)
			database.Redis.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de commandes envoyées. Bloqué pendant %d minutes", int(OrderSubmitCooldown.Minutes())),
				"retry_after": int(OrderSubmitCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		// Compter la tentative
		pipe := database.Redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, OrderSubmitWindow)
		pipe.Exec(ctx)

		c.Next()
	}
}

// APIRateLimit limite le débit global par adresse IP
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		key := "api_requests:" + c.ClientIP()

		requests, _ := database.Redis.Get(ctx, key).Int()
		if requests >= APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Trop de requêtes, réessayez dans une minute",
			})
			c.Abort()
			return
		}

		pipe := database.Redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, APICooldown)
		pipe.Exec(ctx)

		c.Next()
	}
}
