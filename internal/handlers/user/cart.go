package user

import (
	"context"
	"encoding/json"
	"net/http"

	"makai_ordering/internal/database"
	"makai_ordering/internal/models"

	"github.com/gin-gonic/gin"
)

// Le panier vit dans Redis sous une clé opaque par session storefront.
// Chaque modification publie sur le canal pub/sub du panier pour la
// synchronisation multi-onglets.

func cartKey(c *gin.Context) (string, bool) {
	sessionID := c.GetHeader("X-Cart-Session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "En-tête X-Cart-Session requis"})
		return "", false
	}
	return "cart:" + sessionID, true
}

func loadCart(ctx context.Context, key string) []models.CartItem {
	data, err := database.Redis.Get(ctx, key).Result()
	if err != nil || data == "" {
		return nil
	}
	var cart []models.CartItem
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil
	}
	return cart
}

func saveCart(ctx context.Context, key string, cart []models.CartItem, signal string) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := database.Redis.Set(ctx, key, data, 0).Err(); err != nil {
		return err
	}
	database.Redis.Publish(ctx, key, signal)
	return nil
}

// GetCart retourne le panier courant
func GetCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}

	cart := loadCart(context.Background(), key)
	if cart == nil {
		cart = []models.CartItem{}
	}

	total := 0.0
	for _, item := range cart {
		total += item.Price * float64(item.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{"items": cart, "total": total, "count": len(cart)})
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}

	var input models.CartItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.ID == "" || input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Article ou quantité invalide"})
		return
	}

	ctx := context.Background()
	cart := loadCart(ctx, key)

	// Fusion sur la clé composite (id + customisations triées) :
	// un même article déjà présent voit sa quantité incrémentée
	cart = models.MergeCartItem(cart, input)

	if err := saveCart(ctx, key, cart, "updated"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": cart, "count": len(cart)})
}

// RemoveFromCart retire une ligne (clé composite exacte)
func RemoveFromCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}

	var input models.CartItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := context.Background()
	cart := loadCart(ctx, key)

	target := input.CompositeKey()
	var kept []models.CartItem
	for _, item := range cart {
		if item.CompositeKey() != target {
			kept = append(kept, item)
		}
	}
	if kept == nil {
		kept = []models.CartItem{}
	}

	if err := saveCart(ctx, key, kept, "updated"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": kept, "count": len(kept)})
}

// ClearCart vide le panier (appelé après la création de commande)
func ClearCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}

	ctx := context.Background()
	if err := database.Redis.Del(ctx, key).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression panier"})
		return
	}
	database.Redis.Publish(ctx, key, "cleared")

	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}, "count": 0})
}
