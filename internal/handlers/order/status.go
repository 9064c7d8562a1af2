package order

import (
	"context"
	"log"
	"net/http"
	"time"

	"makai_ordering/internal/cache"
	"makai_ordering/internal/database"
	"makai_ordering/internal/models"
	"makai_ordering/internal/realtime"
	"makai_ordering/internal/services"
	"makai_ordering/internal/utils"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatus change le statut d'une commande (staff/admin uniquement).
// PATCH /api/orders/:id
func UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req struct {
		Order struct {
			Status              string     `json:"status" binding:"required"`
			EstimatedPickupTime *time.Time `json:"estimated_pickup_time"`
		} `json:"order" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if !models.ValidStatus(req.Order.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut inconnu: " + req.Order.Status})
		return
	}

	// Charger la commande via l'index par id
	query, err := database.QueryOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := query.Iter()
	o, ok := scanOrder(iter)
	iter.Close()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	o.Status = req.Order.Status
	if req.Order.EstimatedPickupTime != nil {
		o.EstimatedPickupTime = req.Order.EstimatedPickupTime
	}
	o.UpdatedAt = time.Now().UTC()

	var pickup time.Time
	if o.EstimatedPickupTime != nil {
		pickup = *o.EstimatedPickupTime
	}

	update, err := database.QueryUpdateOrderStatus(o.Status, pickup, o.UpdatedAt, o.RestaurantID, o.CreatedAt, o.ID)
	if err == nil {
		err = update.Exec()
	}
	if err != nil {
		log.Printf("❌ Erreur mise à jour commande %s: %v", o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		return
	}
	indexUpdate, err := database.QueryUpdateOrderStatusIndex(o.Status, pickup, o.UpdatedAt, o.ID)
	if err == nil {
		err = indexUpdate.Exec()
	}
	if err != nil {
		log.Printf("⚠️ Index orders_by_id désynchronisé pour %s: %v", o.ID, err)
	}

	services.IndexOrder(o)

	if eventHub != nil {
		evt := realtime.Event{Type: realtime.EventOrderUpdated, Order: o}
		if err := eventHub.Publish(context.Background(), o.RestaurantID, evt); err != nil {
			log.Printf("⚠️ Publication order_updated échouée: %v", err)
		}
	}

	go utils.SendOrderStatusEmail(o, o.Status)

	// Trace de l'auteur du changement
	if staffID := c.GetString("staff_id"); staffID != "" {
		if staff, err := cache.GetStaffFromCache(staffID); err == nil {
			log.Printf("✅ Statut de %s → %s par %s", o.ID, o.Status, staff.Name)
		} else {
			log.Printf("✅ Statut de %s → %s par staff %s", o.ID, o.Status, staffID)
		}
	}

	c.JSON(http.StatusOK, o)
}

// ValidateVIP vérifie un code VIP sans créer de commande.
// GET /api/vip/validate?restaurant_id=&code=
func ValidateVIP(c *gin.Context) {
	restaurantID := c.Query("restaurant_id")
	code := c.Query("code")
	if restaurantID == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id et code requis"})
		return
	}

	valid, err := cache.ValidateVIPCode(context.Background(), restaurantID, code)
	if err != nil {
		log.Printf("❌ Erreur validation code VIP: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur validation code VIP"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// GetReceiptURL retourne une URL signée temporaire vers le reçu PDF archivé.
// GET /api/orders/:id/receipt
func GetReceiptURL(c *gin.Context) {
	orderID := c.Param("id")
	restaurantID := c.Query("restaurant_id")
	if restaurantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id requis"})
		return
	}

	url, err := services.ReceiptSignedURL(context.Background(), restaurantID, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reçu indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": 900})
}
