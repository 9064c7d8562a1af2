package order

import (
	"context"
	"log"
	"net/http"
	"time"

	"makai_ordering/internal/cache"
	"makai_ordering/internal/database"
	"makai_ordering/internal/handlers/payement"
	"makai_ordering/internal/models"
	"makai_ordering/internal/realtime"
	"makai_ordering/internal/services"
	"makai_ordering/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CreateOrder crée une commande (storefront anonyme ou staff authentifié).
// POST /api/orders
func CreateOrder(c *gin.Context) {
	var req struct {
		Order struct {
			RestaurantID        string                 `json:"restaurant_id" binding:"required"`
			Items               []models.OrderItem     `json:"items"`
			MerchandiseItems    []models.OrderItem     `json:"merchandise_items"`
			Total               float64                `json:"total"`
			SpecialInstructions string                 `json:"special_instructions"`
			ContactName         string                 `json:"contact_name"`
			ContactPhone        string                 `json:"contact_phone"`
			ContactEmail        string                 `json:"contact_email"`
			TransactionID       string                 `json:"transaction_id"`
			PaymentMethod       string                 `json:"payment_method"`
			VIPCode             string                 `json:"vip_code"`
			StaffModal          bool                   `json:"staff_modal"`
			PaymentDetails      map[string]interface{} `json:"payment_details"`
		} `json:"order" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	in := req.Order
	if len(in.Items) == 0 && len(in.MerchandiseItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commande vide"})
		return
	}
	if in.Total < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Total invalide"})
		return
	}

	ctx := context.Background()

	// ✅ 1. Valider le code VIP si fourni
	if in.VIPCode != "" {
		valid, err := cache.ValidateVIPCode(ctx, in.RestaurantID, in.VIPCode)
		if err != nil {
			log.Printf("❌ Erreur validation code VIP: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur validation code VIP"})
			return
		}
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code VIP invalide"})
			return
		}
	}

	// ✅ 2. Vérifier le paiement Stripe
	if in.PaymentMethod == "stripe" && in.TransactionID != "" {
		if err := payement.VerifyPaymentIntent(in.TransactionID, in.Total); err != nil {
			log.Printf("❌ Paiement refusé (%s): %v", in.TransactionID, err)
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Paiement non confirmé", "details": err.Error()})
			return
		}
	}

	// ✅ 3. Attribution staff depuis le JWT
	role := c.GetString("role")
	staffID := c.GetString("staff_id")
	isStaff := role == models.RoleStaff || role == models.RoleAdmin || role == models.RoleSuperAdmin

	// ✅ 4. Fusionner nourriture et merchandising en lignes typées
	items := make([]models.OrderItem, 0, len(in.Items)+len(in.MerchandiseItems))
	for _, it := range in.Items {
		if it.Type == "" {
			it.Type = models.ItemTypeFood
		}
		items = append(items, it)
	}
	for _, it := range in.MerchandiseItems {
		it.Type = models.ItemTypeMerchandise
		items = append(items, it)
	}

	now := time.Now().UTC()
	o := models.Order{
		ID:                  uuid.NewString(),
		RestaurantID:        in.RestaurantID,
		Status:              models.StatusPending,
		Items:               items,
		Total:               in.Total,
		SpecialInstructions: in.SpecialInstructions,
		ContactName:         in.ContactName,
		ContactPhone:        in.ContactPhone,
		ContactEmail:        in.ContactEmail,
		TransactionID:       in.TransactionID,
		PaymentMethod:       in.PaymentMethod,
		IsStaffOrder:        in.StaffModal,
		StaffCreated:        isStaff && staffID != "",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if isStaff && staffID != "" {
		o.CreatedByStaffID = &staffID
	}

	// ✅ 5. Persister dans ScyllaDB (table principale + index par id)
	if err := insertOrder(o); err != nil {
		log.Printf("❌ Erreur insertion commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement commande"})
		return
	}

	// ✅ 6. Indexer pour la recherche
	services.IndexOrder(o)

	// ✅ 7. Publier l'événement temps réel
	if eventHub != nil {
		evt := realtime.Event{Type: realtime.EventOrderCreated, Order: o}
		if err := eventHub.Publish(ctx, o.RestaurantID, evt); err != nil {
			log.Printf("⚠️ Publication order_created échouée: %v", err)
		}
	}

	// ✅ 8. Confirmation par e-mail + reçu archivé, hors du chemin de réponse
	go sendConfirmation(o)

	log.Printf("🧾 Commande créée: %s (%.2f$) pour %s", o.ID, o.Total, o.RestaurantID)
	c.JSON(http.StatusCreated, o)
}

func insertOrder(o models.Order) error {
	itemsJSON := marshalItems(o.Items)
	staffID := ""
	if o.CreatedByStaffID != nil {
		staffID = *o.CreatedByStaffID
	}
	var pickup time.Time
	if o.EstimatedPickupTime != nil {
		pickup = *o.EstimatedPickupTime
	}

	values := []interface{}{
		o.RestaurantID, o.ID, o.Status, itemsJSON, o.Total, o.SpecialInstructions,
		o.ContactName, o.ContactPhone, o.ContactEmail, o.TransactionID, o.PaymentMethod,
		staffID, o.IsStaffOrder, o.StaffCreated, pickup, o.CreatedAt, o.UpdatedAt,
	}

	// Table principale puis index par id, mêmes colonnes
	for _, build := range []func(...interface{}) (*gocql.Query, error){
		database.QueryInsertOrder,
		database.QueryInsertOrderIndex,
	} {
		query, err := build(values...)
		if err != nil {
			return err
		}
		if err := query.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// sendConfirmation génère le QR de retrait, archive le reçu PDF et envoie l'e-mail
func sendConfirmation(o models.Order) {
	if o.ContactEmail == "" {
		return
	}

	qr, err := utils.GeneratePickupQR(o.ID, o.RestaurantID)
	if err != nil {
		log.Printf("⚠️ QR de retrait non généré pour %s: %v", o.ID, err)
	}

	var receipt []byte
	pdf, err := utils.RenderReceiptPDF(utils.GetFrontendReceiptBaseURL(), o.ID, qr)
	if err != nil {
		log.Printf("⚠️ Reçu PDF non généré pour %s: %v", o.ID, err)
	} else {
		receipt = pdf
		if _, err := services.ArchiveReceipt(context.Background(), o.RestaurantID, o.ID, pdf); err != nil {
			log.Printf("⚠️ Archivage du reçu %s échoué: %v", o.ID, err)
		}
	}

	html := utils.GenerateOrderConfirmationHTML(o, qr)
	if err := utils.SendOrderEmail(o.ContactEmail, "🌺 Confirmation de votre commande - Makai", html, receipt); err != nil {
		log.Printf("❌ E-mail de confirmation non envoyé pour %s: %v", o.ID, err)
	}
}
