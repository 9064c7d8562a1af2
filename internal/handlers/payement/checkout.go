package payement

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"makai_ordering/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// CreateCheckoutIntent crée le PaymentIntent Stripe pour le panier.
// Le storefront confirme ensuite le paiement puis envoie POST /api/orders
// avec l'id de l'intent comme transaction_id.
func CreateCheckoutIntent(c *gin.Context) {
	var req struct {
		RestaurantID string            `json:"restaurant_id" binding:"required"`
		Items        []models.CartItem `json:"items"`
		ContactEmail string            `json:"contact_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide ou panier vide"})
		return
	}

	total := calcTotal(req.Items)
	if total <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Total invalide"})
		return
	}

	// Empreinte du panier dans les métadonnées Stripe, pour réconciliation
	cartJSON, err := json.Marshal(req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sérialisation panier"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(total * 100)),
		Currency: stripe.String("usd"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"restaurant_id": req.RestaurantID,
			"email":         req.ContactEmail,
			"cart":          string(cartJSON),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement", "details": err.Error()})
		return
	}

	log.Printf("💳 Checkout créé: %s (%.2f$) pour %s", intent.ID, total, req.RestaurantID)

	c.JSON(http.StatusOK, gin.H{
		"client_secret": intent.ClientSecret,
		"payment_id":    intent.ID,
		"amount":        total,
		"currency":      "usd",
		"items_count":   len(req.Items),
	})
}

// VerifyPaymentIntent vérifie qu'un PaymentIntent existe, est payé,
// et couvre le total de la commande
func VerifyPaymentIntent(transactionID string, total float64) error {
	intent, err := paymentintent.Get(transactionID, nil)
	if err != nil {
		return fmt.Errorf("PaymentIntent introuvable: %v", err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
	default:
		return fmt.Errorf("paiement non confirmé (statut %s)", intent.Status)
	}

	expected := int64(total * 100)
	if intent.Amount < expected {
		return fmt.Errorf("montant payé %d inférieur au total %d", intent.Amount, expected)
	}

	return nil
}

func calcTotal(items []models.CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
