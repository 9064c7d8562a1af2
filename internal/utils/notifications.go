package utils

import (
	"fmt"
	"log"

	"makai_ordering/internal/models"
)

// SendOrderStatusEmail envoie un e-mail de notification de changement de statut
func SendOrderStatusEmail(order models.Order, newStatus string) error {
	if order.ContactEmail == "" {
		return nil // commande sans e-mail de contact, rien à envoyer
	}

	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	err := SendOrderEmail(order.ContactEmail, subject, html, nil)
	if err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, order.ContactEmail)
	return nil
}

func getStatusEmailSubject(status string) string {
	switch status {
	case models.StatusConfirmed:
		return "✅ Commande confirmée - Makai"
	case models.StatusPreparing:
		return "👨‍🍳 Votre commande est en préparation - Makai"
	case models.StatusReady:
		return "🛎️ Votre commande est prête - Makai"
	case models.StatusCompleted:
		return "🎉 Commande récupérée - Makai"
	case models.StatusCancelled:
		return "❌ Commande annulée - Makai"
	default:
		return "📋 Mise à jour de votre commande - Makai"
	}
}

func getStatusMessage(status string) string {
	switch status {
	case models.StatusConfirmed:
		return "Votre paiement a été confirmé, la cuisine prend le relais."
	case models.StatusPreparing:
		return "Nos cuisines préparent votre commande."
	case models.StatusReady:
		return "Votre commande vous attend au comptoir !"
	case models.StatusCompleted:
		return "Votre commande a été récupérée. À bientôt !"
	case models.StatusCancelled:
		return "Votre commande a été annulée. Contactez-nous pour toute question."
	default:
		return "Le statut de votre commande a changé."
	}
}

func generateStatusEmailHTML(order models.Order, status string) string {
	pickup := ""
	if order.EstimatedPickupTime != nil {
		pickup = fmt.Sprintf(`<p>Heure de retrait estimée : <strong>%s</strong></p>`,
			order.EstimatedPickupTime.Format("15:04"))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Mise à jour de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Commande %s</h2>
		<p>%s</p>
		%s
		<p style="color: #888; font-size: 12px;">Makai — merci pour votre commande 🌺</p>
	</div>
</body>
</html>`, order.ID, getStatusMessage(status), pickup)
}
