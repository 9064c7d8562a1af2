package realtime

import (
	"encoding/json"
	"fmt"

	"makai_ordering/internal/models"
)

// Types d'événements portés par le canal temps réel
const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
)

// Event est l'enveloppe typée d'un événement de commande.
// Le payload est validé à la frontière : un message malformé est rejeté,
// jamais dispatché.
type Event struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// PaginationMessage est envoyé par le client pour déclarer sa fenêtre
// d'affichage courante (page / per_page)
type PaginationMessage struct {
	Type    string `json:"type"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

const MessageSetPagination = "set_pagination"

// DecodeEvent décode et valide une enveloppe d'événement
func DecodeEvent(data []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return Event{}, fmt.Errorf("événement illisible: %v", err)
	}
	if err := evt.Validate(); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// Validate vérifie le type et la forme minimale du payload
func (e Event) Validate() error {
	switch e.Type {
	case EventOrderCreated, EventOrderUpdated:
	default:
		return fmt.Errorf("type d'événement inconnu: %q", e.Type)
	}
	if e.Order.ID == "" {
		return fmt.Errorf("événement %s sans id de commande", e.Type)
	}
	if e.Order.Status != "" && !models.ValidStatus(e.Order.Status) {
		return fmt.Errorf("statut invalide %q pour la commande %s", e.Order.Status, e.Order.ID)
	}
	return nil
}

// Encode sérialise l'enveloppe pour publication
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
