package models

import (
	"math"
	"time"
)

// Statuts de commande reconnus par la plateforme.
// "confirmed" est un statut transitoire utilisé entre le paiement et la cuisine.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	// Statut local côté client quand la création a échoué (jamais persisté)
	StatusFailed = "failed"
)

// ValidStatus vérifie qu'un statut fait partie du cycle de vie d'une commande
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Types de lignes de commande
const (
	ItemTypeFood        = "food"
	ItemTypeMerchandise = "merchandise"
)

// Customizations : nom d'option → valeurs choisies (ex: {"Size": ["Large"]})
type Customizations map[string][]string

type OrderItem struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Quantity       int            `json:"quantity"`
	Type           string         `json:"type,omitempty"`
	Customizations Customizations `json:"customizations,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

type Order struct {
	// ID peut être un placeholder client "temp-<timestamp>" avant confirmation serveur
	ID                  string      `json:"id"`
	RestaurantID        string      `json:"restaurant_id"`
	Status              string      `json:"status"`
	Items               []OrderItem `json:"items"`
	Total               float64     `json:"total"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	ContactName         string      `json:"contact_name,omitempty"`
	ContactPhone        string      `json:"contact_phone,omitempty"`
	ContactEmail        string      `json:"contact_email,omitempty"`
	TransactionID       string      `json:"transaction_id,omitempty"`
	PaymentMethod       string      `json:"payment_method,omitempty"`
	CreatedByStaffID    *string     `json:"created_by_staff_id,omitempty"`
	IsStaffOrder        bool        `json:"is_staff_order"`
	StaffCreated        bool        `json:"staff_created"`
	EstimatedPickupTime *time.Time  `json:"estimated_pickup_time,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	// Pending marque une mutation optimiste pas encore confirmée par le serveur.
	// Purement local, jamais renvoyé par l'API.
	Pending bool `json:"pending,omitempty"`
}

// OrdersMetadata décrit la pagination de la page affichée
type OrdersMetadata struct {
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// Recompute recalcule total_pages à partir de total_count et per_page
func (m *OrdersMetadata) Recompute() {
	if m.PerPage <= 0 {
		m.TotalPages = 1
		return
	}
	m.TotalPages = int(math.Ceil(float64(m.TotalCount) / float64(m.PerPage)))
	if m.TotalPages < 1 {
		m.TotalPages = 1
	}
}
