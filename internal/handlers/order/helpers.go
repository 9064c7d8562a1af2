package order

import (
	"encoding/json"
	"sort"
	"time"

	"makai_ordering/internal/models"
	"makai_ordering/internal/realtime"

	"github.com/gocql/gocql"
)

// Hub d'événements posé au démarrage par routes.RegisterRoutes
var eventHub *realtime.Hub

func SetEventHub(h *realtime.Hub) {
	eventHub = h
}

// scanOrder lit une ligne de la table orders (items sérialisés en JSON)
func scanOrder(iter *gocql.Iter) (models.Order, bool) {
	var o models.Order
	var itemsJSON string
	var createdByStaffID string
	var estimatedPickup time.Time

	ok := iter.Scan(&o.RestaurantID, &o.ID, &o.Status, &itemsJSON, &o.Total, &o.SpecialInstructions,
		&o.ContactName, &o.ContactPhone, &o.ContactEmail, &o.TransactionID, &o.PaymentMethod,
		&createdByStaffID, &o.IsStaffOrder, &o.StaffCreated, &estimatedPickup, &o.CreatedAt, &o.UpdatedAt)
	if !ok {
		return o, false
	}

	if itemsJSON != "" {
		json.Unmarshal([]byte(itemsJSON), &o.Items)
	}
	if createdByStaffID != "" {
		o.CreatedByStaffID = &createdByStaffID
	}
	if !estimatedPickup.IsZero() {
		t := estimatedPickup
		o.EstimatedPickupTime = &t
	}

	return o, true
}

func marshalItems(items []models.OrderItem) string {
	data, _ := json.Marshal(items)
	return string(data)
}

// sortOrders trie en mémoire selon sort_by / sort_direction
// (la partition Scylla livre déjà created_at desc)
func sortOrders(orders []models.Order, sortBy, direction string) {
	asc := direction == "asc"

	less := func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) }
	switch sortBy {
	case "total":
		less = func(i, j int) bool { return orders[i].Total > orders[j].Total }
	case "status":
		less = func(i, j int) bool { return orders[i].Status < orders[j].Status }
	case "contact_name":
		less = func(i, j int) bool { return orders[i].ContactName < orders[j].ContactName }
	case "updated_at":
		less = func(i, j int) bool { return orders[i].UpdatedAt.After(orders[j].UpdatedAt) }
	}

	if asc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(orders, less)
}

// paginate découpe la page demandée et retourne (page, total)
func paginate(orders []models.Order, page, perPage int) ([]models.Order, int) {
	total := len(orders)
	start := (page - 1) * perPage
	if start >= total {
		return []models.Order{}, total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return orders[start:end], total
}
