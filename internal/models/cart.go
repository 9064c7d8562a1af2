package models

import (
	"fmt"
	"sort"
	"strings"
)

type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
}

type CartItem struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Quantity       int            `json:"quantity"`
	Type           string         `json:"type,omitempty"`
	Customizations Customizations `json:"customizations,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// CompositeKey identifie une ligne de panier : id produit + customisations
// sérialisées triées. Deux ajouts avec la même clé fusionnent leurs quantités.
func (ci CartItem) CompositeKey() string {
	if len(ci.Customizations) == 0 {
		return ci.ID
	}

	keys := make([]string, 0, len(ci.Customizations))
	for k := range ci.Customizations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(ci.ID)
	for _, k := range keys {
		values := append([]string(nil), ci.Customizations[k]...)
		sort.Strings(values)
		fmt.Fprintf(&b, "|%s=%s", k, strings.Join(values, ","))
	}
	return b.String()
}

// MergeCartItem ajoute un item dans la liste en fusionnant sur la clé composite
func MergeCartItem(items []CartItem, item CartItem) []CartItem {
	key := item.CompositeKey()
	for i := range items {
		if items[i].CompositeKey() == key {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

// ToOrderItem convertit une ligne de panier en ligne de commande
func (ci CartItem) ToOrderItem() OrderItem {
	return OrderItem{
		ID:             ci.ID,
		Name:           ci.Name,
		Price:          ci.Price,
		Quantity:       ci.Quantity,
		Type:           ci.Type,
		Customizations: ci.Customizations,
		Notes:          ci.Notes,
	}
}
