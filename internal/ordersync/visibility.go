package ordersync

import "makai_ordering/internal/models"

// IsVisible décide si une commande poussée doit être affichée à l'acteur.
// Fonction pure : seule source de vérité pour les deux chemins (création et
// mise à jour).
//
//   - admin / super_admin : tout voir
//   - staff : ses propres commandes, plus les commandes clients ordinaires ;
//     sans staff id résolu, on ferme (fail closed)
//   - tout autre rôle : rien (géré par la couche UI, hors périmètre)
func IsVisible(order models.Order, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return true
	case models.RoleStaff:
		if actor.StaffID == "" {
			return false
		}
		if order.CreatedByStaffID != nil && *order.CreatedByStaffID == actor.StaffID {
			return true
		}
		return !order.StaffCreated && !order.IsStaffOrder
	default:
		return false
	}
}
