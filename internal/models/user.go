package models

// Rôles portés par le JWT
const (
	RoleCustomer   = "customer"
	RoleStaff      = "staff"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Actor est l'identité courante côté client (panneau admin, terminal staff...)
type Actor struct {
	ID           string `json:"user_id"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role"`
	StaffID      string `json:"staff_id,omitempty"`
	RestaurantID string `json:"restaurant_id,omitempty"`
}

// Staff est la fiche employé persistée côté serveur
type Staff struct {
	ID           string `json:"staff_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id"`
}
