package ordersync

import (
	"testing"

	"makai_ordering/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsVisible(t *testing.T) {
	staff42 := "staff-42"
	staff99 := "staff-99"

	customerOrder := models.Order{ID: "o1"}
	orderByStaff42 := models.Order{ID: "o2", StaffCreated: true, IsStaffOrder: true, CreatedByStaffID: &staff42}
	orderByStaff99 := models.Order{ID: "o3", StaffCreated: true, IsStaffOrder: true, CreatedByStaffID: &staff99}
	staffModalOrder := models.Order{ID: "o4", IsStaffOrder: true}

	tests := []struct {
		name  string
		order models.Order
		actor models.Actor
		want  bool
	}{
		{"admin voit tout", orderByStaff99, models.Actor{Role: models.RoleAdmin}, true},
		{"super admin voit tout", orderByStaff99, models.Actor{Role: models.RoleSuperAdmin}, true},
		{"staff voit les commandes clients", customerOrder, models.Actor{Role: models.RoleStaff, StaffID: staff42}, true},
		{"staff voit ses propres commandes", orderByStaff42, models.Actor{Role: models.RoleStaff, StaffID: staff42}, true},
		{"staff ne voit pas celles d'un collègue", orderByStaff99, models.Actor{Role: models.RoleStaff, StaffID: staff42}, false},
		{"staff ne voit pas une commande staff anonyme", staffModalOrder, models.Actor{Role: models.RoleStaff, StaffID: staff42}, false},
		{"staff sans id résolu ne voit rien", customerOrder, models.Actor{Role: models.RoleStaff}, false},
		{"client ne voit rien sur ce canal", customerOrder, models.Actor{Role: models.RoleCustomer}, false},
		{"rôle vide ne voit rien", customerOrder, models.Actor{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(tt.order, tt.actor))
		})
	}
}
