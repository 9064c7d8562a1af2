package cache

import (
	"context"
	"encoding/json"
	"time"

	"makai_ordering/internal/database"
	"makai_ordering/internal/models"
)

const (
	StaffCacheTTL = 5 * time.Minute
)

// GetStaffFromCache récupère une fiche employé depuis Redis ou ScyllaDB
func GetStaffFromCache(staffID string) (*models.Staff, error) {
	ctx := context.Background()
	key := "staff:" + staffID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var staff models.Staff
		if json.Unmarshal([]byte(data), &staff) == nil {
			return &staff, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetStaffSession()
	if err != nil {
		return nil, err
	}

	var (
		name, email, role, restaurantID string
	)
	err = session.Query(`SELECT name, email, role, restaurant_id FROM staff WHERE staff_id = ?`,
		staffID).Scan(&name, &email, &role, &restaurantID)
	if err != nil {
		return nil, err
	}

	staff := &models.Staff{
		ID:           staffID,
		Name:         name,
		Email:        email,
		Role:         role,
		RestaurantID: restaurantID,
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(staff)
	database.Redis.Set(ctx, key, jsonData, StaffCacheTTL)

	return staff, nil
}

// InvalidateStaffCache supprime une fiche employé du cache
func InvalidateStaffCache(staffID string) {
	database.Redis.Del(context.Background(), "staff:"+staffID)
}
