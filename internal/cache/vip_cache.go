package cache

import (
	"context"
	"encoding/json"
	"time"

	"makai_ordering/internal/database"
	"makai_ordering/internal/utils"
)

const (
	VIPCodesCacheTTL = 10 * time.Minute
)

// getVIPHashes récupère les hash des codes VIP d'un restaurant
// (cache Redis, sinon ScyllaDB)
func getVIPHashes(ctx context.Context, restaurantID string) ([]string, error) {
	key := "vip_codes:" + restaurantID

	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var hashes []string
		if json.Unmarshal([]byte(data), &hashes) == nil {
			return hashes, nil
		}
	}

	query, err := database.QueryVIPCodes(restaurantID)
	if err != nil {
		return nil, err
	}

	var hashes []string
	iter := query.Iter()
	var hash string
	for iter.Scan(&hash) {
		hashes = append(hashes, hash)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	jsonData, _ := json.Marshal(hashes)
	database.Redis.Set(ctx, key, jsonData, VIPCodesCacheTTL)

	return hashes, nil
}

// ValidateVIPCode vérifie un code VIP contre les hash du restaurant
func ValidateVIPCode(ctx context.Context, restaurantID, code string) (bool, error) {
	hashes, err := getVIPHashes(ctx, restaurantID)
	if err != nil {
		return false, err
	}

	for _, hash := range hashes {
		if ok, _ := utils.VerifyVIPCode(code, hash); ok {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateVIPCache force un rechargement des codes depuis ScyllaDB
func InvalidateVIPCache(restaurantID string) {
	database.Redis.Del(context.Background(), "vip_codes:"+restaurantID)
}
