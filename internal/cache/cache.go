package cache

import (
	"context"
	"encoding/json"
	"time"

	"velora_back_end/internal/database"
)

const (
	ProductCacheTTL  = 10 * time.Minute
	CategoryCacheTTL = time.Hour
	ContentCacheTTL  = 5 * time.Minute
)

// GetJSON récupère une valeur JSON depuis Redis et la décode dans dest.
// Retourne false si la clé est absente ou invalide.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	val, err := database.Redis.Get(ctx, key).Result()
	if err != nil || val == "" {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// SetJSON met une valeur en cache (ignore silencieusement les erreurs Redis)
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if data, err := json.Marshal(value); err == nil {
		database.Redis.Set(ctx, key, data, ttl)
	}
}

// InvalidateProductCache invalide les clés produits après mutation
func InvalidateProductCache(ctx context.Context, productID string) {
	database.Redis.Del(ctx, "products:all", "product:"+productID)
}

// InvalidateCategoryCache invalide la liste des catégories
func InvalidateCategoryCache(ctx context.Context) {
	database.Redis.Del(ctx, "categories:all")
}

// InvalidateContentCache invalide pages/menus/settings après mutation admin
func InvalidateContentCache(ctx context.Context, keys ...string) {
	database.Redis.Del(ctx, keys...)
}
