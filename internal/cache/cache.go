package cache

import (
	"context"
	"encoding/json"
	"time"

	"vendra_back_end/internal/database"
	"vendra_back_end/internal/models"

	"github.com/gocql/gocql"
)

const (
	UserCacheTTL    = 5 * time.Minute
	ProductCacheTTL = 10 * time.Minute
)

// GetProductFromCache récupère un produit depuis Redis ou ScyllaDB.
// Le stock retourné peut être légèrement périmé : il ne sert qu'à
// l'affichage, jamais à la réservation (qui relit toujours la base).
func GetProductFromCache(ctx context.Context, store interface {
	GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error)
}, id gocql.UUID) (*models.Product, error) {
	key := "product:" + id.String()

	// 1. Essayer le cache Redis
	if database.Redis != nil {
		if data, err := database.Redis.Get(ctx, key).Result(); err == nil {
			var p models.Product
			if json.Unmarshal([]byte(data), &p) == nil {
				return &p, nil
			}
		}
	}

	// 2. Récupérer depuis le store
	p, err := store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	if database.Redis != nil {
		if jsonData, err := json.Marshal(p); err == nil {
			database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)
		}
	}

	return p, nil
}

// InvalidateProductCache invalide le cache d'un produit (après réservation)
func InvalidateProductCache(ctx context.Context, id gocql.UUID) {
	if database.Redis != nil {
		database.Redis.Del(ctx, "product:"+id.String())
	}
}
