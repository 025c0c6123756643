package cache_test

import (
	"context"
	"errors"
	"testing"

	"vendra_back_end/internal/cache"
	"vendra_back_end/internal/models"
	"vendra_back_end/internal/store"

	"github.com/gocql/gocql"
)

// Sans Redis configuré, le cache est transparent : lecture directe du store
// et invalidation sans effet ni panique. C'est le mode des tests et du
// pipeline de réservation, qui invalide après chaque écriture de stock.
func TestProductCacheWithoutRedis(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	id := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: id, Name: "Café", Price: 8.5, Stock: 4})

	p, err := cache.GetProductFromCache(ctx, s, id)
	if err != nil {
		t.Fatalf("GetProductFromCache: %v", err)
	}
	if p.Name != "Café" || p.Stock != 4 {
		t.Fatalf("produit = %+v, attendu Café avec stock 4", p)
	}

	cache.InvalidateProductCache(ctx, id)

	if _, err := cache.GetProductFromCache(ctx, s, gocql.TimeUUID()); !errors.Is(err, store.ErrProductNotFound) {
		t.Fatalf("err = %v, attendu ErrProductNotFound", err)
	}
}
