package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const (
	ProductCacheTTL = 10 * time.Minute
)

// GetProduct récupère une fiche produit depuis Redis
func GetProduct(productID int64) (*models.Product, bool) {
	if database.Redis == nil {
		return nil, false
	}

	data, err := database.Redis.Get(context.Background(), productKey(productID)).Result()
	if err != nil || data == "" {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		return nil, false
	}

	return &product, true
}

// SetProduct met une fiche produit en cache
func SetProduct(product models.Product) {
	if database.Redis == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	database.Redis.Set(context.Background(), productKey(product.ID), data, ProductCacheTTL)
}

// InvalidateProduct invalide le cache d'un produit
func InvalidateProduct(productID int64) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(context.Background(), productKey(productID))
}

func productKey(productID int64) string {
	return "product:" + strconv.FormatInt(productID, 10)
}
