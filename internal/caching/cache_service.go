package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService holds the denormalized warehouse statistics. The SQL counts
// are the source of truth; the cache is re-primed on every structural change
// and by the nightly reconciliation job.
type CacheService interface {
	GetWarehouseStats(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseStats, error)
	SetWarehouseStats(ctx context.Context, stats *models.WarehouseStats, ttl time.Duration) error
	DeleteWarehouseStats(ctx context.Context, warehouseID uuid.UUID) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func statsKey(warehouseID uuid.UUID) string {
	return fmt.Sprintf("godown:warehouse_stats:%s", warehouseID.String())
}

func (r *redisCacheService) GetWarehouseStats(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseStats, error) {
	data, err := r.client.Get(ctx, statsKey(warehouseID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	stats := &models.WarehouseStats{}
	if err := json.Unmarshal(data, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *redisCacheService) SetWarehouseStats(ctx context.Context, stats *models.WarehouseStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, statsKey(stats.WarehouseID), data, ttl).Err()
}

func (r *redisCacheService) DeleteWarehouseStats(ctx context.Context, warehouseID uuid.UUID) error {
	return r.client.Del(ctx, statsKey(warehouseID)).Err()
}
