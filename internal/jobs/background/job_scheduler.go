package background

import (
	"context"
	"log"
	"time"

	"godown/internal/caching"
	"godown/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the cache warming work outside the request path. The
// engine itself owns no background processing; these jobs only re-prime
// derived data that the services would otherwise compute lazily.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	warehouseRepo repositories.WarehouseRepository
	cacheSvc      caching.CacheService
}

func NewJobScheduler(warehouseRepo repositories.WarehouseRepository, cacheSvc caching.CacheService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		warehouseRepo: warehouseRepo,
		cacheSvc:      cacheSvc,
	}
	js.registerJobs()
	return js
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.refreshWarehouseStats, context.Background()),
		gocron.WithName("warehouse-stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create warehouse stats job: %v", err)
	}
}

// refreshWarehouseStats recomputes the cached child counts for every
// warehouse from the SQL source of truth.
func (js *JobScheduler) refreshWarehouseStats(ctx context.Context) error {
	log.Printf("Starting warehouse stats refresh")

	warehouses, err := js.warehouseRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list warehouses for stats refresh: %v", err)
		return err
	}

	refreshed := 0
	for _, warehouse := range warehouses {
		stats, err := js.warehouseRepo.Stats(ctx, warehouse.ID)
		if err != nil {
			log.Printf("Failed to compute stats for warehouse %s: %v", warehouse.ID, err)
			continue
		}
		if err := js.cacheSvc.SetWarehouseStats(ctx, stats, 24*time.Hour); err != nil {
			log.Printf("Failed to cache stats for warehouse %s: %v", warehouse.ID, err)
			continue
		}
		refreshed++
	}

	log.Printf("Completed warehouse stats refresh for %d of %d warehouses", refreshed, len(warehouses))
	return nil
}
