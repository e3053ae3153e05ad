package main

import (
	"context"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"

	"godown/internal/caching"
	"godown/internal/handlers"
	"godown/internal/jobs/background"
	"godown/internal/middleware"
	"godown/internal/repositories"
	"godown/internal/services"
	"godown/pkg/database"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	orderServiceURL := os.Getenv("ORDER_SERVICE_URL")
	if orderServiceURL == "" {
		orderServiceURL = "http://localhost:8081"
	}
	orderServiceKey := os.Getenv("ORDER_SERVICE_API_KEY")

	attachmentsSvc, err := services.NewAttachmentsService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize attachments service: %v", err)
	}
	if err := attachmentsSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARN: attachments bucket check failed: %v", err)
	}

	// Repositories
	warehouseRepo := repositories.NewWarehouseRepository(pool)
	zoneRepo := repositories.NewZoneRepository(pool)
	rackRepo := repositories.NewRackRepository(pool)
	shelfRepo := repositories.NewShelfRepository(pool)
	placementRepo := repositories.NewPlacementRepository(pool)
	partyRepo := repositories.NewPartyRepository(pool)
	poRepo := repositories.NewPurchaseOrderRepository(pool)
	grnRepo := repositories.NewGRNRepository(pool)
	stockUnitRepo := repositories.NewStockUnitRepository(pool)
	auditLogRepo := repositories.NewAuditLogsRepository(pool)

	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	auditSvc := services.NewAuditLogsService(auditLogRepo)
	locationsSvc := services.NewLocationsService(warehouseRepo, zoneRepo, rackRepo, shelfRepo, placementRepo, cacheSvc, auditSvc)
	partiesSvc := services.NewPartiesService(partyRepo, auditSvc)
	poSvc := services.NewPurchaseOrdersService(poRepo, partyRepo, warehouseRepo, auditSvc)
	receiptsSvc := services.NewReceiptsService(pool, grnRepo, poRepo, poSvc, auditSvc)
	orderLookup := services.NewHTTPOrderStatusLookup(orderServiceURL, orderServiceKey)
	returnsSvc := services.NewReturnsService(stockUnitRepo, orderLookup, auditSvc)

	// Handlers
	locationsHandlers := handlers.NewLocationsHandlers(locationsSvc)
	partiesHandlers := handlers.NewPartiesHandlers(partiesSvc)
	poHandlers := handlers.NewPurchaseOrderHandlers(poSvc)
	receiptsHandlers := handlers.NewReceiptsHandlers(receiptsSvc, attachmentsSvc)
	returnsHandlers := handlers.NewReturnsHandlers(returnsSvc)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, version)

	// Background jobs
	scheduler := background.NewJobScheduler(warehouseRepo, cacheSvc)
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)

	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	// Location hierarchy
	v1.POST("/warehouses", locationsHandlers.CreateWarehouse)
	v1.GET("/warehouses", locationsHandlers.ListWarehouses)
	v1.GET("/warehouses/:id", locationsHandlers.GetWarehouse)
	v1.PUT("/warehouses/:id", locationsHandlers.RenameWarehouse)
	v1.DELETE("/warehouses/:id", locationsHandlers.DeleteWarehouse)
	v1.POST("/warehouses/:id/zones", locationsHandlers.CreateZone)
	v1.GET("/warehouses/:id/zones", locationsHandlers.ListZones)
	v1.PUT("/zones/:id", locationsHandlers.RenameZone)
	v1.POST("/zones/:id/move", locationsHandlers.MoveZone)
	v1.DELETE("/zones/:id", locationsHandlers.DeleteZone)
	v1.POST("/zones/:id/racks", locationsHandlers.CreateRack)
	v1.GET("/zones/:id/racks", locationsHandlers.ListRacks)
	v1.PUT("/racks/:id", locationsHandlers.RenameRack)
	v1.POST("/racks/:id/move", locationsHandlers.MoveRack)
	v1.DELETE("/racks/:id", locationsHandlers.DeleteRack)
	v1.POST("/racks/:id/shelves", locationsHandlers.CreateShelf)
	v1.GET("/racks/:id/shelves", locationsHandlers.ListShelves)
	v1.PUT("/shelves/:id", locationsHandlers.RenameShelf)
	v1.POST("/shelves/:id/move", locationsHandlers.MoveShelf)
	v1.DELETE("/shelves/:id", locationsHandlers.DeleteShelf)
	v1.GET("/shelves/:id/placements", locationsHandlers.ListShelfPlacements)
	v1.GET("/warehouses/:id/zones/:zone_id/racks/:rack_id/shelves/:shelf_id", locationsHandlers.ResolveShelf)

	// Party directory
	v1.POST("/parties", partiesHandlers.CreateParty)
	v1.GET("/parties", partiesHandlers.ListParties)
	v1.GET("/parties/:id", partiesHandlers.GetParty)
	v1.PUT("/parties/:id", partiesHandlers.UpdateParty)
	v1.DELETE("/parties/:id", partiesHandlers.DeactivateParty)

	// Procurement
	v1.POST("/purchase-orders", poHandlers.CreatePurchaseOrder)
	v1.GET("/purchase-orders", poHandlers.ListPurchaseOrders)
	v1.GET("/purchase-orders/:id", poHandlers.GetPurchaseOrder)
	v1.POST("/purchase-orders/:id/confirm", poHandlers.ConfirmPurchaseOrder)
	v1.POST("/purchase-orders/:id/cancel", poHandlers.CancelPurchaseOrder)
	v1.POST("/purchase-orders/:id/close", poHandlers.ClosePurchaseOrder)

	// Goods receipts
	v1.POST("/grns", receiptsHandlers.CreateGRN)
	v1.GET("/grns", receiptsHandlers.ListGRNs)
	v1.GET("/grns/:id", receiptsHandlers.GetGRN)
	v1.PUT("/grns/:id/lines", receiptsHandlers.UpdateGRNLines)
	v1.POST("/grns/:id/receive", receiptsHandlers.PerformReceipt)
	v1.POST("/grns/:id/cancel", receiptsHandlers.CancelGRN)
	v1.POST("/grns/:id/attachments", receiptsHandlers.UploadAttachment)
	v1.GET("/grns/:id/attachments", receiptsHandlers.ListAttachments)
	v1.DELETE("/grns/:id/attachments/:filename", receiptsHandlers.DeleteAttachment)

	// Put-away routing
	v1.GET("/stock-units/inbound", returnsHandlers.ClassifyInbound)
	v1.GET("/stock-units/:id/classification", returnsHandlers.ClassifyUnit)
	v1.POST("/stock-units/return-intake", returnsHandlers.IntakeReturn)

	// Audit trail
	v1.GET("/audit-logs", auditHandlers.ListAuditLogs)
	v1.GET("/audit-logs/:entity_type/:entity_id", auditHandlers.GetEntityHistory)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Fatal(e.Start(":" + port))
}
