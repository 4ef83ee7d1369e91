package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "vendora-inventory/internal/adapters/web"
	"vendora-inventory/internal/app"
	"vendora-inventory/internal/core"
	"vendora-inventory/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	stockService := core.NewStockService(pool)
	ledgerService := core.NewLedgerService(pool)
	warehouseService := core.NewWarehouseService(pool)

	svc := app.NewAppService(stockService, ledgerService, warehouseService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
