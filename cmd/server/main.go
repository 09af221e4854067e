package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/streetbite-pos/api/internal/auth"
	"github.com/streetbite-pos/api/internal/config"
	"github.com/streetbite-pos/api/internal/database"
	"github.com/streetbite-pos/api/internal/router"
	"github.com/streetbite-pos/api/internal/store"
)

func main() {
	cfg := config.Load()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	r := router.New(cfg, store.NewPostgres(pool), auth.NewSessions())

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
