// Seed inserts sample tally orders and finalized orders for local
// development, so the board and the reports have something to show.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/shopspring/decimal"
	"github.com/streetbite-pos/api/internal/config"
	"github.com/streetbite-pos/api/internal/database"
	"github.com/streetbite-pos/api/internal/service"
	"github.com/streetbite-pos/api/internal/store"
)

func main() {
	orders := flag.Int("orders", 5, "number of finalized sample orders to insert")
	flag.Parse()

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
	log.Println("Connected to database")

	svc := service.NewOrderService(store.NewPostgres(pool))

	tallies := []struct {
		item  string
		price string
	}{
		{"Burger", "6.50"},
		{"Burger", "6.50"},
		{"Fries", "2.50"},
		{"Lemonade", "3.00"},
	}
	for _, t := range tallies {
		price, err := decimal.NewFromString(t.price)
		if err != nil {
			log.Fatalf("parse price: %v", err)
		}
		if _, err := svc.RecordTally(ctx, t.item, price); err != nil {
			log.Fatalf("record tally: %v", err)
		}
	}
	log.Printf("Seeded %d tally orders", len(tallies))

	carts := [][]store.LineItem{
		{
			{Name: "Burger", Price: decimal.RequireFromString("6.50"), Options: []string{"no onions"}},
			{Name: "Fries", Price: decimal.RequireFromString("2.50")},
		},
		{
			{Name: "Hot Dog", Price: decimal.RequireFromString("4.00")},
			{Name: "Lemonade", Price: decimal.RequireFromString("3.00")},
		},
	}
	for i := 0; i < *orders; i++ {
		items := carts[i%len(carts)]
		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.Price)
		}
		order, err := svc.FinalizeOrder(ctx, service.FinalizeOrderRequest{
			Items:           items,
			TotalPrice:      total,
			Combo:           i%2 == 0,
			LemonadeUpgrade: i%3 == 0,
		})
		if err != nil {
			log.Fatalf("finalize order: %v", err)
		}
		log.Printf("Seeded order %s", order.DisplayOrderNumber)
	}

	log.Println("Seeding complete")
}
