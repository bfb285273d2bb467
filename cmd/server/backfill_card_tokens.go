package main

// Helper: go run ./cmd/server -backfill-card-tokens
// Assigns a card token to existing loyalty links where CardToken is NULL/empty.

import (
	"flag"
	"log"

	"github.com/google/uuid"

	"github.com/zelloapp/zello-backend/internal/db"
	"github.com/zelloapp/zello-backend/internal/models"
)

var backfillCardTokensFlag = flag.Bool("backfill-card-tokens", false, "Backfill missing loyalty card tokens and exit")

func runBackfillCardTokens() {
	conn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	var links []models.CustomerStoreLink
	if err := conn.Where("card_token = '' OR card_token IS NULL").Find(&links).Error; err != nil {
		log.Fatalf("list links: %v", err)
	}
	updated := 0
	for _, l := range links {
		if err := conn.Model(&models.CustomerStoreLink{}).Where("id = ?", l.ID).
			Update("card_token", uuid.NewString()).Error; err == nil {
			updated++
		}
	}
	log.Printf("Backfill done: %d updated", updated)
}
