package main

import (
	"context"
	"log"

	"github.com/deepanshu089/suprathon/internal/config"
	"github.com/deepanshu089/suprathon/internal/repositories"
)

func main() {
	log.Println("🚀 Seeding default job positions...")

	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	jobRepo := repositories.NewJobPositionRepository(db)
	ctx := context.Background()

	added, err := jobRepo.EnsureDefaults(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to seed job positions: %v", err)
	}

	positions, err := jobRepo.List(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to list job positions: %v", err)
	}

	log.Printf("\n" + "==================================================")
	log.Printf("✅ Seeding completed!")
	log.Printf("   Added: %d", added)
	log.Printf("   Total: %d", len(positions))
	log.Printf("==================================================")

	for _, p := range positions {
		log.Printf("   • %s (%s)", p.Title, p.ID)
	}
}
