// Command seed populates the database with development data.
package main

import (
	"flag"
	"log"

	"tintuc/internal/config"
	"tintuc/internal/database"
	"tintuc/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numArticles := flag.Int("articles", 100, "Number of articles to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumArticles: *numArticles,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
