// Command seed populates the database with demo boards and feedback.
package main

import (
	"flag"
	"log"

	"leanvote/internal/config"
	"leanvote/internal/database"
	"leanvote/internal/middleware"
	"leanvote/internal/seed"
)

func main() {
	numBoards := flag.Int("boards", 3, "Number of demo boards to create")
	numVoters := flag.Int("voters", 25, "Number of voter accounts to create")
	numPosts := flag.Int("posts", 120, "Number of feedback posts to create")
	shouldClean := flag.Bool("clean", false, "Truncate all tables before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d boards, %d voters, %d posts, clean=%v\n",
		*numBoards, *numVoters, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Seed first so a clean run truncates before the built-ins land.
	if err := seed.Seed(db, seed.Options{
		NumBoards:   *numBoards,
		NumVoters:   *numVoters,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if err := seed.Demo(db); err != nil {
		log.Fatalf("Built-in demo board seeding failed: %v", err)
	}

	log.Println("All done. Seeded accounts use the password: password123")
}
