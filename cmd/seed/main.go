// Command seed fills the database with the course catalogue and demo blog content.
package main

import (
	"context"
	"flag"
	"log"

	"qawala/internal/bootstrap"
	"qawala/internal/config"
	"qawala/internal/database"
	"qawala/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 12, "Number of blog posts to create")
	numReaders := flag.Int("readers", 25, "Number of reader profiles that like posts")
	shouldClean := flag.Bool("clean", false, "Remove seeded content before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d posts, %d readers, clean=%v\n", *numPosts, *numReaders, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumPosts:    *numPosts,
		NumReaders:  *numReaders,
		ShouldClean: *shouldClean,
		RandomSeed:  *randomSeed,
	}
	res, err := seed.NewSeeder(db, opts).Run(opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if err := bootstrap.EnsureAdmin(context.Background(), cfg, db); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}

	log.Printf("Done: %d courses, %d testimonials, %d posts, %d likes\n",
		res.Courses, res.Testimonials, res.Posts, res.Likes)
}
