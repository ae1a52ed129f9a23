// Command seed_catalog fills a database with sample categories and products
// for local frontend development.
// Usage: go run cmd/seed_catalog/main.go [-db path/to/market.db]
package main

import (
	"flag"
	"log"

	"github.com/dangcap/market/internal/config"
	"github.com/dangcap/market/internal/database"
	"github.com/dangcap/market/internal/database/catalog"
	"github.com/dangcap/market/internal/entities"
)

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "path to the database file")
	flag.Parse()

	log.Printf("Seeding catalog in %s...", *dbPath)

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := catalog.NewRepository(db.DB)

	existing, err := repo.ListCategories()
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	if len(existing) > 0 {
		log.Fatalf("Database already has %d categories, refusing to seed on top", len(existing))
	}

	for _, seed := range sampleCatalog() {
		category, err := repo.CreateCategory(seed.Name, seed.Description)
		if err != nil {
			log.Printf("Failed to create category %s: %v", seed.Name, err)
			continue
		}
		log.Printf("Created category: %s (%d products)", category.Name, len(seed.Products))

		for _, product := range seed.Products {
			product.CategoryID = category.ID
			if _, err := repo.CreateProduct(&product); err != nil {
				log.Printf("Failed to create product %s: %v", product.Name, err)
			}
		}
	}

	log.Println("Catalog seeded successfully!")
}

// CategorySeed holds a category and the products filed under it.
type CategorySeed struct {
	Name        string
	Description string
	Products    []entities.Product
}

func sampleCatalog() []CategorySeed {
	return []CategorySeed{
		{
			Name:        "Coffee",
			Description: "Whole beans and ground coffee",
			Products: []entities.Product{
				{Name: "House Blend 500g", Price: 11.50},
				{Name: "Single Origin Ethiopia 250g", Price: 14.00},
				{Name: "Decaf Dark Roast 500g", Price: 12.00},
			},
		},
		{
			Name:        "Tea",
			Description: "Loose leaf and bagged tea",
			Products: []entities.Product{
				{Name: "Jasmine Green Tea 100g", Price: 8.50},
				{Name: "Earl Grey 20 bags", Price: 4.20},
			},
		},
		{
			Name:        "Brewing Gear",
			Description: "Everything needed to brew at home",
			Products: []entities.Product{
				{Name: "Ceramic Pour-Over Dripper", Price: 18.00},
				{Name: "Gooseneck Kettle 1L", Price: 42.00},
				{Name: "Paper Filters x100", Price: 5.00},
			},
		},
	}
}
