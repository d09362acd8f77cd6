package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"threadline/internal/model"
)

// seed_products writes a sample catalogue batch to data/seed/products.json.
// POST the file body to /api/admin/products to load it:
//
//	curl -X POST localhost:8080/api/admin/products \
//	  -H "Authorization: Bearer $ADMIN_TOKEN" \
//	  -d @data/seed/products.json
func main() {
	dataDir := "data/seed"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	batch := model.BatchCreateRequest{
		Products: []model.ProductInput{
			{
				BatchName:    "SS26 Drop 1",
				MainCategory: "Clothing",
				SubCategory:  "T-Shirts",
				Gender:       "unisex",
				ItemName:     "Basic Tee",
				Description:  "Heavyweight cotton tee.",
				Price:        10000,
				Variants: []model.VariantInput{
					{
						Color:  "Black",
						Images: []string{"https://cdn.example.com/basic-tee-black.jpg"},
						Sizes: []model.SizeStockInput{
							{Size: "S", Stock: 8},
							{Size: "M", Stock: 12},
							{Size: "L", Stock: 6},
						},
					},
					{
						Color:  "White",
						Images: []string{"https://cdn.example.com/basic-tee-white.jpg"},
						Sizes: []model.SizeStockInput{
							{Size: "M", Stock: 10},
							{Size: "L", Stock: 4},
						},
					},
				},
			},
			{
				BatchName:    "SS26 Drop 1",
				MainCategory: "Clothing",
				SubCategory:  "Hoodies",
				Gender:       "unisex",
				ItemName:     "Oversized Hoodie",
				Description:  "Brushed fleece, dropped shoulders.",
				Price:        32000,
				Variants: []model.VariantInput{
					{
						Color:  "Charcoal",
						Images: []string{"https://cdn.example.com/hoodie-charcoal.jpg"},
						Sizes: []model.SizeStockInput{
							{Size: "M", Stock: 5},
							{Size: "L", Stock: 5},
							{Size: "XL", Stock: 2},
						},
					},
				},
			},
			{
				BatchName:    "SS26 Drop 2",
				MainCategory: "Clothing",
				SubCategory:  "Longyi",
				Gender:       "women",
				ItemName:     "Patterned Longyi",
				Description:  "Traditional weave, machine washable.",
				Price:        18000,
				Variants: []model.VariantInput{
					{
						Color:  "Indigo",
						Images: []string{"https://cdn.example.com/longyi-indigo.jpg"},
						Sizes: []model.SizeStockInput{
							{Size: "Free", Stock: 15},
						},
					},
				},
			},
		},
	}

	filePath := filepath.Join(dataDir, "products.json")

	file, err := os.Create(filePath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch); err != nil {
		log.Fatalf("Failed to write %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(batch.Products))
}
