package nutrition

import "github.com/NutriVision/NV-Backend/internal/db"

// factStore reads curated blurbs from tracking.food_facts.
type factStore struct{}

func NewFactStore() FactFinder { return factStore{} }

func (factStore) Find(name string) (*FoodFact, error) {
	var fact FoodFact
	if err := db.DB.First(&fact, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &fact, nil
}
