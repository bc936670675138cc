package nutrition

import "github.com/lib/pq"

// Item is one food in a nutrition API response. Field names follow the wire
// format of the lookup service.
type Item struct {
	Name           string  `json:"name"`
	ServingSizeG   float64 `json:"serving_size_g"`
	Calories       float64 `json:"calories"`
	ProteinG       float64 `json:"protein_g"`
	CarbohydratesG float64 `json:"carbohydrates_total_g"`
	FatTotalG      float64 `json:"fat_total_g"`
	FatSaturatedG  float64 `json:"fat_saturated_g"`
	FiberG         float64 `json:"fiber_g"`
	SugarG         float64 `json:"sugar_g"`
	SodiumMg       float64 `json:"sodium_mg"`
	PotassiumMg    float64 `json:"potassium_mg"`
	CholesterolMg  float64 `json:"cholesterol_mg"`
}

type apiResponse struct {
	Items []Item `json:"items"`
}

// SearchResult is the display shape the frontend renders: the first item's
// macros with calories summed across all returned items.
type SearchResult struct {
	Name           string   `json:"name"`
	ServingSize    string   `json:"serving_size"`
	Calories       float64  `json:"calories"`
	Protein        float64  `json:"protein"`
	Carbs          float64  `json:"carbs"`
	Fat            float64  `json:"fat"`
	Fiber          float64  `json:"fiber"`
	Sugar          float64  `json:"sugar"`
	Sodium         string   `json:"sodium"`
	Potassium      string   `json:"potassium"`
	Cholesterol    string   `json:"cholesterol"`
	FatSaturated   string   `json:"fat_saturated"`
	HealthBenefits []string `json:"health_benefits"`
	FunFact        string   `json:"fun_fact"`
	AllItems       []Item   `json:"all_items"`
	Saved          bool     `json:"saved"`
}

// FoodFact is a curated blurb attached to search results for well-known
// foods. Seeded via cmd/seed.
type FoodFact struct {
	Name     string         `gorm:"primaryKey" json:"name"`
	Benefits pq.StringArray `gorm:"type:text[]" json:"benefits"`
	FunFact  string         `json:"fun_fact"`
}

func (FoodFact) TableName() string { return "tracking.food_facts" }
