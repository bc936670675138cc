package nutrition

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NutriVision/NV-Backend/internal/analytics"
	"github.com/NutriVision/NV-Backend/internal/history"
	"github.com/NutriVision/NV-Backend/internal/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// FactFinder looks up curated food-fact copy by food name.
type FactFinder interface {
	Find(name string) (*FoodFact, error)
}

// Recorder persists a search to the signed-in user's history.
type Recorder interface {
	Save(rec *history.Record)
}

type Handlers struct {
	Client  *Client
	Facts   FactFinder
	Records Recorder
}

// SearchHandler proxies a free-text nutrition lookup. When a user is signed
// in, the result is also saved as a calorie_search history record;
// anonymously the search still works, nothing is persisted.
func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		http.Error(w, "Nutrition lookup is not configured", http.StatusNotImplemented)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		http.Error(w, "Missing query parameter", http.StatusBadRequest)
		return
	}

	items, err := h.Client.Search(r.Context(), query)
	if err != nil {
		http.Error(w, "Nutrition lookup failed", http.StatusBadGateway)
		return
	}
	if len(items) == 0 {
		http.Error(w, fmt.Sprintf("No nutritional data found for %q", query), http.StatusNotFound)
		return
	}

	result := h.buildSearchResult(query, items)

	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		h.Records.Save(&history.Record{
			UserID:        userID,
			Type:          history.TypeCalorieSearch,
			Filename:      query,
			SearchQuery:   query,
			Results:       toResultItems(items),
			TotalCalories: sumCalories(items),
		})
		result.Saved = true
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handlers) buildSearchResult(query string, items []Item) *SearchResult {
	primary := items[0]
	total := sumCalories(items)

	name := primary.Name
	if name == "" {
		name = query
	}

	result := &SearchResult{
		Name:         titleCaser.String(name),
		ServingSize:  fmt.Sprintf("%.0fg serving", servingOrDefault(primary.ServingSizeG)),
		Calories:     analytics.Round1(total),
		Protein:      analytics.Round1(primary.ProteinG),
		Carbs:        analytics.Round1(primary.CarbohydratesG),
		Fat:          analytics.Round1(primary.FatTotalG),
		Fiber:        analytics.Round1(primary.FiberG),
		Sugar:        analytics.Round1(primary.SugarG),
		Sodium:       fmt.Sprintf("%.0fmg", primary.SodiumMg),
		Potassium:    fmt.Sprintf("%.0fmg", primary.PotassiumMg),
		Cholesterol:  fmt.Sprintf("%.0fmg", primary.CholesterolMg),
		FatSaturated: fmt.Sprintf("%.1fg", primary.FatSaturatedG),
		AllItems:     items,
	}

	h.attachFoodFact(result, primary.Name)
	return result
}

// attachFoodFact fills in curated benefits/fun-fact copy, with generic
// fallbacks for foods we have no blurb for.
func (h *Handlers) attachFoodFact(result *SearchResult, name string) {
	// Facts are decorative; any failure here falls through to generic copy.
	if h.Facts != nil {
		if fact, err := h.Facts.Find(name); err == nil {
			result.HealthBenefits = fact.Benefits
			result.FunFact = fact.FunFact
			return
		}
	}

	result.HealthBenefits = []string{
		"Provides essential nutrients",
		"Part of a balanced diet",
		"Contains important micronutrients",
	}
	result.FunFact = fmt.Sprintf("%s is a nutritious food choice for a healthy lifestyle!", result.Name)
}

func servingOrDefault(g float64) float64 {
	if g <= 0 {
		return 100
	}
	return g
}

func sumCalories(items []Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Calories
	}
	return total
}

func toResultItems(items []Item) []history.ResultItem {
	out := make([]history.ResultItem, 0, len(items))
	for _, item := range items {
		out = append(out, history.ResultItem{
			Label:    item.Name,
			Calories: item.Calories,
			Protein:  item.ProteinG,
			Carbs:    item.CarbohydratesG,
			Fat:      item.FatTotalG,
			Mass:     item.ServingSizeG,
		})
	}
	return out
}
