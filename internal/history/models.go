package history

import (
	"time"
)

const (
	TypeImageAnalysis = "image_analysis"
	TypeCalorieSearch = "calorie_search"
)

// ResultItem is one detected or looked-up food inside a record.
type ResultItem struct {
	Label      string  `json:"label"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Mass       float64 `json:"mass"`
	Confidence float64 `json:"confidence"`
}

// Record is one persisted analysis result, image- or search-based. Immutable
// once written except for deletion by its owner. TotalCalories is computed by
// the writer from the per-item calories and not re-validated afterwards.
type Record struct {
	ID             string       `gorm:"primaryKey" json:"id"`
	UserID         string       `gorm:"index;not null" json:"user_id"`
	Type           string       `json:"type"`
	Filename       string       `json:"filename"`
	SearchQuery    string       `json:"search_query"`
	Results        []ResultItem `gorm:"serializer:json;type:jsonb" json:"results"`
	TotalCalories  float64      `json:"total_calories"`
	OriginalImage  string       `json:"original_image,omitempty"`
	AnnotatedImage string       `json:"annotated_image,omitempty"`
	ThumbDetected  bool         `json:"thumb_detected"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (Record) TableName() string { return "tracking.food_analysis_history" }
