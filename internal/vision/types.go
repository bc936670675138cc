package vision

// DetectionResult is one detected food in the analysis server's response.
// The server emits mass/energy/confidence as formatted strings; they are
// parsed before anything numeric is done with them.
type DetectionResult struct {
	Label      string `json:"Label"`
	Confidence string `json:"Confidence"`
	MassG      string `json:"Mass (g)"`
	EnergyKcal string `json:"Energy (kcal)"`
}

// Analysis is the detection server's response to an /analyze upload.
type Analysis struct {
	Results        []DetectionResult `json:"results"`
	TotalCalories  float64           `json:"total_calories"`
	AnnotatedImage string            `json:"annotated_image"`
	ThumbDetected  bool              `json:"thumb_detected"`
}
