package domain

// FoodCandidate is one food named by an image or language model
type FoodCandidate struct {
	Name       string   `json:"name" binding:"required"`
	Confidence *float64 `json:"confidence,omitempty"`
	Hints      []string `json:"hints,omitempty"`
}

// ModelPortion is the model's own portion guess, passed through untouched
type ModelPortion struct {
	Label      string    `json:"label,omitempty"`
	GramsRange []float64 `json:"grams_range,omitempty"`
	Reference  string    `json:"reference,omitempty"`
}

// VisionResult is the structured payload a vision model is prompted to return
type VisionResult struct {
	FoodCandidates []FoodCandidate `json:"food_candidates"`
	Ingredients    []string        `json:"ingredients,omitempty"`
	CookingMethod  string          `json:"cooking_method,omitempty"`
	Portion        *ModelPortion   `json:"portion,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// SuggestRequest carries either candidates or a raw model response
type SuggestRequest struct {
	Candidates  []FoodCandidate `json:"candidates"`
	RawResponse string          `json:"rawResponse"`
	Limit       int             `json:"limit"`
	Profile     string          `json:"profile"`
}

// Suggestion pairs a candidate with its best record and a portion estimate
type Suggestion struct {
	Name       string          `json:"name"`
	Confidence *float64        `json:"confidence,omitempty"`
	Match      *MatchResult    `json:"match,omitempty"`
	Portion    PortionEstimate `json:"portion"`
	Notes      string          `json:"notes,omitempty"`
}

// SuggestResponse is returned by the vision suggestion endpoint
type SuggestResponse struct {
	Items      []Suggestion  `json:"items"`
	Vision     *VisionResult `json:"vision,omitempty"`
	Generation uint64        `json:"generation"`
}

// ParseResponse is returned by the model output parse endpoint
type ParseResponse struct {
	Parsed  VisionResult `json:"parsed"`
	DBMatch *FoodRecord  `json:"dbMatch,omitempty"`
}
