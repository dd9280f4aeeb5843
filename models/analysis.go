package models

import "strings"

// AnalysisRequest is the transient payload submitted for nutrition
// estimation. At least one of the two fields must be non-blank; it is
// never persisted.
type AnalysisRequest struct {
	Description string `json:"description,omitempty"`
	// Raw base64 image bytes, without any data-URI prefix.
	ImageBase64 string `json:"image_base64,omitempty"`
}

// Empty reports whether the request carries neither modality.
func (r AnalysisRequest) Empty() bool {
	return strings.TrimSpace(r.Description) == "" && strings.TrimSpace(r.ImageBase64) == ""
}

// NutritionResult is the four-field estimate returned by the model.
// All fields are non-negative; fields the model omits come back as 0.
type NutritionResult struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}
