// Package catalog serves the static condition and intake-question catalog.
package catalog

// Condition is a chronic-disease category patients browse before booking.
type Condition struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Icon           string   `json:"icon"`
	Color          string   `json:"color"`
	CommonSymptoms []string `json:"common_symptoms"`
	DisplayOrder   int      `json:"display_order"`
	IsActive       bool     `json:"is_active"`
}

// Question is an immutable catalog entry; OrderIndex defines the fixed
// sequence for a condition's intake script.
type Question struct {
	ID          string   `json:"id"`
	ConditionID string   `json:"condition_id"`
	OrderIndex  int      `json:"order_index"`
	Text        string   `json:"question_text"`
	Options     []string `json:"options"`
}
