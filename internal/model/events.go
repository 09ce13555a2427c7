package model

// SearchRequested is emitted once per catalog search for traffic analysis.
// It is published to Kafka topic catalog.search.requests.
type SearchRequested struct {
	Query          string `json:"q"`
	Brand          string `json:"brand,omitempty"`
	Category       string `json:"type,omitempty"`
	Kind           string `json:"kind"`
	Count          int    `json:"count"`
	Fallback       bool   `json:"fallback"`             // served from local indices after the vendor probe failed
	DurationMillis int64  `json:"duration_ms"`
	Timestamp      string `json:"timestamp"`
}
