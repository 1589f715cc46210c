package types

import "time"

type HealthEntry struct {
	Status      string         `json:"status"`
	Description string         `json:"description,omitempty"`
	Duration    string         `json:"duration"`
	Data        map[string]any `json:"data,omitempty"`
	Error       *string        `json:"error,omitempty"`
	Tags        []string       `json:"tags"`
}

type HealthResponse struct {
	Status        string                 `json:"status"`
	Duration      string                 `json:"duration"`
	Timestamp     time.Time              `json:"timestamp"`
	FilteredByTag string                 `json:"filteredByTag,omitempty"`
	Checks        map[string]HealthEntry `json:"checks,omitempty"`
}

type HealthTagsResponse struct {
	Tags        []string  `json:"tags"`
	TotalChecks int       `json:"totalChecks"`
	Timestamp   time.Time `json:"timestamp"`
}
