package catalog

import (
	"time"
)

// Function selects which class of foundation models to fetch from the
// catalog.
type Function string

const (
	FunctionChat      Function = "function_text_chat"
	FunctionEmbedding Function = "function_embedding"
)

// DefaultChatModels is the fallback list used when a catalog fetch fails,
// so model selection still works offline.
var DefaultChatModels = []string{
	"ibm/granite-3-2b-instruct",
	"ibm/granite-3-8b-instruct",
	"ibm/granite-13b-instruct-v2",
}

// LifecycleEntry is one lifecycle event of a foundation model.
type LifecycleEntry struct {
	// ID is the event type, e.g. "available", "deprecated", "withdrawn".
	ID string `json:"id"`
	// StartDate is when the event became active, "YYYY-MM-DD".
	StartDate string `json:"start_date"`
}

// ModelSpec is a single foundation model entry from
// /ml/v1/foundation_model_specs.
type ModelSpec struct {
	ModelID   string           `json:"model_id"`
	Label     string           `json:"label"`
	Provider  string           `json:"provider"`
	Lifecycle []LifecycleEntry `json:"lifecycle"`
}

type specsResponse struct {
	Resources []ModelSpec `json:"resources"`
}

// DeprecatedOrWithdrawn reports whether the model has a deprecated or
// withdrawn lifecycle entry that is already in effect at the given date.
func (s ModelSpec) DeprecatedOrWithdrawn(today time.Time) bool {
	date := today.Format("2006-01-02")

	for _, entry := range s.Lifecycle {
		if (entry.ID == "deprecated" || entry.ID == "withdrawn") && entry.StartDate <= date {
			return true
		}
	}

	return false
}

// ModelSet is a set of model IDs.
type ModelSet map[string]struct{}

func (s ModelSet) Contains(modelID string) bool {
	_, ok := s[modelID]
	return ok
}
