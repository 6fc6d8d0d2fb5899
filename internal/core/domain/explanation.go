package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FeaturizationEntry describes how one raw column was featurized.
type FeaturizationEntry struct {
	RawFeatureName         string   `json:"RawFeatureName"`
	TypeDetected           string   `json:"TypeDetected"`
	Dropped                string   `json:"Dropped"`
	EngineeredFeatureCount int      `json:"EngineeredFeatureCount"`
	Transformations        []string `json:"Transformations"`
}

type FeaturizationSummary struct {
	Entries []FeaturizationEntry
}

// ParseFeaturizationSummary decodes the summary file the platform writes
// next to the best model.
func ParseFeaturizationSummary(data []byte) (*FeaturizationSummary, error) {
	var entries []FeaturizationEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeaturizationData, err)
	}
	return &FeaturizationSummary{Entries: entries}, nil
}

// EngineeredFeatureCount sums engineered features over all kept columns.
func (s *FeaturizationSummary) EngineeredFeatureCount() int {
	total := 0
	for _, e := range s.Entries {
		total += e.EngineeredFeatureCount
	}
	return total
}

// FeatureScore is a single ranked importance value.
type FeatureScore struct {
	Name  string
	Value float64
}

// FeatureImportance holds global importance values computed remotely.
// Raw importances are keyed by input column, engineered ones by
// generated feature.
type FeatureImportance struct {
	Raw    bool               `json:"raw"`
	Values map[string]float64 `json:"feature_importance"`
}

// Ranked orders features by descending importance, ties by name.
func (f *FeatureImportance) Ranked() []FeatureScore {
	out := make([]FeatureScore, 0, len(f.Values))
	for name, v := range f.Values {
		out = append(out, FeatureScore{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Top returns at most n of the highest ranked features.
func (f *FeatureImportance) Top(n int) []FeatureScore {
	ranked := f.Ranked()
	if n >= 0 && n < len(ranked) {
		return ranked[:n]
	}
	return ranked
}
