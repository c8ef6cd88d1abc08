package catalog

import (
	"sort"
	"strings"
)

// Comparison is the result of comparing the active model sets of several
// regions against a reference region.
type Comparison struct {
	Reference string

	// Missing maps each non-reference region to the models the reference
	// region has but that region lacks.
	Missing map[string][]string
	// Unique maps each non-reference region to the models that region has
	// but the reference region lacks.
	Unique map[string][]string
	// Common holds the models present in every region.
	Common []string
	// Regions maps every model to the short codes of the regions it
	// appears in.
	Regions map[string][]string
}

// Compare builds a Comparison from per-region model sets. The reference
// region must be one of the keys in sets.
func Compare(sets map[string]ModelSet, reference string) Comparison {
	ref := sets[reference]

	comparison := Comparison{
		Reference: reference,
		Missing:   make(map[string][]string),
		Unique:    make(map[string][]string),
		Regions:   make(map[string][]string),
	}

	for region, models := range sets {
		if region != reference {
			comparison.Missing[region] = sortedDifference(ref, models)
			comparison.Unique[region] = sortedDifference(models, ref)
		}

		short := ShortRegion(region)
		for model := range models {
			comparison.Regions[model] = append(comparison.Regions[model], short)
		}
	}

	for model, regions := range comparison.Regions {
		sort.Strings(regions)
		comparison.Regions[model] = regions
	}

	comparison.Common = intersection(sets)

	return comparison
}

// ShortRegion reduces a regional base URL to its region code,
// e.g. "https://us-south.ml.cloud.ibm.com" -> "us-south".
func ShortRegion(baseURL string) string {
	short := baseURL
	if i := strings.Index(short, "//"); i >= 0 {
		short = short[i+2:]
	}
	if i := strings.Index(short, "."); i >= 0 {
		short = short[:i]
	}
	return short
}

// sortedDifference returns the models in a that are not in b, sorted.
func sortedDifference(a, b ModelSet) []string {
	diff := make([]string, 0)
	for model := range a {
		if !b.Contains(model) {
			diff = append(diff, model)
		}
	}
	sort.Strings(diff)
	return diff
}

func intersection(sets map[string]ModelSet) []string {
	var common []string

	first := true
	for _, models := range sets {
		if first {
			for model := range models {
				common = append(common, model)
			}
			first = false
			continue
		}

		kept := common[:0]
		for _, model := range common {
			if models.Contains(model) {
				kept = append(kept, model)
			}
		}
		common = kept
	}

	sort.Strings(common)
	return common
}
