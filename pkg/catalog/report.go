package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// WriteReport renders the full region comparison in the order the sections
// are most useful: per-region counts, models missing vs the reference,
// models unique to each region, models common to all regions, and the
// master model-to-regions table.
func WriteReport(out io.Writer, sets map[string]ModelSet, comparison Comparison) {
	writeRegionSummary(out, sets)

	refShort := ShortRegion(comparison.Reference)
	writePairwise(out, fmt.Sprintf("Models in %s but missing elsewhere", refShort), comparison.Missing)
	writePairwise(out, fmt.Sprintf("Models unique to each region (not in %s)", refShort), comparison.Unique)

	writeCommon(out, comparison.Common)
	writeModelRegions(out, comparison.Regions)
}

func writeRegionSummary(out io.Writer, sets map[string]ModelSet) {
	fmt.Fprintln(out, "Active models per region:")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tCOUNT")

	for _, region := range sortedKeys(sets) {
		fmt.Fprintf(w, "%s\t%d\n", ShortRegion(region), len(sets[region]))
	}

	_ = w.Flush()
}

func writePairwise(out io.Writer, title string, data map[string][]string) {
	fmt.Fprintf(out, "\n%s:\n", title)

	rows := 0
	for _, models := range data {
		rows += len(models)
	}
	if rows == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tMODEL ID")

	for _, region := range sortedKeys(data) {
		for _, model := range data[region] {
			fmt.Fprintf(w, "%s\t%s\n", ShortRegion(region), model)
		}
	}

	_ = w.Flush()
}

func writeCommon(out io.Writer, common []string) {
	fmt.Fprintln(out, "\nModels present in all regions:")

	if len(common) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}

	for _, model := range common {
		fmt.Fprintf(out, "  - %s\n", model)
	}
}

func writeModelRegions(out io.Writer, regions map[string][]string) {
	fmt.Fprintln(out, "\nAll models and their regions:")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL ID\tREGIONS")

	models := make([]string, 0, len(regions))
	for model := range regions {
		models = append(models, model)
	}
	sort.Strings(models)

	for _, model := range models {
		fmt.Fprintf(w, "%s\t%s\n", model, strings.Join(regions[model], ", "))
	}

	_ = w.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
