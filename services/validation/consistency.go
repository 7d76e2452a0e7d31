package validation

import (
	"sort"
	"strings"

	"github.com/evan-burke/nscheck/internal/models"
)

// checkConsistency compares each record name's values across the raw
// per-provider results. Every provider that was queried for the name
// participates, empty answers included: a record some providers see and
// others don't is the propagation case this check exists to flag.
func checkConsistency(bundle *models.ProviderResultBundle) models.ConsistencyResult {
	result := models.ConsistencyResult{Consistent: true}

	names := map[string]struct{}{}
	sets := bundle.ProviderSets()
	for _, rs := range sets {
		for name := range rs {
			names[name] = struct{}{}
		}
	}

	for name := range names {
		distinct := map[string]struct{}{}
		for _, rs := range sets {
			values, queried := rs[name]
			if !queried {
				// A provider that never saw the name cannot disagree.
				continue
			}
			if len(values) > 0 {
				result.HasSuccessfulResults = true
			}
			distinct[serializeValues(name, values)] = struct{}{}
		}
		if len(distinct) > 1 {
			result.Consistent = false
		}
	}

	return result
}

// serializeValues produces a comparable form of a value list. Provider
// ordering of multi-value TXT answers is not meaningful, so DMARC lists
// are sorted before comparison; CNAME answers are single-valued in
// practice and kept as-is.
func serializeValues(name string, values []string) string {
	if strings.HasPrefix(name, "_dmarc.") {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		return strings.Join(sorted, "\n")
	}
	return strings.Join(values, "\n")
}
