package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evan-burke/nscheck/internal/models"
	"github.com/evan-burke/nscheck/internal/utils"
)

const (
	dkimTargetK1 = "dkim.mcsv.net"
	dkimTargetK2 = "dkim2.mcsv.net"
	dkimTargetK3 = "dkim3.mcsv.net"
)

var knownDKIMTargets = []string{dkimTargetK1, dkimTargetK2, dkimTargetK3}

func dkimRecordName(selector, domain string) string {
	return selector + "._domainkey." + domain
}

// validateDKIM inspects the consolidated k1/k2/k3 CNAME values for the
// domain. The k2/k3 pair is the current setup; k1 alone is the legacy one.
func validateDKIM(domain string, records models.RecordSet) models.ValidationResult {
	k1 := records[dkimRecordName("k1", domain)]
	k2 := records[dkimRecordName("k2", domain)]
	k3 := records[dkimRecordName("k3", domain)]

	result := models.ValidationResult{Errors: []models.ValidationError{}}

	if len(k2) > 0 && len(k3) > 0 {
		switch {
		case utils.IsStringInSlice(dkimTargetK2, k2) && utils.IsStringInSlice(dkimTargetK3, k3):
			result.IsValid = true
		case utils.IsStringInSlice(dkimTargetK3, k2) && utils.IsStringInSlice(dkimTargetK2, k3):
			result.Errors = append(result.Errors, models.ValidationError{
				Type:    models.ErrorTypeSwitchedRecords,
				Message: fmt.Sprintf("The k2 and k3 records for %s point at each other's destinations. k2 must point to %s and k3 to %s.", domain, dkimTargetK2, dkimTargetK3),
			})
		default:
			result.Errors = append(result.Errors, models.ValidationError{
				Type:    models.ErrorTypeIncorrectDestination,
				Message: fmt.Sprintf("The DKIM CNAME records for %s do not point to the expected destinations (%s and %s).", domain, dkimTargetK2, dkimTargetK3),
			})
		}
		return result
	}

	if utils.IsStringInSlice(dkimTargetK1, k1) {
		result.IsValid = true
		return result
	}

	if len(k1) == 0 && len(k2) == 0 && len(k3) == 0 {
		result.Errors = append(result.Errors, models.ValidationError{
			Type:    models.ErrorTypeMissingRecords,
			Message: fmt.Sprintf("No DKIM CNAME records found for %s.", domain),
		})
		return result
	}

	result.Errors = append(result.Errors, models.ValidationError{
		Type:    models.ErrorTypeInvalidRecords,
		Message: fmt.Sprintf("DKIM records exist for %s but do not match any expected configuration.", domain),
	})
	return result
}

// checkDKIMCommonErrors is an independent diagnostic pass over the record
// names themselves, catching records published at the wrong host.
func checkDKIMCommonErrors(domain string, records models.RecordSet) models.ValidationResult {
	result := models.ValidationResult{IsValid: true, Errors: []models.ValidationError{}}
	canonical := utils.StripWWW(domain)
	checkingWWW := strings.HasPrefix(domain, "www.")

	// Map iteration order is randomized; walk the names sorted so repeated
	// runs over the same records report errors in the same order.
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := records[name]
		// Record published with a spurious www label, or checked domain is
		// www.X while the record sits under _domainkey. Either way the
		// expected name is computed against the canonical non-www domain.
		wwwSuspect := strings.Contains(name, "_domainkey.www.") ||
			(checkingWWW && strings.Contains(name, "_domainkey."))
		if wwwSuspect && hasKnownDKIMTarget(values) {
			if i := strings.Index(name, "_domainkey."); i >= 0 {
				expected := name[:i] + "_domainkey." + canonical
				if expected != name {
					result.Errors = append(result.Errors, models.ValidationError{
						Type:     models.ErrorTypeWrongSubdomain,
						Message:  fmt.Sprintf("A DKIM record was found at %s but it should be published at %s.", name, expected),
						Actual:   name,
						Expected: expected,
					})
				}
			}
		}

		// Domain pasted twice, typically a zone file appending the origin
		// to an already fully qualified host name.
		doubled := "_domainkey." + canonical + "." + canonical
		if strings.Contains(name, doubled) {
			expected := strings.Replace(name, canonical+"."+canonical, canonical, 1)
			result.Errors = append(result.Errors, models.ValidationError{
				Type:     models.ErrorTypeDuplicateDomain,
				Message:  fmt.Sprintf("The record name %s repeats the domain. It should be %s.", name, expected),
				Actual:   name,
				Expected: expected,
			})
		}
	}

	if len(result.Errors) > 0 {
		result.IsValid = false
	}
	return result
}

func hasKnownDKIMTarget(values []string) bool {
	for _, v := range values {
		if utils.IsStringInSlice(v, knownDKIMTargets) {
			return true
		}
	}
	return false
}
