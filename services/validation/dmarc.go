package validation

import (
	"strings"

	"github.com/evan-burke/nscheck/internal/models"
)

var dmarcPolicies = []string{"reject", "quarantine", "none"}

// validateDMARC applies the deliberately minimal DMARC rule set: exactly
// one v=DMARC1 record with a recognized p= policy. Remaining tags are
// accepted unchecked.
func validateDMARC(txtValues []string) models.ValidationResult {
	result := models.ValidationResult{Errors: []models.ValidationError{}}

	matches := []string{}
	for _, value := range txtValues {
		if strings.Contains(value, "v=DMARC1") {
			matches = append(matches, value)
		}
	}

	switch {
	case len(matches) == 0:
		result.Errors = append(result.Errors, models.ValidationError{
			Type:    models.ErrorTypeMissingRecord,
			Message: "No DMARC record found. Publish a TXT record at _dmarc.<domain> starting with v=DMARC1.",
		})
	case len(matches) > 1:
		// Multiple DMARC records are themselves a misconfiguration, even if
		// each one is individually well formed.
		result.Errors = append(result.Errors, models.ValidationError{
			Type:    models.ErrorTypeMultipleRecords,
			Message: "Multiple DMARC records found. Receivers will ignore all of them; keep exactly one.",
		})
	default:
		if hasRecognizedPolicy(matches[0]) {
			result.IsValid = true
		} else {
			result.Errors = append(result.Errors, models.ValidationError{
				Type:    models.ErrorTypeInvalidSyntax,
				Message: "The DMARC record is missing a valid p= tag (reject, quarantine, or none).",
			})
		}
	}

	return result
}

func hasRecognizedPolicy(record string) bool {
	for _, part := range strings.Split(record, ";") {
		part = strings.TrimSpace(strings.ToLower(part))
		if !strings.HasPrefix(part, "p=") {
			continue
		}
		policy := strings.TrimSpace(strings.TrimPrefix(part, "p="))
		for _, allowed := range dmarcPolicies {
			if policy == allowed {
				return true
			}
		}
	}
	return false
}
