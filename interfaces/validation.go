package interfaces

import (
	"context"

	"github.com/evan-burke/nscheck/internal/models"
)

type ValidationService interface {
	// ValidateResults consolidates the per-provider results, runs the DKIM
	// and DMARC validators plus the consistency analyzer, and composes the
	// overall verdict. Pure with respect to its inputs except for the
	// secondary www probe performed when no DKIM records were found.
	ValidateResults(ctx context.Context, domain string, bundle *models.ProviderResultBundle) *models.ValidationSummary
}
