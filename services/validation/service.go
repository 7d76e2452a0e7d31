package validation

import (
	"context"
	"fmt"
	"sort"

	"github.com/opentracing/opentracing-go"

	"github.com/evan-burke/nscheck/interfaces"
	"github.com/evan-burke/nscheck/internal/logger"
	"github.com/evan-burke/nscheck/internal/models"
	"github.com/evan-burke/nscheck/internal/tracing"
	"github.com/evan-burke/nscheck/internal/utils"
)

type validationService struct {
	resolver interfaces.DNSResolverService
	log      logger.Logger
}

func NewValidationService(resolver interfaces.DNSResolverService, log logger.Logger) interfaces.ValidationService {
	return &validationService{
		resolver: resolver,
		log:      log,
	}
}

func (s *validationService) ValidateResults(ctx context.Context, domain string, bundle *models.ProviderResultBundle) *models.ValidationSummary {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ValidationService.ValidateResults")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomain(span, domain)

	consolidated := consolidate(bundle)

	dkim := validateDKIM(domain, consolidated)
	common := checkDKIMCommonErrors(domain, consolidated)

	// Common-error diagnostics come first and can flip the verdict on
	// their own.
	dkim.Errors = append(common.Errors, dkim.Errors...)
	if !common.IsValid {
		dkim.IsValid = false
	}

	if noDKIMRecords(domain, consolidated) && len(common.Errors) == 0 {
		if probeErr := s.probeWWW(ctx, domain); probeErr != nil {
			dkim.Errors = append([]models.ValidationError{*probeErr}, dkim.Errors...)
			dkim.IsValid = false
		}
	}

	dmarcValues := append([]string(nil), consolidated["_dmarc."+domain]...)
	sort.Strings(dmarcValues)
	dmarc := validateDMARC(dmarcValues)

	// Consistency must see the raw per-provider answers; consolidation
	// would erase the very divergence it looks for.
	consistency := checkConsistency(bundle)

	summary := &models.ValidationSummary{
		IsValid:     dkim.IsValid && dmarc.IsValid && consistency.Consistent,
		DKIM:        dkim,
		DMARC:       dmarc,
		Consistency: consistency,
	}
	tracing.LogObjectAsJson(span, "result.validation", summary)
	return summary
}

// consolidate merges all providers' record sets into one map with
// deduplicated values per record name. Authoritative metadata is ignored.
func consolidate(bundle *models.ProviderResultBundle) models.RecordSet {
	consolidated := models.NewRecordSet()
	for _, rs := range bundle.ProviderSets() {
		for name, values := range rs {
			consolidated.Add(name, values...)
		}
	}
	for name, values := range consolidated {
		consolidated[name] = utils.UniqueStrings(values)
	}
	return consolidated
}

func noDKIMRecords(domain string, records models.RecordSet) bool {
	for _, selector := range []string{"k1", "k2", "k3"} {
		if len(records[dkimRecordName(selector, domain)]) > 0 {
			return false
		}
	}
	return true
}

// probeWWW is the "published at www without realizing it" safety net: when
// the primary lookups were all empty, check whether the selectors resolve
// under www.<domain> to a known DKIM target.
func (s *validationService) probeWWW(ctx context.Context, domain string) *models.ValidationError {
	canonical := utils.StripWWW(domain)

	for _, selector := range []string{"k1", "k2", "k3"} {
		name := dkimRecordName(selector, "www."+canonical)
		values, err := s.resolver.QueryWithTimeout(ctx, name, models.RecordTypeCNAME, "")
		if err != nil {
			// Best-effort probe; a failed lookup is not a diagnosis.
			s.log.Debugf("www probe for %s failed: %v", name, err)
			continue
		}
		if hasKnownDKIMTarget(values) {
			expected := dkimRecordName(selector, canonical)
			return &models.ValidationError{
				Type:     models.ErrorTypeWrongSubdomain,
				Message:  fmt.Sprintf("A DKIM record was found at %s but it should be published at %s.", name, expected),
				Actual:   name,
				Expected: expected,
			}
		}
	}
	return nil
}
