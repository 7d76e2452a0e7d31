package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evan-burke/nscheck/internal/logger"
	"github.com/evan-burke/nscheck/internal/models"
)

// stubResolver serves canned answers for the secondary www probe.
type stubResolver struct {
	answers map[string][]string
	queried []string
}

func (s *stubResolver) QueryAllProviders(ctx context.Context, domain string, recordType models.RecordType, prefix string) *models.ProviderResultBundle {
	return models.NewProviderResultBundle()
}

func (s *stubResolver) QueryWithTimeout(ctx context.Context, name string, recordType models.RecordType, serverAddr string) ([]string, error) {
	s.queried = append(s.queried, name)
	if values, ok := s.answers[name]; ok {
		return values, nil
	}
	return []string{}, nil
}

func testLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true, LogLevel: "error"})
	appLogger.InitLogger()
	return appLogger
}

func newTestService(resolver *stubResolver) *validationService {
	return &validationService{resolver: resolver, log: testLogger()}
}

func validBundle(domain string) *models.ProviderResultBundle {
	b := models.NewProviderResultBundle()
	for _, rs := range b.ProviderSets() {
		rs.Add("k2._domainkey."+domain, "dkim2.mcsv.net")
		rs.Add("k3._domainkey."+domain, "dkim3.mcsv.net")
		rs.Add("_dmarc."+domain, "v=DMARC1; p=reject")
	}
	return b
}

func TestValidateResults_AllValid(t *testing.T) {
	s := newTestService(&stubResolver{})

	summary := s.ValidateResults(context.Background(), "example.com", validBundle("example.com"))

	assert.True(t, summary.IsValid)
	assert.True(t, summary.DKIM.IsValid)
	assert.Empty(t, summary.DKIM.Errors)
	assert.True(t, summary.DMARC.IsValid)
	assert.True(t, summary.Consistency.Consistent)
	assert.True(t, summary.Consistency.HasSuccessfulResults)
}

func TestValidateResults_ConsolidationDeduplicates(t *testing.T) {
	s := newTestService(&stubResolver{})
	b := validBundle("example.com")

	summary := s.ValidateResults(context.Background(), "example.com", b)

	// four providers with identical answers still validate as one record
	assert.True(t, summary.DKIM.IsValid)
}

func TestValidateResults_InconsistentProvidersFailOverall(t *testing.T) {
	s := newTestService(&stubResolver{})
	b := validBundle("example.com")
	// one provider still serves a stale target
	b.OpenDNS["k2._domainkey.example.com"] = []string{"dkim3.mcsv.net"}

	summary := s.ValidateResults(context.Background(), "example.com", b)

	assert.False(t, summary.Consistency.Consistent)
	assert.False(t, summary.IsValid)
}

func TestValidateResults_WWWProbeSynthesizesWrongSubdomain(t *testing.T) {
	resolver := &stubResolver{answers: map[string][]string{
		"k2._domainkey.www.example.com": {"dkim2.mcsv.net"},
	}}
	s := newTestService(resolver)

	// primary lookups all empty
	b := models.NewProviderResultBundle()
	for _, rs := range b.ProviderSets() {
		rs.Ensure("k2._domainkey.example.com")
		rs.Ensure("k3._domainkey.example.com")
		rs.Ensure("_dmarc.example.com")
	}

	summary := s.ValidateResults(context.Background(), "example.com", b)

	assert.False(t, summary.DKIM.IsValid)
	require.NotEmpty(t, summary.DKIM.Errors)
	first := summary.DKIM.Errors[0]
	assert.Equal(t, models.ErrorTypeWrongSubdomain, first.Type)
	assert.Equal(t, "k2._domainkey.www.example.com", first.Actual)
	assert.Equal(t, "k2._domainkey.example.com", first.Expected)
}

func TestValidateResults_NoProbeWhenRecordsExist(t *testing.T) {
	resolver := &stubResolver{answers: map[string][]string{}}
	s := newTestService(resolver)

	s.ValidateResults(context.Background(), "example.com", validBundle("example.com"))

	assert.Empty(t, resolver.queried)
}

func TestValidateResults_NoProbeWhenCommonErrorFound(t *testing.T) {
	resolver := &stubResolver{answers: map[string][]string{}}
	s := newTestService(resolver)

	b := models.NewProviderResultBundle()
	// no k1/k2/k3 at the checked domain, but a wrong-subdomain key exists
	b.Google.Add("k2._domainkey.www.example.com", "dkim2.mcsv.net")

	summary := s.ValidateResults(context.Background(), "example.com", b)

	assert.Empty(t, resolver.queried)
	assert.False(t, summary.DKIM.IsValid)
	require.NotEmpty(t, summary.DKIM.Errors)
	assert.Equal(t, models.ErrorTypeWrongSubdomain, summary.DKIM.Errors[0].Type)
}

func TestValidateResults_CommonErrorsPrecedePrimaryErrors(t *testing.T) {
	s := newTestService(&stubResolver{})

	b := models.NewProviderResultBundle()
	b.Google.Add("k2._domainkey.example.com.example.com", "dkim2.mcsv.net")

	summary := s.ValidateResults(context.Background(), "example.com", b)

	require.GreaterOrEqual(t, len(summary.DKIM.Errors), 2)
	assert.Equal(t, models.ErrorTypeDuplicateDomain, summary.DKIM.Errors[0].Type)
	assert.Equal(t, models.ErrorTypeMissingRecords, summary.DKIM.Errors[1].Type)
	assert.False(t, summary.DKIM.IsValid)
}

func TestValidateResults_MultipleDMARCRecords(t *testing.T) {
	s := newTestService(&stubResolver{})
	b := validBundle("example.com")
	for _, rs := range b.ProviderSets() {
		rs.Add("_dmarc.example.com", "v=DMARC1; p=none")
	}

	summary := s.ValidateResults(context.Background(), "example.com", b)

	assert.False(t, summary.DMARC.IsValid)
	require.Len(t, summary.DMARC.Errors, 1)
	assert.Equal(t, models.ErrorTypeMultipleRecords, summary.DMARC.Errors[0].Type)
	assert.False(t, summary.IsValid)
}

func TestValidateResults_Idempotent(t *testing.T) {
	s := newTestService(&stubResolver{})
	b := validBundle("example.com")

	first := s.ValidateResults(context.Background(), "example.com", b)
	second := s.ValidateResults(context.Background(), "example.com", b)

	assert.Equal(t, first, second)
}

func TestValidateResults_IdempotentWithMultipleErrors(t *testing.T) {
	s := newTestService(&stubResolver{})

	// every selector misplaced under www, producing several diagnostics
	b := models.NewProviderResultBundle()
	b.Google.Add("k1._domainkey.www.example.com", "dkim.mcsv.net")
	b.Google.Add("k2._domainkey.www.example.com", "dkim2.mcsv.net")
	b.Google.Add("k3._domainkey.www.example.com", "dkim3.mcsv.net")

	first := s.ValidateResults(context.Background(), "example.com", b)
	require.Greater(t, len(first.DKIM.Errors), 1)

	for i := 0; i < 50; i++ {
		assert.Equal(t, first, s.ValidateResults(context.Background(), "example.com", b))
	}
}
