package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evan-burke/nscheck/internal/models"
	"github.com/evan-burke/nscheck/services"
)

type stubResolver struct {
	bundles map[string]*models.ProviderResultBundle
}

func (s *stubResolver) QueryAllProviders(ctx context.Context, domain string, recordType models.RecordType, prefix string) *models.ProviderResultBundle {
	if b, ok := s.bundles[prefix]; ok {
		return b
	}
	name := prefix + "." + domain
	b := models.NewProviderResultBundle()
	b.Google.Ensure(name)
	b.Cloudflare.Ensure(name)
	b.OpenDNS.Ensure(name)
	b.Authoritative.Ensure(name)
	return b
}

func (s *stubResolver) QueryWithTimeout(ctx context.Context, name string, recordType models.RecordType, serverAddr string) ([]string, error) {
	return []string{}, nil
}

type stubValidation struct {
	summary *models.ValidationSummary
	domain  string
}

func (s *stubValidation) ValidateResults(ctx context.Context, domain string, bundle *models.ProviderResultBundle) *models.ValidationSummary {
	s.domain = domain
	return s.summary
}

type stubCheckLog struct {
	entries []models.CheckLogEntry
}

func (s *stubCheckLog) Record(entry models.CheckLogEntry) {
	s.entries = append(s.entries, entry)
}

func (s *stubCheckLog) Recent(n int) []models.CheckLogEntry {
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]models.CheckLogEntry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

func validSummary() *models.ValidationSummary {
	return &models.ValidationSummary{
		IsValid: true,
		DKIM:    models.ValidationResult{IsValid: true, Errors: []models.ValidationError{}},
		DMARC:   models.ValidationResult{IsValid: true, Errors: []models.ValidationError{}},
		Consistency: models.ConsistencyResult{
			Consistent:           true,
			HasSuccessfulResults: true,
		},
	}
}

func newTestRouter(s *services.Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDomainCheckHandler(s)
	r.GET("/api/domain", h.CheckDomain())
	return r
}

func TestCheckDomain_MissingDomainParameter(t *testing.T) {
	checkLog := &stubCheckLog{}
	router := newTestRouter(&services.Services{
		DNSResolverService: &stubResolver{},
		ValidationService:  &stubValidation{summary: validSummary()},
		CheckLogService:    checkLog,
	})

	for _, target := range []string{"/api/domain", "/api/domain?domain="} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Missing required parameter: domain", body["error"])
	}

	assert.Empty(t, checkLog.entries, "failed requests should not be logged")
}

func TestCheckDomain_HappyPath(t *testing.T) {
	k2 := models.NewProviderResultBundle()
	k2.Google.Add("k2._domainkey.example.com", "dkim2.mcsv.net")
	k2.Cloudflare.Add("k2._domainkey.example.com", "dkim2.mcsv.net")
	k2.OpenDNS.Add("k2._domainkey.example.com", "dkim2.mcsv.net")
	k2.Authoritative.Add("k2._domainkey.example.com", "dkim2.mcsv.net")

	validation := &stubValidation{summary: validSummary()}
	checkLog := &stubCheckLog{}
	router := newTestRouter(&services.Services{
		DNSResolverService: &stubResolver{bundles: map[string]*models.ProviderResultBundle{"k2._domainkey": k2}},
		ValidationService:  validation,
		CheckLogService:    checkLog,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/domain?domain=https://example.com/signup", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Domain     string                    `json:"domain"`
		Results    map[string]json.RawMessage `json:"results"`
		Validation *models.ValidationSummary `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// URL decoration is stripped before the check runs
	assert.Equal(t, "example.com", body.Domain)
	assert.Equal(t, "example.com", validation.domain)

	assert.Contains(t, body.Results, "google")
	assert.Contains(t, body.Results, "cloudflare")
	assert.Contains(t, body.Results, "openDNS")
	assert.Contains(t, body.Results, "authoritative")

	var google map[string][]string
	require.NoError(t, json.Unmarshal(body.Results["google"], &google))
	assert.Equal(t, []string{"dkim2.mcsv.net"}, google["k2._domainkey.example.com"])

	require.NotNil(t, body.Validation)
	assert.True(t, body.Validation.IsValid)

	// The check was logged with the caller's forwarded IP
	require.Len(t, checkLog.entries, 1)
	entry := checkLog.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "example.com", entry.Domain)
	assert.True(t, entry.Success)
	assert.Equal(t, "203.0.113.9", entry.IP)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestCheckDomain_FailedValidationIsLoggedWithErrors(t *testing.T) {
	summary := &models.ValidationSummary{
		IsValid: false,
		DKIM: models.ValidationResult{
			IsValid: false,
			Errors: []models.ValidationError{
				{Type: models.ErrorTypeMissingRecords, Message: "no DKIM records found"},
			},
		},
		DMARC: models.ValidationResult{
			IsValid: false,
			Errors: []models.ValidationError{
				{Type: models.ErrorTypeMissingRecord, Message: "no DMARC record found"},
			},
		},
		Consistency: models.ConsistencyResult{Consistent: true},
	}

	checkLog := &stubCheckLog{}
	router := newTestRouter(&services.Services{
		DNSResolverService: &stubResolver{},
		ValidationService:  &stubValidation{summary: summary},
		CheckLogService:    checkLog,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/domain?domain=broken.example", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, checkLog.entries, 1)
	entry := checkLog.entries[0]
	assert.False(t, entry.Success)
	assert.Equal(t, []string{"no DKIM records found", "no DMARC record found"}, entry.Errors)
}

func TestHistoryHandler_Recent(t *testing.T) {
	checkLog := &stubCheckLog{}
	checkLog.Record(models.CheckLogEntry{ID: "a", Domain: "one.example"})
	checkLog.Record(models.CheckLogEntry{ID: "b", Domain: "two.example"})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHistoryHandler(&services.Services{CheckLogService: checkLog})
	r.GET("/api/history", h.Recent())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "b", body.Entries[0].ID)
	assert.Equal(t, "a", body.Entries[1].ID)
}

func TestHistoryHandler_RejectsInvalidCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHistoryHandler(&services.Services{CheckLogService: &stubCheckLog{}})
	r.GET("/api/history", h.Recent())

	for _, raw := range []string{"0", "-3", "many"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/history?n="+raw, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "n=%s", raw)
	}
}
