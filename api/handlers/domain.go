package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/evan-burke/nscheck/api/middleware"
	"github.com/evan-burke/nscheck/interfaces"
	nserrors "github.com/evan-burke/nscheck/internal/errors"
	"github.com/evan-burke/nscheck/internal/models"
	"github.com/evan-burke/nscheck/internal/tracing"
	"github.com/evan-burke/nscheck/internal/utils"
	"github.com/evan-burke/nscheck/services"
)

type DomainCheckHandler struct {
	resolverService   interfaces.DNSResolverService
	validationService interfaces.ValidationService
	checkLogService   interfaces.CheckLogService
}

func NewDomainCheckHandler(s *services.Services) *DomainCheckHandler {
	return &DomainCheckHandler{
		resolverService:   s.DNSResolverService,
		validationService: s.ValidationService,
		checkLogService:   s.CheckLogService,
	}
}

type DomainCheckResponse struct {
	Domain     string                       `json:"domain"`
	Results    *models.ProviderResultBundle `json:"results"`
	Validation *models.ValidationSummary    `json:"validation"`
}

// queryRound is one multi-provider lookup performed during a check.
type queryRound struct {
	prefix     string
	recordType models.RecordType
}

var checkRounds = []queryRound{
	{"k1._domainkey", models.RecordTypeCNAME},
	{"k2._domainkey", models.RecordTypeCNAME},
	{"k3._domainkey", models.RecordTypeCNAME},
	{"_dmarc", models.RecordTypeTXT},
}

// CheckDomain runs the full DKIM/DMARC check for the domain named in the
// query string.
func (h *DomainCheckHandler) CheckDomain() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainCheckHandler.CheckDomain")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		domain := utils.ExtractDomain(c.Query("domain"))
		if domain == "" {
			tracing.TraceErr(span, nserrors.ErrMissingDomain)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: domain"})
			return
		}

		checkID := utils.GenerateCheckID()
		tracing.TagDomain(span, domain)
		tracing.TagCheckId(span, checkID)

		bundle := h.runQueries(ctx, domain)
		summary := h.validationService.ValidateResults(ctx, domain, bundle)

		h.checkLogService.Record(models.CheckLogEntry{
			ID:        checkID,
			Timestamp: time.Now().UTC(),
			Domain:    domain,
			Success:   summary.IsValid,
			IP:        middleware.ClientIP(c),
			Summary:   summary,
			Errors:    errorMessages(summary),
		})

		c.JSON(http.StatusOK, DomainCheckResponse{
			Domain:     domain,
			Results:    bundle,
			Validation: summary,
		})
	}
}

// runQueries fires every query round concurrently and merges the results
// into a single bundle.
func (h *DomainCheckHandler) runQueries(ctx context.Context, domain string) *models.ProviderResultBundle {
	results := make([]*models.ProviderResultBundle, len(checkRounds))

	var wg sync.WaitGroup
	for i, round := range checkRounds {
		wg.Add(1)
		go func(i int, round queryRound) {
			defer wg.Done()
			results[i] = h.resolverService.QueryAllProviders(ctx, domain, round.recordType, round.prefix)
		}(i, round)
	}
	wg.Wait()

	bundle := models.NewProviderResultBundle()
	for _, result := range results {
		bundle.Merge(result)
	}
	return bundle
}

func errorMessages(summary *models.ValidationSummary) []string {
	var messages []string
	for _, e := range summary.DKIM.Errors {
		messages = append(messages, e.Message)
	}
	for _, e := range summary.DMARC.Errors {
		messages = append(messages, e.Message)
	}
	return messages
}
