package models

import (
	"encoding/json"
	"time"
)

// RecordType is the subset of DNS record types the checker queries.
type RecordType string

const (
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeNS    RecordType = "NS"
	RecordTypeA     RecordType = "A"
)

// Provider identifies one of the DNS providers queried during a check.
type Provider string

const (
	ProviderGoogle        Provider = "google"
	ProviderCloudflare    Provider = "cloudflare"
	ProviderOpenDNS       Provider = "openDNS"
	ProviderAuthoritative Provider = "authoritative"
)

// RecordSet maps a fully-qualified record name to the values observed for
// it (CNAME targets or TXT strings). Absence of a record is represented as
// an empty slice, never a missing key, once the name has been queried.
type RecordSet map[string][]string

func NewRecordSet() RecordSet {
	return make(RecordSet)
}

// Ensure guarantees the name is present with a non-nil value list.
func (rs RecordSet) Ensure(name string) {
	if rs[name] == nil {
		rs[name] = []string{}
	}
}

// Add appends values for a record name, keeping the value list non-nil.
func (rs RecordSet) Add(name string, values ...string) {
	rs.Ensure(name)
	rs[name] = append(rs[name], values...)
}

// AuthoritativeMeta describes the authoritative-nameserver probe: every
// candidate server discovered for the domain, and which one (if any)
// produced a non-empty answer.
type AuthoritativeMeta struct {
	Server  *string
	Servers []string
}

// ProviderResultBundle holds one RecordSet per provider for a single query
// round, plus the authoritative-probe metadata.
type ProviderResultBundle struct {
	Google            RecordSet
	Cloudflare        RecordSet
	OpenDNS           RecordSet
	Authoritative     RecordSet
	AuthoritativeMeta AuthoritativeMeta
}

func NewProviderResultBundle() *ProviderResultBundle {
	return &ProviderResultBundle{
		Google:        NewRecordSet(),
		Cloudflare:    NewRecordSet(),
		OpenDNS:       NewRecordSet(),
		Authoritative: NewRecordSet(),
		AuthoritativeMeta: AuthoritativeMeta{
			Servers: []string{},
		},
	}
}

// ProviderSets returns the per-provider record sets keyed by provider name.
// Metadata is not included.
func (b *ProviderResultBundle) ProviderSets() map[Provider]RecordSet {
	return map[Provider]RecordSet{
		ProviderGoogle:        b.Google,
		ProviderCloudflare:    b.Cloudflare,
		ProviderOpenDNS:       b.OpenDNS,
		ProviderAuthoritative: b.Authoritative,
	}
}

// Merge folds another bundle into this one, record name by record name.
// Used when a check issues several query rounds (DKIM CNAMEs plus the
// DMARC TXT lookup).
func (b *ProviderResultBundle) Merge(other *ProviderResultBundle) {
	if other == nil {
		return
	}
	dst := b.ProviderSets()
	for provider, src := range other.ProviderSets() {
		for name, values := range src {
			dst[provider].Add(name, values...)
		}
	}
	if other.AuthoritativeMeta.Server != nil {
		b.AuthoritativeMeta.Server = other.AuthoritativeMeta.Server
	}
	if len(other.AuthoritativeMeta.Servers) > 0 {
		b.AuthoritativeMeta.Servers = other.AuthoritativeMeta.Servers
	}
}

// MarshalJSON renders the bundle in the wire shape consumed by the UI:
// each provider is a record-name to value-list object, with the
// authoritative entry additionally carrying the probe metadata inline.
func (b *ProviderResultBundle) MarshalJSON() ([]byte, error) {
	authoritative := make(map[string]interface{}, len(b.Authoritative)+2)
	for name, values := range b.Authoritative {
		authoritative[name] = values
	}
	authoritative["authoritativeServer"] = b.AuthoritativeMeta.Server
	if b.AuthoritativeMeta.Servers != nil {
		authoritative["authoritativeServers"] = b.AuthoritativeMeta.Servers
	} else {
		authoritative["authoritativeServers"] = []string{}
	}

	return json.Marshal(map[string]interface{}{
		string(ProviderGoogle):        b.Google,
		string(ProviderCloudflare):    b.Cloudflare,
		string(ProviderOpenDNS):       b.OpenDNS,
		string(ProviderAuthoritative): authoritative,
	})
}

// ValidationErrorType is the closed set of diagnosable misconfigurations.
type ValidationErrorType string

const (
	// DKIM
	ErrorTypeMissingRecords       ValidationErrorType = "missingRecords"
	ErrorTypeInvalidRecords       ValidationErrorType = "invalidRecords"
	ErrorTypeIncorrectDestination ValidationErrorType = "incorrectDestination"
	ErrorTypeSwitchedRecords      ValidationErrorType = "switchedRecords"

	// DMARC
	ErrorTypeMissingRecord   ValidationErrorType = "missingRecord"
	ErrorTypeMultipleRecords ValidationErrorType = "multipleRecords"
	ErrorTypeInvalidSyntax   ValidationErrorType = "invalidSyntax"

	// Common-error diagnostics, either area
	ErrorTypeWrongSubdomain  ValidationErrorType = "wrongSubdomain"
	ErrorTypeDuplicateDomain ValidationErrorType = "duplicateDomain"
)

// ValidationError is a structured diagnosis of one misconfiguration.
// Actual/Expected are record names used to render "what it looks like vs.
// what it should look like" and are set only when a concrete substitution
// exists.
type ValidationError struct {
	Type     ValidationErrorType `json:"type"`
	Message  string              `json:"message"`
	Actual   string              `json:"actual,omitempty"`
	Expected string              `json:"expected,omitempty"`
}

type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

type ConsistencyResult struct {
	Consistent           bool `json:"consistent"`
	HasSuccessfulResults bool `json:"hasSuccessfulResults"`
}

// ValidationSummary is the overall verdict for one check. It is recomputed
// fresh on every request and never persisted.
type ValidationSummary struct {
	IsValid     bool              `json:"isValid"`
	DKIM        ValidationResult  `json:"dkim"`
	DMARC       ValidationResult  `json:"dmarc"`
	Consistency ConsistencyResult `json:"consistency"`
}

// CheckLogEntry is one record in the check history ring buffer.
type CheckLogEntry struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Domain    string             `json:"domain"`
	Success   bool               `json:"success"`
	IP        string             `json:"ip,omitempty"`
	Summary   *ValidationSummary `json:"validation,omitempty"`
	Errors    []string           `json:"errors,omitempty"`
}
