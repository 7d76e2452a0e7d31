package interfaces

import (
	"context"

	"github.com/evan-burke/nscheck/internal/models"
)

type DNSResolverService interface {
	// QueryAllProviders queries every configured provider for
	// prefix+"."+domain (or just domain when prefix is empty). It always
	// returns a bundle: provider timeouts and NXDOMAIN answers degrade to
	// empty record lists, never to an error.
	QueryAllProviders(ctx context.Context, domain string, recordType models.RecordType, prefix string) *models.ProviderResultBundle

	// QueryWithTimeout performs a single query against serverAddr, or the
	// trusted resolver when serverAddr is empty. NXDOMAIN yields an empty
	// list; a timeout or transport failure is returned as an error.
	QueryWithTimeout(ctx context.Context, name string, recordType models.RecordType, serverAddr string) ([]string, error)
}
