package resolver

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/evan-burke/nscheck/config"
	"github.com/evan-burke/nscheck/interfaces"
	nserrors "github.com/evan-burke/nscheck/internal/errors"
	"github.com/evan-burke/nscheck/internal/logger"
	"github.com/evan-burke/nscheck/internal/models"
	"github.com/evan-burke/nscheck/internal/tracing"
	"github.com/evan-burke/nscheck/internal/utils"
)

// ExchangeFunc sends one DNS message to the given "host:port" address. It
// exists so tests can substitute canned responses for the wire exchange.
type ExchangeFunc func(ctx context.Context, msg *dns.Msg, serverAddr string) (*dns.Msg, error)

type fixedProvider struct {
	provider models.Provider
	addr     string
}

type dnsResolverService struct {
	cfg      *config.DNSConfig
	log      logger.Logger
	exchange ExchangeFunc
}

func NewDNSResolverService(cfg *config.DNSConfig, log logger.Logger) interfaces.DNSResolverService {
	client := &dns.Client{Timeout: cfg.QueryTimeout}
	return &dnsResolverService{
		cfg: cfg,
		log: log,
		exchange: func(ctx context.Context, msg *dns.Msg, serverAddr string) (*dns.Msg, error) {
			resp, _, err := client.ExchangeContext(ctx, msg, serverAddr)
			return resp, err
		},
	}
}

func (s *dnsResolverService) fixedProviders() []fixedProvider {
	return []fixedProvider{
		{models.ProviderGoogle, s.cfg.GoogleAddr},
		{models.ProviderCloudflare, s.cfg.CloudflareAddr},
		{models.ProviderOpenDNS, s.cfg.OpenDNSAddr},
	}
}

func (s *dnsResolverService) QueryAllProviders(ctx context.Context, domain string, recordType models.RecordType, prefix string) *models.ProviderResultBundle {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DNSResolverService.QueryAllProviders")
	defer span.Finish()
	tracing.SetDefaultResolverSpanTags(ctx, span)
	tracing.TagDomain(span, domain)
	span.LogKV("request.recordType", string(recordType), "request.prefix", prefix)

	name := domain
	if prefix != "" {
		name = prefix + "." + domain
	}

	bundle := models.NewProviderResultBundle()
	sets := bundle.ProviderSets()

	var wg sync.WaitGroup
	for _, p := range s.fixedProviders() {
		wg.Add(1)
		go func(p fixedProvider, rs models.RecordSet) {
			defer wg.Done()
			values, err := s.QueryWithTimeout(ctx, name, recordType, p.addr)
			if err != nil {
				// One slow or dead provider never fails the whole check.
				s.log.Warnf("provider %s query for %s failed: %v", p.provider, name, err)
				rs.Ensure(name)
				return
			}
			rs.Add(name, values...)
		}(p, sets[p.provider])
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.queryAuthoritative(ctx, domain, name, recordType, bundle)
	}()

	wg.Wait()
	return bundle
}

func (s *dnsResolverService) QueryWithTimeout(ctx context.Context, name string, recordType models.RecordType, serverAddr string) ([]string, error) {
	if serverAddr == "" {
		serverAddr = s.cfg.TrustedAddr
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtypeOf(recordType))
	msg.RecursionDesired = true

	resp, err := s.exchange(queryCtx, msg, serverAddr)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.Wrapf(nserrors.ErrQueryTimeout, "%s %s @%s", recordType, name, serverAddr)
		}
		return nil, errors.Wrapf(err, "dns query %s %s @%s", recordType, name, serverAddr)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		return extractValues(resp, recordType), nil
	case dns.RcodeNameError:
		// NXDOMAIN degrades to an empty answer so aggregate queries keep going.
		return []string{}, nil
	default:
		return nil, errors.Errorf("dns query %s %s @%s: rcode %s", recordType, name, serverAddr, dns.RcodeToString[resp.Rcode])
	}
}

// queryAuthoritative discovers the domain's own nameservers and tries them
// in order until one returns a non-empty answer. Every candidate is kept on
// the bundle for diagnostic display, whether or not any of them answered.
func (s *dnsResolverService) queryAuthoritative(ctx context.Context, domain, name string, recordType models.RecordType, bundle *models.ProviderResultBundle) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DNSResolverService.queryAuthoritative")
	defer span.Finish()
	tracing.SetDefaultResolverSpanTags(ctx, span)
	tracing.TagDomain(span, domain)

	bundle.Authoritative.Ensure(name)

	servers := s.discoverNameservers(ctx, domain)
	bundle.AuthoritativeMeta.Servers = servers
	if len(servers) == 0 {
		span.LogKV("result.nameservers", 0)
		return
	}

	for _, host := range servers {
		addr, ok := s.resolveServerAddr(ctx, host)
		if !ok {
			// Unresolvable nameserver hostname is a silent per-server failure.
			continue
		}
		values, err := s.QueryWithTimeout(ctx, name, recordType, addr)
		if err != nil || len(values) == 0 {
			if err != nil {
				tracing.TraceErr(span, err)
			}
			continue
		}
		bundle.Authoritative.Add(name, values...)
		bundle.AuthoritativeMeta.Server = utils.StringPtr(host)
		return
	}
}

// discoverNameservers looks up NS records via the trusted resolver,
// walking up to the parent domain on failure until only two labels remain.
func (s *dnsResolverService) discoverNameservers(ctx context.Context, domain string) []string {
	candidate := domain
	for {
		hosts, err := s.QueryWithTimeout(ctx, candidate, models.RecordTypeNS, "")
		if err == nil && len(hosts) > 0 {
			return hosts
		}
		if err != nil {
			s.log.Debugf("ns lookup for %s failed: %v", candidate, err)
		}
		if utils.LabelCount(candidate) <= 2 {
			return []string{}
		}
		candidate = utils.ParentDomain(candidate)
	}
}

// resolveServerAddr turns a nameserver identifier into a dialable
// "host:port" address, resolving hostnames through the trusted resolver.
func (s *dnsResolverService) resolveServerAddr(ctx context.Context, host string) (string, bool) {
	if ip := net.ParseIP(host); ip != nil {
		return net.JoinHostPort(host, "53"), true
	}
	ips, err := s.QueryWithTimeout(ctx, host, models.RecordTypeA, "")
	if err != nil || len(ips) == 0 {
		return "", false
	}
	return net.JoinHostPort(ips[0], "53"), true
}

func qtypeOf(recordType models.RecordType) uint16 {
	switch recordType {
	case models.RecordTypeCNAME:
		return dns.TypeCNAME
	case models.RecordTypeTXT:
		return dns.TypeTXT
	case models.RecordTypeNS:
		return dns.TypeNS
	case models.RecordTypeA:
		return dns.TypeA
	default:
		return dns.TypeNone
	}
}

func extractValues(resp *dns.Msg, recordType models.RecordType) []string {
	values := []string{}
	for _, rr := range resp.Answer {
		switch record := rr.(type) {
		case *dns.CNAME:
			if recordType == models.RecordTypeCNAME {
				values = append(values, strings.TrimSuffix(record.Target, "."))
			}
		case *dns.TXT:
			if recordType == models.RecordTypeTXT {
				// TXT records may be split into multiple character strings
				values = append(values, strings.Join(record.Txt, ""))
			}
		case *dns.NS:
			if recordType == models.RecordTypeNS {
				values = append(values, strings.TrimSuffix(record.Ns, "."))
			}
		case *dns.A:
			if recordType == models.RecordTypeA {
				values = append(values, record.A.String())
			}
		}
	}
	return values
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
