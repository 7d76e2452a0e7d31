package config

import "time"

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"8080"`
}

type DNSConfig struct {
	// QueryTimeout bounds each individual DNS query.
	QueryTimeout time.Duration `env:"DNS_QUERY_TIMEOUT" envDefault:"10s"`

	GoogleAddr     string `env:"DNS_PROVIDER_GOOGLE" envDefault:"8.8.8.8:53"`
	CloudflareAddr string `env:"DNS_PROVIDER_CLOUDFLARE" envDefault:"1.1.1.1:53"`
	OpenDNSAddr    string `env:"DNS_PROVIDER_OPENDNS" envDefault:"208.67.222.222:53"`

	// TrustedAddr is the resolver used for NS discovery and nameserver
	// address resolution, so the check does not depend on the host's own
	// DNS configuration.
	TrustedAddr string `env:"DNS_TRUSTED_RESOLVER" envDefault:"8.8.8.8:53"`
}

type RateLimitConfig struct {
	DefaultHourlyLimit int `env:"RATE_LIMIT_DEFAULT" envDefault:"100"`
	// Overrides holds "ip=limit" pairs separated by commas. Keys may use a
	// wildcard for the last IPv4 octet, e.g. "10.0.0.*=500".
	Overrides string `env:"RATE_LIMIT_OVERRIDES"`
}

type CheckLogConfig struct {
	RingSize    int    `env:"CHECKLOG_RING_SIZE" envDefault:"200"`
	FileEnabled bool   `env:"CHECKLOG_FILE_ENABLED" envDefault:"false"`
	FilePath    string `env:"CHECKLOG_FILE_PATH" envDefault:"nscheck.log"`
}
