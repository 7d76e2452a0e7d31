package services

import (
	"github.com/evan-burke/nscheck/config"
	"github.com/evan-burke/nscheck/interfaces"
	"github.com/evan-burke/nscheck/internal/limiter"
	"github.com/evan-burke/nscheck/internal/logger"
	"github.com/evan-burke/nscheck/services/checklog"
	"github.com/evan-burke/nscheck/services/resolver"
	"github.com/evan-burke/nscheck/services/validation"
)

type Services struct {
	DNSResolverService interfaces.DNSResolverService
	ValidationService  interfaces.ValidationService
	CheckLogService    interfaces.CheckLogService
	Limiter            *limiter.Limiter
}

func InitServices(cfg *config.Config, log logger.Logger) *Services {
	dnsResolver := resolver.NewDNSResolverService(cfg.DNSConfig, log)

	return &Services{
		DNSResolverService: dnsResolver,
		ValidationService:  validation.NewValidationService(dnsResolver, log),
		CheckLogService:    checklog.NewCheckLogService(cfg.CheckLogConfig, log),
		Limiter: limiter.New(&limiter.Config{
			DefaultHourlyLimit: cfg.RateLimitConfig.DefaultHourlyLimit,
			Overrides:          limiter.ParseOverrides(cfg.RateLimitConfig.Overrides),
		}),
	}
}
