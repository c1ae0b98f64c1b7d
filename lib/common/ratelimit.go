package common

import (
	"strings"

	"github.com/ulule/limiter"
)

// RateLimitRule is the rate limit for one interface; `Default` will be
// applied to all the incoming requests and the rate of `ByIPAddress`
// will be applied to the requests of the matched ip address.
type RateLimitRule struct {
	Default     limiter.Rate
	ByIPAddress map[string]limiter.Rate
}

func NewRateLimitRule(rate limiter.Rate) RateLimitRule {
	return RateLimitRule{
		Default:     rate,
		ByIPAddress: map[string]limiter.Rate{},
	}
}

func (r RateLimitRule) IsLimitedForIPAddress(ip string) bool {
	rate, found := r.ByIPAddress[ip]
	if !found {
		rate = r.Default
	}

	return rate.Limit > 0
}

func (r RateLimitRule) GetRate(ip string) limiter.Rate {
	if rate, found := r.ByIPAddress[ip]; found {
		return rate
	}

	return r.Default
}

// ParseRateLimitRule parses formatted rate strings; "100-M" means 100
// requests per minute and "<ip>=10-S" limits one address.
func ParseRateLimitRule(s string) (rule RateLimitRule, err error) {
	rule = NewRateLimitRule(RateLimitAPI)

	for _, chunk := range strings.Fields(s) {
		var target, formatted string
		if i := strings.Index(chunk, "="); i < 0 {
			formatted = chunk
		} else {
			target = chunk[:i]
			formatted = chunk[i+1:]
		}

		var rate limiter.Rate
		if rate, err = limiter.NewRateFromFormatted(formatted); err != nil {
			return
		}

		if len(target) < 1 {
			rule.Default = rate
		} else {
			rule.ByIPAddress[target] = rate
		}
	}

	return
}
