package common

import (
	"time"

	"github.com/ulule/limiter"
)

const (
	// DefaultVotingPeriod is the time a panel has to vote once it is
	// assigned, before the sweeper starts injecting abstains.
	DefaultVotingPeriod time.Duration = 72 * time.Hour

	// DefaultSweepInterval is how often the deadline sweeper wakes up.
	DefaultSweepInterval time.Duration = 1 * time.Hour

	// DefaultSignatureTolerance is the allowed clock skew between the
	// issuance timestamp inside a signed vote and the server clock.
	DefaultSignatureTolerance time.Duration = 10 * time.Minute

	DefaultPanelSize         int = 5
	DefaultRequiredApprovals int = 3

	HTTPCachePoolSize int = 10000
)

var (
	// RateLimitAPI is default rate limit for public API interface, the
	// default is '100 requests per minute'.
	RateLimitAPI limiter.Rate = limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  100,
	}
)
