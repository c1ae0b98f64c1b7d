package common

import (
	"time"
)

//
// Config carries the tunables of the verification engine. The timeout
// and panel fields drive consensus; the rest are not consensus-related.
//
type Config struct {
	VotingPeriod       time.Duration
	SweepInterval      time.Duration
	SignatureTolerance time.Duration

	PanelSize         int
	RequiredApprovals int

	NetworkID []byte

	// Those fields are not consensus-related
	RateLimitRuleAPI RateLimitRule

	HTTPCacheAdapter    string
	HTTPCachePoolSize   int
	HTTPCacheRedisAddrs map[string]string
}

func NewConfig(networkID []byte) Config {
	p := Config{}

	p.VotingPeriod = DefaultVotingPeriod
	p.SweepInterval = DefaultSweepInterval
	p.SignatureTolerance = DefaultSignatureTolerance

	p.PanelSize = DefaultPanelSize
	p.RequiredApprovals = DefaultRequiredApprovals

	p.NetworkID = networkID

	p.RateLimitRuleAPI = NewRateLimitRule(RateLimitAPI)

	p.HTTPCachePoolSize = HTTPCachePoolSize

	return p
}
