package metrics

var (
	Engine = NopEngineMetrics()
	Sweep  = NopSweepMetrics()
	API    = NopAPIMetrics()
)
