package metrics

func InitPrometheusMetrics() {
	Version = PromVersion()
	Engine = PromEngineMetrics()
	Sweep = PromSweepMetrics()
	API = PromAPIMetrics()
}
