package metrics

const (
	Namespace       = "veristry"
	EngineSubsystem = "engine"
	SweepSubsystem  = "sweep"
	APISubsystem    = "api"
)
