package dryer

// Stage describes the drying session's phase.
type Stage uint8

const (
	// StageIdle means no profile is active or the session has ended.
	StageIdle Stage = iota
	// StagePreheating means the heater is cycling to first reach target.
	StagePreheating
	// StageWorking means the target was reached at least once and the
	// drying countdown is running.
	StageWorking
	// StageHalted is the absorbing fail-safe state. Once entered, no
	// further transitions are accepted; only a power cycle restarts the
	// system.
	StageHalted
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StagePreheating:
		return "PreHeating"
	case StageWorking:
		return "Working"
	case StageHalted:
		return "Halted"
	default:
		return "Unknown"
	}
}

// Session is the mutable runtime state of one drying run. It is owned by the
// control loop; asynchronous sources never read or interpret it.
type Session struct {
	Profile  *Profile
	Stage    Stage
	HeaterOn bool // mirrors the last commanded actuator state
}
