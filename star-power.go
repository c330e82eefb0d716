package main

const (
	starPowerMaxMeter            = 100.0
	starPowerActivationThreshold = 100.0
	starPowerMultiplier          = 2.0
	starPowerDurationMs          = 10000.0
	starPowerDrainRatePerSecond  = 20.0

	goldenNoteChargeMultiplier = 2.0
)

// starPowerState is the charge/drain state machine gating the temporary
// score multiplier. Charging happens while idle, draining while active;
// activation never fires automatically.
type starPowerState struct {
	meter           float64 // 0..100
	isActive        bool
	remainingTimeMs float64
	multiplier      float64
}

func newStarPowerState() starPowerState {
	return starPowerState{multiplier: 1.0}
}

func (sp *starPowerState) charge(amount float64) {
	if sp.isActive {
		return
	}
	sp.meter += amount
	if sp.meter > starPowerMaxMeter {
		sp.meter = starPowerMaxMeter
	}
}

// chargeForNote applies the note-type-dependent charge increment.
func (sp *starPowerState) chargeForNote(amount float64, note chartNote) {
	if note.isGolden || note.isBonus {
		amount *= goldenNoteChargeMultiplier
	}
	sp.charge(amount)
}

func (sp starPowerState) canActivate() bool {
	return !sp.isActive && sp.meter >= starPowerActivationThreshold
}

// activate turns star power on if the meter is charged enough. Returns
// whether the activation happened.
func (sp *starPowerState) activate() bool {
	if !sp.canActivate() {
		return false
	}
	sp.isActive = true
	sp.meter = starPowerMaxMeter
	sp.remainingTimeMs = starPowerDurationMs
	sp.multiplier = starPowerMultiplier
	return true
}

// drain advances the active state by elapsedMs of real time. The
// activation ends the instant either the meter or the countdown reaches
// zero, whichever comes first.
func (sp *starPowerState) drain(elapsedMs float64) {
	if !sp.isActive || elapsedMs <= 0 {
		return
	}
	sp.meter -= starPowerDrainRatePerSecond * elapsedMs / 1000
	sp.remainingTimeMs -= elapsedMs
	if sp.meter <= 0 || sp.remainingTimeMs <= 0 {
		sp.deactivate()
	}
}

func (sp *starPowerState) deactivate() {
	sp.isActive = false
	sp.meter = 0
	sp.remainingTimeMs = 0
	sp.multiplier = 1.0
}
