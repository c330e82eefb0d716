package main

import "testing"

func TestStarPowerMeterStaysInBounds(t *testing.T) {
	sp := newStarPowerState()

	for i := 0; i < 100; i++ {
		sp.charge(7)
		if sp.meter > starPowerMaxMeter {
			t.Fatal("Meter exceeded max:", sp.meter)
		}
	}
	if sp.meter != starPowerMaxMeter {
		t.Error("Expected full meter, got", sp.meter)
	}

	sp.activate()
	for i := 0; i < 100; i++ {
		sp.drain(500)
		if sp.meter < 0 {
			t.Fatal("Meter dropped below zero:", sp.meter)
		}
	}
}

func TestStarPowerActivationRequiresFullCharge(t *testing.T) {
	sp := newStarPowerState()
	sp.charge(99)

	if sp.canActivate() {
		t.Error("Expected activation gate closed at meter", sp.meter)
	}
	if sp.activate() {
		t.Error("Expected activation to fail below threshold")
	}
	if sp.isActive {
		t.Error("Expected star power to stay inactive")
	}

	sp.charge(1)
	if !sp.activate() {
		t.Error("Expected activation to succeed at threshold")
	}
	if !sp.isActive {
		t.Error("Expected star power active")
	}
	if sp.multiplier != starPowerMultiplier {
		t.Error("Expected multiplier", starPowerMultiplier, "got", sp.multiplier)
	}
	if sp.remainingTimeMs != starPowerDurationMs {
		t.Error("Expected full duration, got", sp.remainingTimeMs)
	}
}

func TestStarPowerNeverChargesWhileActive(t *testing.T) {
	sp := newStarPowerState()
	sp.charge(100)
	sp.activate()
	sp.drain(2000)

	meterBefore := sp.meter
	sp.charge(50)
	if sp.meter != meterBefore {
		t.Error("Expected charging to be ignored while active")
	}
}

func TestStarPowerDrainsToZeroMeter(t *testing.T) {
	sp := newStarPowerState()
	sp.charge(100)
	sp.activate()

	// 20%/s drains the full meter in 5 seconds, well inside the
	// 10 second countdown
	sp.drain(4999)
	if !sp.isActive {
		t.Fatal("Expected star power still active just before empty")
	}
	sp.drain(2)
	if sp.isActive {
		t.Error("Expected star power to end when the meter emptied")
	}
	if sp.meter != 0 {
		t.Error("Expected meter pinned at 0, got", sp.meter)
	}
	if sp.multiplier != 1.0 {
		t.Error("Expected multiplier reset, got", sp.multiplier)
	}
}

func TestStarPowerEndsWhenCountdownExpires(t *testing.T) {
	// construct an active state whose countdown runs out before the
	// meter does
	sp := starPowerState{
		meter:           starPowerMaxMeter,
		isActive:        true,
		remainingTimeMs: 300,
		multiplier:      starPowerMultiplier,
	}

	sp.drain(200)
	if !sp.isActive {
		t.Fatal("Expected star power active with countdown remaining")
	}
	sp.drain(200)
	if sp.isActive {
		t.Error("Expected star power to end when the countdown expired")
	}
	if sp.multiplier != 1.0 {
		t.Error("Expected multiplier reset, got", sp.multiplier)
	}
}

func TestGoldenNotesChargeFaster(t *testing.T) {
	sp := newStarPowerState()
	golden := chartNote{isGolden: true}
	sp.chargeForNote(starChargePerfect, golden)
	if sp.meter != starChargePerfect*goldenNoteChargeMultiplier {
		t.Error("Expected doubled charge for golden note, got", sp.meter)
	}

	sp2 := newStarPowerState()
	bonus := chartNote{isBonus: true}
	sp2.chargeForNote(starChargeOther, bonus)
	if sp2.meter != starChargeOther*goldenNoteChargeMultiplier {
		t.Error("Expected doubled charge for bonus note, got", sp2.meter)
	}
}
