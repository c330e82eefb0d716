package main

import "math"

// sampleFrame is one tick's worth of time-domain microphone samples,
// normalized to [-1, 1].
type sampleFrame struct {
	samples    []float64
	sampleRate int
}

func (f sampleFrame) durationMs() float64 {
	if f.sampleRate == 0 {
		return 0
	}
	return float64(len(f.samples)) / float64(f.sampleRate) * 1000
}

// pitchEstimate is the result of analyzing one sample frame.
// hasPitch is false when the frame is silence or unpitched noise;
// volume is still reported in that case.
type pitchEstimate struct {
	frequency float64
	hasPitch  bool
	clarity   float64 // 0.0 = noise, 1.0 = clean periodic signal
	volume    float64 // 0.0 = silence, 1.0 = max
}

type pitchDetector interface {
	estimate(frame sampleFrame) pitchEstimate
}

const (
	silenceRmsThreshold = 0.01
	minSingableHz       = 65.0   // C2
	maxSingableHz       = 1047.0 // C6
	yinThreshold        = 0.15
)

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func volumeFromRms(r float64) float64 {
	return math.Min(1.0, r*5)
}

// clarityAt measures how periodic the signal is at the given period,
// using the normalized autocorrelation.
func clarityAt(samples []float64, period int) float64 {
	if period <= 0 || period >= len(samples) {
		return 0
	}
	corr := 0.0
	energy := 0.0
	for i := 0; i < len(samples)-period; i++ {
		corr += samples[i] * samples[i+period]
	}
	for _, s := range samples {
		energy += s * s
	}
	if energy == 0 {
		return 0
	}
	clarity := math.Abs(corr) / energy
	if clarity > 1.0 {
		clarity = 1.0
	}
	return clarity
}

// yinDetector implements the YIN pitch detection algorithm
// (difference function method). It's O(N^2) in the half-frame length,
// which is the dominant cost of the whole gameplay tick.
type yinDetector struct{}

func (d yinDetector) estimate(frame sampleFrame) pitchEstimate {
	x := frame.samples
	r := rms(x)
	volume := volumeFromRms(r)

	if r < silenceRmsThreshold || len(x) < 4 {
		return pitchEstimate{volume: volume}
	}

	half := len(x) / 2

	// difference function
	diff := make([]float64, half)
	for tau := 1; tau < half; tau++ {
		sum := 0.0
		for i := 0; i < half; i++ {
			delta := x[i] - x[i+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// cumulative mean normalized difference
	cmnd := make([]float64, half)
	cmnd[0] = 1
	runningSum := 0.0
	for tau := 1; tau < half; tau++ {
		runningSum += diff[tau]
		if runningSum == 0 {
			cmnd[tau] = 1
		} else {
			cmnd[tau] = diff[tau] * float64(tau) / runningSum
		}
	}

	// first dip under the threshold, then descend to the local minimum
	// so we don't lock onto a sub-harmonic shoulder
	tau := -1
	for t := 2; t < half; t++ {
		if cmnd[t] < yinThreshold {
			for t+1 < half && cmnd[t+1] < cmnd[t] {
				t++
			}
			tau = t
			break
		}
	}

	if tau == -1 {
		return pitchEstimate{volume: volume}
	}

	betterTau := parabolicInterpolation(cmnd, tau)
	frequency := float64(frame.sampleRate) / betterTau

	if frequency < minSingableHz || frequency > maxSingableHz {
		return pitchEstimate{volume: volume}
	}

	period := int(math.Round(betterTau))
	return pitchEstimate{
		frequency: frequency,
		hasPitch:  true,
		clarity:   clarityAt(x, period),
		volume:    volume,
	}
}

// parabolicInterpolation refines an integer lag to a fractional one by
// fitting a parabola through the dip and its two neighbors.
func parabolicInterpolation(values []float64, tau int) float64 {
	if tau <= 0 || tau >= len(values)-1 {
		return float64(tau)
	}
	s0 := values[tau-1]
	s1 := values[tau]
	s2 := values[tau+1]
	denom := 2*s1 - s2 - s0
	if denom == 0 {
		return float64(tau)
	}
	adjustment := (s2 - s0) / (2 * denom)
	if adjustment > 0.5 || adjustment < -0.5 {
		return float64(tau)
	}
	return float64(tau) - adjustment
}

// zeroCrossingDetector is the cheap O(N) fallback strategy. It counts
// positive-going zero crossings and derives the frequency from the
// crossing rate. Much less accurate than YIN on harmonically rich
// signals, but cheap enough for constrained capture paths.
type zeroCrossingDetector struct{}

const zeroCrossingAmplitudeThreshold = 0.02

func (d zeroCrossingDetector) estimate(frame sampleFrame) pitchEstimate {
	x := frame.samples
	r := rms(x)
	volume := volumeFromRms(r)

	if r < silenceRmsThreshold || len(x) < 4 {
		return pitchEstimate{volume: volume}
	}

	crossings := 0
	armed := false
	for _, s := range x {
		if s < -zeroCrossingAmplitudeThreshold {
			armed = true
		} else if armed && s > zeroCrossingAmplitudeThreshold {
			crossings++
			armed = false
		}
	}

	if crossings < 2 {
		return pitchEstimate{volume: volume}
	}

	frequency := float64(crossings) * float64(frame.sampleRate) / float64(len(x))
	if frequency < minSingableHz || frequency > maxSingableHz {
		return pitchEstimate{volume: volume}
	}

	period := int(math.Round(float64(frame.sampleRate) / frequency))
	return pitchEstimate{
		frequency: frequency,
		hasPitch:  true,
		clarity:   clarityAt(x, period),
		volume:    volume,
	}
}

func newPitchDetector(strategy string) pitchDetector {
	if strategy == detectorStrategyZeroCrossing {
		return zeroCrossingDetector{}
	}
	return yinDetector{}
}

// frequencyToMidi converts a frequency in Hz to a fractional MIDI note
// number (A4 = 440Hz = 69).
func frequencyToMidi(frequency float64) float64 {
	return 69 + 12*math.Log2(frequency/440.0)
}

func midiToFrequency(midi float64) float64 {
	return 440.0 * math.Pow(2, (midi-69)/12)
}
