package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/vovakirdan/edu-arcade/internal/engine"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
)

// Note is one tone of a cue.
type Note struct {
	Freq float64 // Hz; 0 is a rest
	Dur  time.Duration
	Wave Wave
}

// Cues maps engine cue names to note sequences.
var Cues = map[string][]Note{
	engine.CueStart:     {{523, 80 * time.Millisecond, WaveSquare}, {659, 80 * time.Millisecond, WaveSquare}, {784, 120 * time.Millisecond, WaveSquare}},
	engine.CueCollect:   {{880, 50 * time.Millisecond, WaveSine}, {1175, 70 * time.Millisecond, WaveSine}},
	engine.CueHit:       {{140, 150 * time.Millisecond, WaveSquare}},
	engine.CueDeflect:   {{440, 60 * time.Millisecond, WaveTriangle}, {330, 60 * time.Millisecond, WaveTriangle}},
	engine.CuePowerUp:   {{523, 60 * time.Millisecond, WaveSine}, {784, 60 * time.Millisecond, WaveSine}, {1047, 90 * time.Millisecond, WaveSine}},
	engine.CuePowerDown: {{784, 60 * time.Millisecond, WaveSine}, {523, 90 * time.Millisecond, WaveSine}},
	engine.CueMiss:      {{220, 120 * time.Millisecond, WaveTriangle}},
	engine.CueFlip:      {{660, 30 * time.Millisecond, WaveTriangle}},
	engine.CueMatch:     {{784, 60 * time.Millisecond, WaveSine}, {988, 100 * time.Millisecond, WaveSine}},
	engine.CueGoal:      {{659, 80 * time.Millisecond, WaveSine}, {880, 120 * time.Millisecond, WaveSine}},
	engine.CueCountdown: {{1000, 40 * time.Millisecond, WaveSquare}},
	engine.CueWin: {
		{523, 100 * time.Millisecond, WaveSquare}, {659, 100 * time.Millisecond, WaveSquare},
		{784, 100 * time.Millisecond, WaveSquare}, {1047, 250 * time.Millisecond, WaveSquare},
	},
	engine.CueLose: {
		{392, 150 * time.Millisecond, WaveTriangle}, {330, 150 * time.Millisecond, WaveTriangle},
		{262, 300 * time.Millisecond, WaveTriangle},
	},
	engine.CueTimeout: {{440, 120 * time.Millisecond, WaveSquare}, {0, 60 * time.Millisecond, WaveSine}, {440, 200 * time.Millisecond, WaveSquare}},
}

// Render builds the streamer for a cue at the given volume (0..1).
// It returns nil for an unknown cue.
func Render(cue string, rate beep.SampleRate, volume float64) beep.Streamer {
	notes, ok := Cues[cue]
	if !ok || len(notes) == 0 {
		return nil
	}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		if n.Freq <= 0 {
			parts = append(parts, beep.Silence(rate.N(n.Dur)))
			continue
		}
		release := n.Dur / 3
		osc := newOscillator(n.Freq, n.Dur, n.Wave, rate)
		parts = append(parts, newEnvelope(osc, n.Dur, 5*time.Millisecond, release, rate))
	}
	return withVolume(beep.Seq(parts...), volume)
}

// Length returns the duration of a cue.
func Length(cue string) time.Duration {
	var d time.Duration
	for _, n := range Cues[cue] {
		d += n.Dur
	}
	return d
}

// oscillator generates a fixed-length wave.
type oscillator struct {
	freq     float64
	phase    float64
	samples  int
	position int
	wave     Wave
	rate     beep.SampleRate
}

func newOscillator(freq float64, dur time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, samples: rate.N(dur), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.samples {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		default:
			val = math.Sin(2 * math.Pi * o.phase)
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in and out.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, dur, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(dur),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; e.release > 0 && remaining < e.release {
			vol = math.Max(0, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales a stream linearly; 0 or less is silent.
func withVolume(s beep.Streamer, volume float64) beep.Streamer {
	if volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(math.Min(volume, 1))}
}
