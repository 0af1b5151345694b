package audio

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/engine"
)

func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestEveryEngineCueHasNotes(t *testing.T) {
	for _, cue := range []string{
		engine.CueStart, engine.CueCollect, engine.CueHit, engine.CueDeflect,
		engine.CuePowerUp, engine.CuePowerDown, engine.CueMiss, engine.CueFlip,
		engine.CueMatch, engine.CueGoal, engine.CueCountdown,
		engine.CueWin, engine.CueLose, engine.CueTimeout,
	} {
		if Length(cue) <= 0 {
			t.Errorf("cue %q has no notes", cue)
		}
	}
}

func TestRenderLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	tests := []string{engine.CueCollect, engine.CueWin, engine.CueTimeout}
	for _, cue := range tests {
		t.Run(cue, func(t *testing.T) {
			s := Render(cue, rate, 1)
			if s == nil {
				t.Fatal("Render() returned nil")
			}
			n, peak := drain(s)

			want := 0
			for _, note := range Cues[cue] {
				want += rate.N(note.Dur)
			}
			if n != want {
				t.Errorf("rendered %d samples, expected %d", n, want)
			}
			if peak <= 0 || peak > 1.0001 {
				t.Errorf("peak amplitude %v out of range", peak)
			}
		})
	}
}

func TestRenderVolume(t *testing.T) {
	rate := beep.SampleRate(8000)
	_, full := drain(Render(engine.CueHit, rate, 1))
	_, half := drain(Render(engine.CueHit, rate, 0.5))
	_, mute := drain(Render(engine.CueHit, rate, 0))

	if math.Abs(half-full/2) > 0.01 {
		t.Errorf("half volume peak %v, expected about %v", half, full/2)
	}
	if mute != 0 {
		t.Errorf("muted peak %v, expected 0", mute)
	}
}

func TestRenderUnknownCue(t *testing.T) {
	if Render("kazoo", SampleRate, 1) != nil {
		t.Error("expected nil for an unknown cue")
	}
}

func TestOscillatorShapes(t *testing.T) {
	rate := beep.SampleRate(8000)
	for _, w := range []Wave{WaveSine, WaveSquare, WaveTriangle} {
		n, peak := drain(newOscillator(440, 10*time.Millisecond, w, rate))
		if n != rate.N(10*time.Millisecond) {
			t.Errorf("wave %d: %d samples", w, n)
		}
		if peak < 0.9 || peak > 1.0001 {
			t.Errorf("wave %d: peak %v", w, peak)
		}
	}
}

func TestBeepDisabledIsSilent(t *testing.T) {
	b := NewBeep(config.AudioConfig{Enabled: false, Volume: 1}, log.New(io.Discard))
	if err := b.Init(); err != nil {
		t.Fatalf("Init() on disabled audio = %v", err)
	}
	if b.Active() {
		t.Error("disabled player should not open the speaker")
	}
	b.Play(engine.CueWin)
	b.Shutdown()
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var p Player = &r
	p.Play(engine.CueCollect)
	p.Play(engine.CueHit)
	p.Play(engine.CueCollect)

	if got := r.Cues(); len(got) != 3 || got[1] != engine.CueHit {
		t.Errorf("Cues() = %v", got)
	}
	if r.Count(engine.CueCollect) != 2 {
		t.Errorf("Count(collect) = %d", r.Count(engine.CueCollect))
	}
	Nop{}.Play(engine.CueWin)
}
