package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/edu-arcade/internal/config"
)

// SampleRate is the output rate of the speaker.
const SampleRate = beep.SampleRate(44100)

// maxVoices bounds how many cues may overlap.
const maxVoices = 8

// Beep plays cues through the system speaker.
// Until Init succeeds every Play is a no-op.
type Beep struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	enabled     bool
	initialized bool
	logger      *log.Logger
}

// NewBeep creates a speaker-backed player. A nil logger uses log.Default().
func NewBeep(cfg config.AudioConfig, logger *log.Logger) *Beep {
	if logger == nil {
		logger = log.Default()
	}
	return &Beep{
		mixer:   &beep.Mixer{},
		volume:  cfg.Volume,
		enabled: cfg.Enabled,
		logger:  logger,
	}
}

// Init opens the audio device. On failure the player stays silent and the
// error is returned for logging; the game continues without sound.
func (b *Beep) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized || !b.enabled {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		b.logger.Warn("audio unavailable, continuing silently", "error", err)
		return fmt.Errorf("audio: cannot init speaker: %w", err)
	}
	speaker.Play(b.mixer)
	b.initialized = true
	return nil
}

// Play implements Player.
func (b *Beep) Play(cue string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	s := Render(cue, SampleRate, b.volume)
	if s == nil {
		b.logger.Debug("unknown audio cue", "cue", cue)
		return
	}

	speaker.Lock()
	if b.mixer.Len() < maxVoices {
		b.mixer.Add(s)
	}
	speaker.Unlock()
}

// Shutdown silences every cue and closes the device.
func (b *Beep) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	speaker.Lock()
	b.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	b.initialized = false
}

// Active reports whether the speaker is open.
func (b *Beep) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}
