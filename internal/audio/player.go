// Package audio plays short synthesized cues for game events.
//
// Players are fire-and-forget: Play never blocks and never fails. When no
// audio device is available the Beep player stays silent.
package audio

import "sync"

// Player plays a named cue.
type Player interface {
	Play(cue string)
}

// Nop discards every cue.
type Nop struct{}

// Play implements Player.
func (Nop) Play(string) {}

// Recorder remembers the cues it was asked to play.
type Recorder struct {
	mu   sync.Mutex
	cues []string
}

// Play implements Player.
func (r *Recorder) Play(cue string) {
	r.mu.Lock()
	r.cues = append(r.cues, cue)
	r.mu.Unlock()
}

// Cues returns the played cues in order.
func (r *Recorder) Cues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cues...)
}

// Count returns how many times cue was played.
func (r *Recorder) Count(cue string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cues {
		if c == cue {
			n++
		}
	}
	return n
}
