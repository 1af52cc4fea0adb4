// Package audio plays the beep tone of the sound timer.
package audio

// Beeper plays a short tone for every beep event.
type Beeper interface {
	Beep()
	Close() error
}

// Nop is a beeper that does not produce any sound.
type Nop struct{}

// Beep does nothing.
func (Nop) Beep() {}

// Close does nothing.
func (Nop) Close() error { return nil }
