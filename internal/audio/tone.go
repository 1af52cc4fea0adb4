package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"
)

const (
	toneFrequency = 440
	beepDuration  = 100 * time.Millisecond
	sampleSize    = 4 // float32 mono
)

// tone is a square wave generator. It outputs silence unless samples of a beep
// remain, Read is called from the audio thread while start is called from the
// emulation loop.
type tone struct {
	volume       float32
	period       int // samples per wave period
	beepSamples  int64
	remaining    atomic.Int64
	periodOffset int
}

func newTone(sampleRate int, volume float64) *tone {
	return &tone{
		volume:      float32(volume),
		period:      max(sampleRate/toneFrequency, 2),
		beepSamples: int64(sampleRate) * int64(beepDuration) / int64(time.Second),
	}
}

// start (re)starts a beep of the full duration.
func (t *tone) start() {
	t.remaining.Store(t.beepSamples)
}

// Read fills p with float32 little endian samples.
func (t *tone) Read(p []byte) (int, error) {
	numSamples := len(p) / sampleSize

	for i := range numSamples {
		var sample float32
		if t.remaining.Load() > 0 {
			t.remaining.Add(-1)
			sample = t.volume
			if t.periodOffset >= t.period/2 {
				sample = -t.volume
			}
		}
		t.periodOffset = (t.periodOffset + 1) % t.period

		binary.LittleEndian.PutUint32(p[i*sampleSize:], math.Float32bits(sample))
	}
	return numSamples * sampleSize, nil
}
