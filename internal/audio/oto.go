package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/retroenv/retrogolib/log"
)

// DefaultSampleRate is the sample rate used for the audio output.
const DefaultSampleRate = 44100

// OtoBeeper plays beeps on the default audio device.
type OtoBeeper struct {
	logger *log.Logger
	player *oto.Player
	tone   *tone
}

// NewOtoBeeper opens the default audio device and starts a player that
// outputs silence until Beep is called.
func NewOtoBeeper(logger *log.Logger, sampleRate int, volume float64) (*OtoBeeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	wave := newTone(sampleRate, volume)
	player := ctx.NewPlayer(wave)
	player.Play()

	logger.Debug("Audio output started",
		log.Int("sample_rate", sampleRate),
		log.Int("frequency", toneFrequency))

	return &OtoBeeper{
		logger: logger,
		player: player,
		tone:   wave,
	}, nil
}

// Beep plays the tone for a fixed duration.
func (b *OtoBeeper) Beep() {
	b.tone.start()
}

// Close stops the audio output.
func (b *OtoBeeper) Close() error {
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}

// New returns an oto beeper, or a Nop beeper if the volume is zero or the
// audio device can not be opened.
func New(logger *log.Logger, volume float64) Beeper {
	if volume <= 0 {
		return Nop{}
	}

	beeper, err := NewOtoBeeper(logger, DefaultSampleRate, volume)
	if err != nil {
		logger.Warn("Audio output not available, beeps are muted", log.Err(err))
		return Nop{}
	}
	return beeper
}
