package core

import "math"

// ProcessorConfig holds the session-wide settings shared by the steering
// model, the STFT collaborator and the beamformers.
type ProcessorConfig struct {
	SampleRate   float64
	FrameSize    int
	SpeedOfSound float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the settings used for 16 kHz speech arrays.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:   16000,
		FrameSize:    512,
		SpeedOfSound: 343,
	}
}

// WithSampleRate sets the sampling rate in Hz.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFrameSize sets the STFT frame length in samples.
func WithFrameSize(frameSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if frameSize > 0 {
			cfg.FrameSize = frameSize
		}
	}
}

// WithSpeedOfSound sets the propagation speed in m/s.
func WithSpeedOfSound(c float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if c > 0 && !math.IsInf(c, 0) {
			cfg.SpeedOfSound = c
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
// Out-of-range values are ignored and leave the default in place.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Bins returns the one-sided spectrum size for the configured frame length.
func (c ProcessorConfig) Bins() int {
	return c.FrameSize/2 + 1
}

// HopSize returns the 50% overlap hop implied by the frame length.
func (c ProcessorConfig) HopSize() int {
	return max(c.FrameSize/2, 1)
}
