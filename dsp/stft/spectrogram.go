package stft

// Spectrogram is a single-channel complex spectrogram.
type Spectrogram struct {
	Bins   int
	Frames int
	// Data holds bin k of frame t at Data[t*Bins+k].
	Data []complex128
}

// NewSpectrogram allocates a zeroed spectrogram.
func NewSpectrogram(bins, frames int) *Spectrogram {
	return &Spectrogram{
		Bins:   bins,
		Frames: frames,
		Data:   make([]complex128, bins*frames),
	}
}

// At returns bin k of frame t.
func (s *Spectrogram) At(k, t int) complex128 { return s.Data[t*s.Bins+k] }

// Set stores bin k of frame t.
func (s *Spectrogram) Set(k, t int, v complex128) { s.Data[t*s.Bins+k] = v }

// Frame returns the bins of frame t without copying.
func (s *Spectrogram) Frame(t int) []complex128 {
	return s.Data[t*s.Bins : (t+1)*s.Bins]
}

// MultiSpectrogram is a multichannel complex spectrogram indexed by
// (bin, frame, channel).
type MultiSpectrogram struct {
	Bins     int
	Frames   int
	Channels int
	// Data holds channel m of bin k in frame t at Data[(t*Bins+k)*Channels+m].
	Data []complex128
}

// NewMultiSpectrogram allocates a zeroed multichannel spectrogram.
func NewMultiSpectrogram(bins, frames, channels int) *MultiSpectrogram {
	return &MultiSpectrogram{
		Bins:     bins,
		Frames:   frames,
		Channels: channels,
		Data:     make([]complex128, bins*frames*channels),
	}
}

// At returns channel m of bin k in frame t.
func (s *MultiSpectrogram) At(k, t, m int) complex128 {
	return s.Data[(t*s.Bins+k)*s.Channels+m]
}

// Set stores channel m of bin k in frame t.
func (s *MultiSpectrogram) Set(k, t, m int, v complex128) {
	s.Data[(t*s.Bins+k)*s.Channels+m] = v
}

// Vector returns the channel vector of bin k in frame t without copying.
func (s *MultiSpectrogram) Vector(k, t int) []complex128 {
	off := (t*s.Bins + k) * s.Channels
	return s.Data[off : off+s.Channels]
}

// Frame returns all bins of frame t (Bins*Channels values) without copying.
func (s *MultiSpectrogram) Frame(t int) []complex128 {
	n := s.Bins * s.Channels
	return s.Data[t*n : (t+1)*n]
}

// Channel extracts a copy of channel m.
func (s *MultiSpectrogram) Channel(m int) *Spectrogram {
	out := NewSpectrogram(s.Bins, s.Frames)
	for i := range out.Data {
		out.Data[i] = s.Data[i*s.Channels+m]
	}
	return out
}

// Add accumulates other into s. Shapes must match.
func (s *MultiSpectrogram) Add(other *MultiSpectrogram) error {
	if other.Bins != s.Bins || other.Frames != s.Frames || other.Channels != s.Channels {
		return errShapeMismatch
	}
	for i, v := range other.Data {
		s.Data[i] += v
	}
	return nil
}
