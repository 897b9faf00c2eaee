package beamform

// ResetPolicy decides at the start of each frame whether the covariance
// estimate should be discarded. energy is the mean power of the reference
// microphone over all bins of the frame about to be processed.
//
// A policy that keeps per-stream state may also implement Reset(); the
// processor calls it from Processor.Reset.
type ResetPolicy interface {
	ShouldReset(frame int, energy float64) bool
}

// NeverReset keeps the covariance for the whole stream.
type NeverReset struct{}

// ShouldReset implements ResetPolicy.
func (NeverReset) ShouldReset(int, float64) bool { return false }

// SegmentReset discards the covariance every Frames frames, so that each
// segment is estimated independently.
type SegmentReset struct {
	Frames int
}

// ShouldReset implements ResetPolicy.
func (s SegmentReset) ShouldReset(frame int, _ float64) bool {
	return s.Frames > 0 && frame > 0 && frame%s.Frames == 0
}

// SilenceReset discards the covariance once after HoldFrames consecutive
// frames below Threshold, so a new utterance after a pause starts from a
// fresh estimate.
type SilenceReset struct {
	Threshold  float64
	HoldFrames int

	quiet int
}

// ShouldReset implements ResetPolicy.
func (s *SilenceReset) ShouldReset(_ int, energy float64) bool {
	if energy >= s.Threshold {
		s.quiet = 0
		return false
	}
	s.quiet++
	hold := max(s.HoldFrames, 1)
	return s.quiet == hold
}

// Reset forgets the current run of quiet frames.
func (s *SilenceReset) Reset() { s.quiet = 0 }
