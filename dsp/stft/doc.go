// Package stft provides the short-time Fourier transform used at the
// boundary of the beamforming engine.
//
// Analysis produces one-sided spectra (frameSize/2+1 bins) of windowed
// frames; synthesis performs weighted overlap-add normalised by the summed
// squared window so that Analyze followed by Synthesize reproduces the input
// away from the leading edge. The default framing is a periodic Hann window
// with 50% overlap.
//
// Multichannel spectrograms are stored frame-major with the microphone index
// innermost, so the M-vector of one (bin, frame) pair is a contiguous slice.
package stft
